// Package repo holds Maven repository definitions and the wiring needed to
// construct resolvers from them. Definitions can be declared in code or
// loaded from a YAML file. Artifact resolution itself happens in Gradle;
// this package only validates and shapes the configuration.
package repo

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	e "gradlex/pkg/errors"
)

// Maven2Layout is the repository layout every resolver uses.
const Maven2Layout = "maven2"

// Repository is a named Maven repository definition. RootURL serves both
// POMs and artifacts; ArtifactURLs add extra locations searched for
// artifacts only.
type Repository struct {
	Name         string   `yaml:"name"`
	RootURL      string   `yaml:"root_url"`
	ArtifactURLs []string `yaml:"artifact_urls,omitempty"`
}

// Resolver is the validated, resolver-shaped form of a Repository: the
// root URL plus the derived artifact patterns, all in Maven2 layout.
type Resolver struct {
	Name             string
	RootURL          string
	ArtifactPatterns []string
	Layout           string
}

// NewResolver validates the definition and wires it into a Resolver. The
// root URL pattern is always first; additional artifact URLs follow in
// declaration order.
func NewResolver(repository Repository) (*Resolver, error) {
	if repository.Name == "" {
		return nil, e.New(e.ErrRepoInvalid, "Repository definition has no name")
	}
	if err := validateURL(repository.RootURL); err != nil {
		return nil, e.Wrap(err, e.ErrRepoInvalid,
			fmt.Sprintf("Repository %q has an invalid root URL", repository.Name))
	}

	patterns := []string{artifactPattern(repository.RootURL)}
	for _, artifactURL := range repository.ArtifactURLs {
		if err := validateURL(artifactURL); err != nil {
			return nil, e.Wrap(err, e.ErrRepoInvalid,
				fmt.Sprintf("Repository %q has an invalid artifact URL", repository.Name))
		}
		patterns = append(patterns, artifactPattern(artifactURL))
	}

	return &Resolver{
		Name:             repository.Name,
		RootURL:          repository.RootURL,
		ArtifactPatterns: patterns,
		Layout:           Maven2Layout,
	}, nil
}

// artifactPattern derives the Maven2 artifact pattern for a base URL.
func artifactPattern(baseURL string) string {
	return strings.TrimRight(baseURL, "/") +
		"/[organisation]/[module]/[revision]/[artifact]-[revision](-[classifier]).[ext]"
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL is empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch parsed.Scheme {
	case "http", "https", "file":
	default:
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if parsed.Scheme != "file" && parsed.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}

// definitionsFile is the YAML document shape.
type definitionsFile struct {
	Repositories []Repository `yaml:"repositories"`
}

// LoadDefinitions reads repository definitions from a YAML file. A missing
// file yields no definitions and no error.
func LoadDefinitions(path string) ([]Repository, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(err, e.ErrRepoInvalid, "Failed to read repository definitions").
			WithContext("path", path)
	}

	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, e.Wrap(err, e.ErrRepoInvalid, "Failed to parse repository definitions").
			WithContext("path", path)
	}
	return file.Repositories, nil
}

// BuildResolvers wires all definitions into resolvers, failing on the
// first invalid one.
func BuildResolvers(repositories []Repository) ([]*Resolver, error) {
	resolvers := make([]*Resolver, 0, len(repositories))
	for _, repository := range repositories {
		resolver, err := NewResolver(repository)
		if err != nil {
			return nil, err
		}
		resolvers = append(resolvers, resolver)
	}
	return resolvers, nil
}
