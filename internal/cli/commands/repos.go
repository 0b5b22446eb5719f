package commands

import (
	"fmt"

	"gradlex/internal/repo"
	e "gradlex/pkg/errors"
)

// Repos validates the configured repository definitions and prints the
// resolver wiring derived from them.
func Repos(args []string) error {
	cfg := loadConfig()
	path := cfg.RepositoriesFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		fmt.Println("Usage: gradlex repos <definitions.yaml>")
		return e.New(e.ErrInvalidConfig, "No repository definitions file").
			WithSuggestion("Set repositories_file in ~/.gradlex.json or pass a path")
	}

	repositories, err := repo.LoadDefinitions(path)
	if err != nil {
		return err
	}
	if len(repositories) == 0 {
		fmt.Println("No repositories defined")
		return nil
	}

	resolvers, err := repo.BuildResolvers(repositories)
	if err != nil {
		return err
	}
	for _, resolver := range resolvers {
		fmt.Printf("%s (%s)\n", resolver.Name, resolver.Layout)
		fmt.Printf("  root: %s\n", resolver.RootURL)
		for _, pattern := range resolver.ArtifactPatterns {
			fmt.Printf("  artifact pattern: %s\n", pattern)
		}
	}
	return nil
}
