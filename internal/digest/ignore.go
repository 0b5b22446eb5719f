package digest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// IgnoreRules manages gitignore-style pattern matching for file exclusion.
// It supports negation (!) and directory-only (trailing /) patterns.
type IgnoreRules struct {
	patterns []ignorePattern
}

// ignorePattern is a single rule with its compiled glob and metadata.
type ignorePattern struct {
	pattern  string
	glob     glob.Glob
	negate   bool
	dirOnly  bool
	hasSlash bool
}

// NewIgnoreRules creates an ignore rules manager with default exclusions
// for VCS metadata and Gradle build output.
func NewIgnoreRules() *IgnoreRules {
	rules := &IgnoreRules{}

	defaultPatterns := []string{
		".git/",
		".svn/",
		".hg/",
		".gradle/",
		".gradlex/",
		"build/",
		"out/",
		".DS_Store",
		"*.swp",
		"*~",
	}

	for _, pattern := range defaultPatterns {
		// Default patterns are static and known-valid
		_ = rules.AddPattern(pattern)
	}

	return rules
}

// LoadFromFile loads additional patterns from a .gradlexignore file.
// A missing file is not an error.
func (r *IgnoreRules) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open ignore file %s: %w", filename, err)
	}
	defer file.Close()

	return r.LoadFromReader(file)
}

// LoadFromReader loads patterns from an io.Reader, one per line.
// Blank lines and #-comments are skipped.
func (r *IgnoreRules) LoadFromReader(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.AddPattern(line); err != nil {
			return fmt.Errorf("invalid pattern on line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

// AddPattern adds a single ignore pattern to the rules.
func (r *IgnoreRules) AddPattern(pattern string) error {
	if pattern == "" {
		return nil
	}

	negate := strings.HasPrefix(pattern, "!")
	if negate {
		pattern = pattern[1:]
	}

	dirOnly := strings.HasSuffix(pattern, "/")
	if dirOnly {
		pattern = strings.TrimSuffix(pattern, "/")
	}

	pattern = strings.TrimPrefix(pattern, "/")
	hasSlash := strings.Contains(pattern, "/")

	compiled, err := glob.Compile(pattern, '/')
	if err != nil {
		return fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}

	r.patterns = append(r.patterns, ignorePattern{
		pattern:  pattern,
		glob:     compiled,
		negate:   negate,
		dirOnly:  dirOnly,
		hasSlash: hasSlash,
	})
	return nil
}

// ShouldIgnore determines if a path should be ignored. The path must be
// relative to the tree root; forward slashes are enforced internally.
func (r *IgnoreRules) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	ignored := false
	for _, p := range r.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if r.matches(p, path) {
			ignored = !p.negate
		}
	}
	return ignored
}

// A pattern without a slash matches the basename at any level; a pattern
// with a slash matches the full relative path. Files below an ignored
// directory are never evaluated because the tree walk prunes the directory.
func (r *IgnoreRules) matches(p ignorePattern, path string) bool {
	if !p.hasSlash {
		return p.glob.Match(filepath.Base(path))
	}
	return p.glob.Match(path)
}

// Patterns returns the loaded patterns in gitignore syntax, for inspection.
func (r *IgnoreRules) Patterns() []string {
	patterns := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		pattern := p.pattern
		if p.negate {
			pattern = "!" + pattern
		}
		if p.dirOnly {
			pattern += "/"
		}
		patterns = append(patterns, pattern)
	}
	return patterns
}
