// Package digest computes deterministic content digests of source trees.
// It is used to decide whether a buildSrc sub-build must be re-run. Hashing
// uses Blake3; files are processed in sorted order and filtered by
// gitignore-style rules so build output never influences the digest.
package digest

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Tree computes the combined digest of all regular files under rootDir that
// survive the ignore rules. The result is stable across runs and platforms:
// paths are slash-normalized and sorted before combination.
func Tree(ctx context.Context, rootDir string, rules *IgnoreRules) (string, error) {
	if rules == nil {
		rules = NewIgnoreRules()
	}

	files, err := collectFiles(rootDir, rules)
	if err != nil {
		return "", fmt.Errorf("failed to collect files: %w", err)
	}
	sort.Strings(files)

	var combined strings.Builder
	for _, rel := range files {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		hash, err := File(filepath.Join(rootDir, rel))
		if err != nil {
			return "", err
		}
		combined.WriteString(filepath.ToSlash(rel))
		combined.WriteString(":")
		combined.WriteString(hash)
		combined.WriteString("\n")
	}

	sum := blake3.Sum256([]byte(combined.String()))
	return hex.EncodeToString(sum[:]), nil
}

// File computes the Blake3 digest of a single file's content.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// collectFiles walks the tree and returns root-relative paths of all
// regular files, pruning ignored directories.
func collectFiles(rootDir string, rules *IgnoreRules) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if rel == "." {
			return nil
		}

		if rules.ShouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})

	return files, err
}
