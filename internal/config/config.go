// Package config provides configuration management for the gradlex tool.
// It handles loading and saving user preferences for build invocation.
//
// Configuration is stored in JSON format at ~/.gradlex.json and includes:
//   - Gradle executable override
//   - JAVA_HOME override for forked builds
//   - Default daemon idle timeout and registry directory
//   - Path to a repository definitions YAML file
//
// The package gracefully handles missing configuration files by
// returning empty configurations, allowing the tool to work with
// sensible defaults when no explicit configuration exists.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds user preferences for Gradle invocations.
type Config struct {
	GradleExecutable      string `json:"gradle_executable,omitempty"`
	JavaHome              string `json:"java_home,omitempty"`
	DaemonIdleTimeoutSecs int    `json:"daemon_idle_timeout_secs,omitempty"`
	DaemonRegistryDir     string `json:"daemon_registry_dir,omitempty"`
	RepositoriesFile      string `json:"repositories_file,omitempty"`
}

// Path returns the absolute path to the gradlex configuration file (~/.gradlex.json).
func Path() string {
	home := os.Getenv("HOME")
	if home == "" {
		if wd, _ := os.Getwd(); wd != "" {
			return filepath.Join(wd, ".gradlex.json")
		}
	}
	return filepath.Join(home, ".gradlex.json")
}

// Load reads configuration from disk. If missing, returns an empty config and nil error.
func Load() (*Config, error) {
	var cfg Config
	p := Path()
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return &Config{}, nil // treat parse issues as empty config (non-fatal)
	}
	return &cfg, nil
}

// Save writes configuration to disk.
func Save(cfg *Config) error {
	p := Path()
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o644)
}
