// Package exec provides command execution utilities and Gradle CLI
// detection for gradlex. This package centralizes process creation and
// provides test-friendly interfaces for mocking.
package exec

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Commander provides an interface for command execution that can be mocked
// in tests. This enables dependency injection and makes code more testable.
type Commander interface {
	Command(name string, args ...string) *exec.Cmd
}

// DefaultCommander implements Commander using the standard exec.Command.
type DefaultCommander struct{}

// Command creates a new exec.Cmd using the standard library exec.Command.
func (DefaultCommander) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

// Global instance that can be overridden in tests
var Default Commander = DefaultCommander{}

// Command is a convenience function that delegates to the global Commander
// instance. Tests can override Default to provide mock implementations.
func Command(name string, args ...string) *exec.Cmd {
	return Default.Command(name, args...)
}

// FindGradle attempts to locate the Gradle executable. The environment
// variable GRADLEX_GRADLE takes highest priority, then a gradle wrapper
// script in the given project directory, then GRADLE_HOME/bin, then PATH.
// The bare name is returned as a last resort so the failure surfaces at
// invocation time with a useful error.
func FindGradle(projectDir string) string {
	if env := os.Getenv("GRADLEX_GRADLE"); env != "" {
		return env
	}
	if projectDir != "" {
		wrapper := filepath.Join(projectDir, wrapperScript())
		if info, err := os.Stat(wrapper); err == nil && !info.IsDir() {
			return wrapper
		}
	}
	if home := os.Getenv("GRADLE_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", gradleBinary())
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	if path, err := exec.LookPath(gradleBinary()); err == nil {
		return path
	}
	return gradleBinary()
}

func gradleBinary() string {
	if runtime.GOOS == "windows" {
		return "gradle.bat"
	}
	return "gradle"
}

func wrapperScript() string {
	if runtime.GOOS == "windows" {
		return "gradlew.bat"
	}
	return "gradlew"
}
