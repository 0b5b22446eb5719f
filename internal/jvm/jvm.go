// Package jvm locates the JVM installation used for forked Gradle builds.
package jvm

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// testable lookPath wrapper
var lookPath = exec.LookPath

// CurrentHome returns the home directory of the JVM the current process
// would use: JAVA_HOME when set, otherwise derived from the java binary on
// PATH (two levels up from <home>/bin/java, symlinks resolved).
func CurrentHome() (string, error) {
	if home := os.Getenv("JAVA_HOME"); home != "" {
		return home, nil
	}
	java, err := lookPath("java")
	if err != nil {
		return "", fmt.Errorf("no JVM found: JAVA_HOME is unset and java is not on PATH")
	}
	if resolved, err := filepath.EvalSymlinks(java); err == nil {
		java = resolved
	}
	return filepath.Dir(filepath.Dir(java)), nil
}
