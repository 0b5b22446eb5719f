// Package text provides line-ending normalization for build output and
// stdin payloads. Gradle output arrives with platform-specific separators;
// comparisons and digests want a single canonical form.
package text

import (
	"runtime"
	"strings"
)

const unixSeparator = "\n"

// PlatformSeparator returns the line separator for the current platform.
func PlatformSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return unixSeparator
}

// Normalize converts all line endings in s to "\n".
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ToPlatformLineSeparators converts all line endings in s to the separator
// used by the current platform.
func ToPlatformLineSeparators(s string) string {
	sep := PlatformSeparator()
	if sep == unixSeparator {
		return Normalize(s)
	}
	return strings.ReplaceAll(Normalize(s), unixSeparator, sep)
}
