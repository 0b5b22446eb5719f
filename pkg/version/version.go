// Package version holds the gradlex version string, set at build time via
// -ldflags "-X gradlex/pkg/version.Version=...".
package version

// Version is the current gradlex version.
var Version = "dev"
