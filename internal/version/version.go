// Package version exposes the build-time version string.
package version

// version is injected at build time via -ldflags.
var version = ""

// Value returns the build version, or an empty string when not stamped.
func Value() string {
	return version
}
