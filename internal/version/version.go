// Package version exposes build-time version information.
package version

import "fmt"

// Populated at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a human-readable one-line version string.
func Info() string {
	return fmt.Sprintf("indcat %s (commit: %s, built: %s)", Version, Commit, Date)
}
