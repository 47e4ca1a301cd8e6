// Package version holds build-time version metadata.
package version

// Populated via -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a human-readable version string
func Info() string {
	return Version + " (" + Commit + ", built " + Date + ")"
}
