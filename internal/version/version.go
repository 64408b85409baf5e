// Package version carries build identification, overridden at link time.
package version

// Set via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "unknown"
)

// String returns the human-readable version line.
func String() string {
	return Version + " (" + Commit + ")"
}
