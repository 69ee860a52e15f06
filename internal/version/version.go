package version

import "fmt"

var (
	// Version is the semantic version of the packlab toolchain.
	// It can be overridden via ldflags.
	Version = "0.4.2"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string. Install receipts record it
// and submissions send it as the client_version parameter, so the lab API
// can reject tool versions it no longer accepts.
func Short() string {
	return Version
}

// Full renders the version with commit and build time for CLI output.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
