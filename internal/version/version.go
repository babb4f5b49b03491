package version

import "fmt"

// Name is the product name printed in usage and version output.
const Name = "USB relay utility"

var (
	// Version is the semantic version of the build.
	Version = "1.0.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Banner returns the first line of the usage text.
func Banner() string {
	return fmt.Sprintf("%s v%s", Name, Version)
}

// Full returns the banner followed by commit and build time.
func Full() string {
	return fmt.Sprintf("%s (commit: %s, built at: %s)", Banner(), Commit, BuildTime)
}
