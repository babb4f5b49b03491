// Package version exposes build metadata of the relay utility.
//
// Version, Commit and BuildTime are injected with -ldflags "-X" at build time.
package version
