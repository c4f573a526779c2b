// Package version holds the build version, overridden at link time via
// -ldflags "-X github.com/openmirror/mirrorctl/internal/version.Version=...".
package version

var Version = "0.3.0-dev"
