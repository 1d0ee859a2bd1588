// Package version holds build metadata reported by the /version
// endpoint. The variables are overridden at build time via ldflags.
package version

var (
	// Version is the release version.
	Version = "0.0.0"

	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"

	// BuildDate is the UTC timestamp of the build.
	BuildDate = "unknown"
)
