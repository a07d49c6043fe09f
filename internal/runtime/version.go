package runtime

import (
	"fmt"
	goruntime "runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version (set via -ldflags)
	Version = "0.0.0-dev"

	// GitCommit is the short git commit hash (set via -ldflags)
	GitCommit = "dev"

	// BuildTime is the UTC build timestamp (set via -ldflags)
	BuildTime = "unknown"
)

// moduleVersion returns the version recorded by "go install module@version",
// used when no version was injected at link time.
func moduleVersion() string {
	if Version != "0.0.0-dev" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}

// VersionString returns the formatted version string for display.
func VersionString() string {
	return fmt.Sprintf("fgt-export version %s (%s) built %s with %s",
		moduleVersion(), GitCommit, BuildTime, goruntime.Version())
}
