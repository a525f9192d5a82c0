package version

import "fmt"

var (
	// Version is the application version (set at build time via -ldflags)
	Version = "dev"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildTime is the build timestamp (set at build time)
	BuildTime = "unknown"
)

// String returns a formatted version string
func String() string {
	if Commit == "unknown" {
		return fmt.Sprintf("receipt-printer %s", Version)
	}
	return fmt.Sprintf("receipt-printer %s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
