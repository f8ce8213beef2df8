// Package version carries build information injected at link time
package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/openslx/slotctl/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/openslx/slotctl/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/openslx/slotctl/internal/version.Date={{.Date}}
)

// String formats the build information for the version command
func String() string {
	return fmt.Sprintf("slotctl version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
