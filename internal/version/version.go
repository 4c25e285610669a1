// Package version carries build metadata injected with -ldflags.
package version

import "fmt"

// Set at build time, e.g. -X github.com/kavach/kavach/internal/version.Version=1.2.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info is the build metadata of the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Get returns the injected build metadata
func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

// String formats the metadata for `kavach version`
func (i Info) String() string {
	if i.Version == "dev" {
		return fmt.Sprintf("kavach dev (commit: %s)", i.Commit)
	}
	return fmt.Sprintf("kavach %s (commit: %s, built: %s)", i.Version, i.Commit, i.BuildDate)
}
