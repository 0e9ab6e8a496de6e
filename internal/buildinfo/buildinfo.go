// Package buildinfo reports which shellprobe build produced a run. The
// Makefile stamps the variables below through -ldflags -X.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown" // RFC3339, UTC
)

// Info is the JSON shape printed by `shellprobe version --json` and embedded
// in run summaries.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// GetInfo returns the stamped values. An unstamped binary installed with
// `go install module@version` reports the module version instead of "dev".
func GetInfo() Info {
	version := Version
	if bi, ok := debug.ReadBuildInfo(); ok && version == "dev" {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			version = v
		}
	}
	return Info{Version: version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
}

func (i Info) String() string {
	return fmt.Sprintf("shellprobe v%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}
