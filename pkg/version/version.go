// Package version reports the graft build version. Release builds set the
// variables with -ldflags "-X github.com/Sumatoshi-tech/graft/pkg/version.Version=...";
// other builds fall back to the module build info.
package version

import (
	"fmt"
	"runtime/debug"
)

const unknown = "unknown"

// Build information set by ldflags.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills Version, Commit and Date from the embedded build
// info when ldflags did not set them.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String returns "graft <version> (commit: <commit>, built: <date>)".
func String() string {
	return fmt.Sprintf("graft %s (commit: %s, built: %s)", Version, Commit, Date)
}
