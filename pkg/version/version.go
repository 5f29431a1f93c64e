// Package version reports the build of the running shiftreport binary.
package version

import (
	"fmt"
	"runtime/debug"
)

const (
	unsetVersion = "dev"
	unsetCommit  = "none"
	unsetDate    = "unknown"

	shortCommitLen = 12
)

// Build fields, set with -ldflags "-X" at release time.
var (
	Version = unsetVersion
	Commit  = unsetCommit
	Date    = unsetDate
)

// InitBinaryVersion fills build fields left unset by the linker from the
// module and VCS information embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	applyBuildInfo(info)
}

func applyBuildInfo(info *debug.BuildInfo) {
	if Version == unsetVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unsetCommit {
				Commit = setting.Value[:min(len(setting.Value), shortCommitLen)]
			}
		case "vcs.time":
			if Date == unsetDate {
				Date = setting.Value
			}
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("shiftreport %s (commit: %s, built: %s)", Version, Commit, Date)
}
