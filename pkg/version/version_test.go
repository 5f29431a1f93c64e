package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetBuild(t *testing.T) {
	t.Helper()

	prev := [3]string{Version, Commit, Date}
	Version, Commit, Date = unsetVersion, unsetCommit, unsetDate

	t.Cleanup(func() { Version, Commit, Date = prev[0], prev[1], prev[2] })
}

func TestApplyBuildInfo(t *testing.T) {
	resetBuild(t)

	applyBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-17T06:00:00Z"},
		},
	})

	assert.Equal(t, "shiftreport v1.2.0 (commit: 0123456789ab, built: 2026-10-17T06:00:00Z)", String())
}

func TestApplyBuildInfo_KeepsLinkerValues(t *testing.T) {
	resetBuild(t)

	Version, Commit = "v2.0.0", "abc"

	applyBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}},
	})

	assert.Equal(t, "v2.0.0", Version)
	assert.Equal(t, "abc", Commit)
	assert.Equal(t, unsetDate, Date)
}

func TestApplyBuildInfo_DevelBuild(t *testing.T) {
	resetBuild(t)

	applyBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	assert.Equal(t, unsetVersion, Version)
}
