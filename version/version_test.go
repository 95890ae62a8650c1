package version

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func stamp(t *testing.T, version, commit, built string) {
	t.Helper()
	v, c, b := Version, Commit, BuildTime
	Version, Commit, BuildTime = version, commit, built
	t.Cleanup(func() { Version, Commit, BuildTime = v, c, b })
}

func TestGet_Stamped(t *testing.T) {
	stamp(t, "v1.2.0", "abcdef0123", "2026-01-02T03:04:05Z")
	stubBuildInfo(t, &debug.BuildInfo{GoVersion: "go1.26.0", Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffffffffff"},
		{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
	}}, true)

	info := Get()
	if info.Version != "v1.2.0" || info.Commit != "abcdef0" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("stamped values should win, got %+v", info)
	}
	if info.GoVersion != "go1.26.0" {
		t.Errorf("unexpected go version %q", info.GoVersion)
	}
}

func TestGet_FromVCS(t *testing.T) {
	stamp(t, "dev", "", "")
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	info := Get()
	if info.Version != "dev" || info.Commit != "1234567" || !info.Dirty {
		t.Errorf("unexpected info %+v", info)
	}
	if got := info.Short(); got != "dev-1234567-dirty" {
		t.Errorf("unexpected short version %q", got)
	}
}

func TestGet_NoBuildInfo(t *testing.T) {
	stamp(t, "dev", "", "")
	stubBuildInfo(t, nil, false)
	if got := Get().String(); got != "socialauth dev" {
		t.Errorf("unexpected string %q", got)
	}
}
