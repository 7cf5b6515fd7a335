package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldCommit, oldBuild := Commit, BuildTime
	defer func() { Commit, BuildTime = oldCommit, oldBuild }()

	Commit = "0123456789abcdef"
	BuildTime = "2026-01-01T00:00:00Z"

	got := String()
	if !strings.Contains(got, "commit: 0123456") || strings.Contains(got, "89abcdef") {
		t.Errorf("commit not shortened: %q", got)
	}
	if !strings.HasPrefix(got, "boxforge dev") {
		t.Errorf("unexpected prefix: %q", got)
	}
}
