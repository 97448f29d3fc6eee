package version

import "testing"

func TestFull(t *testing.T) {
	origCommit, origDate := Commit, BuildDate
	defer func() { Commit, BuildDate = origCommit, origDate }()

	Commit, BuildDate = "", ""
	if got := Full(); got != "cig version "+Version {
		t.Errorf("Full() = %q", got)
	}

	Commit, BuildDate = "abcdef0123456789", "2026-08-30"
	want := "cig version " + Version + " (abcdef0), built 2026-08-30"
	if got := Full(); got != want {
		t.Errorf("Full() = %q, want %q", got, want)
	}
}
