package version

import "testing"

func TestInfoWithoutCommit(t *testing.T) {
	if got := Info(); got != Version {
		t.Errorf("Expected bare version %q, got %q", Version, got)
	}
}

func TestInfoWithCommit(t *testing.T) {
	orig := Commit
	defer func() { Commit = orig }()

	Commit = "0123456789abcdef"
	want := Version + " (0123456)"
	if got := Info(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
