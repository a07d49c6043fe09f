package runtime

import (
	goruntime "runtime"
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "1.2.3"
	got := VersionString()

	if !strings.HasPrefix(got, "fgt-export version 1.2.3 (") {
		t.Errorf("VersionString() = %q, want injected version", got)
	}
	if !strings.HasSuffix(got, goruntime.Version()) {
		t.Errorf("VersionString() = %q, want Go version suffix", got)
	}
}
