package buildinfo_test

import (
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/buildinfo"
)

func TestVersionDefaultsToDev(t *testing.T) {
	if buildinfo.Version() != "dev" {
		t.Errorf("Version() = %q, want %q outside a release build", buildinfo.Version(), "dev")
	}
}

func TestHostnameIsNonEmpty(t *testing.T) {
	if buildinfo.Hostname() == "" {
		t.Error("Hostname() returned empty string")
	}
}
