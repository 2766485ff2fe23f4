package discovery_test

import (
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/discovery"
)

func TestNewReturnsNonNilService(t *testing.T) {
	svc := discovery.New("snapdog-test", 8080)
	if svc == nil {
		t.Fatal("New() returned nil")
	}
}
