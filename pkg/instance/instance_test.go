package instance

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestGetIDPrefersOverride(t *testing.T) {
	t.Setenv(EnvInstanceID, " cron-worker-7 ")
	if got := GetID(); got != "cron-worker-7" {
		t.Fatalf("expected override, got %q", got)
	}
}

func TestGetIDFallsBackToHostAndPID(t *testing.T) {
	t.Setenv(EnvInstanceID, "")
	got := GetID()
	if !strings.HasSuffix(got, fmt.Sprintf("-%d", os.Getpid())) {
		t.Fatalf("expected pid suffix, got %q", got)
	}
}
