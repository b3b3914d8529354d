package postgres

import (
	"strings"
	"testing"
)

func TestApplicationName(t *testing.T) {
	t.Parallel()

	if got := applicationName("abc"); got != "bridge-import/abc" {
		t.Errorf("applicationName = %q", got)
	}

	long := applicationName(strings.Repeat("x", 100))
	if len(long) != 63 {
		t.Errorf("applicationName length = %d, want 63", len(long))
	}
}
