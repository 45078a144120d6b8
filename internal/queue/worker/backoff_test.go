package worker

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	jitter := 250 * time.Millisecond

	tests := []struct {
		attempt int
		min     time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 16 * time.Second},
	}

	for _, tc := range tests {
		got := ExponentialBackoff(tc.attempt)

		if got < tc.min || got > tc.min+jitter {
			t.Errorf("attempt %d: got %v, want within [%v, %v]", tc.attempt, got, tc.min, tc.min+jitter)
		}
	}

	// large attempts cap at 5 minutes (plus jitter)
	if got := ExponentialBackoff(30); got > 5*time.Minute+jitter {
		t.Errorf("backoff not capped: %v", got)
	}
}
