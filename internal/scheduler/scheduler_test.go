package scheduler

import (
	"testing"
	"time"
)

func TestWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 37, 0, 0, time.Local)

	start, end := Window(now, 7)
	if want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local); !start.Equal(want) {
		t.Fatalf("start = %v, want %v", start, want)
	}
	if want := time.Date(2025, 6, 7, 0, 0, 0, 0, time.Local); !end.Equal(want) {
		t.Fatalf("end = %v, want %v", end, want)
	}

	// A nonsensical horizon still yields a single-day window.
	start, end = Window(now, 0)
	if !start.Equal(end) {
		t.Fatalf("horizon 0: start %v != end %v", start, end)
	}
}
