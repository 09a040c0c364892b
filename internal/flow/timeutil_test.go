package flow

import (
	"testing"
	"time"
)

func TestNextOccurrence(t *testing.T) {
	noon := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		hhmm string
		want time.Time
	}{
		// Later today.
		{"18:30", time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)},
		// Already passed: tomorrow.
		{"08:00", time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)},
		// Exactly now counts as passed.
		{"12:00", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := NextOccurrence(tc.hhmm, noon)
		if err != nil {
			t.Fatalf("NextOccurrence(%q) error: %v", tc.hhmm, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("NextOccurrence(%q) = %v, want %v", tc.hhmm, got, tc.want)
		}
	}
}

func TestNextOccurrenceRejectsGarbage(t *testing.T) {
	if _, err := NextOccurrence("25:99", time.Now()); err == nil {
		t.Error("invalid time accepted")
	}
}

func TestNextOccurrenceAlwaysFuture(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	got, err := NextOccurrence("23:59", now)
	if err != nil {
		t.Fatal(err)
	}
	if !got.After(now) {
		t.Errorf("NextOccurrence returned non-future time %v", got)
	}
}
