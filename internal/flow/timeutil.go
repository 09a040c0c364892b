package flow

import (
	"fmt"
	"log/slog"
	"time"
)

// ReferenceTimezone is where HH:MM reminder times are interpreted.
const ReferenceTimezone = "Africa/Nairobi"

// DefaultLocation loads the reference timezone, falling back to UTC if
// the zone database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(ReferenceTimezone)
	if err != nil {
		slog.Warn("Failed to load reference timezone, using UTC", "tz", ReferenceTimezone, "error", err)
		return time.UTC
	}
	return loc
}

// NextOccurrence returns the next future instant matching an HH:MM time
// of day: today if the time has not passed yet, otherwise tomorrow.
func NextOccurrence(hhmm string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format %q: %w", hhmm, err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}
