package tally

import (
	"errors"
	"fmt"
	"time"

	"github.com/dholab/gitmilk/pkg/detection"
)

// ErrNegativeWindow is returned when days_previous is below zero.
var ErrNegativeWindow = errors.New("days_previous must be >= 0")

// Clock supplies the current time for cutoff computation.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
//
//nolint:gochecknoglobals // Stateless default.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Cutoff returns now minus days whole days.
//
// Purchase dates are calendar dates stored at midnight UTC, so now is first
// reduced to its wall-clock reading in its own location and relabelled UTC.
// A clock at 20:00 in Chicago yields a cutoff on the Chicago calendar day,
// not on the following UTC day.
func Cutoff(now time.Time, days int) (time.Time, error) {
	if days < 0 {
		return time.Time{}, fmt.Errorf("%w: got %d", ErrNegativeWindow, days)
	}
	wall := time.Date(now.Year(), now.Month(), now.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	return wall.AddDate(0, 0, -days), nil
}

// FilterAfter returns the records purchased strictly after cutoff.
// The input slice is not modified.
func FilterAfter(records []detection.Record, cutoff time.Time) []detection.Record {
	kept := make([]detection.Record, 0, len(records))
	for _, r := range records {
		if r.DatePurchased.After(cutoff) {
			kept = append(kept, r)
		}
	}
	return kept
}
