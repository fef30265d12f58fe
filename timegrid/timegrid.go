// Package timegrid provides the time bookkeeping shared by the analysis
// engines: observation windows sampled at a fixed cadence, UTC calendar-day
// bucketing for per-day aggregation, and coarse bucket keys for result
// caching.
package timegrid

import (
	"fmt"
	"time"
)

// DefaultStep is the sampling cadence for visibility scans.
const DefaultStep = time.Minute

// DefaultCacheBucket is the coarse time-bucket width used in result-cache
// keys, so repeated evaluations within the bucket reuse cached results.
const DefaultCacheBucket = 5 * time.Minute

const dayFormat = "2006-01-02"

// Window is an inclusive observation window.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window, swapping inverted bounds rather than failing.
func NewWindow(start, end time.Time) Window {
	if end.Before(start) {
		start, end = end, start
	}
	return Window{Start: start, End: end}
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Steps returns the number of samples a scan at the given cadence takes,
// counting both endpoints. A non-positive step falls back to DefaultStep.
func (w Window) Steps(step time.Duration) int {
	if step <= 0 {
		step = DefaultStep
	}
	if w.End.Before(w.Start) {
		return 0
	}
	return int(w.End.Sub(w.Start)/step) + 1
}

// Days lists the UTC calendar-day keys the window touches, in order. The
// start day is always included; later days are included while they begin
// strictly before the window end, so a window ending exactly at midnight
// does not pick up the following day.
func (w Window) Days() []string {
	start := w.Start.UTC()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	days := []string{day.Format(dayFormat)}
	for day = day.AddDate(0, 0, 1); day.Before(w.End.UTC()); day = day.AddDate(0, 0, 1) {
		days = append(days, day.Format(dayFormat))
	}
	return days
}

// Contains reports whether t falls inside the window, inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DayKey returns the UTC calendar-day bucket for t.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

// BucketKey builds a cache key from an entity id and a coarse time bucket.
// A non-positive width falls back to DefaultCacheBucket.
func BucketKey(entityID string, t time.Time, width time.Duration) string {
	if width <= 0 {
		width = DefaultCacheBucket
	}
	return fmt.Sprintf("%s@%d", entityID, t.UTC().Truncate(width).Unix())
}
