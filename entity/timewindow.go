package entity

import (
	"fmt"
	"time"

	"github.com/routeplan/cvrptw/cvrptwerr"
)

// clockLayout is the "HH:MM" layout for wall-clock strings. time.Parse with
// it anchors every value on the same reference date (year 0, January 1,
// UTC), so arithmetic (addition of a travel duration, comparisons) behaves
// predictably regardless of which calendar day a solve is dated for.
const clockLayout = "15:04"

// TimeWindow represents an allowed delivery interval within a day, optionally
// tagged to a specific weekday (spec.md §3). A nil Day means "applies to any
// day with no more specific window".
type TimeWindow struct {
	Earliest time.Time
	Latest   time.Time
	Day      *Weekday
}

// NewTimeWindow parses "HH:MM" clock strings into a TimeWindow. day may be
// nil for an untagged, default window.
func NewTimeWindow(earliest, latest string, day *Weekday) (TimeWindow, error) {
	e, err := time.Parse(clockLayout, earliest)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: bad earliest time %q: %v", cvrptwerr.ErrInputInvalid, earliest, err)
	}
	l, err := time.Parse(clockLayout, latest)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: bad latest time %q: %v", cvrptwerr.ErrInputInvalid, latest, err)
	}
	tw := TimeWindow{Earliest: e, Latest: l, Day: day}
	if err := tw.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return tw, nil
}

// ParseClock parses an "HH:MM" wall-clock string onto the same reference
// date used throughout this package, so the result can be compared against
// or added to TimeWindow/ForbiddenInterval bounds directly.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad clock time %q: %v", cvrptwerr.ErrInputInvalid, s, err)
	}
	return t, nil
}

// Validate reports ErrInputInvalid if Earliest is after Latest.
func (tw TimeWindow) Validate() error {
	if tw.Earliest.After(tw.Latest) {
		return fmt.Errorf("%w: time window earliest %s after latest %s",
			cvrptwerr.ErrInputInvalid, tw.Earliest.Format(clockLayout), tw.Latest.Format(clockLayout))
	}
	return nil
}

// Contains reports whether t (wall-clock, any date) falls within [Earliest, Latest].
func (tw TimeWindow) Contains(t time.Time) bool {
	tt := onReferenceDate(t)
	return !tt.Before(tw.Earliest) && !tt.After(tw.Latest)
}

// DurationMinutes returns the window's span in minutes.
func (tw TimeWindow) DurationMinutes() float64 {
	return tw.Latest.Sub(tw.Earliest).Minutes()
}

func (tw TimeWindow) String() string {
	prefix := ""
	if tw.Day != nil {
		prefix = string(*tw.Day) + " "
	}
	return fmt.Sprintf("%s%s-%s", prefix, tw.Earliest.Format(clockLayout), tw.Latest.Format(clockLayout))
}

// ForbiddenInterval is a per-customer wall-clock blackout period during
// which arrival is infeasible, orthogonal to the broader time window
// (spec.md §3, GLOSSARY).
type ForbiddenInterval struct {
	Start  time.Time
	End    time.Time
	Reason string
}

// NewForbiddenInterval parses "HH:MM" clock strings into a ForbiddenInterval.
func NewForbiddenInterval(start, end, reason string) (ForbiddenInterval, error) {
	s, err := time.Parse(clockLayout, start)
	if err != nil {
		return ForbiddenInterval{}, fmt.Errorf("%w: bad start time %q: %v", cvrptwerr.ErrInputInvalid, start, err)
	}
	e, err := time.Parse(clockLayout, end)
	if err != nil {
		return ForbiddenInterval{}, fmt.Errorf("%w: bad end time %q: %v", cvrptwerr.ErrInputInvalid, end, err)
	}
	if reason == "" {
		reason = "Blackout period"
	}
	return ForbiddenInterval{Start: s, End: e, Reason: reason}, nil
}

// Conflicts reports whether t falls inside [Start, End].
func (f ForbiddenInterval) Conflicts(t time.Time) bool {
	tt := onReferenceDate(t)
	return !tt.Before(f.Start) && !tt.After(f.End)
}

func (f ForbiddenInterval) String() string {
	return fmt.Sprintf("Forbidden: %s-%s (%s)", f.Start.Format(clockLayout), f.End.Format(clockLayout), f.Reason)
}

// onReferenceDate strips the calendar date from t so clock comparisons only
// consider hour/minute, matching the Python original's use of datetime.time.
func onReferenceDate(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
