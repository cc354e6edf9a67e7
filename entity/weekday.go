package entity

import "github.com/routeplan/cvrptw/cvrptwerr"

// Weekday is one of the closed-world delivery days. The vocabulary is
// deliberately closed to {Mon..Fri}; weekend extension is a future concern
// (spec.md §9).
type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
)

// Weekdays lists the closed-world day vocabulary in order.
var Weekdays = []Weekday{Mon, Tue, Wed, Thu, Fri}

// Valid reports whether w is one of the five recognized weekdays.
func (w Weekday) Valid() bool {
	switch w {
	case Mon, Tue, Wed, Thu, Fri:
		return true
	default:
		return false
	}
}

// ValidateWeekday returns cvrptwerr.ErrUnknownWeekday if day is not one of
// Mon..Fri.
func ValidateWeekday(day Weekday) error {
	if !day.Valid() {
		return cvrptwerr.ErrUnknownWeekday
	}
	return nil
}
