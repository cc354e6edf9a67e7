package entity

import (
	"fmt"
	"time"

	"github.com/routeplan/cvrptw/cvrptwerr"
)

// Customer is a delivery location, ported field-for-field from
// vrp_solver/models/store.py's Store dataclass.
type Customer struct {
	ID       string
	Name     string
	Lat      float64
	Lon      float64
	DemandM3 float64

	TimeWindows  []TimeWindow
	Blackouts    []ForbiddenInterval
	ExcludedDays map[Weekday]struct{}
	PreferredDays map[Weekday]struct{}

	ServiceMinutes int
	Priority       int
}

// Validate checks the Customer invariants from spec.md §3: demand >= 0,
// every window has earliest <= latest, and excluded/preferred days are
// disjoint subsets of {Mon..Fri}.
func (c Customer) Validate() error {
	if c.DemandM3 < 0 {
		return fmt.Errorf("%w: customer %s has negative demand %.2f", cvrptwerr.ErrInputInvalid, c.ID, c.DemandM3)
	}
	for _, tw := range c.TimeWindows {
		if err := tw.Validate(); err != nil {
			return fmt.Errorf("%w: customer %s: %v", cvrptwerr.ErrInputInvalid, c.ID, err)
		}
	}
	for day := range c.ExcludedDays {
		if err := ValidateWeekday(day); err != nil {
			return fmt.Errorf("%w: customer %s excluded_days: %v", cvrptwerr.ErrInputInvalid, c.ID, err)
		}
		if _, dup := c.PreferredDays[day]; dup {
			return fmt.Errorf("%w: customer %s has day %s in both excluded and preferred sets",
				cvrptwerr.ErrInputInvalid, c.ID, day)
		}
	}
	for day := range c.PreferredDays {
		if err := ValidateWeekday(day); err != nil {
			return fmt.Errorf("%w: customer %s preferred_days: %v", cvrptwerr.ErrInputInvalid, c.ID, err)
		}
	}
	return nil
}

// IsDayAllowed reports whether delivery is permitted on day.
func (c Customer) IsDayAllowed(day Weekday) bool {
	_, excluded := c.ExcludedDays[day]
	return !excluded
}

// TimeWindowForDay returns the window tagged for day if present, otherwise
// the first untagged default window, otherwise ok=false.
func (c Customer) TimeWindowForDay(day Weekday) (TimeWindow, bool) {
	for _, tw := range c.TimeWindows {
		if tw.Day != nil && *tw.Day == day {
			return tw, true
		}
	}
	for _, tw := range c.TimeWindows {
		if tw.Day == nil {
			return tw, true
		}
	}
	return TimeWindow{}, false
}

// AvailableDays returns Weekdays \ ExcludedDays, in canonical order.
func (c Customer) AvailableDays() []Weekday {
	days := make([]Weekday, 0, len(Weekdays))
	for _, d := range Weekdays {
		if c.IsDayAllowed(d) {
			days = append(days, d)
		}
	}
	return days
}

// HasForbiddenConflict reports whether t conflicts with any of the
// customer's blackout intervals.
func (c Customer) HasForbiddenConflict(t time.Time) bool {
	for _, f := range c.Blackouts {
		if f.Conflicts(t) {
			return true
		}
	}
	return false
}

// WithDemand returns a shallow copy of c with DemandM3 overridden, for a
// caller that splits weekly demand into a per-day snapshot (spec.md §3
// lifecycle note): the result is a new logical customer snapshot, not a
// mutation of the original. The consolidation planner does not call it; it
// assigns each customer to a day with its full demand.
func (c Customer) WithDemand(demand float64) Customer {
	cp := c
	cp.DemandM3 = demand
	return cp
}

// DefaultServiceMinutes is applied by ingestion code (an excluded
// collaborator) when a customer record omits service_time_minutes;
// documented here since the feasibility kernel assumes it is already
// resolved by the time a Customer reaches this package.
const DefaultServiceMinutes = 60
