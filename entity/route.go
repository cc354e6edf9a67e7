package entity

import "time"

// RouteStop references a customer within a route, carrying the scheduled
// arrival/departure and running load, ported from
// vrp_solver/models/route.py's RouteStop dataclass.
type RouteStop struct {
	Customer     Customer
	Arrival      time.Time
	Departure    time.Time
	LoadBefore   float64
	LoadAfter    float64
	Sequence     int
}

// Route is a single vehicle's ordered stop sequence for one weekday
// (spec.md §3).
type Route struct {
	Vehicle Vehicle
	Stops   []RouteStop
	Day     Weekday

	TotalDistanceKM     float64
	TotalDurationMin    float64
	TotalLoadM3         float64

	DepotDeparture time.Time
	DepotReturn    time.Time
}

// AddStop appends store as a new stop, or inserts it at position if
// non-negative, resequencing afterward, and updates TotalLoadM3 — ported
// from Route.add_stop.
func (r *Route) AddStop(c Customer, position int) {
	stop := RouteStop{Customer: c, Sequence: len(r.Stops)}
	if position < 0 || position >= len(r.Stops) {
		r.Stops = append(r.Stops, stop)
	} else {
		r.Stops = append(r.Stops, RouteStop{})
		copy(r.Stops[position+1:], r.Stops[position:])
		r.Stops[position] = stop
	}
	for i := range r.Stops {
		r.Stops[i].Sequence = i
	}
	r.TotalLoadM3 += c.DemandM3
}

// RemoveStop removes the stop for customerID, if present, resequencing
// afterward. Reports whether a stop was removed.
func (r *Route) RemoveStop(customerID string) bool {
	for i, s := range r.Stops {
		if s.Customer.ID == customerID {
			r.TotalLoadM3 -= s.Customer.DemandM3
			r.Stops = append(r.Stops[:i], r.Stops[i+1:]...)
			for j := range r.Stops {
				r.Stops[j].Sequence = j
			}
			return true
		}
	}
	return false
}

// StoreIDs returns the ordered customer ids in this route.
func (r Route) StoreIDs() []string {
	ids := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.Customer.ID
	}
	return ids
}

// Utilization returns 100 * load / capacity (GLOSSARY).
func (r Route) Utilization() float64 {
	if r.Vehicle.CapacityM3 == 0 {
		return 0
	}
	return (r.TotalLoadM3 / r.Vehicle.CapacityM3) * 100
}

// IsValidCapacity reports whether TotalLoadM3 fits within vehicle capacity.
func (r Route) IsValidCapacity() bool {
	return r.TotalLoadM3 <= r.Vehicle.CapacityM3
}

// IsValidDuration reports whether TotalDurationMin fits within the
// vehicle's max route duration.
func (r Route) IsValidDuration() bool {
	return r.TotalDurationMin <= r.Vehicle.MaxRouteDurationMinutes()
}

// Cost implements spec.md §6's authoritative cost formula:
// fixed_cost + cost_per_km * total_distance_km.
func (r Route) Cost() float64 {
	return r.Vehicle.FixedCost + r.Vehicle.CostPerKM*r.TotalDistanceKM
}

// Clone returns a deep-enough copy of r suitable for ALNS destroy/repair:
// the Stops slice is copied (so callers may mutate it independently) while
// Customer/Vehicle values are immutable snapshots already safe to share.
func (r Route) Clone() Route {
	cp := r
	cp.Stops = make([]RouteStop, len(r.Stops))
	copy(cp.Stops, r.Stops)
	return cp
}
