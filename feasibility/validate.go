package feasibility

import (
	"fmt"
	"time"

	"github.com/routeplan/cvrptw/entity"
)

// missingTimeEstimateMinutes is the documented fallback applied when the
// time matrix omits an (from, to) edge (spec.md §4.1 rule 2). Distance
// entries receive no such fallback: a missing distance edge is an input
// error (spec.md §9), surfaced via MustGet below.
const missingTimeEstimateMinutes = 5.0

// Validate runs the six ordered checks of spec.md §4.1's validate_route
// against route, writing back computed arrival/departure/duration/distance
// into route as it goes — validation doubles as the scheduling pass.
// Violations accumulate rather than short-circuit, since callers want every
// reason a route is infeasible. A non-nil error means the route references
// a distance-matrix edge that distanceMx does not carry (InputError,
// spec.md §7): that condition halts the solve before a Solution is built.
func Validate(route *entity.Route, distanceMx, timeMx entity.Matrix) (feasible bool, violations []string, err error) {
	if route.DepotDeparture.IsZero() {
		route.DepotDeparture = route.Vehicle.StartTime
	}

	// 1. Capacity.
	var totalLoad float64
	for _, s := range route.Stops {
		totalLoad += s.Customer.DemandM3
	}
	if totalLoad > route.Vehicle.CapacityM3 {
		violations = append(violations, fmt.Sprintf(
			"capacity exceeded: load %.2f > capacity %.2f", totalLoad, route.Vehicle.CapacityM3))
	}

	prevID := entity.DepotID
	current := route.DepotDeparture
	var cumLoad, totalDistance float64

	for i := range route.Stops {
		stop := &route.Stops[i]
		custID := stop.Customer.ID

		travelMin, ok := timeMx.Get(prevID, custID)
		if !ok {
			travelMin = missingTimeEstimateMinutes
		}
		dist, derr := distanceMx.MustGet(prevID, custID)
		if derr != nil {
			return false, nil, derr
		}
		totalDistance += dist

		// 2. Time windows and wait-logic.
		arrival := current.Add(time.Duration(travelMin * float64(time.Minute)))
		if tw, ok := stop.Customer.TimeWindowForDay(route.Day); ok {
			if arrival.Before(tw.Earliest) {
				arrival = tw.Earliest
			} else if arrival.After(tw.Latest) {
				violations = append(violations, fmt.Sprintf(
					"window violated at stop %s: arrival %s after latest %s",
					custID, arrival.Format("15:04"), tw.Latest.Format("15:04")))
			}
		}
		departure := arrival.Add(time.Duration(stop.Customer.ServiceMinutes) * time.Minute)

		stop.LoadBefore = cumLoad
		cumLoad += stop.Customer.DemandM3
		stop.LoadAfter = cumLoad
		stop.Arrival = arrival
		stop.Departure = departure
		stop.Sequence = i

		// 3. Forbidden intervals.
		if stop.Customer.HasForbiddenConflict(arrival) {
			violations = append(violations, fmt.Sprintf(
				"blackout conflict at stop %s: arrival %s", custID, arrival.Format("15:04")))
		}

		// 4. Fleet compatibility.
		if !route.Vehicle.CanServe(custID) {
			violations = append(violations, fmt.Sprintf(
				"vehicle %s cannot serve customer %s", route.Vehicle.ID, custID))
		}

		// 5. Day exclusion.
		if route.Day != "" && !stop.Customer.IsDayAllowed(route.Day) {
			violations = append(violations, fmt.Sprintf(
				"customer %s excludes day %s", custID, route.Day))
		}

		prevID = custID
		current = departure
	}

	returnTravelMin, ok := timeMx.Get(prevID, entity.DepotID)
	if !ok {
		returnTravelMin = missingTimeEstimateMinutes
	}
	returnDist, derr := distanceMx.MustGet(prevID, entity.DepotID)
	if derr != nil {
		return false, nil, derr
	}
	totalDistance += returnDist

	route.DepotReturn = current.Add(time.Duration(returnTravelMin * float64(time.Minute)))
	route.TotalDurationMin = route.DepotReturn.Sub(route.DepotDeparture).Minutes()
	route.TotalDistanceKM = totalDistance
	route.TotalLoadM3 = cumLoad

	// 6. Maximum duration.
	if route.TotalDurationMin > route.Vehicle.MaxRouteDurationMinutes() {
		violations = append(violations, fmt.Sprintf(
			"duration %.1fmin exceeds cap %.1fmin", route.TotalDurationMin, route.Vehicle.MaxRouteDurationMinutes()))
	}

	return len(violations) == 0, violations, nil
}
