package feasibility

import "github.com/routeplan/cvrptw/entity"

// InsertionCost returns the marginal distance (km) of splicing customer into
// route at position, per spec.md §4.1's insertion_cost: O(1), using only
// the distance matrix. position < 0 or position >= len(route.Stops) is
// treated as appending to the tail.
func InsertionCost(route entity.Route, customer entity.Customer, position int, distanceMx entity.Matrix) (float64, error) {
	n := len(route.Stops)

	if n == 0 {
		d, err := distanceMx.MustGet(entity.DepotID, customer.ID)
		if err != nil {
			return 0, err
		}
		back, err := distanceMx.MustGet(customer.ID, entity.DepotID)
		if err != nil {
			return 0, err
		}
		return d + back, nil
	}

	if position == 0 {
		head := route.Stops[0].Customer.ID
		depotHead, err := distanceMx.MustGet(entity.DepotID, head)
		if err != nil {
			return 0, err
		}
		depotNew, err := distanceMx.MustGet(entity.DepotID, customer.ID)
		if err != nil {
			return 0, err
		}
		newHead, err := distanceMx.MustGet(customer.ID, head)
		if err != nil {
			return 0, err
		}
		return depotNew + newHead - depotHead, nil
	}

	if position < 0 || position >= n {
		tail := route.Stops[n-1].Customer.ID
		tailDepot, err := distanceMx.MustGet(tail, entity.DepotID)
		if err != nil {
			return 0, err
		}
		tailNew, err := distanceMx.MustGet(tail, customer.ID)
		if err != nil {
			return 0, err
		}
		newDepot, err := distanceMx.MustGet(customer.ID, entity.DepotID)
		if err != nil {
			return 0, err
		}
		return tailNew + newDepot - tailDepot, nil
	}

	prev := route.Stops[position-1].Customer.ID
	next := route.Stops[position].Customer.ID
	prevNext, err := distanceMx.MustGet(prev, next)
	if err != nil {
		return 0, err
	}
	prevNew, err := distanceMx.MustGet(prev, customer.ID)
	if err != nil {
		return 0, err
	}
	newNext, err := distanceMx.MustGet(customer.ID, next)
	if err != nil {
		return 0, err
	}
	return prevNew + newNext - prevNext, nil
}

// CanAdd is the fast preflight of spec.md §4.1: capacity headroom, fleet
// compatibility, day not excluded, and the existence of some time window
// for day. It does not run the full schedule.
func CanAdd(route entity.Route, customer entity.Customer, day entity.Weekday) (bool, string) {
	if !route.Vehicle.CanFitDemand(route.TotalLoadM3, customer.DemandM3) {
		return false, "capacity exceeded"
	}
	if !route.Vehicle.CanServe(customer.ID) {
		return false, "vehicle cannot serve customer"
	}
	if !customer.IsDayAllowed(day) {
		return false, "day excluded for customer"
	}
	if _, ok := customer.TimeWindowForDay(day); !ok {
		return false, "no time window for day"
	}
	return true, ""
}
