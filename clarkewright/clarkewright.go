// Package clarkewright implements the savings-based initial-solution
// constructor of spec.md §4.2: one seed route per customer, a descending
// savings list restricted to same-vehicle-id pairs, a stable merge loop,
// and a capped 2-opt polish.
package clarkewright

import (
	"sort"

	"github.com/routeplan/cvrptw/entity"
	"github.com/routeplan/cvrptw/feasibility"
)

const maxTwoOptPasses = 100

// Result is the constructor's output: a feasible route set plus any
// customers that could not be placed in any route.
type Result struct {
	Routes   []entity.Route
	Unserved []string
}

type savingsPair struct {
	i, j   int
	amount float64
}

// ToSolution renders a Result as a Solution for day, the shape every
// single-day solver returns, so callers (e.g. the consolidation planner)
// can treat Clarke-Wright interchangeably with cproute/alns.
func (r Result) ToSolution(day entity.Weekday) *entity.Solution {
	sol := entity.NewSolution(day)
	sol.Routes = r.Routes
	sol.UnservedCustomerIDs = r.Unserved
	sol.ComputeMetrics()
	sol.IsFeasible = len(r.Unserved) == 0
	return sol
}

// Solve builds an initial solution for day from customers using vehicles,
// per spec.md §4.2.
func Solve(customers []entity.Customer, vehicles []entity.Vehicle, day entity.Weekday, distanceMx, timeMx entity.Matrix) (Result, error) {
	routes, unserved, err := seed(customers, vehicles, day, distanceMx, timeMx)
	if err != nil {
		return Result{}, err
	}

	pairs, err := savingsList(routes, distanceMx)
	if err != nil {
		return Result{}, err
	}

	routes, err = mergeLoop(routes, pairs, distanceMx, timeMx)
	if err != nil {
		return Result{}, err
	}

	for i := range routes {
		if err := twoOptPolish(&routes[i], distanceMx, timeMx); err != nil {
			return Result{}, err
		}
	}

	// Drop any route left with zero stops after merging (its customer, if
	// any, was absorbed elsewhere); routes are dense and ordered for
	// deterministic output.
	final := routes[:0]
	for _, r := range routes {
		if len(r.Stops) > 0 {
			final = append(final, r)
		}
	}

	return Result{Routes: final, Unserved: unserved}, nil
}

// seed creates one route per customer, assigned to the first compatible
// vehicle by fleet rules and single-customer capacity. A customer with no
// compatible vehicle is set aside as unserved.
func seed(customers []entity.Customer, vehicles []entity.Vehicle, day entity.Weekday, distanceMx, timeMx entity.Matrix) ([]entity.Route, []string, error) {
	var routes []entity.Route
	var unserved []string

	for _, c := range customers {
		placed := false
		for _, v := range vehicles {
			if !v.CanServe(c.ID) || !v.CanFitDemand(0, c.DemandM3) {
				continue
			}
			route := entity.Route{Vehicle: v, Day: day}
			route.AddStop(c, -1)
			if _, _, err := feasibility.Validate(&route, distanceMx, timeMx); err != nil {
				return nil, nil, err
			}
			routes = append(routes, route)
			placed = true
			break
		}
		if !placed {
			unserved = append(unserved, c.ID)
		}
	}
	return routes, unserved, nil
}

// savingsList computes s(i,j) = d(depot,tail_i) + d(depot,head_j) -
// d(tail_i,head_j) for every ordered pair of distinct seed routes sharing a
// vehicle id, keeping only strictly positive savings, sorted descending
// (ties broken by stable iteration order).
func savingsList(routes []entity.Route, distanceMx entity.Matrix) ([]savingsPair, error) {
	var pairs []savingsPair
	for i := range routes {
		for j := range routes {
			if i == j {
				continue
			}
			if routes[i].Vehicle.ID != routes[j].Vehicle.ID {
				continue
			}
			tailI := routes[i].Stops[len(routes[i].Stops)-1].Customer.ID
			headJ := routes[j].Stops[0].Customer.ID

			depotTail, err := distanceMx.MustGet(entity.DepotID, tailI)
			if err != nil {
				return nil, err
			}
			depotHead, err := distanceMx.MustGet(entity.DepotID, headJ)
			if err != nil {
				return nil, err
			}
			tailHead, err := distanceMx.MustGet(tailI, headJ)
			if err != nil {
				return nil, err
			}

			amount := depotTail + depotHead - tailHead
			if amount > 0 {
				pairs = append(pairs, savingsPair{i: i, j: j, amount: amount})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].amount > pairs[b].amount
	})
	return pairs, nil
}

// mergeLoop walks the savings list in order, merging route j onto the tail
// of route i whenever both still exist and the concatenated candidate
// passes full validation. Retired routes are zeroed out in place so later
// indices keep referring to a stable slice.
func mergeLoop(routes []entity.Route, pairs []savingsPair, distanceMx, timeMx entity.Matrix) ([]entity.Route, error) {
	alive := make([]bool, len(routes))
	for i := range routes {
		alive[i] = true
	}

	for _, p := range pairs {
		if !alive[p.i] || !alive[p.j] {
			continue
		}
		candidate := routes[p.i]
		candidate.Stops = append(append([]entity.RouteStop{}, candidate.Stops...), routes[p.j].Stops...)
		for k := range candidate.Stops {
			candidate.Stops[k].Sequence = k
		}
		candidate.TotalLoadM3 = routes[p.i].TotalLoadM3 + routes[p.j].TotalLoadM3

		feasible, _, err := feasibility.Validate(&candidate, distanceMx, timeMx)
		if err != nil {
			return nil, err
		}
		if !feasible {
			continue
		}

		routes[p.i] = candidate
		routes[p.j] = entity.Route{}
		alive[p.j] = false
	}
	return routes, nil
}

// twoOptPolish repeatedly searches for a segment reversal that strictly
// lowers total distance and remains feasible, accepting the first
// improving move found each pass, capped at maxTwoOptPasses passes.
func twoOptPolish(route *entity.Route, distanceMx, timeMx entity.Matrix) error {
	for pass := 0; pass < maxTwoOptPasses; pass++ {
		improved := false
		n := len(route.Stops)
		for i := 0; i < n-1 && !improved; i++ {
			for j := i + 1; j < n && !improved; j++ {
				candidate := route.Clone()
				reverse(candidate.Stops, i, j)

				before := route.TotalDistanceKM
				feasible, _, err := feasibility.Validate(&candidate, distanceMx, timeMx)
				if err != nil {
					return err
				}
				if feasible && candidate.TotalDistanceKM < before {
					*route = candidate
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return nil
}

func reverse(stops []entity.RouteStop, i, j int) {
	for i < j {
		stops[i], stops[j] = stops[j], stops[i]
		i++
		j--
	}
	for k := range stops {
		stops[k].Sequence = k
	}
}
