package entity

import "math"

// Solution is a complete VRP solution for one weekday (spec.md §3).
type Solution struct {
	Routes               []Route
	Day                  Weekday
	UnservedCustomerIDs  []string

	TotalDistanceKM   float64
	TotalDurationHour float64
	TotalCost         float64
	NumVehiclesUsed   int

	IsFeasible           bool
	ConstraintViolations []string
}

// NewSolution builds a Solution for day with IsFeasible defaulted to true,
// matching the Python dataclass default.
func NewSolution(day Weekday) *Solution {
	return &Solution{Day: day, IsFeasible: true}
}

// ComputeMetrics recomputes NumVehiclesUsed/TotalDistanceKM/TotalDurationHour/
// TotalCost from Routes, ported from Solution.compute_metrics.
func (s *Solution) ComputeMetrics() {
	s.NumVehiclesUsed = len(s.Routes)
	var distance, durationMin, cost float64
	for _, r := range s.Routes {
		distance += r.TotalDistanceKM
		durationMin += r.TotalDurationMin
		cost += r.Cost()
	}
	s.TotalDistanceKM = distance
	s.TotalDurationHour = durationMin / 60
	s.TotalCost = cost
}

// AverageUtilization returns the mean per-route utilization, 0 if no routes.
func (s Solution) AverageUtilization() float64 {
	if len(s.Routes) == 0 {
		return 0
	}
	var sum float64
	for _, r := range s.Routes {
		sum += r.Utilization()
	}
	return sum / float64(len(s.Routes))
}

// TotalStoresServed returns the number of stops across all routes.
func (s Solution) TotalStoresServed() int {
	total := 0
	for _, r := range s.Routes {
		total += len(r.Stops)
	}
	return total
}

// UtilizationStats is the supplemented min/max/avg/std diagnostic recovered
// from the original's get_utilization_stats (see SPEC_FULL.md).
type UtilizationStats struct {
	Min, Max, Avg, Std float64
}

// UtilizationStats computes per-route utilization statistics.
func (s Solution) UtilizationStats() UtilizationStats {
	if len(s.Routes) == 0 {
		return UtilizationStats{}
	}
	utils := make([]float64, len(s.Routes))
	min, max, sum := math.Inf(1), math.Inf(-1), 0.0
	for i, r := range s.Routes {
		u := r.Utilization()
		utils[i] = u
		if u < min {
			min = u
		}
		if u > max {
			max = u
		}
		sum += u
	}
	avg := sum / float64(len(utils))
	var variance float64
	for _, u := range utils {
		variance += (u - avg) * (u - avg)
	}
	variance /= float64(len(utils))
	return UtilizationStats{Min: min, Max: max, Avg: avg, Std: math.Sqrt(variance)}
}

// RouteSummary is the per-route view emitted in Solution.ToMap (spec.md §6).
type RouteSummary struct {
	VehicleID   string
	VehicleName string
	Stops       []string
	DistanceKM  float64
	DurationMin float64
	LoadM3      float64
	CapacityM3  float64
	Utilization float64
}

// ToMap renders the Solution into the wire shape documented in spec.md §6.
// Serialization itself (JSON/CSV encoding) is an excluded external
// collaborator concern; ToMap only builds the plain-data intermediate an
// encoder would consume.
func (s Solution) ToMap() map[string]any {
	routes := make([]RouteSummary, len(s.Routes))
	for i, r := range s.Routes {
		routes[i] = RouteSummary{
			VehicleID:   r.Vehicle.ID,
			VehicleName: r.Vehicle.Name,
			Stops:       r.StoreIDs(),
			DistanceKM:  round2(r.TotalDistanceKM),
			DurationMin: round2(r.TotalDurationMin),
			LoadM3:      round2(r.TotalLoadM3),
			CapacityM3:  r.Vehicle.CapacityM3,
			Utilization: round2(r.Utilization()),
		}
	}
	return map[string]any{
		"day":                   string(s.Day),
		"is_feasible":           s.IsFeasible,
		"num_vehicles_used":     s.NumVehiclesUsed,
		"total_distance_km":     round2(s.TotalDistanceKM),
		"total_duration_hours":  round2(s.TotalDurationHour),
		"total_cost":            round2(s.TotalCost),
		"average_utilization":   round2(s.AverageUtilization()),
		"stores_served":         s.TotalStoresServed(),
		"unserved_stores":       s.UnservedCustomerIDs,
		"constraint_violations": s.ConstraintViolations,
		"routes":                routes,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MultiDaySolution maps weekday -> Solution plus consolidation statistics
// (spec.md §3).
type MultiDaySolution struct {
	DailySolutions     map[Weekday]*Solution
	ConsolidationStats ConsolidationStats

	// BatchID tags this weekly run for log correlation across the
	// goroutines that solve each day concurrently (spec.md §5). Left
	// empty by NewMultiDaySolution; callers that want traceability set it
	// (the consolidation planner stamps a UUID here).
	BatchID string
}

// ConsolidationStats is the statistics record emitted by the weekly
// consolidation planner (spec.md §4.5 step 8).
type ConsolidationStats struct {
	TotalStores            int
	StoresAssigned         int
	ConsolidationRatePercent float64
	BaselineTrips           int
	OptimizedTrips          int
	TripReductionPercent    float64
	StoresPerDay            map[Weekday]int
}

// NewMultiDaySolution returns an empty MultiDaySolution.
func NewMultiDaySolution() *MultiDaySolution {
	return &MultiDaySolution{DailySolutions: map[Weekday]*Solution{}}
}

// AddDaySolution records sol under day.
func (m *MultiDaySolution) AddDaySolution(day Weekday, sol *Solution) {
	m.DailySolutions[day] = sol
}

// WeeklyTotals aggregates distance/vehicles/cost/stores across all days.
type WeeklyTotals struct {
	TotalDistanceKM    float64
	TotalVehiclesUsed  int
	TotalCost          float64
	TotalStoresServed  int
}

// ComputeWeeklyTotals sums per-day metrics, ported from
// MultiDaySolution.compute_weekly_metrics.
func (m *MultiDaySolution) ComputeWeeklyTotals() WeeklyTotals {
	var totals WeeklyTotals
	for _, sol := range m.DailySolutions {
		totals.TotalDistanceKM += sol.TotalDistanceKM
		totals.TotalVehiclesUsed += sol.NumVehiclesUsed
		totals.TotalCost += sol.TotalCost
		totals.TotalStoresServed += sol.TotalStoresServed()
	}
	return totals
}
