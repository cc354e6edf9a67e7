package consolidation

import (
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/routeplan/cvrptw/entity"
	"github.com/routeplan/cvrptw/internal/telemetry"
)

// DefaultConsolidationThreshold is the demand/max-capacity fraction (as a
// percent) above which a customer is treated as a large-single delivery
// rather than a consolidation candidate (spec.md §4.5 step 3).
const DefaultConsolidationThreshold = 70.0

// DaySolver routes one day's customers with a fixed fleet. Every solver in
// this module returns or adapts to *entity.Solution: clarkewright.Result has
// a ToSolution helper, while cproute.Solve and alns.Solve take additional
// Options and so are wrapped in a closure at the call site, e.g.:
//
//	solver := func(c []entity.Customer, v []entity.Vehicle, d entity.Weekday, dm, tm entity.Matrix) (*entity.Solution, error) {
//		res, err := clarkewright.Solve(c, v, d, dm, tm)
//		if err != nil {
//			return nil, err
//		}
//		return res.ToSolution(d), nil
//	}
type DaySolver func(customers []entity.Customer, vehicles []entity.Vehicle, day entity.Weekday, distanceMx, timeMx entity.Matrix) (*entity.Solution, error)

// Options configures a Planner. A zero-valued Threshold selects
// DefaultConsolidationThreshold.
type Options struct {
	Threshold float64
	// Logger receives the batch id and per-day dispatch milestones. A nil
	// Logger defaults to a no-op (logging is opt-in).
	Logger *telemetry.Logger
}

// Planner is the weekly consolidation planner of spec.md §4.5: it decides
// which weekday each customer is served on, then delegates per-day routing
// to Solver.
type Planner struct {
	Customers  []entity.Customer
	Vehicles   []entity.Vehicle
	DistanceMx entity.Matrix
	TimeMx     entity.Matrix
	Solver     DaySolver
	Threshold  float64
	Logger     *telemetry.Logger
}

// NewPlanner builds a Planner, applying Options defaults.
func NewPlanner(customers []entity.Customer, vehicles []entity.Vehicle, distanceMx, timeMx entity.Matrix, solver DaySolver, opts Options) *Planner {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultConsolidationThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.NewNoop()
	}
	return &Planner{
		Customers:  customers,
		Vehicles:   vehicles,
		DistanceMx: distanceMx,
		TimeMx:     timeMx,
		Solver:     solver,
		Threshold:  threshold,
		Logger:     logger,
	}
}

// OptimizeWeek aggregates weekly demand, assigns each customer to a day, then
// solves every non-empty day. Per-day solves are independent once the
// assignment is fixed (spec.md §5), so they run concurrently, bounded by one
// goroutine per populated weekday (at most five).
func (p *Planner) OptimizeWeek() (*entity.MultiDaySolution, error) {
	batchID := uuid.NewString()
	p.Logger.Info("weekly consolidation started", "batch_id", batchID, "customers", len(p.Customers))

	infos := aggregateWeeklyDemand(p.Customers)
	dayAssignments := assignCustomersToDays(infos, p.Vehicles, p.Threshold, p.DistanceMx)

	type dayResult struct {
		day entity.Weekday
		sol *entity.Solution
		err error
	}

	results := make(chan dayResult, len(entity.Weekdays))
	var wg sync.WaitGroup
	for _, day := range entity.Weekdays {
		custs := dayAssignments[day]
		if len(custs) == 0 {
			continue
		}
		wg.Add(1)
		go func(day entity.Weekday, custs []entity.Customer) {
			defer wg.Done()
			p.Logger.Debug("day solve dispatched", "batch_id", batchID, "day", string(day), "customers", len(custs))
			sol, err := p.Solver(custs, p.Vehicles, day, p.DistanceMx, p.TimeMx)
			results <- dayResult{day: day, sol: sol, err: err}
		}(day, custs)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	multiDay := entity.NewMultiDaySolution()
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		multiDay.AddDaySolution(r.day, r.sol)
	}
	if firstErr != nil {
		p.Logger.Error("weekly consolidation failed", "batch_id", batchID, "error", firstErr)
		return nil, firstErr
	}

	multiDay.BatchID = batchID
	multiDay.ConsolidationStats = calculateConsolidationStats(dayAssignments, infos)
	p.Logger.Info("weekly consolidation finished", "batch_id", batchID, "days_used", len(multiDay.DailySolutions))
	return multiDay, nil
}

// demandInfo is the per-customer aggregate computed in step 1 of spec.md
// §4.5 (vrp_solver's _aggregate_weekly_demand).
type demandInfo struct {
	customer      entity.Customer
	totalDemand   float64
	availableDays []entity.Weekday
	windows       map[entity.Weekday]entity.TimeWindow
}

func aggregateWeeklyDemand(customers []entity.Customer) []demandInfo {
	infos := make([]demandInfo, len(customers))
	for i, c := range customers {
		available := c.AvailableDays()
		windows := make(map[entity.Weekday]entity.TimeWindow, len(available))
		for _, day := range available {
			if tw, ok := c.TimeWindowForDay(day); ok {
				windows[day] = tw
			}
		}
		infos[i] = demandInfo{customer: c, totalDemand: c.DemandM3, availableDays: available, windows: windows}
	}
	return infos
}

// assignCustomersToDays implements spec.md §4.5 steps 2-6: sort by demand
// descending, classify each customer as large-single or consolidation, and
// score candidate days accordingly.
func assignCustomersToDays(infos []demandInfo, vehicles []entity.Vehicle, threshold float64, distanceMx entity.Matrix) map[entity.Weekday][]entity.Customer {
	assignments := make(map[entity.Weekday][]entity.Customer, len(entity.Weekdays))
	loads := make(map[entity.Weekday]float64, len(entity.Weekdays))
	for _, day := range entity.Weekdays {
		assignments[day] = nil
		loads[day] = 0
	}

	sorted := make([]demandInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].totalDemand > sorted[j].totalDemand })

	var maxCapacity float64
	for _, v := range vehicles {
		if v.CapacityM3 > maxCapacity {
			maxCapacity = v.CapacityM3
		}
	}
	if maxCapacity == 0 {
		return assignments
	}

	for _, info := range sorted {
		if len(info.availableDays) == 0 {
			continue
		}
		demandPercentage := (info.totalDemand / maxCapacity) * 100

		var day entity.Weekday
		if demandPercentage >= threshold {
			day = findBestSingleDay(info, loads)
		} else {
			day = findBestConsolidationDay(info, loads, assignments, maxCapacity, len(vehicles), distanceMx)
		}
		if day == "" {
			continue
		}
		assignments[day] = append(assignments[day], info.customer)
		loads[day] += info.totalDemand
	}
	return assignments
}

// findBestSingleDay implements spec.md §4.5 step 4: score = (1000 -
// day_load) + (500 if preferred) + window_duration_minutes, argmax with
// ties broken by availableDays order (vrp_solver's _find_best_single_day).
func findBestSingleDay(info demandInfo, loads map[entity.Weekday]float64) entity.Weekday {
	best := entity.Weekday("")
	bestScore := math.Inf(-1)
	for _, day := range info.availableDays {
		score := 1000 - loads[day]
		if _, ok := info.customer.PreferredDays[day]; ok {
			score += 500
		}
		if tw, ok := info.windows[day]; ok {
			score += tw.DurationMinutes()
		}
		if score > bestScore {
			bestScore = score
			best = day
		}
	}
	if best == "" && len(info.availableDays) > 0 {
		best = info.availableDays[0]
	}
	return best
}

// findBestConsolidationDay implements spec.md §4.5 step 5
// (vrp_solver's _find_best_consolidation_day).
func findBestConsolidationDay(info demandInfo, loads map[entity.Weekday]float64, assignments map[entity.Weekday][]entity.Customer, maxCapacity float64, fleetSize int, distanceMx entity.Matrix) entity.Weekday {
	best := entity.Weekday("")
	bestScore := math.Inf(-1)
	fleetCapacity := maxCapacity * float64(fleetSize)

	for _, day := range info.availableDays {
		projectedLoad := loads[day] + info.totalDemand
		if projectedLoad > fleetCapacity {
			continue
		}

		score := 0.0
		if loads[day] > 0 {
			score += 200
		}
		if fleetCapacity > 0 && loads[day]/fleetCapacity < 0.7 {
			score += 300
		}
		if _, ok := info.customer.PreferredDays[day]; ok {
			score += 500
		}
		if sameDay := assignments[day]; len(sameDay) > 0 {
			minDist := math.Inf(1)
			for _, other := range sameDay {
				if d, ok := distanceMx.Get(info.customer.ID, other.ID); ok && d < minDist {
					minDist = d
				}
			}
			if minDist < 10 {
				score += 400
			}
		}
		if score > bestScore {
			bestScore = score
			best = day
		}
	}
	if best == "" && len(info.availableDays) > 0 {
		best = info.availableDays[0]
	}
	return best
}

// calculateConsolidationStats implements spec.md §4.5 step 8
// (vrp_solver's _calculate_consolidation_stats).
func calculateConsolidationStats(assignments map[entity.Weekday][]entity.Customer, infos []demandInfo) entity.ConsolidationStats {
	totalStores := len(infos)
	assigned := 0
	storesPerDay := make(map[entity.Weekday]int, len(assignments))
	for day, custs := range assignments {
		assigned += len(custs)
		storesPerDay[day] = len(custs)
	}

	consolidatedCount := 0
	for _, info := range infos {
		if len(info.availableDays) > 1 {
			consolidatedCount++
		}
	}

	var consolidationRate float64
	if totalStores > 0 {
		consolidationRate = float64(consolidatedCount) / float64(totalStores) * 100
	}

	baselineTrips := totalStores
	optimizedTrips := assigned
	var tripReduction float64
	if baselineTrips > 0 {
		tripReduction = float64(baselineTrips-optimizedTrips) / float64(baselineTrips) * 100
	}

	return entity.ConsolidationStats{
		TotalStores:              totalStores,
		StoresAssigned:           assigned,
		ConsolidationRatePercent: round2(consolidationRate),
		BaselineTrips:            baselineTrips,
		OptimizedTrips:           optimizedTrips,
		TripReductionPercent:     round2(tripReduction),
		StoresPerDay:             storesPerDay,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
