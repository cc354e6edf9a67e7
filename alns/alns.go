// Package alns implements the Adaptive Large Neighborhood Search
// metaheuristic of spec.md §4.4: a ruin-and-recreate loop with roulette
// operator selection, simulated-annealing acceptance, and monotonic
// (undecayed) operator-weight adaptation. Given the same seed, inputs, and
// tie-break behavior, Solve reproduces bit-exactly (spec.md §4.4
// Determinism, §8 invariant 10).
package alns

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/routeplan/cvrptw/clarkewright"
	"github.com/routeplan/cvrptw/entity"
	"github.com/routeplan/cvrptw/feasibility"
	"github.com/routeplan/cvrptw/internal/telemetry"
)

// Defaults and weights from spec.md §4.4 and §6.
const (
	DefaultMaxIterations    = 5000
	DefaultDestructionRate  = 0.3
	DefaultTemperatureStart = 100.0
	DefaultTemperatureEnd   = 1.0
	DefaultCoolingRate      = 0.99
	maxStagnantIterations   = 500

	scoreNewBest  = 10.0
	scoreBetter   = 5.0
	scoreAccepted = 1.0

	costDistanceWeight       = 1.0
	costVehicleWeight        = 1000.0
	costUtilizationWeight    = 500.0
	targetUtilizationPercent = 85.0
)

var destroyOperatorOrder = []string{"random", "worst", "shaw", "time_based"}
var repairOperatorOrder = []string{"greedy", "regret2", "regret3"}

// Options configures a Solve call. Zero-valued fields take the package
// defaults documented above.
type Options struct {
	MaxIterations    int
	DestructionRate  float64
	TemperatureStart float64
	TemperatureEnd   float64
	CoolingRate      float64
	// Seed is a required solver input: the same seed, inputs, and
	// operator tie-break behavior must reproduce a solution bit-exactly.
	Seed int64
	// Logger receives a run-correlation id plus start/stop milestones. A
	// nil Logger defaults to a no-op (logging is opt-in).
	Logger *telemetry.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.DestructionRate <= 0 {
		o.DestructionRate = DefaultDestructionRate
	}
	if o.TemperatureStart <= 0 {
		o.TemperatureStart = DefaultTemperatureStart
	}
	if o.TemperatureEnd <= 0 {
		o.TemperatureEnd = DefaultTemperatureEnd
	}
	if o.CoolingRate <= 0 {
		o.CoolingRate = DefaultCoolingRate
	}
	if o.Logger == nil {
		o.Logger = telemetry.NewNoop()
	}
	return o
}

// Solve runs ALNS for day, seeding its initial solution via the
// Clarke-Wright constructor (as the original solver does) and returning the
// best solution found.
func Solve(customers []entity.Customer, vehicles []entity.Vehicle, day entity.Weekday, distanceMx, timeMx entity.Matrix, opts Options) (*entity.Solution, error) {
	opts = opts.withDefaults()
	runID := uuid.NewString()
	opts.Logger.Info("alns run started", "run_id", runID, "day", string(day), "seed", opts.Seed)
	rng := rand.New(rand.NewSource(opts.Seed))

	available := make([]entity.Customer, 0, len(customers))
	for _, c := range customers {
		if !c.IsDayAllowed(day) {
			continue
		}
		if _, ok := c.TimeWindowForDay(day); !ok {
			continue
		}
		available = append(available, c)
	}
	if len(available) == 0 {
		sol := entity.NewSolution(day)
		for _, c := range customers {
			sol.UnservedCustomerIDs = append(sol.UnservedCustomerIDs, c.ID)
		}
		return sol, nil
	}

	seedResult, err := clarkewright.Solve(available, vehicles, day, distanceMx, timeMx)
	if err != nil {
		return nil, err
	}
	if len(seedResult.Routes) == 0 {
		sol := entity.NewSolution(day)
		sol.UnservedCustomerIDs = seedResult.Unserved
		sol.IsFeasible = len(sol.UnservedCustomerIDs) == 0
		return sol, nil
	}

	current := cloneRoutes(seedResult.Routes)
	best := cloneRoutes(seedResult.Routes)
	bestUnserved := seedResult.Unserved
	var bestViolations []string

	destroyWeights := map[string]float64{"random": 1, "worst": 1, "shaw": 1, "time_based": 1}
	repairWeights := map[string]float64{"greedy": 1, "regret2": 1, "regret3": 1}

	temperature := opts.TemperatureStart
	currentCost := cost(current)
	bestCost := currentCost
	stagnant := 0

	for iter := 0; iter < opts.MaxIterations; iter++ {
		destroyOp := selectOperator(rng, destroyWeights, destroyOperatorOrder)
		repairOp := selectOperator(rng, repairWeights, repairOperatorOrder)

		candidate := cloneRoutes(current)
		removed, err := destroy(rng, candidate, destroyOp, opts.DestructionRate, distanceMx)
		if err != nil {
			return nil, err
		}
		candidate = dropEmptyRoutes(candidate)

		candidate, dropped, err := repair(candidate, removed, vehicles, day, distanceMx, repairOp)
		if err != nil {
			return nil, err
		}

		var violations []string
		for i := range candidate {
			candidate[i].DepotDeparture = candidate[i].Vehicle.StartTime
			_, v, err := feasibility.Validate(&candidate[i], distanceMx, timeMx)
			if err != nil {
				return nil, err
			}
			violations = append(violations, v...)
		}
		candidate = dropEmptyRoutes(candidate)

		candidateUnserved := append(append([]string{}, seedResult.Unserved...), dropped...)
		candidateCost := cost(candidate)

		accept := false
		score := 0.0
		switch {
		case candidateCost < bestCost:
			best = cloneRoutes(candidate)
			bestUnserved = candidateUnserved
			bestViolations = violations
			current = candidate
			currentCost = candidateCost
			bestCost = candidateCost
			accept = true
			score = scoreNewBest
			stagnant = 0
		case candidateCost < currentCost:
			current = candidate
			currentCost = candidateCost
			accept = true
			score = scoreBetter
			stagnant++
		default:
			delta := candidateCost - currentCost
			probability := math.Exp(-delta / temperature)
			if rng.Float64() < probability {
				current = candidate
				currentCost = candidateCost
				accept = true
				score = scoreAccepted
			}
			stagnant++
		}

		if accept {
			destroyWeights[destroyOp] += score
			repairWeights[repairOp] += score
		}

		temperature = math.Max(opts.TemperatureEnd, temperature*opts.CoolingRate)

		if stagnant > maxStagnantIterations {
			break
		}
	}

	sol := entity.NewSolution(day)
	sol.Routes = best
	sol.UnservedCustomerIDs = bestUnserved
	sol.ConstraintViolations = bestViolations
	sol.ComputeMetrics()
	sol.IsFeasible = len(bestViolations) == 0
	opts.Logger.Info("alns run finished", "run_id", runID, "total_distance_km", sol.TotalDistanceKM, "vehicles_used", sol.NumVehiclesUsed)
	return sol, nil
}

// cost implements spec.md §4.4 step 4:
// Σ km + 1000 × vehicles_used + 500 × Σ |utilization − 85%|.
func cost(routes []entity.Route) float64 {
	var distance, utilPenalty float64
	for _, r := range routes {
		distance += r.TotalDistanceKM
		utilPenalty += math.Abs(r.Utilization() - targetUtilizationPercent)
	}
	return distance*costDistanceWeight + float64(len(routes))*costVehicleWeight + utilPenalty*costUtilizationWeight
}

// selectOperator is a roulette-wheel pick over weights, iterating in the
// fixed order slice (never map order) so repeated runs with the same RNG
// sequence are deterministic.
func selectOperator(rng *rand.Rand, weights map[string]float64, order []string) string {
	total := 0.0
	for _, name := range order {
		total += weights[name]
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for _, name := range order {
		cumulative += weights[name]
		if r <= cumulative {
			return name
		}
	}
	return order[0]
}

func cloneRoutes(routes []entity.Route) []entity.Route {
	out := make([]entity.Route, len(routes))
	for i, r := range routes {
		out[i] = r.Clone()
	}
	return out
}

func dropEmptyRoutes(routes []entity.Route) []entity.Route {
	out := routes[:0]
	for _, r := range routes {
		if len(r.Stops) > 0 {
			out = append(out, r)
		}
	}
	return out
}

func findCompatibleVehicle(vehicles []entity.Vehicle, c entity.Customer) *entity.Vehicle {
	for i := range vehicles {
		if vehicles[i].CanServe(c.ID) && vehicles[i].CanFitDemand(0, c.DemandM3) {
			return &vehicles[i]
		}
	}
	return nil
}
