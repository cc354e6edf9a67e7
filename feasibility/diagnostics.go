package feasibility

import (
	"math"

	"github.com/routeplan/cvrptw/entity"
)

// LoadBalancePenalty returns the standard deviation of per-route
// utilization, a supplemented diagnostic recovered from
// ConstraintValidator.calculate_load_balance_penalty. It is not part of the
// §4.4 ALNS cost formula (which already penalizes deviation from the 85%
// target directly); callers that want it as an extra signal compute it
// separately.
func LoadBalancePenalty(routes []entity.Route) float64 {
	if len(routes) == 0 {
		return 0
	}
	utils := make([]float64, len(routes))
	var sum float64
	for i, r := range routes {
		utils[i] = r.Utilization()
		sum += utils[i]
	}
	avg := sum / float64(len(utils))
	var variance float64
	for _, u := range utils {
		variance += (u - avg) * (u - avg)
	}
	variance /= float64(len(utils))
	return math.Sqrt(variance)
}
