package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildTestRoute(id string, capacity, load, distance, durationMin float64) Route {
	v := Vehicle{ID: id, CapacityM3: capacity, FixedCost: 100, CostPerKM: 2}
	r := Route{Vehicle: v, TotalLoadM3: load, TotalDistanceKM: distance, TotalDurationMin: durationMin}
	r.Stops = []RouteStop{{Customer: Customer{ID: id + "-stop", DemandM3: load}}}
	return r
}

func TestSolution_ComputeMetrics(t *testing.T) {
	sol := NewSolution(Mon)
	sol.Routes = []Route{
		buildTestRoute("v1", 10, 5, 20, 60),
		buildTestRoute("v2", 10, 8, 30, 90),
	}
	sol.ComputeMetrics()

	assert.Equal(t, 2, sol.NumVehiclesUsed)
	assert.Equal(t, 50.0, sol.TotalDistanceKM)
	assert.Equal(t, 2.5, sol.TotalDurationHour)
	assert.Equal(t, 300.0, sol.TotalCost) // (100+2*20) + (100+2*30) = 140+160
}

func TestSolution_AverageUtilizationAndTotalStoresServed(t *testing.T) {
	sol := NewSolution(Mon)
	sol.Routes = []Route{
		buildTestRoute("v1", 10, 5, 20, 60),
		buildTestRoute("v2", 20, 10, 30, 90),
	}
	assert.Equal(t, 2, sol.TotalStoresServed())
	assert.InDelta(t, 50.0, sol.AverageUtilization(), 1e-9) // 5/10*100 and 10/20*100, both 50%
}

func TestSolution_UtilizationStats_EmptyRoutes(t *testing.T) {
	sol := NewSolution(Mon)
	assert.Equal(t, UtilizationStats{}, sol.UtilizationStats())
}

func TestSolution_ToMap(t *testing.T) {
	sol := NewSolution(Mon)
	sol.Routes = []Route{buildTestRoute("v1", 10, 5, 20, 60)}
	sol.ComputeMetrics()
	sol.UnservedCustomerIDs = []string{"missed"}

	m := sol.ToMap()
	assert.Equal(t, "Mon", m["day"])
	assert.Equal(t, 1, m["num_vehicles_used"])
	assert.Equal(t, []string{"missed"}, m["unserved_stores"])
}

func TestMultiDaySolution_ComputeWeeklyTotals(t *testing.T) {
	multi := NewMultiDaySolution()

	monSol := NewSolution(Mon)
	monSol.Routes = []Route{buildTestRoute("v1", 10, 5, 20, 60)}
	monSol.ComputeMetrics()

	tueSol := NewSolution(Tue)
	tueSol.Routes = []Route{buildTestRoute("v2", 10, 5, 10, 30)}
	tueSol.ComputeMetrics()

	multi.AddDaySolution(Mon, monSol)
	multi.AddDaySolution(Tue, tueSol)

	totals := multi.ComputeWeeklyTotals()
	assert.Equal(t, 30.0, totals.TotalDistanceKM)
	assert.Equal(t, 2, totals.TotalVehiclesUsed)
	assert.Equal(t, 2, totals.TotalStoresServed)
}
