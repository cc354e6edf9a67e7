package clarkewright

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routeplan/cvrptw/entity"
)

func mustVehicle(t *testing.T, capacity float64) entity.Vehicle {
	t.Helper()
	start, err := entity.ParseClock("08:00")
	require.NoError(t, err)
	return entity.Vehicle{
		ID: "v1", CapacityM3: capacity, MaxRouteDurationHours: 24,
		StartTime: start, FixedCost: 100, CostPerKM: 2,
	}
}

func allDayWindow(t *testing.T) entity.TimeWindow {
	t.Helper()
	tw, err := entity.NewTimeWindow("00:00", "23:59", nil)
	require.NoError(t, err)
	return tw
}

// TestSolve_S6SavingsMerge mirrors spec scenario S6: two compatible
// customers merge into a single route whose distance equals the sum of
// both legs minus the shared detour.
func TestSolve_S6SavingsMerge(t *testing.T) {
	window := allDayWindow(t)
	c1 := entity.Customer{ID: "c1", DemandM3: 1, ServiceMinutes: 0, TimeWindows: []entity.TimeWindow{window}}
	c2 := entity.Customer{ID: "c2", DemandM3: 1, ServiceMinutes: 0, TimeWindows: []entity.TimeWindow{window}}
	v := mustVehicle(t, 10)

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 10, "c2": 10},
		"c1":           {"c2": 2, entity.DepotID: 10},
		"c2":           {"c1": 2, entity.DepotID: 10},
	})
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 10, "c2": 10},
		"c1":           {"c2": 2, entity.DepotID: 10},
		"c2":           {"c1": 2, entity.DepotID: 10},
	})

	result, err := Solve([]entity.Customer{c1, c2}, []entity.Vehicle{v}, entity.Mon, dist, tm)
	require.NoError(t, err)
	require.Empty(t, result.Unserved)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, 22.0, result.Routes[0].TotalDistanceKM)
	assert.Equal(t, []string{"c1", "c2"}, result.Routes[0].StoreIDs())
}

// TestSolve_CapacityForcesSplit mirrors spec scenario S2: when no merge
// fits the vehicle's capacity, each customer stays on its own seed route
// (all on the same vehicle id), so every customer is routed or reported
// unserved and no route is overloaded.
func TestSolve_CapacityForcesSplit(t *testing.T) {
	window := allDayWindow(t)
	mk := func(id string) entity.Customer {
		return entity.Customer{ID: id, DemandM3: 6, ServiceMinutes: 0, TimeWindows: []entity.TimeWindow{window}}
	}
	customers := []entity.Customer{mk("c1"), mk("c2"), mk("c3")}
	v := mustVehicle(t, 10)

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 5, "c2": 5, "c3": 5},
		"c1":           {"c2": 3, "c3": 3, entity.DepotID: 5},
		"c2":           {"c1": 3, "c3": 3, entity.DepotID: 5},
		"c3":           {"c1": 3, "c2": 3, entity.DepotID: 5},
	})
	tm := dist

	result, err := Solve(customers, []entity.Vehicle{v}, entity.Mon, dist, tm)
	require.NoError(t, err)

	served := 0
	for _, r := range result.Routes {
		served += len(r.Stops)
	}
	assert.Equal(t, 3, served+len(result.Unserved))
	for _, r := range result.Routes {
		assert.True(t, r.IsValidCapacity())
	}
}

// TestSolve_NoCompatibleVehicle exercises the NoCompatibleVehicle path: a
// customer forbidden from every vehicle is reported unserved, not dropped
// silently.
func TestSolve_NoCompatibleVehicle(t *testing.T) {
	window := allDayWindow(t)
	c := entity.Customer{ID: "c1", DemandM3: 1, ServiceMinutes: 0, TimeWindows: []entity.TimeWindow{window}}
	v := mustVehicle(t, 10)
	v.ForbiddenIDs = map[string]struct{}{"c1": {}}

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 5}, "c1": {entity.DepotID: 5},
	})

	result, err := Solve([]entity.Customer{c}, []entity.Vehicle{v}, entity.Mon, dist, dist)
	require.NoError(t, err)
	assert.Empty(t, result.Routes)
	assert.Equal(t, []string{"c1"}, result.Unserved)
}

// TestSolve_MissingDistanceEntryRejected exercises spec.md §9: an
// incomplete distance matrix halts the build instead of defaulting silently.
func TestSolve_MissingDistanceEntryRejected(t *testing.T) {
	window := allDayWindow(t)
	c := entity.Customer{ID: "c1", DemandM3: 1, ServiceMinutes: 0, TimeWindows: []entity.TimeWindow{window}}
	v := mustVehicle(t, 10)

	dist := entity.NewMatrix(nil)
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 5}, "c1": {entity.DepotID: 5},
	})

	_, err := Solve([]entity.Customer{c}, []entity.Vehicle{v}, entity.Mon, dist, tm)
	require.Error(t, err)
}
