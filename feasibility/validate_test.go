package feasibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routeplan/cvrptw/entity"
)

func mustWindow(t *testing.T, earliest, latest string) entity.TimeWindow {
	t.Helper()
	tw, err := entity.NewTimeWindow(earliest, latest, nil)
	require.NoError(t, err)
	return tw
}

func singleStopRoute(t *testing.T, c entity.Customer, capacity float64) entity.Route {
	t.Helper()
	start, err := entity.ParseClock("08:00")
	require.NoError(t, err)
	v := entity.Vehicle{
		ID: "v1", CapacityM3: capacity,
		MaxRouteDurationHours: entity.DefaultMaxRouteDurationHours,
		StartTime:             start,
		FixedCost:             entity.DefaultFixedCost,
		CostPerKM:             entity.DefaultCostPerKM,
	}
	r := entity.Route{Vehicle: v, Day: entity.Mon}
	r.AddStop(c, -1)
	return r
}

// TestValidate_S1TrivialSingleStop mirrors spec scenario S1.
func TestValidate_S1TrivialSingleStop(t *testing.T) {
	c := entity.Customer{
		ID: "c1", DemandM3: 5, ServiceMinutes: 60,
		TimeWindows: []entity.TimeWindow{mustWindow(t, "08:00", "17:00")},
	}
	route := singleStopRoute(t, c, 10)

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 10},
		"c1":           {entity.DepotID: 10},
	})
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 15},
		"c1":           {entity.DepotID: 15},
	})

	feasible, violations, err := Validate(&route, dist, tm)
	require.NoError(t, err)
	assert.True(t, feasible, violations)
	assert.Equal(t, 20.0, route.TotalDistanceKM)
	assert.Equal(t, "08:15", route.Stops[0].Arrival.Format("15:04"))
	assert.Equal(t, "09:15", route.Stops[0].Departure.Format("15:04"))
	assert.Equal(t, 90.0, route.TotalDurationMin)
	assert.InDelta(t, 50.0, route.Utilization(), 0.001)
}

// TestValidate_S3WindowWait mirrors spec scenario S3: arrival is clamped
// forward to the window's earliest bound rather than flagged as a
// violation.
func TestValidate_S3WindowWait(t *testing.T) {
	c := entity.Customer{
		ID: "c1", DemandM3: 1, ServiceMinutes: 60,
		TimeWindows: []entity.TimeWindow{mustWindow(t, "10:00", "11:00")},
	}
	route := singleStopRoute(t, c, 10)

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 1}, "c1": {entity.DepotID: 1},
	})
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 10}, "c1": {entity.DepotID: 10},
	})

	feasible, violations, err := Validate(&route, dist, tm)
	require.NoError(t, err)
	assert.True(t, feasible, violations)
	assert.Equal(t, "10:00", route.Stops[0].Arrival.Format("15:04"))
	assert.Equal(t, "11:00", route.Stops[0].Departure.Format("15:04"))
}

// TestValidate_S4WindowMiss mirrors spec scenario S4: a late arrival past a
// window's latest bound is reported as a violation and is_feasible is
// false, while the schedule still proceeds with the late timestamp.
func TestValidate_S4WindowMiss(t *testing.T) {
	c1 := entity.Customer{
		ID: "c1", DemandM3: 1, ServiceMinutes: 10,
		TimeWindows: []entity.TimeWindow{mustWindow(t, "08:00", "23:00")},
	}
	c2 := entity.Customer{
		ID: "c2", DemandM3: 1, ServiceMinutes: 10,
		TimeWindows: []entity.TimeWindow{mustWindow(t, "08:00", "11:00")},
	}
	start, err := entity.ParseClock("08:00")
	require.NoError(t, err)
	v := entity.Vehicle{
		ID: "v1", CapacityM3: 10, MaxRouteDurationHours: 24,
		StartTime: start, FixedCost: 0, CostPerKM: 1,
	}
	route := entity.Route{Vehicle: v, Day: entity.Mon}
	route.AddStop(c1, -1)
	route.AddStop(c2, -1)

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 1, "c2": 1},
		"c1":           {"c2": 1, entity.DepotID: 1},
		"c2":           {entity.DepotID: 1},
	})
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 130, "c2": 130},
		"c1":           {"c2": 70, entity.DepotID: 1},
		"c2":           {entity.DepotID: 1},
	})

	feasible, violations, err := Validate(&route, dist, tm)
	require.NoError(t, err)
	assert.Equal(t, "10:10", route.Stops[0].Arrival.Format("15:04"))
	assert.Equal(t, "11:30", route.Stops[1].Arrival.Format("15:04"))
	assert.False(t, feasible)
	require.Len(t, violations, 1)
}

// TestValidate_MissingDistanceEntryRejected exercises the §9 redesign: a
// missing distance-matrix edge halts the solve with an error rather than
// silently defaulting to zero.
func TestValidate_MissingDistanceEntryRejected(t *testing.T) {
	c := entity.Customer{ID: "c1", DemandM3: 1, ServiceMinutes: 10}
	route := singleStopRoute(t, c, 10)

	dist := entity.NewMatrix(nil)
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 5}, "c1": {entity.DepotID: 5},
	})

	_, _, err := Validate(&route, dist, tm)
	require.Error(t, err)
}

// TestValidate_MissingTimeEntryFallsBackToFiveMinutes exercises the
// documented fallback for missing time-matrix edges.
func TestValidate_MissingTimeEntryFallsBackToFiveMinutes(t *testing.T) {
	c := entity.Customer{
		ID: "c1", DemandM3: 1, ServiceMinutes: 0,
		TimeWindows: []entity.TimeWindow{mustWindow(t, "00:00", "23:59")},
	}
	route := singleStopRoute(t, c, 10)

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 1}, "c1": {entity.DepotID: 1},
	})
	tm := entity.NewMatrix(nil)

	feasible, _, err := Validate(&route, dist, tm)
	require.NoError(t, err)
	assert.True(t, feasible)
	assert.Equal(t, "08:05", route.Stops[0].Arrival.Format("15:04"))
}

// TestValidate_DayExclusion mirrors spec scenario S5's feasibility half:
// serving a customer on an excluded day is flagged.
func TestValidate_DayExclusion(t *testing.T) {
	c := entity.Customer{
		ID: "c1", DemandM3: 1, ServiceMinutes: 10,
		TimeWindows:  []entity.TimeWindow{mustWindow(t, "00:00", "23:59")},
		ExcludedDays: map[entity.Weekday]struct{}{entity.Mon: {}},
	}
	route := singleStopRoute(t, c, 10)

	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 1}, "c1": {entity.DepotID: 1},
	})
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 1}, "c1": {entity.DepotID: 1},
	})

	feasible, violations, err := Validate(&route, dist, tm)
	require.NoError(t, err)
	assert.False(t, feasible)
	assert.Len(t, violations, 1)
}

// TestValidate_SchedulingRoundTrip exercises invariant 8: re-running
// validation on an already-scheduled route leaves timestamps unchanged.
func TestValidate_SchedulingRoundTrip(t *testing.T) {
	c := entity.Customer{
		ID: "c1", DemandM3: 1, ServiceMinutes: 30,
		TimeWindows: []entity.TimeWindow{mustWindow(t, "08:00", "17:00")},
	}
	route := singleStopRoute(t, c, 10)
	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 4}, "c1": {entity.DepotID: 4},
	})
	tm := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 12}, "c1": {entity.DepotID: 12},
	})

	_, _, err := Validate(&route, dist, tm)
	require.NoError(t, err)
	firstArrival := route.Stops[0].Arrival
	firstDeparture := route.Stops[0].Departure

	_, _, err = Validate(&route, dist, tm)
	require.NoError(t, err)
	assert.Equal(t, firstArrival, route.Stops[0].Arrival)
	assert.Equal(t, firstDeparture, route.Stops[0].Departure)
}

func TestInsertionCost_EmptyRoute(t *testing.T) {
	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 10}, "c1": {entity.DepotID: 10},
	})
	cost, err := InsertionCost(entity.Route{}, entity.Customer{ID: "c1"}, -1, dist)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cost)
}

// TestInsertionCost_S6SavingsMerge mirrors scenario S6's savings
// computation via insertion-cost calls: two independent single-customer
// routes (20 km each) against c2 appended to c1's route (20 + 2 km).
func TestInsertionCost_S6SavingsMerge(t *testing.T) {
	dist := entity.NewMatrix(map[string]map[string]float64{
		entity.DepotID: {"c1": 10, "c2": 10},
		"c1":           {"c2": 2, entity.DepotID: 10},
		"c2":           {entity.DepotID: 10},
	})
	c1 := entity.Customer{ID: "c1"}
	c2 := entity.Customer{ID: "c2"}
	soloC1, err := InsertionCost(entity.Route{}, c1, -1, dist)
	require.NoError(t, err)
	soloC2, err := InsertionCost(entity.Route{}, c2, -1, dist)
	require.NoError(t, err)
	withC1 := entity.Route{}
	withC1.AddStop(c1, -1)
	appendC2, err := InsertionCost(withC1, c2, len(withC1.Stops), dist)
	require.NoError(t, err)
	savings := soloC1 + soloC2 - (soloC1 + appendC2)
	assert.Equal(t, 18.0, savings)
}

func TestCanAdd_RejectsExcludedDay(t *testing.T) {
	c := entity.Customer{
		ID: "c1", DemandM3: 1,
		ExcludedDays: map[entity.Weekday]struct{}{entity.Mon: {}},
		TimeWindows:  []entity.TimeWindow{mustWindow(t, "08:00", "17:00")},
	}
	route := entity.Route{Vehicle: entity.Vehicle{CapacityM3: 10}}
	ok, reason := CanAdd(route, c, entity.Mon)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestCanAdd_AcceptsFeasibleCustomer(t *testing.T) {
	c := entity.Customer{
		ID: "c1", DemandM3: 1,
		TimeWindows: []entity.TimeWindow{mustWindow(t, "08:00", "17:00")},
	}
	route := entity.Route{Vehicle: entity.Vehicle{CapacityM3: 10}}
	ok, reason := CanAdd(route, c, entity.Mon)
	assert.True(t, ok)
	assert.Empty(t, reason)
}
