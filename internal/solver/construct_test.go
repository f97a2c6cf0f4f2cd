package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeplanner/internal/location"
	"routeplanner/internal/model"
	"routeplanner/internal/types"
)

// buildSmallModel constructs a depot plus 6 customers on a line, with a
// three-vehicle fleet capacity-tight enough that at least some split is
// required, for exercising every first-solution strategy.
func buildSmallModel(t *testing.T) *model.Model {
	t.Helper()
	depot := types.Coordinate{Lat: 0, Lon: 0}
	var customers []types.Customer
	for i := 1; i <= 6; i++ {
		customers = append(customers, types.Customer{
			ID:     string(rune('A' + i - 1)),
			Coord:  types.Coordinate{Lat: float64(i), Lon: 0},
			Volume: 10,
			Demand: 1000,
		})
	}
	fleet := []types.VehicleTypeConfig{
		{ID: "internal-1", Kind: types.VehicleKindInternal, Capacity: 3000, Count: 3, Enabled: true},
	}
	registry := location.Build(depot, nil, fleet, customers)
	n := registry.NumDepots() + len(customers)
	dist := make([][]int64, n)
	dur := make([][]int64, n)
	locs := registry.Locations()
	for i := 0; i < n; i++ {
		dist[i] = make([]int64, n)
		dur[i] = make([]int64, n)
		for j := 0; j < n; j++ {
			d := int64(abs(locs[i].Lat-locs[j].Lat) * 1000)
			dist[i][j] = d
			dur[i][j] = d
		}
	}
	matrix := &types.Matrix{Locations: locs, Distance: dist, Duration: dur}
	return model.Build(registry, matrix, fleet, customers, model.BuildOptions{})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func allStrategies() []FirstSolutionStrategy {
	return []FirstSolutionStrategy{
		FirstSolutionAutomatic,
		FirstSolutionPathCheapestArc,
		FirstSolutionSavings,
		FirstSolutionParallelCheapestInsertion,
		FirstSolutionGlobalCheapestArc,
		FirstSolutionBestInsertion,
		FirstSolutionSweep,
	}
}

func TestConstruct_EveryStrategyProducesFeasibleRoutes(t *testing.T) {
	m := buildSmallModel(t)
	for _, s := range allStrategies() {
		routes, dropped := Construct(m, s)
		for _, r := range routes {
			assert.True(t, feasible(m, r.VehicleIdx, r.Nodes), "strategy %s produced an infeasible route", s)
		}
		placed := len(dropped)
		for _, r := range routes {
			placed += len(r.Nodes)
		}
		assert.Equal(t, m.NumCustomers, placed, "strategy %s must account for every customer as placed or dropped", s)
	}
}

func TestConstruct_PathCheapestArcUsesCheapestFeasibleNextHop(t *testing.T) {
	m := buildSmallModel(t)
	routes, _ := buildPathCheapestArc(m)
	require.NotEmpty(t, routes)
	// Customers lie on a line with linear distance cost, so the cheapest
	// next hop from the depot is always the nearest remaining customer.
	first := routes[0]
	require.NotEmpty(t, first.Nodes)
	assert.Equal(t, m.CustomerNode(0), first.Nodes[0], "nearest customer (A) should be visited first")
}

func TestConstruct_NoFeasibleVehicleDropsEveryCustomer(t *testing.T) {
	depot := types.Coordinate{Lat: 0, Lon: 0}
	customers := []types.Customer{{ID: "A", Coord: types.Coordinate{Lat: 1, Lon: 0}, Volume: 999, Demand: 99900}}
	fleet := []types.VehicleTypeConfig{{ID: "internal-1", Kind: types.VehicleKindInternal, Capacity: 10, Count: 1, Enabled: true}}
	registry := location.Build(depot, nil, fleet, customers)
	matrix := &types.Matrix{Locations: registry.Locations(), Distance: [][]int64{{0, 100}, {100, 0}}, Duration: [][]int64{{0, 100}, {100, 0}}}
	m := model.Build(registry, matrix, fleet, customers, model.BuildOptions{})

	routes, dropped := Construct(m, FirstSolutionSavings)
	assert.Empty(t, routes)
	assert.Equal(t, []int{0}, dropped)
}
