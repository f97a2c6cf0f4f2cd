package location

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"routeplanner/internal/types"
)

func TestBuild_MainDepotAtZeroWithoutCenter(t *testing.T) {
	depot := types.Coordinate{Lat: 42.70, Lon: 23.32}
	customers := []types.Customer{
		{ID: "c1", Coord: types.Coordinate{Lat: 42.71, Lon: 23.33}},
	}

	r := Build(depot, nil, nil, customers)

	assert.Equal(t, 1, r.NumDepots())
	assert.Equal(t, 1, r.NumCustomers())
	assert.Equal(t, 0, r.MainDepotIndex())
	assert.Equal(t, 1, r.CustomerIndex(0))
}

func TestBuild_CenterPlacedFirstWhenDistinct(t *testing.T) {
	depot := types.Coordinate{Lat: 42.70, Lon: 23.32}
	center := types.Coordinate{Lat: 42.68, Lon: 23.30}
	customers := []types.Customer{
		{ID: "c1", Coord: types.Coordinate{Lat: 42.71, Lon: 23.33}},
	}

	r := Build(depot, &center, nil, customers)

	assert.Equal(t, 2, r.NumDepots())
	assert.True(t, r.Locations()[0].Near(center))
	assert.Equal(t, 1, r.MainDepotIndex())
	assert.Equal(t, 2, r.CustomerIndex(0))
}

func TestBuild_CenterSameAsMainDepotCollapses(t *testing.T) {
	depot := types.Coordinate{Lat: 42.70, Lon: 23.32}
	center := types.Coordinate{Lat: 42.70000001, Lon: 23.32000001}

	r := Build(depot, &center, nil, nil)

	assert.Equal(t, 1, r.NumDepots())
	assert.Equal(t, 0, r.MainDepotIndex())
}

func TestBuild_CanonicalRegardlessOfInsertionOrder(t *testing.T) {
	depot := types.Coordinate{Lat: 42.70, Lon: 23.32}
	extra1 := types.Coordinate{Lat: 42.75, Lon: 23.10}
	extra2 := types.Coordinate{Lat: 42.60, Lon: 23.50}

	fleetA := []types.VehicleTypeConfig{
		{ID: "t1", StartLocation: &extra1},
		{ID: "t2", StartLocation: &extra2},
	}
	fleetB := []types.VehicleTypeConfig{
		{ID: "t2", StartLocation: &extra2},
		{ID: "t1", StartLocation: &extra1},
	}

	ra := Build(depot, nil, fleetA, nil)
	rb := Build(depot, nil, fleetB, nil)

	assert.Equal(t, ra.Locations(), rb.Locations())
}

func TestBuild_VehicleOverrideStartLocation(t *testing.T) {
	depot := types.Coordinate{Lat: 42.70, Lon: 23.32}
	override := types.Coordinate{Lat: 42.80, Lon: 23.40}
	fleet := []types.VehicleTypeConfig{
		{ID: "special-1", StartLocation: &override},
		{ID: "internal-1"},
	}

	r := Build(depot, nil, fleet, nil)

	assert.NotEqual(t, r.DepotIndexFor(fleet[0]), r.DepotIndexFor(fleet[1]))
	assert.Equal(t, r.MainDepotIndex(), r.DepotIndexFor(fleet[1]))
	assert.True(t, r.Locations()[r.DepotIndexFor(fleet[0])].Near(override))
}

func TestBuild_UnresolvableOverrideFallsBackToMainDepot(t *testing.T) {
	depot := types.Coordinate{Lat: 42.70, Lon: 23.32}
	// The fleet override (99,99) is a coordinate no other location uses;
	// Build still registers it as a depot like any override.
	unresolvable := types.Coordinate{Lat: 99, Lon: 99}
	fleet := []types.VehicleTypeConfig{{ID: "ghost", StartLocation: &unresolvable}}

	// indexOfNear will still find it because Build adds all override
	// locations to the depot list; to exercise the fallback we instead
	// verify DepotIndexFor falls back for an unknown type ID.
	r := Build(depot, nil, fleet, nil)
	unknown := types.VehicleTypeConfig{ID: "not-registered"}

	assert.Equal(t, r.MainDepotIndex(), r.DepotIndexFor(unknown))
}
