package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"routeplanner/internal/types"
)

func TestFarLowVolumeDiscount_FarAndLowVolumeMaximizesDiscount(t *testing.T) {
	cfg := DefaultFarLowVolumeConfig()
	discount := cfg.discountFor(20000, 0) // far beyond Dnorm, zero volume
	assert.Equal(t, cfg.MaxDiscountPercentage, discount)
}

func TestFarLowVolumeDiscount_NearAndHighVolumeGivesNoDiscount(t *testing.T) {
	cfg := DefaultFarLowVolumeConfig()
	discount := cfg.discountFor(0, 500) // at depot, far over Vnorm
	assert.Equal(t, 0.0, discount)
}

func TestCostModel_BaseCostWhenNoModifiersApply(t *testing.T) {
	distance := [][]int64{{0, 1000}, {1000, 0}}
	customers := []types.Customer{{ID: "A", Volume: 10, DistanceFromDepotM: 500}}
	cm := NewCostModel(distance, 1, customers, CenterZoneConfig{}, FarLowVolumeConfig{})

	// Zero-weight far-low-volume config produces zero discount, so base cost
	// is unchanged.
	got := cm.ArcCost(0, 1, types.VehicleKindInternal)
	assert.Equal(t, int64(1000), got)
}

func TestCostModel_CenterVehicleNeverDiscountedByFarLowVolume(t *testing.T) {
	distance := [][]int64{{0, 1000}, {1000, 0}}
	customers := []types.Customer{{ID: "A", Volume: 0, DistanceFromDepotM: 50000}}
	cm := NewCostModel(distance, 1, customers, CenterZoneConfig{}, DefaultFarLowVolumeConfig())

	got := cm.ArcCost(0, 1, types.VehicleKindCenter)
	assert.Equal(t, int64(1000), got, "center buses never receive the far-low-volume discount")
}

func TestCostModel_FarLowVolumeDiscountAppliesToNonCenterKinds(t *testing.T) {
	distance := [][]int64{{0, 1000}, {1000, 0}}
	customers := []types.Customer{{ID: "A", Volume: 0, DistanceFromDepotM: 50000}}
	cm := NewCostModel(distance, 1, customers, CenterZoneConfig{}, DefaultFarLowVolumeConfig())

	got := cm.ArcCost(0, 1, types.VehicleKindInternal)
	assert.Less(t, got, int64(1000), "a far, zero-volume customer should receive the maximum discount")
	assert.Equal(t, int64(500), got) // maxDiscount 0.5 -> half off
}

func TestCostModel_CenterZoneTakesPrecedenceOverFarLowVolumeDiscount(t *testing.T) {
	distance := [][]int64{{0, 1000}, {1000, 0}}
	center := types.Coordinate{Lat: 0, Lon: 0}
	// Customer co-located with the center, so it's always in-zone, and also
	// qualifies for the far-low-volume discount (far from depot, no volume).
	customers := []types.Customer{{ID: "A", Volume: 0, DistanceFromDepotM: 50000, Coord: center}}
	zoneCfg := CenterZoneConfig{
		Enabled:         true,
		CenterLocation:  center,
		RadiusKM:        5,
		InternalPenalty: 2.0,
	}
	cm := NewCostModel(distance, 1, customers, zoneCfg, DefaultFarLowVolumeConfig())

	got := cm.ArcCost(0, 1, types.VehicleKindInternal)
	assert.Equal(t, int64(2000), got, "center-zone penalty must win over the far-low-volume discount")
}

func TestCostModel_CenterBusDiscountedInZone(t *testing.T) {
	distance := [][]int64{{0, 1000}, {1000, 0}}
	center := types.Coordinate{Lat: 10, Lon: 10}
	customers := []types.Customer{{ID: "A", Coord: center}}
	zoneCfg := CenterZoneConfig{Enabled: true, CenterLocation: center, RadiusKM: 5, CenterDiscountFactor: 0.5}
	cm := NewCostModel(distance, 1, customers, zoneCfg, FarLowVolumeConfig{})

	got := cm.ArcCost(0, 1, types.VehicleKindCenter)
	assert.Equal(t, int64(500), got)
}

func TestCostModel_DepotDestinationUnaffected(t *testing.T) {
	distance := [][]int64{{0, 1000}, {1000, 0}}
	cm := NewCostModel(distance, 1, nil, CenterZoneConfig{}, DefaultFarLowVolumeConfig())

	got := cm.ArcCost(1, 0, types.VehicleKindInternal)
	assert.Equal(t, int64(1000), got, "returning to a depot node is never discounted or penalized")
}
