// Package model builds the constraint routing model (C4): fleet expansion,
// the four hard dimensions, per-vehicle-type arc-cost callbacks, and drop
// disjunctions. It is the bridge between the plain data the earlier
// components produce (registry, matrix, pre-allocation) and the solver
// driver's index-based world.
package model

import (
	"fmt"

	"routeplanner/internal/location"
	"routeplanner/internal/types"
)

// Vehicle is one expanded, individually addressable vehicle instance.
// Fleet expansion turns a VehicleTypeConfig's Count into Count separate
// Vehicle values sharing the same type-level limits.
type Vehicle struct {
	// InstanceID is unique within the model, e.g. "internal-1#0".
	InstanceID string
	Kind       types.VehicleKind
	TypeID     string

	CapacityDemand int64 // hundredths of the volume unit; see VehicleTypeConfig.Capacity
	DepotIndex     int   // dep(v)
	MaxDistanceM   float64
	MaxStops       int // 0 means unset -> unbounded
	MaxWorkSeconds float64
	ServiceSeconds float64
}

// ExpandFleet turns enabled vehicle type configs into individual vehicle
// instances, resolving each type's depot index via the location registry.
func ExpandFleet(fleet []types.VehicleTypeConfig, registry *location.Registry) []Vehicle {
	var vehicles []Vehicle
	for _, v := range fleet {
		if !v.Enabled || v.Count <= 0 {
			continue
		}
		depotIdx := registry.DepotIndexFor(v)
		for i := 0; i < v.Count; i++ {
			vehicles = append(vehicles, Vehicle{
				InstanceID:     fmt.Sprintf("%s#%d", typeID(v), i),
				Kind:           v.Kind,
				TypeID:         typeID(v),
				CapacityDemand: v.Capacity,
				DepotIndex:     depotIdx,
				MaxDistanceM:   v.EffectiveMaxDistanceM(),
				MaxStops:       v.MaxCustomersPerRoute,
				MaxWorkSeconds: v.MaxWorkSeconds,
				ServiceSeconds: v.ServiceSeconds,
			})
		}
	}
	return vehicles
}

func typeID(v types.VehicleTypeConfig) string {
	if v.ID != "" {
		return v.ID
	}
	return v.Kind.String()
}
