package model

import (
	"routeplanner/internal/location"
	"routeplanner/internal/types"
)

// DropConfig controls the customer-drop disjunction penalty.
type DropConfig struct {
	// PenaltyDisjunction is the cost charged for leaving a customer
	// unvisited; large but finite so the solver only drops under real
	// pressure.
	PenaltyDisjunction int64
}

// DefaultDropConfig returns a conservatively large default penalty.
func DefaultDropConfig() DropConfig {
	return DropConfig{PenaltyDisjunction: 1_000_000}
}

// Model is the fully assembled constraint routing model C5 solves: the
// expanded fleet, the four hard dimensions, the arc-cost evaluator, and the
// drop-disjunction penalty. It holds no solver state of its own.
type Model struct {
	Registry  *location.Registry
	Customers []types.Customer // solver_set, in registry order
	Vehicles  []Vehicle
	Dims      Dimensions
	Costs     *CostModel
	Drop      DropConfig

	NumDepots    int
	NumCustomers int
}

// BuildOptions bundles the per-run knobs that aren't derivable from the
// registry/matrix/fleet themselves.
type BuildOptions struct {
	CenterZone CenterZoneConfig
	FarLowVol  FarLowVolumeConfig
	Drop       DropConfig
}

// Build assembles a Model from the location registry, distance matrix,
// vehicle fleet, and solver-eligible customers (spec §4.4). Customers must
// already be in registry order (registry.CustomerIndex(k) == numDepots+k).
func Build(registry *location.Registry, matrix *types.Matrix, fleet []types.VehicleTypeConfig, customers []types.Customer, opts BuildOptions) *Model {
	vehicles := ExpandFleet(fleet, registry)
	numDepots := registry.NumDepots()

	dims := BuildDimensions(customers, vehicles, matrix.Distance, matrix.Duration, numDepots)
	costs := NewCostModel(matrix.Distance, numDepots, customers, opts.CenterZone, opts.FarLowVol)

	drop := opts.Drop
	if drop.PenaltyDisjunction <= 0 {
		drop = DefaultDropConfig()
	}

	return &Model{
		Registry:     registry,
		Customers:    customers,
		Vehicles:     vehicles,
		Dims:         dims,
		Costs:        costs,
		Drop:         drop,
		NumDepots:    numDepots,
		NumCustomers: len(customers),
	}
}

// NumNodes is the total node count addressed by the matrix (depots +
// customers).
func (m *Model) NumNodes() int {
	return m.NumDepots + m.NumCustomers
}

// VehicleStart and VehicleEnd are both dep(v): every vehicle instance starts
// and ends at its resolved depot index; the solver never reroutes through
// other depots.
func (m *Model) VehicleStart(vehicleIdx int) int { return m.Vehicles[vehicleIdx].DepotIndex }
func (m *Model) VehicleEnd(vehicleIdx int) int   { return m.Vehicles[vehicleIdx].DepotIndex }

// CustomerNode returns the matrix node index of the k-th solver-set
// customer.
func (m *Model) CustomerNode(k int) int {
	return m.NumDepots + k
}
