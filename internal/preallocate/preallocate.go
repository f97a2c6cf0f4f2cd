// Package preallocate implements the pre-allocator (C3): it removes
// physically infeasible and, optionally, disproportionately large orders
// from the solver's search space before C4/C5 ever see them.
package preallocate

import (
	"math"

	"routeplanner/internal/types"
	"routeplanner/pkg/apperror"
	"routeplanner/pkg/logger"
)

// Config holds the pre-allocator's configurable knobs (spec §6, Warehouse group).
type Config struct {
	// EnableWarehouse gates the whole pre-allocation step; when false, every
	// customer goes to the solver set regardless of size.
	EnableWarehouse bool
	// MoveLargestToWarehouse additionally defers customers whose volume
	// exceeds threshold, even when they'd fit in the largest vehicle.
	MoveLargestToWarehouse bool
	// LargeRequestFraction is the threshold fraction of max_single_capacity
	// (default 0.3).
	LargeRequestFraction float64
}

// DefaultConfig returns the spec defaults.
func DefaultConfig() Config {
	return Config{
		EnableWarehouse:        true,
		MoveLargestToWarehouse: false,
		LargeRequestFraction:   0.3,
	}
}

// Partition implements C3's public operation: partition(customers, vehicle_configs).
func Partition(customers []types.Customer, fleet []types.VehicleTypeConfig, cfg Config) (*types.PreAllocation, error) {
	if len(customers) == 0 {
		return nil, apperror.Local(apperror.CodeInvalidInput, "no customers to partition")
	}

	var maxSingleCapacity int64
	for _, v := range fleet {
		if !v.Enabled {
			continue
		}
		if v.Capacity > maxSingleCapacity {
			maxSingleCapacity = v.Capacity
		}
	}
	if maxSingleCapacity <= 0 {
		return nil, apperror.Local(apperror.CodeInvalidInput, "no enabled vehicle types with positive capacity")
	}

	// Capacity is in hundredths of the volume unit; compare volumes in
	// volume units.
	maxSingleVolume := float64(maxSingleCapacity) / 100
	threshold := maxSingleVolume * cfg.LargeRequestFraction

	var inputVolume, outputVolume float64
	solverSet := make([]types.Customer, 0, len(customers))
	warehouseSet := make([]types.Customer, 0)

	for _, c := range customers {
		inputVolume += c.Volume

		switch {
		case !cfg.EnableWarehouse:
			solverSet = append(solverSet, c)
		case c.Volume > maxSingleVolume:
			warehouseSet = append(warehouseSet, c)
		case cfg.MoveLargestToWarehouse && c.Volume > threshold:
			warehouseSet = append(warehouseSet, c)
		default:
			solverSet = append(solverSet, c)
		}
		outputVolume += c.Volume
	}

	if math.Abs(inputVolume-outputVolume) > 0.1 {
		return nil, apperror.Newf(apperror.CodeInvalidInput,
			"pre-allocation conservation violated: input volume %.2f, output volume %.2f", inputVolume, outputVolume)
	}

	var solverVolume, warehouseVolume float64
	for _, c := range solverSet {
		solverVolume += c.Volume
	}
	for _, c := range warehouseSet {
		warehouseVolume += c.Volume
	}

	var totalCapacity int64
	for _, v := range fleet {
		if v.Enabled {
			totalCapacity += v.Capacity * int64(v.Count)
		}
	}

	var utilization float64
	if totalCapacity > 0 {
		utilization = solverVolume * 100 / float64(totalCapacity)
	}

	if len(warehouseSet) > 0 {
		logger.Log.Info("pre-allocator deferred customers to warehouse",
			"count", len(warehouseSet), "volume", warehouseVolume, "threshold", threshold)
	}

	return &types.PreAllocation{
		SolverSet:            solverSet,
		WarehouseSet:         warehouseSet,
		TotalCapacity:        totalCapacity,
		TotalSolverVolume:    solverVolume,
		TotalWarehouseVolume: warehouseVolume,
		ProjectedUtilization: utilization,
	}, nil
}
