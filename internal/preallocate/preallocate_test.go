package preallocate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeplanner/internal/types"
)

// fleetWithMaxCapacity takes capacity in volume units and stores it in
// hundredths, as VehicleTypeConfig.Capacity expects.
func fleetWithMaxCapacity(capacity int64) []types.VehicleTypeConfig {
	return []types.VehicleTypeConfig{
		{ID: "internal-1", Kind: types.VehicleKindInternal, Capacity: capacity * 100, Count: 2, Enabled: true},
	}
}

func TestPartition_OversizeGoesToWarehouse(t *testing.T) {
	customers := []types.Customer{
		{ID: "A", Volume: 1000},
		{ID: "B", Volume: 20},
	}
	result, err := Partition(customers, fleetWithMaxCapacity(360), DefaultConfig())
	require.NoError(t, err)

	require.Len(t, result.WarehouseSet, 1)
	assert.Equal(t, "A", result.WarehouseSet[0].ID)
	require.Len(t, result.SolverSet, 1)
	assert.Equal(t, "B", result.SolverSet[0].ID)
}

func TestPartition_ConservationHolds(t *testing.T) {
	customers := []types.Customer{
		{ID: "A", Volume: 1000},
		{ID: "B", Volume: 20},
		{ID: "C", Volume: 5.5},
	}
	result, err := Partition(customers, fleetWithMaxCapacity(360), DefaultConfig())
	require.NoError(t, err)

	total := result.TotalSolverVolume + result.TotalWarehouseVolume
	assert.InDelta(t, 1025.5, total, 0.1)
	assert.Equal(t, len(customers), len(result.SolverSet)+len(result.WarehouseSet))
}

func TestPartition_MoveLargestToWarehouse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MoveLargestToWarehouse = true
	cfg.LargeRequestFraction = 0.3 // threshold = 360*0.3 = 108

	customers := []types.Customer{
		{ID: "large", Volume: 150}, // under max_single_capacity but over threshold
		{ID: "small", Volume: 20},
	}
	result, err := Partition(customers, fleetWithMaxCapacity(360), cfg)
	require.NoError(t, err)

	require.Len(t, result.WarehouseSet, 1)
	assert.Equal(t, "large", result.WarehouseSet[0].ID)
}

func TestPartition_WarehouseDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableWarehouse = false

	customers := []types.Customer{{ID: "A", Volume: 1000}}
	result, err := Partition(customers, fleetWithMaxCapacity(360), cfg)
	require.NoError(t, err)

	assert.Empty(t, result.WarehouseSet)
	assert.Len(t, result.SolverSet, 1)
}

func TestPartition_NoEnabledVehiclesIsInvalidInput(t *testing.T) {
	fleet := []types.VehicleTypeConfig{{ID: "x", Capacity: 100, Enabled: false}}
	_, err := Partition([]types.Customer{{ID: "A", Volume: 1}}, fleet, DefaultConfig())
	assert.Error(t, err)
}

func TestPartition_NoCustomersIsInvalidInput(t *testing.T) {
	_, err := Partition(nil, fleetWithMaxCapacity(100), DefaultConfig())
	assert.Error(t, err)
}
