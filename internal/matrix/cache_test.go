package matrix

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeplanner/internal/types"
	"routeplanner/pkg/cache"
)

func TestCacheKey_StableUnderRounding(t *testing.T) {
	a := []types.Coordinate{{Lat: 42.700000049, Lon: 23.32}}
	b := []types.Coordinate{{Lat: 42.70000005, Lon: 23.32}}

	assert.Equal(t, CacheKey(a), CacheKey(b))
}

func TestCacheKey_DiffersOnOrder(t *testing.T) {
	a := []types.Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	b := []types.Coordinate{{Lat: 2, Lon: 2}, {Lat: 1, Lon: 1}}

	assert.NotEqual(t, CacheKey(a), CacheKey(b))
}

func TestMatrixCache_RoundTrip(t *testing.T) {
	backend := cache.NewMemoryCache(cache.DefaultOptions())
	defer backend.Close()
	mc := NewMatrixCache(backend)

	locs := []types.Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	m := &types.Matrix{
		Locations: locs,
		Distance:  [][]int64{{0, 100}, {100, 0}},
		Duration:  [][]int64{{0, 10}, {10, 0}},
	}

	require.NoError(t, mc.Put(context.Background(), m))

	got, hit, err := mc.Get(context.Background(), locs)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, m.Distance, got.Distance)
	assert.Equal(t, m.Duration, got.Duration)
}

func TestMatrixCache_MissOnSizeMismatch(t *testing.T) {
	backend := cache.NewMemoryCache(cache.DefaultOptions())
	defer backend.Close()
	mc := NewMatrixCache(backend)

	// Simulate a corrupted/stale entry: the key is derived from the
	// requested location list, but the stored payload disagrees in shape
	// (as if the engine or cache schema changed underneath it).
	locs := []types.Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	data, err := json.Marshal(matrixEnvelope{
		Locations: locs[:1],
		Distance:  [][]int64{{0}},
		Duration:  [][]int64{{0}},
	})
	require.NoError(t, err)
	require.NoError(t, backend.Set(context.Background(), CacheKey(locs), data, 0))

	_, hit, err := mc.Get(context.Background(), locs)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMatrixCache_CleanMiss(t *testing.T) {
	backend := cache.NewMemoryCache(cache.DefaultOptions())
	defer backend.Close()
	mc := NewMatrixCache(backend)

	_, hit, err := mc.Get(context.Background(), []types.Coordinate{{Lat: 9, Lon: 9}})
	require.NoError(t, err)
	assert.False(t, hit)
}
