package matrix

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"routeplanner/internal/types"
	"routeplanner/pkg/apperror"
	"routeplanner/pkg/cache"
)

// MatrixCache is the central, persistent cache for built matrices, keyed on
// the canonicalized ordered coordinate list that produced them. It wraps a
// generic cache.Cache so the storage backend (memory, file, Redis) is
// interchangeable without touching C2's logic.
type MatrixCache struct {
	backend cache.Cache
}

// NewMatrixCache wraps backend as a MatrixCache.
func NewMatrixCache(backend cache.Cache) *MatrixCache {
	return &MatrixCache{backend: backend}
}

type matrixEnvelope struct {
	Locations []types.Coordinate `json:"locations"`
	Distance  [][]int64          `json:"distance"`
	Duration  [][]int64          `json:"duration"`
}

// CacheKey derives the stable cache key for locations: round each coordinate
// to 6 decimals, serialize in order, and SHA-256 the result.
func CacheKey(locations []types.Coordinate) string {
	canonical := make([][2]float64, len(locations))
	for i, l := range locations {
		canonical[i] = [2]float64{round6(l.Lat), round6(l.Lon)}
	}
	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return "matrix:" + hex.EncodeToString(sum[:])
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Get looks up the matrix for locations. It returns (nil, false, nil) on a
// clean miss, and also treats a stored matrix whose location count or order
// disagrees with the request as a plain miss (nil error). Only an entry that
// cannot be decoded yields a CacheCorruption error, which the caller logs.
func (mc *MatrixCache) Get(ctx context.Context, locations []types.Coordinate) (*types.Matrix, bool, error) {
	key := CacheKey(locations)
	data, err := mc.backend.Get(ctx, key)
	if err != nil {
		if err == cache.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var env matrixEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, apperror.Wrap(apperror.CodeCacheCorruption, "decode cached matrix", err)
	}

	if len(env.Locations) != len(locations) {
		return nil, false, nil // size mismatch: stale/corrupt entry, treat as miss
	}
	for i, l := range env.Locations {
		if !l.Near(locations[i]) {
			return nil, false, nil // order mismatch: treat as miss
		}
	}

	return &types.Matrix{Locations: env.Locations, Distance: env.Distance, Duration: env.Duration}, true, nil
}

// Put persists m under the key derived from its own Locations, atomically
// per the backend's Set contract (file backend: write-temp-then-rename).
func (mc *MatrixCache) Put(ctx context.Context, m *types.Matrix) error {
	env := matrixEnvelope{Locations: m.Locations, Distance: m.Distance, Duration: m.Duration}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode matrix for cache: %w", err)
	}
	key := CacheKey(m.Locations)
	return mc.backend.Set(ctx, key, data, 0)
}
