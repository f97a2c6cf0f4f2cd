package matrix

import (
	"context"

	"golang.org/x/sync/singleflight"

	"routeplanner/internal/types"
	"routeplanner/pkg/apperror"
	"routeplanner/pkg/logger"
	"routeplanner/pkg/metrics"
)

// Service is the public C2 operation: GetMatrix(locations) -> matrix, with
// cache lookup, chunked engine acquisition on miss, and single-flight
// coalescing so concurrent callers for the same location set never trigger
// more than one network build.
type Service struct {
	client EngineClient
	cache  *MatrixCache
	group  singleflight.Group
}

// NewService builds a Service from an engine client and a matrix cache.
func NewService(client EngineClient, matrixCache *MatrixCache) *Service {
	return &Service{client: client, cache: matrixCache}
}

// GetMatrix implements C2's public operation.
func (s *Service) GetMatrix(ctx context.Context, locations []types.Coordinate) (*types.Matrix, error) {
	key := CacheKey(locations)

	if m, hit, err := s.cache.Get(ctx, locations); err != nil {
		logger.Log.Warn("matrix cache read failed, rebuilding", "error", err)
	} else if hit {
		metrics.MatrixCacheHits.Inc()
		return m, nil
	}
	metrics.MatrixCacheMisses.Inc()

	// Coalesce concurrent misses for the same key: only the first caller
	// issues engine requests, the rest wait on and share its result.
	v, err, _ := s.group.Do(key, func() (any, error) {
		// A caller that missed the cache just before an earlier build stored
		// its result gets here after that build; reuse the stored matrix.
		if m, hit, err := s.cache.Get(ctx, locations); err == nil && hit {
			return m, nil
		}
		return s.build(ctx, locations)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Matrix), nil
}

// build fetches every chunk pair tiling the NxN grid and assembles the full
// matrix, then persists it to the cache.
func (s *Service) build(ctx context.Context, locations []types.Coordinate) (*types.Matrix, error) {
	n := len(locations)
	if n == 0 {
		return &types.Matrix{Locations: locations, Distance: nil, Duration: nil}, nil
	}

	chunkSize := 80
	if hc, ok := s.client.(interface{ ChunkSize() int }); ok {
		chunkSize = hc.ChunkSize()
	}

	distance := make([][]int64, n)
	duration := make([][]int64, n)
	for i := range distance {
		distance[i] = make([]int64, n)
		duration[i] = make([]int64, n)
	}

	rowChunks := chunkRanges(n, chunkSize)
	colChunks := chunkRanges(n, chunkSize)

	timer := metrics.StartChunkFetchTimer()
	defer timer.ObserveDuration()

	for _, rows := range rowChunks {
		for _, cols := range colChunks {
			sources := locations[rows.start:rows.end]
			destinations := locations[cols.start:cols.end]

			distChunk, durChunk, err := s.client.Table(ctx, sources, destinations)
			if err != nil {
				return nil, apperror.Wrap(apperror.CodeRoutingEngineUnavailable, "matrix chunk fetch failed", err)
			}

			for i, srcIdx := 0, rows.start; srcIdx < rows.end; i, srcIdx = i+1, srcIdx+1 {
				for j, dstIdx := 0, cols.start; dstIdx < cols.end; j, dstIdx = j+1, dstIdx+1 {
					distance[srcIdx][dstIdx] = distChunk[i][j]
					duration[srcIdx][dstIdx] = durChunk[i][j]
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		distance[i][i] = 0
		duration[i][i] = 0
	}

	m := &types.Matrix{Locations: locations, Distance: distance, Duration: duration}
	if err := s.cache.Put(ctx, m); err != nil {
		logger.Log.Warn("matrix cache persist failed", "error", err)
	}
	return m, nil
}

type chunkRange struct{ start, end int }

// chunkRanges splits [0, n) into contiguous ranges of at most size elements.
func chunkRanges(n, size int) []chunkRange {
	if size <= 0 {
		size = n
	}
	var ranges []chunkRange
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		ranges = append(ranges, chunkRange{start: start, end: end})
	}
	return ranges
}

// ChunkSize exposes HTTPEngineClient's effective chunk size to Service.build.
func (c *HTTPEngineClient) ChunkSize() int { return c.cfg.effectiveChunkSize() }
