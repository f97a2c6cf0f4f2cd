package matrix

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeplanner/internal/types"
	"routeplanner/pkg/cache"
)

// fakeEngineClient returns deterministic distances based on index so
// assembled-chunk tests can verify placement without a real engine.
type fakeEngineClient struct {
	calls     atomic.Int32
	chunkSize int
}

func (f *fakeEngineClient) ChunkSize() int { return f.chunkSize }

func (f *fakeEngineClient) Table(ctx context.Context, sources, destinations []types.Coordinate) ([][]int64, [][]int64, error) {
	f.calls.Add(1)
	dist := make([][]int64, len(sources))
	dur := make([][]int64, len(sources))
	for i, s := range sources {
		dist[i] = make([]int64, len(destinations))
		dur[i] = make([]int64, len(destinations))
		for j, d := range destinations {
			dist[i][j] = int64(s.Lat*1000 + d.Lat)
			dur[i][j] = int64(s.Lat*10 + d.Lat)
		}
	}
	return dist, dur, nil
}

func newTestService(chunkSize int) (*Service, *fakeEngineClient) {
	client := &fakeEngineClient{chunkSize: chunkSize}
	backend := cache.NewMemoryCache(cache.DefaultOptions())
	svc := NewService(client, NewMatrixCache(backend))
	return svc, client
}

func testLocations(n int) []types.Coordinate {
	locs := make([]types.Coordinate, n)
	for i := range locs {
		locs[i] = types.Coordinate{Lat: float64(i), Lon: float64(i)}
	}
	return locs
}

func TestGetMatrix_AssemblesAcrossChunks(t *testing.T) {
	svc, client := newTestService(2) // force multiple chunks for 5 locations
	locs := testLocations(5)

	m, err := svc.GetMatrix(context.Background(), locs)
	require.NoError(t, err)

	require.Equal(t, 5, m.Size())
	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(0), m.Distance[i][i])
		assert.Equal(t, int64(0), m.Duration[i][i])
	}
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if i == j {
				continue
			}
			assert.Equal(t, int64(i*1000+j), m.Distance[i][j])
		}
	}
	assert.True(t, client.calls.Load() > 1, "expected more than one chunk request for a 5x5 grid with chunk size 2")
}

func TestGetMatrix_CacheHitSkipsEngine(t *testing.T) {
	svc, client := newTestService(80)
	locs := testLocations(3)

	_, err := svc.GetMatrix(context.Background(), locs)
	require.NoError(t, err)
	firstCalls := client.calls.Load()
	require.Greater(t, firstCalls, int32(0))

	_, err = svc.GetMatrix(context.Background(), locs)
	require.NoError(t, err)
	assert.Equal(t, firstCalls, client.calls.Load(), "second call should be served entirely from cache")
}

func TestGetMatrix_ConcurrentCallsCoalesce(t *testing.T) {
	svc, client := newTestService(80)
	locs := testLocations(3)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetMatrix(context.Background(), locs)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), client.calls.Load(), "concurrent misses for the same key should coalesce into one engine call")
}
