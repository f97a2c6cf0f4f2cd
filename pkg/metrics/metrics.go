// Package metrics exposes the planning core's Prometheus instrumentation:
// matrix cache hit/miss rates, chunk fetch latency, per-strategy-pair solve
// duration and outcome, and solution-level gauges (served volume, vehicles
// used, dropped customers) updated once per race.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "routeplanner"

var (
	// MatrixCacheHits counts C2 cache hits.
	MatrixCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matrix_cache_hits_total",
		Help:      "Total distance matrix cache hits",
	})

	// MatrixCacheMisses counts C2 cache misses (each triggers a build).
	MatrixCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matrix_cache_misses_total",
		Help:      "Total distance matrix cache misses",
	})

	// ChunkFetchDuration observes one routing-engine "table" request's latency.
	ChunkFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "matrix_chunk_fetch_duration_seconds",
		Help:      "Duration of a single matrix chunk fetch against the routing engine",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	// RaceWorkerOutcomes counts each racer worker's terminal outcome by
	// strategy pair.
	RaceWorkerOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "race_worker_outcomes_total",
		Help:      "Racer worker outcomes by strategy pair and result",
	}, []string{"strategy_pair", "outcome"})

	// SolveDuration observes one worker's solve time by strategy pair.
	SolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solve_duration_seconds",
		Help:      "Duration of a single solver run by strategy pair",
		Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"strategy_pair"})

	// RunServedVolume is the winning solution's served volume for the most
	// recent race.
	RunServedVolume = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_served_volume",
		Help:      "Served volume of the winning solution in the most recent race",
	})

	// RunVehiclesUsed is the winning solution's vehicle count.
	RunVehiclesUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_vehicles_used",
		Help:      "Vehicles used by the winning solution in the most recent race",
	})

	// RunDroppedCustomers is the winning solution's drop count.
	RunDroppedCustomers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_dropped_customers",
		Help:      "Dropped customers in the winning solution of the most recent race",
	})

	// RunsTotal counts completed planning runs by terminal result.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total planning runs by result",
	}, []string{"result"})
)

// StartChunkFetchTimer returns a Timer that records into ChunkFetchDuration
// on ObserveDuration.
func StartChunkFetchTimer() *Timer {
	return &Timer{start: time.Now(), observer: ChunkFetchDuration}
}

// RecordRunOutcome updates the per-run gauges and increments RunsTotal.
func RecordRunOutcome(result string, servedVolume float64, vehiclesUsed, dropped int) {
	RunsTotal.WithLabelValues(result).Inc()
	RunServedVolume.Set(servedVolume)
	RunVehiclesUsed.Set(float64(vehiclesUsed))
	RunDroppedCustomers.Set(float64(dropped))
}

// Handler returns the HTTP handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer runs a blocking HTTP server exposing /metrics and /health.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}
