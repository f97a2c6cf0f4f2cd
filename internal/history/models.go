// Package history persists the outcome of each completed race so operators
// can audit served volume, dropped customers, and which strategy pair won
// over time. It follows the teacher's repository pattern: a narrow
// interface, a Postgres implementation wrapping database.DB, and raw SQL.
package history

import (
	"context"
	"errors"
	"time"

	"routeplanner/internal/types"
	"routeplanner/internal/solver"
)

// ErrRunNotFound is returned when a lookup by ID matches no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted race outcome: the winning solution's aggregates plus
// the strategy pair that produced it and the inputs that shaped the race.
type Run struct {
	ID               string
	RequestedAt      time.Time
	CustomerCount    int
	VehicleCount     int
	ServedVolume     float64
	TotalDistanceKM  float64
	TotalTimeMin     float64
	VehiclesUsed     int
	Objective        int64
	DroppedCount     int
	IsFeasible       bool
	WinningPair      string // solver.StrategyPair.String(), e.g. "path_cheapest_arc+guided_local_search"
	RaceWorkers      int
	DurationMS       int64
}

// NewRun builds a Run record from a completed race, ready for persistence.
func NewRun(id string, requestedAt time.Time, customerCount, vehicleCount int, sol *types.Solution, pair solver.StrategyPair, raceWorkers int, duration time.Duration) *Run {
	return &Run{
		ID:              id,
		RequestedAt:     requestedAt,
		CustomerCount:   customerCount,
		VehicleCount:    vehicleCount,
		ServedVolume:    sol.ServedVolume,
		TotalDistanceKM: sol.TotalDistanceKM,
		TotalTimeMin:    sol.TotalTimeMin,
		VehiclesUsed:    sol.VehiclesUsed,
		Objective:       sol.Objective,
		DroppedCount:    len(sol.DroppedCustomers),
		IsFeasible:      sol.IsFeasible,
		WinningPair:     pair.String(),
		RaceWorkers:     raceWorkers,
		DurationMS:      duration.Milliseconds(),
	}
}

// ListFilter narrows List results to a time window and/or feasibility.
type ListFilter struct {
	Since         *time.Time
	Until         *time.Time
	OnlyFeasible  bool
}

// ListOptions paginates and filters List.
type ListOptions struct {
	Limit  int
	Offset int
	Filter *ListFilter
}

// Summary aggregates Run rows over a time window, used for fleet-utilization
// reporting.
type Summary struct {
	TotalRuns          int
	FeasibleRuns       int
	AverageServedVolume float64
	AverageVehiclesUsed float64
	AverageDroppedCount float64
	PairWinCounts       map[string]int
}

// Repository is the persistence boundary for run history.
type Repository interface {
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, opts *ListOptions) ([]*Run, error)
	Summarize(ctx context.Context, since, until time.Time) (*Summary, error)
}
