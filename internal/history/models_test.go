package history

import (
	"testing"
	"time"

	"routeplanner/internal/solver"
	"routeplanner/internal/types"
)

func TestRun_Fields(t *testing.T) {
	now := time.Now()
	run := &Run{
		ID:              "run-123",
		RequestedAt:     now,
		CustomerCount:   40,
		VehicleCount:    6,
		ServedVolume:    980.5,
		TotalDistanceKM: 210.3,
		TotalTimeMin:    540,
		VehiclesUsed:    5,
		Objective:       1234567,
		DroppedCount:    2,
		IsFeasible:      true,
		WinningPair:     "path_cheapest_arc+guided_local_search",
		RaceWorkers:     4,
		DurationMS:      2500,
	}

	if run.ID != "run-123" {
		t.Errorf("ID = %v, want run-123", run.ID)
	}
	if run.VehiclesUsed != 5 {
		t.Errorf("VehiclesUsed = %d, want 5", run.VehiclesUsed)
	}
	if run.DroppedCount != 2 {
		t.Errorf("DroppedCount = %d, want 2", run.DroppedCount)
	}
}

func TestNewRun(t *testing.T) {
	sol := &types.Solution{
		ServedVolume:    500.0,
		TotalDistanceKM: 80.0,
		TotalTimeMin:    200.0,
		VehiclesUsed:    3,
		Objective:       90000,
		DroppedCustomers: []types.Customer{
			{ID: "c1"}, {ID: "c2"},
		},
		IsFeasible: true,
	}
	pair := solver.StrategyPair{
		FirstSolution: solver.FirstSolutionPathCheapestArc,
		Metaheuristic: solver.MetaheuristicGuidedLocalSearch,
	}
	requestedAt := time.Date(2026, 7, 29, 8, 0, 0, 0, time.UTC)

	run := NewRun("run-abc", requestedAt, 20, 4, sol, pair, 4, 1500*time.Millisecond)

	if run.ID != "run-abc" {
		t.Errorf("ID = %v, want run-abc", run.ID)
	}
	if run.DroppedCount != 2 {
		t.Errorf("DroppedCount = %d, want 2", run.DroppedCount)
	}
	if run.WinningPair != pair.String() {
		t.Errorf("WinningPair = %v, want %v", run.WinningPair, pair.String())
	}
	if run.DurationMS != 1500 {
		t.Errorf("DurationMS = %d, want 1500", run.DurationMS)
	}
	if !run.IsFeasible {
		t.Error("IsFeasible should be true")
	}
}

func TestListOptions_Defaults(t *testing.T) {
	opts := &ListOptions{}

	if opts.Limit != 0 {
		t.Errorf("default Limit = %d, want 0", opts.Limit)
	}
	if opts.Offset != 0 {
		t.Errorf("default Offset = %d, want 0", opts.Offset)
	}
	if opts.Filter != nil {
		t.Error("default Filter should be nil")
	}
}

func TestSummary_Fields(t *testing.T) {
	summary := &Summary{
		TotalRuns:           10,
		FeasibleRuns:        9,
		AverageServedVolume: 750.0,
		AverageVehiclesUsed: 4.5,
		AverageDroppedCount: 1.2,
		PairWinCounts: map[string]int{
			"path_cheapest_arc+guided_local_search": 7,
			"savings+automatic":                     3,
		},
	}

	if summary.TotalRuns != 10 {
		t.Errorf("TotalRuns = %d, want 10", summary.TotalRuns)
	}
	if summary.PairWinCounts["path_cheapest_arc+guided_local_search"] != 7 {
		t.Errorf("PairWinCounts mismatch: %v", summary.PairWinCounts)
	}
}

func TestErrRunNotFound(t *testing.T) {
	if ErrRunNotFound.Error() != "run not found" {
		t.Errorf("ErrRunNotFound = %v, want 'run not found'", ErrRunNotFound)
	}
}

func TestBuildWhereClause_NilFilter(t *testing.T) {
	where, args := buildWhereClause(nil)

	if where != "TRUE" {
		t.Errorf("where = %v, want TRUE", where)
	}
	if len(args) != 0 {
		t.Errorf("args length = %d, want 0", len(args))
	}
}

func TestBuildWhereClause_WithFilter(t *testing.T) {
	since := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	filter := &ListFilter{Since: &since, Until: &until, OnlyFeasible: true}

	where, args := buildWhereClause(filter)

	if len(args) != 2 {
		t.Errorf("args length = %d, want 2", len(args))
	}
	if where == "TRUE" {
		t.Error("where clause should include filter conditions")
	}
}
