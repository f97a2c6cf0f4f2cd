// Package racer implements the parallel racer (C6): it fans a model out to
// K independent workers, each solving under a distinct (first-solution,
// metaheuristic) pair, and picks the winner by served volume.
package racer

import (
	"context"
	"runtime"
	"sync"
	"time"

	"routeplanner/internal/model"
	"routeplanner/internal/solver"
	"routeplanner/internal/types"
	"routeplanner/pkg/logger"
	"routeplanner/pkg/metrics"
)

// raceGrace bounds the whole race slightly beyond every worker's own time
// limit, so a worker that's mid-extraction when its limit expires still has
// room to return instead of being hard-cancelled.
const raceGrace = 5 * time.Second

// Config controls race setup (spec §6, Racer group).
type Config struct {
	EnableParallelSolving bool
	// NumWorkers is the number of strategy pairs to race. -1 means
	// runtime.NumCPU()-1 (minimum 1).
	NumWorkers int
	// FirstSolutionStrategies and Metaheuristics are the two lists whose
	// Cartesian product generates candidate pairs.
	FirstSolutionStrategies []solver.FirstSolutionStrategy
	Metaheuristics          []solver.Metaheuristic
	// BasePair is used when EnableParallelSolving is false, or as a
	// fallback when fewer distinct pairs are generated than NumWorkers.
	BasePair  solver.StrategyPair
	TimeLimit time.Duration
}

// ResolvedWorkerCount returns the effective worker count, resolving the -1
// sentinel to cpu-1 (minimum 1).
func (c Config) ResolvedWorkerCount() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// GeneratePairs produces up to ResolvedWorkerCount distinct strategy pairs
// by Cartesian product of the configured lists, deduplicated, falling back
// to the base pair if fewer pairs are available than requested workers.
func (c Config) GeneratePairs() []solver.StrategyPair {
	if !c.EnableParallelSolving {
		return []solver.StrategyPair{c.BasePair}
	}

	seen := make(map[solver.StrategyPair]bool)
	var pairs []solver.StrategyPair
	for _, fs := range c.FirstSolutionStrategies {
		for _, mh := range c.Metaheuristics {
			p := solver.StrategyPair{FirstSolution: fs, Metaheuristic: mh}
			if seen[p] {
				continue
			}
			seen[p] = true
			pairs = append(pairs, p)
		}
	}

	want := c.ResolvedWorkerCount()
	if len(pairs) < want {
		// Not enough distinct pairs to fill every worker slot: pad the rest
		// with the configured base pair rather than leaving workers idle.
		for len(pairs) < want {
			pairs = append(pairs, c.BasePair)
		}
	}
	if len(pairs) > want {
		pairs = pairs[:want]
	}
	return pairs
}

// workerResult is one worker's outcome, tagged with its stable id for the
// final tie-break.
type workerResult struct {
	workerID int
	pair     solver.StrategyPair
	solution *types.Solution
}

// Race runs one worker per generated strategy pair against a shared
// read-only model, then selects the winner by served volume (spec §4.6).
// Workers never share mutable state; the matrix and customer list backing m
// are read-only for the whole race, computed once beforehand.
func Race(ctx context.Context, m *model.Model, cfg Config) (*types.Solution, solver.StrategyPair) {
	pairs := cfg.GeneratePairs()

	raceDeadline := time.Now().Add(cfg.TimeLimit + raceGrace) // grace beyond the slowest worker's own limit
	raceCtx, cancel := context.WithDeadline(ctx, raceDeadline)
	defer cancel()

	results := make([]workerResult, len(pairs))
	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		go func(idx int, p solver.StrategyPair) {
			defer wg.Done()
			opts := solver.DefaultOptions().WithStrategy(p).WithTimeLimit(cfg.TimeLimit)
			sol := solver.Solve(raceCtx, m, opts)
			results[idx] = workerResult{workerID: idx, pair: p, solution: sol}
			metrics.RaceWorkerOutcomes.WithLabelValues(p.String(), solver.OutcomeLabel(sol)).Inc()
		}(i, pair)
	}
	wg.Wait()

	winner := selectWinner(results)
	logger.Log.Info("race complete",
		"workers", len(pairs), "winner_pair", winner.pair.String(), "served_volume", winner.solution.ServedVolume)

	return winner.solution, winner.pair
}

// selectWinner applies the spec's cascading tie-break: maximum served
// volume, then lower objective, then fewer vehicles, then fewer drops, then
// lowest (stable) worker id.
func selectWinner(results []workerResult) workerResult {
	best := results[0]
	for _, r := range results[1:] {
		if better(r, best) {
			best = r
		}
	}
	return best
}

func better(a, b workerResult) bool {
	sa, sb := a.solution, b.solution
	if sa.ServedVolume != sb.ServedVolume {
		return sa.ServedVolume > sb.ServedVolume
	}
	if sa.Objective != sb.Objective {
		return sa.Objective < sb.Objective
	}
	if sa.VehiclesUsed != sb.VehiclesUsed {
		return sa.VehiclesUsed < sb.VehiclesUsed
	}
	if len(sa.DroppedCustomers) != len(sb.DroppedCustomers) {
		return len(sa.DroppedCustomers) < len(sb.DroppedCustomers)
	}
	return a.workerID < b.workerID
}
