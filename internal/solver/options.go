package solver

import "time"

// Options configures a single solver run. It follows the builder pattern:
// DefaultOptions() followed by chained With* calls.
type Options struct {
	Strategy  StrategyPair
	TimeLimit time.Duration
	LogSearch bool
}

// DefaultOptions returns conservative defaults: automatic strategy, a
// 30-second time limit, search logging off.
func DefaultOptions() *Options {
	return &Options{
		Strategy:  StrategyPair{FirstSolution: FirstSolutionAutomatic, Metaheuristic: MetaheuristicAutomatic},
		TimeLimit: 30 * time.Second,
	}
}

// WithStrategy sets the (first-solution, metaheuristic) pair.
func (o *Options) WithStrategy(p StrategyPair) *Options {
	o.Strategy = p
	return o
}

// WithTimeLimit sets the wall-clock budget for construction plus local
// search.
func (o *Options) WithTimeLimit(d time.Duration) *Options {
	o.TimeLimit = d
	return o
}

// WithLogSearch toggles verbose search logging.
func (o *Options) WithLogSearch(enabled bool) *Options {
	o.LogSearch = enabled
	return o
}
