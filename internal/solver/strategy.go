// Package solver implements the solver driver (C5): construction heuristics,
// local-search metaheuristics, and the walk that extracts a normalized
// Solution from a built Model.
package solver

// FirstSolutionStrategy selects the construction heuristic used to build an
// initial, possibly infeasible-for-some-customers solution.
type FirstSolutionStrategy int

const (
	FirstSolutionAutomatic FirstSolutionStrategy = iota
	FirstSolutionPathCheapestArc
	FirstSolutionSavings
	FirstSolutionParallelCheapestInsertion
	FirstSolutionGlobalCheapestArc
	FirstSolutionBestInsertion
	FirstSolutionSweep
)

func (s FirstSolutionStrategy) String() string {
	switch s {
	case FirstSolutionPathCheapestArc:
		return "path_cheapest_arc"
	case FirstSolutionSavings:
		return "savings"
	case FirstSolutionParallelCheapestInsertion:
		return "parallel_cheapest_insertion"
	case FirstSolutionGlobalCheapestArc:
		return "global_cheapest_arc"
	case FirstSolutionBestInsertion:
		return "best_insertion"
	case FirstSolutionSweep:
		return "sweep"
	default:
		return "automatic"
	}
}

// ParseFirstSolutionStrategy maps a config string to its enum value.
// Unknown values fall back to FirstSolutionAutomatic.
func ParseFirstSolutionStrategy(s string) FirstSolutionStrategy {
	switch s {
	case "path_cheapest_arc":
		return FirstSolutionPathCheapestArc
	case "savings":
		return FirstSolutionSavings
	case "parallel_cheapest_insertion":
		return FirstSolutionParallelCheapestInsertion
	case "global_cheapest_arc":
		return FirstSolutionGlobalCheapestArc
	case "best_insertion":
		return FirstSolutionBestInsertion
	case "sweep":
		return FirstSolutionSweep
	default:
		return FirstSolutionAutomatic
	}
}

// Metaheuristic selects the local-search strategy applied after construction.
type Metaheuristic int

const (
	MetaheuristicAutomatic Metaheuristic = iota
	MetaheuristicGuidedLocalSearch
	MetaheuristicTabuSearch
	MetaheuristicSimulatedAnnealing
)

func (m Metaheuristic) String() string {
	switch m {
	case MetaheuristicGuidedLocalSearch:
		return "guided_local_search"
	case MetaheuristicTabuSearch:
		return "tabu_search"
	case MetaheuristicSimulatedAnnealing:
		return "simulated_annealing"
	default:
		return "automatic"
	}
}

// ParseMetaheuristic maps a config string to its enum value. Unknown values
// fall back to MetaheuristicAutomatic.
func ParseMetaheuristic(s string) Metaheuristic {
	switch s {
	case "guided_local_search":
		return MetaheuristicGuidedLocalSearch
	case "tabu_search":
		return MetaheuristicTabuSearch
	case "simulated_annealing":
		return MetaheuristicSimulatedAnnealing
	default:
		return MetaheuristicAutomatic
	}
}

// StrategyPair is one (first-solution, metaheuristic) combination, the unit
// C6 races workers over.
type StrategyPair struct {
	FirstSolution FirstSolutionStrategy
	Metaheuristic Metaheuristic
}

// String renders the pair as "first_solution+metaheuristic", used for
// labeling metrics and logs.
func (p StrategyPair) String() string {
	return p.FirstSolution.String() + "+" + p.Metaheuristic.String()
}
