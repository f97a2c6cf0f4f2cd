package solver

import (
	"math"
	"math/rand"
	"time"

	"routeplanner/internal/model"
)

// Improve applies local search to the constructed routes until the deadline
// passes or no improving move is found, dispatching the acceptance policy by
// metaheuristic. dropped customers may be picked up by Or-opt relocation
// into a feasible slot during the search.
func Improve(m *model.Model, routes []Route, dropped []int, meta Metaheuristic, deadline time.Time) ([]Route, []int) {
	switch meta {
	case MetaheuristicGuidedLocalSearch:
		return guidedLocalSearch(m, routes, dropped, deadline)
	case MetaheuristicTabuSearch:
		return tabuSearch(m, routes, dropped, deadline)
	case MetaheuristicSimulatedAnnealing:
		return simulatedAnnealing(m, routes, dropped, deadline)
	default:
		return descend(m, routes, dropped, deadline, nil)
	}
}

// totalCost is the sum of every route's vehicle-kind-weighted arc cost.
func totalCost(m *model.Model, routes []Route) int64 {
	var total int64
	for _, r := range routes {
		total += cost(m, r.VehicleIdx, r.Nodes)
	}
	return total
}

// twoOptMove tries reversing a sub-segment [i:j] within one route; it is the
// classic intra-route crossing-removal move.
func twoOptMove(m *model.Model, routes []Route, penalized func(a, b int) int64) (improved bool) {
	for ri := range routes {
		nodes := routes[ri].Nodes
		n := len(nodes)
		vIdx := routes[ri].VehicleIdx
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				candidate := make([]int, n)
				copy(candidate, nodes)
				reverse(candidate[i:j+1])
				if !feasible(m, vIdx, candidate) {
					continue
				}
				if weightedCost(m, vIdx, candidate, penalized) < weightedCost(m, vIdx, nodes, penalized) {
					routes[ri].Nodes = candidate
					nodes = candidate
					improved = true
				}
			}
		}
	}
	return improved
}

// orOptMove tries relocating a single customer (from its route, or from the
// dropped list) into the cheapest feasible position on another route or an
// unused vehicle; a routed customer whose cheapest position is back in its
// own route is left where it is.
func orOptMove(m *model.Model, routes []Route, dropped []int, penalized func(a, b int) int64) ([]Route, []int, bool) {
	improved := false

	for di, k := range dropped {
		node := m.CustomerNode(k)
		usedVehicles := make([]bool, len(m.Vehicles))
		for _, r := range routes {
			usedVehicles[r.VehicleIdx] = true
		}
		if slot, ok := bestSlotFor(m, routes, usedVehicles, node); ok {
			routes = applySlot(routes, usedVehicles, slot, node)
			dropped = removeAt(dropped, di)
			improved = true
			return routes, dropped, improved
		}
	}

	for ri := range routes {
		nodes := routes[ri].Nodes
		for pos, node := range nodes {
			without := make([]int, 0, len(nodes)-1)
			without = append(without, nodes[:pos]...)
			without = append(without, nodes[pos+1:]...)

			baseline := weightedCost(m, routes[ri].VehicleIdx, nodes, penalized)
			removed := weightedCost(m, routes[ri].VehicleIdx, without, penalized)

			usedVehicles := make([]bool, len(m.Vehicles))
			for _, r := range routes {
				usedVehicles[r.VehicleIdx] = true
			}
			trial := make([]Route, len(routes))
			copy(trial, routes)
			trial[ri] = Route{VehicleIdx: routes[ri].VehicleIdx, Nodes: without}

			slot, ok := bestSlotFor(m, trial, usedVehicles, node)
			if !ok || slot.routeIdx == ri {
				continue
			}
			if removed+slot.cost < baseline {
				trial = applySlot(trial, usedVehicles, slot, node)
				routes = trial
				improved = true
				return routes, dropped, improved
			}
		}
	}

	return routes, dropped, improved
}

func weightedCost(m *model.Model, vehicleIdx int, nodes []int, penalized func(a, b int) int64) int64 {
	if penalized == nil {
		return cost(m, vehicleIdx, nodes)
	}
	full := chain(m, vehicleIdx, nodes)
	kind := m.Vehicles[vehicleIdx].Kind
	var total int64
	for i := 0; i+1 < len(full); i++ {
		total += m.Costs.ArcCost(full[i], full[i+1], kind) + penalized(full[i], full[i+1])
	}
	return total
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// descend runs 2-opt then Or-opt to a local optimum of the arc cost plus
// penaltyLookup's per-arc penalty (nil means plain arc cost), stopping early
// once the deadline passes.
func descend(m *model.Model, routes []Route, dropped []int, deadline time.Time, penaltyLookup func(a, b int) int64) ([]Route, []int) {
	for time.Now().Before(deadline) {
		improvedAny := false
		if twoOptMove(m, routes, penaltyLookup) {
			improvedAny = true
		}
		var orImproved bool
		routes, dropped, orImproved = orOptMove(m, routes, dropped, penaltyLookup)
		improvedAny = improvedAny || orImproved
		if !improvedAny {
			break
		}
	}
	return routes, dropped
}

// guidedLocalSearch escapes local optima by penalizing frequently-traversed
// arcs (the guided local search "utility" heuristic), biasing subsequent
// descents away from them.
func guidedLocalSearch(m *model.Model, routes []Route, dropped []int, deadline time.Time) ([]Route, []int) {
	penalty := make(map[[2]int]int64)
	lambda := float64(1)

	for time.Now().Before(deadline) {
		lookup := func(a, b int) int64 {
			return int64(lambda) * penalty[[2]int{a, b}]
		}
		before := totalCost(m, routes)
		routes, dropped = descend(m, routes, dropped, deadline, lookup)
		if totalCost(m, routes) >= before {
			// Penalize the costliest arc in the current solution to push the
			// next descent away from it.
			worstA, worstB, worstCost := -1, -1, int64(-1)
			for _, r := range routes {
				full := chain(m, r.VehicleIdx, r.Nodes)
				kind := m.Vehicles[r.VehicleIdx].Kind
				for i := 0; i+1 < len(full); i++ {
					c := m.Costs.ArcCost(full[i], full[i+1], kind)
					if c > worstCost {
						worstCost, worstA, worstB = c, full[i], full[i+1]
					}
				}
			}
			if worstA == -1 {
				break
			}
			penalty[[2]int{worstA, worstB}]++
		} else {
			break
		}
	}
	return routes, dropped
}

// tabuSearch forbids re-adding an arc just removed for a short tenure,
// preventing short cycles back to a recently visited solution.
func tabuSearch(m *model.Model, routes []Route, dropped []int, deadline time.Time) ([]Route, []int) {
	tabu := make(map[[2]int]int)
	tenure := 10
	iteration := 0

	for time.Now().Before(deadline) {
		iteration++
		lookup := func(a, b int) int64 {
			if expires, tabooed := tabu[[2]int{a, b}]; tabooed && expires > iteration {
				return 1 << 30 // effectively forbidden this iteration
			}
			return 0
		}
		before := totalCost(m, routes)
		newRoutes, newDropped := descend(m, cloneRoutes(routes), dropped, deadline, lookup)
		if totalCost(m, newRoutes) < before {
			for _, r := range routes {
				full := chain(m, r.VehicleIdx, r.Nodes)
				for i := 0; i+1 < len(full); i++ {
					tabu[[2]int{full[i], full[i+1]}] = iteration + tenure
				}
			}
			routes, dropped = newRoutes, newDropped
		} else {
			break
		}
	}
	return routes, dropped
}

// simulatedAnnealing accepts worsening Or-opt/2-opt moves with a probability
// that decays over the time budget, helping escape local optima early while
// converging to pure descent near the deadline.
func simulatedAnnealing(m *model.Model, routes []Route, dropped []int, deadline time.Time) ([]Route, []int) {
	rng := rand.New(rand.NewSource(1))
	start := time.Now()
	budget := deadline.Sub(start)
	if budget <= 0 {
		return routes, dropped
	}

	best := cloneRoutes(routes)
	bestDropped := append([]int{}, dropped...)
	bestCost := totalCost(m, best)

	for time.Now().Before(deadline) {
		elapsed := time.Since(start)
		temperature := 1 - float64(elapsed)/float64(budget)
		if temperature <= 0 {
			break
		}

		candidateRoutes, candidateDropped, changed := orOptMove(m, cloneRoutes(routes), append([]int{}, dropped...), nil)
		if !changed {
			if !twoOptMove(m, candidateRoutes, nil) {
				break
			}
		}

		newCost := totalCost(m, candidateRoutes)
		curCost := totalCost(m, routes)
		if newCost < curCost || rng.Float64() < math.Exp(-float64(newCost-curCost)/(temperature*1000)) {
			routes, dropped = candidateRoutes, candidateDropped
			if newCost < bestCost {
				best, bestDropped, bestCost = cloneRoutes(routes), append([]int{}, dropped...), newCost
			}
		}
	}

	return best, bestDropped
}

func cloneRoutes(routes []Route) []Route {
	out := make([]Route, len(routes))
	for i, r := range routes {
		out[i] = r.Clone()
	}
	return out
}
