package solver

import (
	"math"
	"sort"

	"routeplanner/internal/model"
)

// Construct dispatches to the chosen first-solution strategy, mirroring
// OR-Tools' construction heuristic names. It returns the initial routes plus
// the customer indices (k, 0-based into model.Customers) that could not be
// placed on any vehicle.
func Construct(m *model.Model, strategy FirstSolutionStrategy) ([]Route, []int) {
	switch strategy {
	case FirstSolutionPathCheapestArc:
		return buildPathCheapestArc(m)
	case FirstSolutionSavings:
		return buildSavings(m)
	case FirstSolutionParallelCheapestInsertion:
		return buildParallelCheapestInsertion(m)
	case FirstSolutionGlobalCheapestArc:
		return buildGlobalCheapestArc(m)
	case FirstSolutionBestInsertion:
		return buildBestInsertion(m)
	case FirstSolutionSweep:
		return buildSweep(m)
	default:
		return buildSavings(m)
	}
}

// buildPathCheapestArc extends each vehicle's route one hop at a time,
// always choosing the cheapest feasible next customer, until no customer can
// be feasibly appended, then moves to the next vehicle.
func buildPathCheapestArc(m *model.Model) ([]Route, []int) {
	unassigned := allCustomers(m)
	var routes []Route

	for vIdx := range m.Vehicles {
		if len(unassigned) == 0 {
			break
		}
		route := Route{VehicleIdx: vIdx}
		cur := m.VehicleStart(vIdx)
		kind := m.Vehicles[vIdx].Kind

		for {
			bestPos, bestCost := -1, int64(math.MaxInt64)
			for pos, k := range unassigned {
				node := m.CustomerNode(k)
				candidate := append(append([]int{}, route.Nodes...), node)
				if !feasible(m, vIdx, candidate) {
					continue
				}
				c := m.Costs.ArcCost(cur, node, kind)
				if c < bestCost {
					bestCost, bestPos = c, pos
				}
			}
			if bestPos == -1 {
				break
			}
			k := unassigned[bestPos]
			node := m.CustomerNode(k)
			route.Nodes = append(route.Nodes, node)
			cur = node
			unassigned = removeAt(unassigned, bestPos)
		}

		if len(route.Nodes) > 0 {
			routes = append(routes, route)
		}
	}

	return routes, unassigned
}

// buildSweep orders customers by polar angle around the main depot and fills
// vehicles in that angular order, starting a new vehicle whenever the
// current one can no longer feasibly take the next customer.
func buildSweep(m *model.Model) ([]Route, []int) {
	depot := m.Registry.Locations()[m.Registry.MainDepotIndex()]
	order := allCustomers(m)
	sort.Slice(order, func(i, j int) bool {
		ci := m.Customers[order[i]].Coord
		cj := m.Customers[order[j]].Coord
		return math.Atan2(ci.Lat-depot.Lat, ci.Lon-depot.Lon) < math.Atan2(cj.Lat-depot.Lat, cj.Lon-depot.Lon)
	})

	var routes []Route
	var dropped []int
	if len(m.Vehicles) == 0 {
		return routes, order
	}

	vIdx := 0
	current := Route{VehicleIdx: vIdx}
	flush := func() {
		if len(current.Nodes) > 0 {
			routes = append(routes, current)
		}
	}

	for _, k := range order {
		node := m.CustomerNode(k)
		placed := false
		for vIdx < len(m.Vehicles) {
			candidate := append(append([]int{}, current.Nodes...), node)
			if feasible(m, vIdx, candidate) {
				current.Nodes = candidate
				placed = true
				break
			}
			flush()
			vIdx++
			if vIdx < len(m.Vehicles) {
				current = Route{VehicleIdx: vIdx}
			}
		}
		if !placed {
			dropped = append(dropped, k)
		}
	}
	flush()

	return routes, dropped
}

// arcPair is a candidate merge edge between two customer nodes, ordered by
// priority (ascending distance for global-cheapest-arc, descending savings
// value for savings).
type arcPair struct {
	i, j     int
	priority float64
}

// mergeChains greedily merges single-customer chains into longer chains in
// the given priority order, skipping merges that aren't feasible for any
// vehicle. It implements the shared machinery behind both the savings and
// global-cheapest-arc construction heuristics.
func mergeChains(m *model.Model, pairs []arcPair) []Route {
	chains := make(map[int]*[]int, m.NumCustomers)
	for k := 0; k < m.NumCustomers; k++ {
		node := m.CustomerNode(k)
		c := []int{node}
		chains[node] = &c
	}

	for _, p := range pairs {
		ri, oki := chains[p.i]
		rj, okj := chains[p.j]
		if !oki || !okj || ri == rj {
			continue
		}

		var merged []int
		switch {
		case (*ri)[len(*ri)-1] == p.i && (*rj)[0] == p.j:
			merged = append(append([]int{}, (*ri)...), (*rj)...)
		case (*rj)[len(*rj)-1] == p.j && (*ri)[0] == p.i:
			merged = append(append([]int{}, (*rj)...), (*ri)...)
		default:
			continue
		}

		if !feasibleForAnyVehicle(m, merged) {
			continue
		}

		for _, n := range merged {
			chains[n] = &merged
		}
	}

	seen := make(map[*[]int]bool)
	var uniqueChains [][]int
	for _, c := range chains {
		if seen[c] {
			continue
		}
		seen[c] = true
		uniqueChains = append(uniqueChains, *c)
	}

	return assignChainsToVehicles(m, uniqueChains)
}

// assignChainsToVehicles greedily binds customer-only chains, longest chain
// first, each to the first unused vehicle instance in fleet order that can
// serve it. Chains that fit no vehicle contribute their customers to the
// dropped list via the caller diffing against allCustomers.
func assignChainsToVehicles(m *model.Model, chains [][]int) []Route {
	sort.Slice(chains, func(i, j int) bool { return len(chains[i]) > len(chains[j]) })

	used := make([]bool, len(m.Vehicles))
	var routes []Route
	for _, c := range chains {
		for vIdx := range m.Vehicles {
			if used[vIdx] {
				continue
			}
			if feasible(m, vIdx, c) {
				used[vIdx] = true
				routes = append(routes, Route{VehicleIdx: vIdx, Nodes: c})
				break
			}
		}
	}
	return routes
}

// buildSavings implements the Clarke-Wright savings construction: pairs of
// customers that would cost more to serve from separate routes than a single
// merged route are joined first.
func buildSavings(m *model.Model) ([]Route, []int) {
	depot := m.Registry.MainDepotIndex()
	var pairs []arcPair
	for i := 0; i < m.NumCustomers; i++ {
		ni := m.CustomerNode(i)
		for j := 0; j < m.NumCustomers; j++ {
			if i == j {
				continue
			}
			nj := m.CustomerNode(j)
			saving := float64(m.Dims.Distance[depot][ni]+m.Dims.Distance[depot][nj]-m.Dims.Distance[ni][nj])
			if saving <= 0 {
				continue
			}
			pairs = append(pairs, arcPair{i: ni, j: nj, priority: saving})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].priority > pairs[j].priority })

	routes := mergeChains(m, pairs)
	return routes, dropFromRoutes(m, routes)
}

// buildGlobalCheapestArc merges chains in ascending order of raw arc
// distance, taking a global view of which edge is cheapest across the whole
// remaining instance rather than building one route to completion first.
func buildGlobalCheapestArc(m *model.Model) ([]Route, []int) {
	var pairs []arcPair
	for i := 0; i < m.NumCustomers; i++ {
		ni := m.CustomerNode(i)
		for j := 0; j < m.NumCustomers; j++ {
			if i == j {
				continue
			}
			nj := m.CustomerNode(j)
			pairs = append(pairs, arcPair{i: ni, j: nj, priority: float64(m.Dims.Distance[ni][nj])})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].priority < pairs[j].priority })

	routes := mergeChains(m, pairs)
	return routes, dropFromRoutes(m, routes)
}

// insertionSlot describes inserting a customer node into a route at a given
// position, with the incremental cost that insertion would add.
type insertionSlot struct {
	vehicleIdx int
	routeIdx   int // index into the working routes slice, or -1 for a new route
	position   int
	cost       int64
}

// bestSlotFor finds the cheapest feasible position to insert node across all
// working routes plus one unused vehicle (a fresh route), or ok=false if no
// slot is feasible anywhere.
func bestSlotFor(m *model.Model, routes []Route, usedVehicles []bool, node int) (insertionSlot, bool) {
	best := insertionSlot{cost: math.MaxInt64}
	found := false

	for ri, r := range routes {
		kind := m.Vehicles[r.VehicleIdx].Kind
		full := chain(m, r.VehicleIdx, r.Nodes)
		for pos := 0; pos+1 < len(full); pos++ {
			candidate := make([]int, 0, len(r.Nodes)+1)
			candidate = append(candidate, r.Nodes[:pos]...)
			candidate = append(candidate, node)
			candidate = append(candidate, r.Nodes[pos:]...)
			if !feasible(m, r.VehicleIdx, candidate) {
				continue
			}
			inc := m.Costs.ArcCost(full[pos], node, kind) + m.Costs.ArcCost(node, full[pos+1], kind) - m.Costs.ArcCost(full[pos], full[pos+1], kind)
			if inc < best.cost {
				best = insertionSlot{vehicleIdx: r.VehicleIdx, routeIdx: ri, position: pos, cost: inc}
				found = true
			}
		}
	}

	for vIdx, used := range usedVehicles {
		if used {
			continue
		}
		if feasible(m, vIdx, []int{node}) {
			c := m.Costs.ArcCost(m.VehicleStart(vIdx), node, m.Vehicles[vIdx].Kind) + m.Costs.ArcCost(node, m.VehicleEnd(vIdx), m.Vehicles[vIdx].Kind)
			if c < best.cost {
				best = insertionSlot{vehicleIdx: vIdx, routeIdx: -1, position: 0, cost: c}
				found = true
			}
		}
	}

	return best, found
}

func applySlot(routes []Route, usedVehicles []bool, slot insertionSlot, node int) []Route {
	if slot.routeIdx == -1 {
		usedVehicles[slot.vehicleIdx] = true
		return append(routes, Route{VehicleIdx: slot.vehicleIdx, Nodes: []int{node}})
	}
	r := routes[slot.routeIdx]
	nodes := make([]int, 0, len(r.Nodes)+1)
	nodes = append(nodes, r.Nodes[:slot.position]...)
	nodes = append(nodes, node)
	nodes = append(nodes, r.Nodes[slot.position:]...)
	routes[slot.routeIdx].Nodes = nodes
	return routes
}

// buildParallelCheapestInsertion builds all routes simultaneously: at each
// step it inserts the single (customer, route, position) combination with
// the globally cheapest incremental cost across every open route and every
// unused vehicle.
func buildParallelCheapestInsertion(m *model.Model) ([]Route, []int) {
	return insertionLoop(m, func(candidates map[int]insertionSlot) int {
		bestK, bestCost := -1, int64(math.MaxInt64)
		for k, slot := range candidates {
			if slot.cost < bestCost {
				bestCost, bestK = slot.cost, k
			}
		}
		return bestK
	})
}

// buildBestInsertion inserts, at each step, the unassigned customer that is
// hardest to place: the one whose cheapest feasible slot is the most
// expensive among all customers, into that cheapest slot.
func buildBestInsertion(m *model.Model) ([]Route, []int) {
	return insertionLoop(m, func(candidates map[int]insertionSlot) int {
		// Only each customer's cheapest slot is known here; no second-best
		// cost is tracked.
		bestK, bestCost := -1, int64(math.MinInt64)
		for k, slot := range candidates {
			if slot.cost > bestCost {
				bestCost, bestK = slot.cost, k
			}
		}
		return bestK
	})
}

// insertionLoop repeatedly computes the best feasible slot for every
// unassigned customer, asks pick which one to commit, and applies it, until
// no unassigned customer has any feasible slot left.
func insertionLoop(m *model.Model, pick func(map[int]insertionSlot) int) ([]Route, []int) {
	unassigned := allCustomers(m)
	var routes []Route
	usedVehicles := make([]bool, len(m.Vehicles))

	for len(unassigned) > 0 {
		candidates := make(map[int]insertionSlot, len(unassigned))
		for _, k := range unassigned {
			node := m.CustomerNode(k)
			if slot, ok := bestSlotFor(m, routes, usedVehicles, node); ok {
				candidates[k] = slot
			}
		}
		if len(candidates) == 0 {
			break
		}

		k := pick(candidates)
		node := m.CustomerNode(k)
		routes = applySlot(routes, usedVehicles, candidates[k], node)
		unassigned = removeValue(unassigned, k)
	}

	return routes, unassigned
}

func allCustomers(m *model.Model) []int {
	out := make([]int, m.NumCustomers)
	for i := range out {
		out[i] = i
	}
	return out
}

func removeAt(s []int, idx int) []int {
	out := make([]int, 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out
}

func removeValue(s []int, v int) []int {
	out := make([]int, 0, len(s))
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// dropFromRoutes diffs the customers placed on routes against the full
// customer set, returning the ones left unassigned.
func dropFromRoutes(m *model.Model, routes []Route) []int {
	placed := make(map[int]bool)
	for _, r := range routes {
		for _, n := range r.Nodes {
			placed[n] = true
		}
	}
	var dropped []int
	for k := 0; k < m.NumCustomers; k++ {
		if !placed[m.CustomerNode(k)] {
			dropped = append(dropped, k)
		}
	}
	return dropped
}
