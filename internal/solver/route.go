package solver

import "routeplanner/internal/model"

// Route is one vehicle's node chain under construction: the customer nodes
// it visits, in order, excluding the implicit start/end depot.
type Route struct {
	VehicleIdx int
	Nodes      []int // matrix node indices, customers only
}

// Clone returns a deep copy so local-search moves can be tried and discarded.
func (r Route) Clone() Route {
	nodes := make([]int, len(r.Nodes))
	copy(nodes, r.Nodes)
	return Route{VehicleIdx: r.VehicleIdx, Nodes: nodes}
}

// chain returns the full node sequence including the vehicle's start and end
// depot.
func chain(m *model.Model, vehicleIdx int, nodes []int) []int {
	start := m.VehicleStart(vehicleIdx)
	end := m.VehicleEnd(vehicleIdx)
	full := make([]int, 0, len(nodes)+2)
	full = append(full, start)
	full = append(full, nodes...)
	full = append(full, end)
	return full
}

// demand sums the capacity dimension over nodes (depot nodes contribute 0).
func demand(m *model.Model, nodes []int) int64 {
	var total int64
	for _, n := range nodes {
		total += m.Dims.Demand[n]
	}
	return total
}

// distanceM sums the raw distance dimension (meters) over the full chain,
// including start and end depot legs.
func distanceM(m *model.Model, vehicleIdx int, nodes []int) int64 {
	full := chain(m, vehicleIdx, nodes)
	var total int64
	for i := 0; i+1 < len(full); i++ {
		total += m.Dims.Distance[full[i]][full[i+1]]
	}
	return total
}

// timeS sums the time dimension (seconds, including per-customer service
// time charged on departure) over the full chain.
func timeS(m *model.Model, vehicleIdx int, nodes []int) int64 {
	full := chain(m, vehicleIdx, nodes)
	var total int64
	for i := 0; i+1 < len(full); i++ {
		total += m.Dims.TimeTransit(full[i], full[i+1], vehicleIdx)
	}
	return total
}

// cost sums the vehicle-kind-weighted arc cost over the full chain; this is
// the objective local search minimizes, distinct from the raw distance
// dimension used for feasibility.
func cost(m *model.Model, vehicleIdx int, nodes []int) int64 {
	full := chain(m, vehicleIdx, nodes)
	kind := m.Vehicles[vehicleIdx].Kind
	var total int64
	for i := 0; i+1 < len(full); i++ {
		total += m.Costs.ArcCost(full[i], full[i+1], kind)
	}
	return total
}

// feasible checks a candidate node list against all four hard dimensions for
// the given vehicle instance.
func feasible(m *model.Model, vehicleIdx int, nodes []int) bool {
	v := m.Vehicles[vehicleIdx]

	if demand(m, nodes) > v.CapacityDemand {
		return false
	}
	if float64(distanceM(m, vehicleIdx, nodes)) > v.MaxDistanceM {
		return false
	}
	if v.MaxStops > 0 && len(nodes) > v.MaxStops {
		return false
	}
	if v.MaxWorkSeconds > 0 && float64(timeS(m, vehicleIdx, nodes)) > v.MaxWorkSeconds {
		return false
	}
	return true
}

// feasibleForAnyVehicle reports whether at least one vehicle instance could
// serve the given node chain, used while merging customer-only chains before
// a concrete vehicle is assigned.
func feasibleForAnyVehicle(m *model.Model, nodes []int) bool {
	for v := range m.Vehicles {
		if feasible(m, v, nodes) {
			return true
		}
	}
	return false
}
