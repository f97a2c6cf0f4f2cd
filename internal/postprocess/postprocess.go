// Package postprocess implements the post-processor (C7): optional greedy
// re-sequencing of each winning route from the main depot, with feasibility
// re-validation against the vehicle's hard limits.
package postprocess

import (
	"routeplanner/internal/model"
	"routeplanner/internal/types"
	"routeplanner/pkg/logger"
)

// ReconfigureFromMainDepot re-homes every route to the registry's main
// depot, re-sequences its customers greedily by nearest neighbor, and
// re-validates the result against the originating vehicle's hard limits.
// Customers are never dropped here even if the reconfigured route turns out
// infeasible; the route is kept and marked IsFeasible=false, with a warning
// logged.
func ReconfigureFromMainDepot(m *model.Model, sol *types.Solution) *types.Solution {
	mainDepotIdx := m.Registry.MainDepotIndex()
	customerNode := customerNodeIndex(m)

	out := &types.Solution{
		DroppedCustomers: sol.DroppedCustomers,
		IsFeasible:       true,
	}

	for _, r := range sol.Routes {
		v := vehicleByID(m, r.VehicleID)
		sequence := nearestNeighborOrder(m, mainDepotIdx, r.Customers, customerNode)

		distM := routeDistanceM(m, mainDepotIdx, sequence, customerNode)
		timeSec := routeTimeS(m, mainDepotIdx, sequence, customerNode, v)
		var volume float64
		for _, c := range sequence {
			volume += c.Volume
		}

		feasible := validateAgainstLimits(v, sequence, distM, timeSec)
		if !feasible {
			logger.Log.Warn("post-processed route violates vehicle hard limits, keeping it marked infeasible",
				"vehicle", r.VehicleID, "distance_m", distM, "time_s", timeSec)
		}

		reconfigured := types.Route{
			VehicleKind:     r.VehicleKind,
			VehicleID:       r.VehicleID,
			Customers:       sequence,
			DepotIndex:      mainDepotIdx,
			TotalDistanceKM: float64(distM) / 1000.0,
			TotalTimeMin:    float64(timeSec) / 60.0,
			TotalVolume:     volume,
			IsFeasible:      feasible,
		}
		out.Routes = append(out.Routes, reconfigured)
		out.TotalDistanceKM += reconfigured.TotalDistanceKM
		out.TotalTimeMin += reconfigured.TotalTimeMin
		out.ServedVolume += volume
		out.Objective += cost(m, mainDepotIdx, sequence, customerNode, v)
		if !feasible {
			out.IsFeasible = false
		}
	}

	return out
}

// customerNodeIndex maps a customer ID to its matrix node index, built once
// per reconfiguration since routes only carry Customer values, not indices.
func customerNodeIndex(m *model.Model) map[string]int {
	idx := make(map[string]int, len(m.Customers))
	for k, c := range m.Customers {
		idx[c.ID] = m.CustomerNode(k)
	}
	return idx
}

func vehicleByID(m *model.Model, id string) model.Vehicle {
	for _, v := range m.Vehicles {
		if v.InstanceID == id {
			return v
		}
	}
	return model.Vehicle{}
}

// nearestNeighborOrder starts at the main depot and repeatedly selects the
// nearest remaining customer by raw distance, per spec §4.7.
func nearestNeighborOrder(m *model.Model, startNode int, customers []types.Customer, nodeOf map[string]int) []types.Customer {
	remaining := append([]types.Customer{}, customers...)
	ordered := make([]types.Customer, 0, len(customers))
	cur := startNode

	for len(remaining) > 0 {
		bestIdx, bestDist := -1, int64(-1)
		for i, c := range remaining {
			d := m.Dims.Distance[cur][nodeOf[c.ID]]
			if bestIdx == -1 || d < bestDist {
				bestIdx, bestDist = i, d
			}
		}
		ordered = append(ordered, remaining[bestIdx])
		cur = nodeOf[remaining[bestIdx].ID]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return ordered
}

func routeDistanceM(m *model.Model, startNode int, sequence []types.Customer, nodeOf map[string]int) int64 {
	nodes := nodeChain(startNode, sequence, nodeOf)
	var total int64
	for i := 0; i+1 < len(nodes); i++ {
		total += m.Dims.Distance[nodes[i]][nodes[i+1]]
	}
	return total
}

// routeTimeS sums travel duration plus service time per customer departed
// from, matching the time dimension's transit rule.
func routeTimeS(m *model.Model, startNode int, sequence []types.Customer, nodeOf map[string]int, v model.Vehicle) int64 {
	nodes := nodeChain(startNode, sequence, nodeOf)
	var total int64
	for i := 0; i+1 < len(nodes); i++ {
		total += m.Dims.Duration[nodes[i]][nodes[i+1]]
		if i > 0 { // nodes[0] is the depot; service time only charged leaving a customer
			total += int64(v.ServiceSeconds)
		}
	}
	return total
}

func cost(m *model.Model, startNode int, sequence []types.Customer, nodeOf map[string]int, v model.Vehicle) int64 {
	nodes := nodeChain(startNode, sequence, nodeOf)
	var total int64
	for i := 0; i+1 < len(nodes); i++ {
		total += m.Costs.ArcCost(nodes[i], nodes[i+1], v.Kind)
	}
	return total
}

func nodeChain(startNode int, sequence []types.Customer, nodeOf map[string]int) []int {
	nodes := make([]int, 0, len(sequence)+2)
	nodes = append(nodes, startNode)
	for _, c := range sequence {
		nodes = append(nodes, nodeOf[c.ID])
	}
	nodes = append(nodes, startNode)
	return nodes
}

// validateAgainstLimits re-checks the four hard dimensions for the
// reconfigured route; it never inspects stops/capacity differently than the
// original solve since reconfiguration doesn't change customer membership.
func validateAgainstLimits(v model.Vehicle, sequence []types.Customer, distM, timeSec int64) bool {
	var demand int64
	for _, c := range sequence {
		demand += c.Demand
	}
	if demand > v.CapacityDemand {
		return false
	}
	if float64(distM) > v.MaxDistanceM {
		return false
	}
	if v.MaxStops > 0 && len(sequence) > v.MaxStops {
		return false
	}
	if v.MaxWorkSeconds > 0 && float64(timeSec) > v.MaxWorkSeconds {
		return false
	}
	return true
}
