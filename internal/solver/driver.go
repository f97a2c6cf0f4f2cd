package solver

import (
	"context"
	"time"

	"routeplanner/internal/model"
	"routeplanner/internal/types"
	"routeplanner/pkg/logger"
	"routeplanner/pkg/metrics"
)

// Solve runs construction followed by local search under the configured
// strategy pair and time limit, then extracts a normalized Solution by
// walking each vehicle's node chain. It has no error return: an infeasible
// instance surfaces as Solution.IsFeasible=false with every customer
// dropped.
func Solve(ctx context.Context, m *model.Model, opts *Options) *types.Solution {
	if opts == nil {
		opts = DefaultOptions()
	}
	timer := metrics.SolveDuration.WithLabelValues(opts.Strategy.String())
	start := time.Now()
	defer func() { timer.Observe(time.Since(start).Seconds()) }()

	deadline := start.Add(opts.TimeLimit)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	routes, dropped := Construct(m, opts.Strategy.FirstSolution)
	routes, dropped = Improve(m, routes, dropped, opts.Strategy.Metaheuristic, deadline)

	if opts.LogSearch {
		logger.Log.Info("solver run finished construction+local search",
			"strategy", opts.Strategy.String(), "routes", len(routes), "dropped", len(dropped))
	}

	return extractSolution(m, routes, dropped)
}

// extractSolution walks each route's node chain into a types.Route, marking
// feasibility against the vehicle's own limits, and aggregates solution-wide
// totals. It guards against unbounded walks by capping extraction at
// NumCustomers+10 nodes per vehicle.
func extractSolution(m *model.Model, routes []Route, droppedIdx []int) *types.Solution {
	sol := &types.Solution{IsFeasible: true}

	walkCap := m.NumCustomers + 10

	for _, r := range routes {
		if len(r.Nodes) > walkCap {
			logger.Log.Error("route walk exceeded cap, aborting vehicle",
				"vehicle", m.Vehicles[r.VehicleIdx].InstanceID, "nodes", len(r.Nodes), "cap", walkCap)
			for _, n := range r.Nodes {
				droppedIdx = append(droppedIdx, n-m.NumDepots)
			}
			sol.IsFeasible = false
			continue
		}
		if len(r.Nodes) == 0 {
			continue
		}

		v := m.Vehicles[r.VehicleIdx]
		distM := distanceM(m, r.VehicleIdx, r.Nodes)
		timeSec := timeS(m, r.VehicleIdx, r.Nodes)

		customers := make([]types.Customer, 0, len(r.Nodes))
		var volume float64
		for _, n := range r.Nodes {
			c := m.Customers[n-m.NumDepots]
			customers = append(customers, c)
			volume += c.Volume
		}

		isFeasible := feasible(m, r.VehicleIdx, r.Nodes)

		route := types.Route{
			VehicleKind:     v.Kind,
			VehicleID:       v.InstanceID,
			Customers:       customers,
			DepotIndex:      v.DepotIndex,
			TotalDistanceKM: float64(distM) / 1000.0,
			TotalTimeMin:    float64(timeSec) / 60.0,
			TotalVolume:     volume,
			IsFeasible:      isFeasible,
		}
		sol.Routes = append(sol.Routes, route)
		sol.TotalDistanceKM += route.TotalDistanceKM
		sol.TotalTimeMin += route.TotalTimeMin
		sol.ServedVolume += volume
		sol.Objective += cost(m, r.VehicleIdx, r.Nodes)
		if !isFeasible {
			sol.IsFeasible = false
		}
	}

	sol.VehiclesUsed = len(sol.Routes)
	for _, k := range droppedIdx {
		if k < 0 || k >= len(m.Customers) {
			continue
		}
		sol.DroppedCustomers = append(sol.DroppedCustomers, m.Customers[k])
		sol.Objective += m.Drop.PenaltyDisjunction
	}

	if len(sol.Routes) == 0 && m.NumCustomers > 0 {
		sol.IsFeasible = false
	}

	return sol
}

// OutcomeLabel classifies a solution for the RunsTotal/race-worker-outcome
// metrics: "infeasible", "feasible_with_drops", or "feasible".
func OutcomeLabel(sol *types.Solution) string {
	if !sol.IsFeasible {
		return "infeasible"
	}
	if len(sol.DroppedCustomers) > 0 {
		return "feasible_with_drops"
	}
	return "feasible"
}
