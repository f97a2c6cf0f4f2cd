package model

import "routeplanner/internal/types"

// Dimensions holds the per-node/per-arc transit data and per-vehicle maxima
// for the four hard dimensions (capacity, distance, stops, time). All four
// start with zero slack; only Time leaves its cumul start unconstrained, per
// spec §4.4.
type Dimensions struct {
	// Demand[j] is the capacity consumed by visiting node j (0 for depots).
	Demand []int64
	// CapacityMax[v] is vehicle v's capacity ceiling in hundredths of the
	// volume unit (Vehicle.CapacityDemand, already scaled).
	CapacityMax []int64

	// Distance is the raw distance matrix in meters, reused directly as the
	// distance dimension's per-arc transit.
	Distance [][]int64
	// DistanceMax[v] is vehicle v's distance ceiling in meters.
	DistanceMax []float64

	// StopsMax[v] is vehicle v's stop-count ceiling; 0 means unbounded.
	StopsMax []int

	// Duration is the raw travel-time matrix in seconds.
	Duration [][]int64
	// ServiceSeconds[v] is charged once per customer node departed from.
	ServiceSeconds []float64
	// TimeMax[v] is vehicle v's total elapsed-time ceiling in seconds; 0
	// means unbounded.
	TimeMax []float64

	numDepots int
}

// BuildDimensions derives per-node demand from the customer list and
// per-vehicle maxima from the expanded fleet.
func BuildDimensions(customers []types.Customer, vehicles []Vehicle, distance, duration [][]int64, numDepots int) Dimensions {
	n := numDepots + len(customers)
	demand := make([]int64, n)
	for i, c := range customers {
		demand[numDepots+i] = c.Demand
	}

	capMax := make([]int64, len(vehicles))
	distMax := make([]float64, len(vehicles))
	stopsMax := make([]int, len(vehicles))
	svc := make([]float64, len(vehicles))
	timeMax := make([]float64, len(vehicles))
	for i, v := range vehicles {
		capMax[i] = v.CapacityDemand
		distMax[i] = v.MaxDistanceM
		stopsMax[i] = v.MaxStops
		svc[i] = v.ServiceSeconds
		timeMax[i] = v.MaxWorkSeconds
	}

	return Dimensions{
		Demand:         demand,
		CapacityMax:    capMax,
		Distance:       distance,
		DistanceMax:    distMax,
		StopsMax:       stopsMax,
		Duration:       duration,
		ServiceSeconds: svc,
		TimeMax:        timeMax,
		numDepots:      numDepots,
	}
}

// IsCustomerNode reports whether node j is a customer (not a depot).
func (d Dimensions) IsCustomerNode(j int) bool {
	return j >= d.numDepots
}

// StopTransit is the unary stops-dimension transit for arc i->j: 1 if the
// successor is a customer node, else 0.
func (d Dimensions) StopTransit(j int) int64 {
	if d.IsCustomerNode(j) {
		return 1
	}
	return 0
}

// TimeTransit is the time-dimension transit for arc i->j under vehicle v:
// travel duration plus v's per-customer service time, charged on departure
// from i.
func (d Dimensions) TimeTransit(i, j, vehicleIdx int) int64 {
	transit := d.Duration[i][j]
	if d.IsCustomerNode(i) {
		transit += int64(d.ServiceSeconds[vehicleIdx])
	}
	return transit
}
