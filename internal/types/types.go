// Package types defines the shared data model for the CVRP planning core:
// customers, vehicle fleet configuration, locations, distance matrices,
// pre-allocation partitions, routes and solutions. None of these records are
// mutated by the core once created; each component either builds a new
// record or borrows one read-only.
package types

import "math"

// VehicleKind identifies one of the fleet categories the center-zone and
// far-low-volume arc-cost modifiers key off of.
type VehicleKind int

const (
	VehicleKindUnspecified VehicleKind = iota
	VehicleKindInternal
	VehicleKindCenter
	VehicleKindExternal
	VehicleKindSpecial
)

// String returns the lower_snake_case name used in config and logs.
func (k VehicleKind) String() string {
	switch k {
	case VehicleKindInternal:
		return "internal"
	case VehicleKindCenter:
		return "center"
	case VehicleKindExternal:
		return "external"
	case VehicleKindSpecial:
		return "special"
	default:
		return "unspecified"
	}
}

// Coordinate is a GPS position in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// coordEpsilon is the proximity tolerance used for location-registry
// deduplication (spec: 1e-4 degrees on each axis).
const coordEpsilon = 1e-4

// Near reports whether two coordinates are the same physical location within
// coordEpsilon on each axis.
func (c Coordinate) Near(o Coordinate) bool {
	return math.Abs(c.Lat-o.Lat) < coordEpsilon && math.Abs(c.Lon-o.Lon) < coordEpsilon
}

// Less gives a deterministic ascending order by (lat, lon), used to order
// depots that aren't the main depot or the center.
func (c Coordinate) Less(o Coordinate) bool {
	if c.Lat != o.Lat {
		return c.Lat < o.Lat
	}
	return c.Lon < o.Lon
}

// Customer is an immutable order record. Volume is the caller-supplied
// rational unit; Demand is the scaled integer hundredths used by the solver
// (Demand = round(Volume * 100)).
type Customer struct {
	ID               string
	Name             string
	Coord            Coordinate
	Volume           float64
	Demand           int64
	DistanceFromDepotM float64 // 0 if not precomputed
}

// VehicleTypeConfig is an immutable per-type fleet record.
type VehicleTypeConfig struct {
	ID                  string // unique within the fleet; defaults to Kind.String() when blank
	Kind                VehicleKind
	Capacity            int64 // integer hundredths of the volume unit
	Count               int
	Enabled             bool
	MaxDistanceM        float64 // 0 means unset -> treated as 9.99e8
	MaxWorkSeconds       float64
	ServiceSeconds       float64
	StartLocation       *Coordinate // nil -> main depot
	MaxCustomersPerRoute int         // 0 means unset
}

// EffectiveMaxDistanceM returns the configured max distance, or the spec's
// "unset" sentinel (9.99e8 meters) if none was configured.
func (v VehicleTypeConfig) EffectiveMaxDistanceM() float64 {
	if v.MaxDistanceM <= 0 {
		return 9.99e8
	}
	return v.MaxDistanceM
}

// Matrix is a pair of square NxN integer arrays produced for an ordered list
// of locations. Distance[i][i] and Duration[i][i] are always zero.
type Matrix struct {
	Locations []Coordinate
	Distance  [][]int64 // meters
	Duration  [][]int64 // seconds
}

// Size returns the matrix side length.
func (m *Matrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Locations)
}

// PreAllocation is the bipartition produced by the pre-allocator.
type PreAllocation struct {
	SolverSet    []Customer
	WarehouseSet []Customer

	TotalCapacity        int64
	TotalSolverVolume    float64
	TotalWarehouseVolume float64
	ProjectedUtilization float64
}

// Route is one vehicle's assignment in a Solution.
type Route struct {
	VehicleKind   VehicleKind
	VehicleID     string
	Customers     []Customer // ordered, non-empty
	DepotIndex    int
	TotalDistanceKM float64
	TotalTimeMin    float64
	TotalVolume     float64
	IsFeasible      bool
}

// Solution is the result of a full solve: a set of routes, a list of
// dropped customers, and solution-level aggregates.
type Solution struct {
	Routes           []Route
	DroppedCustomers []Customer
	TotalDistanceKM  float64
	TotalTimeMin     float64
	VehiclesUsed     int
	Objective        int64
	ServedVolume     float64
	IsFeasible       bool
}
