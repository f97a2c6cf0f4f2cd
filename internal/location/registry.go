// Package location builds the canonical location registry (C1): the
// deterministic ordering of unique depot and customer coordinates into the
// matrix indices every downstream component (C2-C7) addresses locations by.
package location

import (
	"sort"

	"routeplanner/internal/types"
	"routeplanner/pkg/logger"
)

// Registry is the ordered, deduplicated list of locations for one planning
// run. Indices [0, NumDepots) are depots; [NumDepots, NumDepots+NumCustomers)
// are customers in their ingest order.
type Registry struct {
	locations   []types.Coordinate
	numDepots    int
	numCustomers int
	mainDepotIdx int

	// depotIndexByTypeID maps a vehicle type config's ID to its resolved
	// depot index. Types without an override start location, or whose
	// override wasn't found in the registry, map to the main depot.
	depotIndexByTypeID map[string]int
}

// typeID returns v.ID, falling back to v.Kind.String() when blank.
func typeID(v types.VehicleTypeConfig) string {
	if v.ID != "" {
		return v.ID
	}
	return v.Kind.String()
}

// Build constructs the registry from the main depot, the optional center
// location, the fleet's override start locations, and the customer list in
// ingest order. It never mutates its inputs.
func Build(mainDepot types.Coordinate, center *types.Coordinate, fleet []types.VehicleTypeConfig, customers []types.Customer) *Registry {
	var depots []types.Coordinate
	depots = append(depots, mainDepot)

	if center != nil && !center.Near(mainDepot) {
		depots = append(depots, *center)
	}

	for _, v := range fleet {
		if v.StartLocation == nil {
			continue
		}
		if containsNear(depots, *v.StartLocation) {
			continue
		}
		depots = append(depots, *v.StartLocation)
	}

	// Canonical ordering: center (if present) at index 0, else main depot at
	// index 0; any remaining depots follow in ascending (lat, lon) order.
	ordered := canonicalizeDepots(depots, mainDepot, center)

	r := &Registry{
		numDepots:          len(ordered),
		depotIndexByTypeID: make(map[string]int, len(fleet)),
	}
	r.locations = append(r.locations, ordered...)

	for _, c := range customers {
		r.locations = append(r.locations, c.Coord)
	}
	r.numCustomers = len(customers)

	mainIdx := r.indexOfNear(mainDepot)
	r.mainDepotIdx = mainIdx
	for _, v := range fleet {
		idx := mainIdx
		if v.StartLocation != nil {
			if found := r.indexOfNear(*v.StartLocation); found >= 0 {
				idx = found
			} else {
				logger.Log.Warn("vehicle override start location not in registry, falling back to main depot",
					"vehicle_type", typeID(v))
			}
		}
		r.depotIndexByTypeID[typeID(v)] = idx
	}

	return r
}

// canonicalizeDepots places the center (if distinct from the main depot)
// first, the main depot next (or first, if no distinct center), and any
// remaining depots in ascending (lat, lon) order. Depots are deduplicated by
// proximity.
func canonicalizeDepots(depots []types.Coordinate, mainDepot types.Coordinate, center *types.Coordinate) []types.Coordinate {
	unique := dedupeNear(depots)

	var head []types.Coordinate
	if center != nil && !center.Near(mainDepot) {
		head = append(head, *center)
	}
	head = append(head, mainDepot)

	rest := make([]types.Coordinate, 0, len(unique))
	for _, d := range unique {
		if containsNear(head, d) {
			continue
		}
		rest = append(rest, d)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Less(rest[j]) })

	return append(head, rest...)
}

func dedupeNear(coords []types.Coordinate) []types.Coordinate {
	var out []types.Coordinate
	for _, c := range coords {
		if !containsNear(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func containsNear(coords []types.Coordinate, c types.Coordinate) bool {
	for _, x := range coords {
		if x.Near(c) {
			return true
		}
	}
	return false
}

func (r *Registry) indexOfNear(c types.Coordinate) int {
	for i, x := range r.locations {
		if x.Near(c) {
			return i
		}
	}
	return -1
}

// Locations returns the full ordered coordinate list (depots then customers).
func (r *Registry) Locations() []types.Coordinate {
	return r.locations
}

// NumDepots returns the number of distinct depot locations.
func (r *Registry) NumDepots() int { return r.numDepots }

// NumCustomers returns the number of customer locations.
func (r *Registry) NumCustomers() int { return r.numCustomers }

// DepotIndexFor returns the matrix index a vehicle of the given type starts
// and ends at: its override start location if configured and found, else
// the main depot's index.
func (r *Registry) DepotIndexFor(v types.VehicleTypeConfig) int {
	if idx, ok := r.depotIndexByTypeID[typeID(v)]; ok {
		return idx
	}
	return r.mainDepotIdx
}

// MainDepotIndex returns the main depot's matrix index (0, unless a
// distinct center location occupies index 0, in which case it is 1).
func (r *Registry) MainDepotIndex() int {
	return r.mainDepotIdx
}

// CustomerIndex returns the matrix index of the i-th customer (0-based, in
// ingest order).
func (r *Registry) CustomerIndex(i int) int {
	return r.numDepots + i
}
