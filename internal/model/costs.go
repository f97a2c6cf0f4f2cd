package model

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"routeplanner/internal/types"
)

// CenterZoneConfig controls the center-zone arc-cost multiplier.
type CenterZoneConfig struct {
	Enabled              bool
	CenterLocation       types.Coordinate
	RadiusKM             float64
	InternalPenalty      float64 // default 2.0
	ExternalPenalty      float64 // default 10.0
	SpecialPenalty       float64 // default 7.0
	CenterDiscountFactor float64 // default 0.5
}

// DefaultCenterZoneConfig returns the spec's default multipliers with the
// feature disabled; callers fill in Enabled/CenterLocation/RadiusKM.
func DefaultCenterZoneConfig() CenterZoneConfig {
	return CenterZoneConfig{
		InternalPenalty:      2.0,
		ExternalPenalty:      10.0,
		SpecialPenalty:       7.0,
		CenterDiscountFactor: 0.5,
	}
}

func (c CenterZoneConfig) multiplierFor(kind types.VehicleKind) float64 {
	switch kind {
	case types.VehicleKindCenter:
		return c.CenterDiscountFactor
	case types.VehicleKindInternal:
		return c.InternalPenalty
	case types.VehicleKindSpecial:
		return c.SpecialPenalty
	case types.VehicleKindExternal:
		return c.ExternalPenalty
	default:
		return 1.0
	}
}

// inZone reports whether coord lies within RadiusKM of the configured center.
func (c CenterZoneConfig) inZone(coord types.Coordinate) bool {
	if !c.Enabled {
		return false
	}
	distKM := geo.DistanceHaversine(
		orb.Point{coord.Lon, coord.Lat},
		orb.Point{c.CenterLocation.Lon, c.CenterLocation.Lat},
	) / 1000.0
	return distKM <= c.RadiusKM
}

// FarLowVolumeConfig controls the non-center-bus priority discount.
type FarLowVolumeConfig struct {
	DistanceNormalizationM float64 // Dnorm, default 10000
	VolumeNormalization    float64 // Vnorm, default 50
	DistanceWeight         float64 // wd, default 0.5
	VolumeWeight           float64 // wv, default 0.5
	MaxDiscountPercentage  float64 // default 0.5
	DiscountFactorDivisor  float64 // default 2
}

// DefaultFarLowVolumeConfig returns the spec's default weights.
func DefaultFarLowVolumeConfig() FarLowVolumeConfig {
	return FarLowVolumeConfig{
		DistanceNormalizationM: 10000,
		VolumeNormalization:    50,
		DistanceWeight:         0.5,
		VolumeWeight:           0.5,
		MaxDiscountPercentage:  0.5,
		DiscountFactorDivisor:  2,
	}
}

// discountFor computes the far-low-volume discount fraction (0..maxDiscount)
// for a customer, per spec §4.4.
func (f FarLowVolumeConfig) discountFor(distanceFromDepotM, volume float64) float64 {
	dnorm := f.DistanceNormalizationM
	if dnorm <= 0 {
		dnorm = 10000
	}
	vnorm := f.VolumeNormalization
	if vnorm <= 0 {
		vnorm = 50
	}
	df := distanceFromDepotM / dnorm
	vf := (vnorm - volume) / vnorm
	if vf < 0 {
		vf = 0
	}
	combined := df*f.DistanceWeight + vf*f.VolumeWeight
	divisor := f.DiscountFactorDivisor
	if divisor == 0 {
		divisor = 2
	}
	discount := combined / divisor
	if discount > f.MaxDiscountPercentage {
		discount = f.MaxDiscountPercentage
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CostModel evaluates the per-vehicle-type arc cost for the constraint
// solver: base distance, the far-low-volume discount for non-center-bus
// vehicles, and the center-zone penalty/discount, applied with the spec's
// mutual-exclusivity rule (center-zone takes precedence for in-zone
// customers).
type CostModel struct {
	distance   [][]int64
	centerZone CenterZoneConfig
	farLowVol  FarLowVolumeConfig
	customers  []types.Customer // indexed by customer node index (node - numDepots)
	numDepots  int
}

// NewCostModel builds a cost model over the given distance matrix and
// solver-set customers (in registry order, i.e. customers[k] sits at matrix
// index numDepots+k).
func NewCostModel(distance [][]int64, numDepots int, customers []types.Customer, center CenterZoneConfig, farLowVol FarLowVolumeConfig) *CostModel {
	return &CostModel{
		distance:   distance,
		centerZone: center,
		farLowVol:  farLowVol,
		customers:  customers,
		numDepots:  numDepots,
	}
}

// customerAt returns the customer occupying node j, and ok=false if j is a
// depot node.
func (m *CostModel) customerAt(j int) (types.Customer, bool) {
	if j < m.numDepots {
		return types.Customer{}, false
	}
	idx := j - m.numDepots
	if idx < 0 || idx >= len(m.customers) {
		return types.Customer{}, false
	}
	return m.customers[idx], true
}

// ArcCost returns the registered cost for traversing i->j under the given
// vehicle kind, applying the far-low-volume discount or the center-zone
// multiplier (never both; center-zone wins when a non-center vehicle's
// destination customer is both far-low-volume-eligible and in-zone).
func (m *CostModel) ArcCost(i, j int, kind types.VehicleKind) int64 {
	base := m.distance[i][j]
	if base == 0 {
		return 0
	}

	customer, isCustomer := m.customerAt(j)
	if !isCustomer {
		return base
	}

	if m.centerZone.Enabled && m.centerZone.inZone(customer.Coord) {
		mult := m.centerZone.multiplierFor(kind)
		return roundCost(float64(base) * mult)
	}

	if kind == types.VehicleKindCenter {
		return base
	}

	discount := m.farLowVol.discountFor(customer.DistanceFromDepotM, customer.Volume)
	if discount <= 0 {
		return base
	}
	return roundCost(float64(base) * (1 - discount))
}

func roundCost(v float64) int64 {
	return int64(math.Round(v))
}
