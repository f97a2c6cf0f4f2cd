package main

import (
	"time"

	"routeplanner/internal/model"
	"routeplanner/internal/preallocate"
	"routeplanner/internal/racer"
	"routeplanner/internal/solver"
	"routeplanner/internal/types"
	"routeplanner/pkg/cache"
	"routeplanner/pkg/config"
)

// vehicleKindOf maps a configured vehicle type string to its VehicleKind,
// defaulting to internal for unrecognized values.
func vehicleKindOf(typeName string) types.VehicleKind {
	switch typeName {
	case "internal":
		return types.VehicleKindInternal
	case "center":
		return types.VehicleKindCenter
	case "external":
		return types.VehicleKindExternal
	case "special":
		return types.VehicleKindSpecial
	default:
		return types.VehicleKindInternal
	}
}

// buildFleet translates the configured vehicle groups into the solver's
// VehicleTypeConfig records (spec §6, Vehicles group).
func buildFleet(vehicles []config.VehicleConfig) []types.VehicleTypeConfig {
	fleet := make([]types.VehicleTypeConfig, 0, len(vehicles))
	for _, v := range vehicles {
		fleet = append(fleet, types.VehicleTypeConfig{
			ID:                   v.Type,
			Kind:                 vehicleKindOf(v.Type),
			Capacity:             int64(v.Capacity * 100),
			Count:                v.Count,
			Enabled:              v.Enabled,
			MaxDistanceM:         v.MaxDistanceKM * 1000,
			MaxWorkSeconds:       v.MaxTimeHours * 3600,
			ServiceSeconds:       v.ServiceTimeMinutes * 60,
			MaxCustomersPerRoute: v.MaxCustomersPerRoute,
		})
	}
	return fleet
}

// buildModelOptions translates the center-zone, far-low-volume and drop
// option groups into model.BuildOptions.
func buildModelOptions(cfg *config.Config) model.BuildOptions {
	center := model.CenterZoneConfig{
		Enabled: cfg.CenterZone.Enabled,
		CenterLocation: types.Coordinate{
			Lat: cfg.Locations.CenterLocation.Lat,
			Lon: cfg.Locations.CenterLocation.Lon,
		},
		RadiusKM:             cfg.CenterZone.RadiusKM,
		InternalPenalty:      cfg.CenterZone.InternalBusCenterPenaltyMult,
		ExternalPenalty:      cfg.CenterZone.ExternalBusCenterPenaltyMult,
		SpecialPenalty:       cfg.CenterZone.SpecialBusCenterPenaltyMult,
		CenterDiscountFactor: cfg.CenterZone.CenterBusCenterDiscountMult,
	}
	farLowVol := model.FarLowVolumeConfig{
		DistanceNormalizationM: cfg.FarLowVolume.DistanceNormalizationFactor,
		VolumeNormalization:    cfg.FarLowVolume.VolumeNormalizationFactor,
		DistanceWeight:         cfg.FarLowVolume.DistanceWeight,
		VolumeWeight:           cfg.FarLowVolume.VolumeWeight,
		MaxDiscountPercentage:  cfg.FarLowVolume.MaxDiscountPercentage,
		DiscountFactorDivisor:  cfg.FarLowVolume.DiscountFactorDivisor,
	}
	drop := model.DropConfig{PenaltyDisjunction: cfg.Drops.DistancePenaltyDisjunction}

	return model.BuildOptions{CenterZone: center, FarLowVol: farLowVol, Drop: drop}
}

// buildPreallocateConfig translates the Warehouse option group.
func buildPreallocateConfig(cfg *config.Config) preallocate.Config {
	return preallocate.Config{
		EnableWarehouse:        cfg.Warehouse.EnableWarehouse,
		MoveLargestToWarehouse: cfg.Warehouse.MoveLargestToWarehouse,
		LargeRequestFraction:   cfg.Warehouse.LargeRequestThreshold,
	}
}

// buildRacerConfig translates the Solver and Racer option groups into the
// config the parallel racer races under.
func buildRacerConfig(cfg *config.Config) racer.Config {
	firstSolutions := make([]solver.FirstSolutionStrategy, 0, len(cfg.Racer.ParallelFirstSolutionStrategies))
	for _, s := range cfg.Racer.ParallelFirstSolutionStrategies {
		firstSolutions = append(firstSolutions, solver.ParseFirstSolutionStrategy(s))
	}
	metaheuristics := make([]solver.Metaheuristic, 0, len(cfg.Racer.ParallelLocalSearchMetaheuristics))
	for _, m := range cfg.Racer.ParallelLocalSearchMetaheuristics {
		metaheuristics = append(metaheuristics, solver.ParseMetaheuristic(m))
	}

	basePair := solver.StrategyPair{
		FirstSolution: solver.ParseFirstSolutionStrategy(cfg.Solver.FirstSolutionStrategy),
		Metaheuristic: solver.ParseMetaheuristic(cfg.Solver.LocalSearchMetaheuristic),
	}

	return racer.Config{
		EnableParallelSolving:   cfg.Racer.EnableParallelSolving,
		NumWorkers:              cfg.Racer.NumWorkers,
		FirstSolutionStrategies: firstSolutions,
		Metaheuristics:          metaheuristics,
		BasePair:                basePair,
		TimeLimit:               time.Duration(cfg.Solver.TimeLimitSeconds) * time.Second,
	}
}

// buildCache constructs the pkg/cache backend the matrix service's cache
// layer sits on, from the Cache option group.
func buildCache(cfg *config.CacheConfig) (cache.Cache, error) {
	opts := &cache.Options{
		Backend:       cfg.Driver,
		DefaultTTL:    cfg.DefaultTTL,
		MaxEntries:    cfg.MaxEntries,
		RedisAddr:     cfg.Address(),
		RedisPassword: cfg.Password,
		RedisDB:       cfg.DB,
		FileDir:       cfg.Dir,
	}
	return cache.New(opts)
}
