package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Матрица расстояний
	AttrMatrixLocations = "matrix.locations"
	AttrMatrixCacheHit  = "matrix.cache_hit"
	AttrMatrixChunks    = "matrix.chunks"

	// Солвер
	AttrFirstSolutionStrategy = "solver.first_solution_strategy"
	AttrLocalSearchMetaheuristic = "solver.local_search_metaheuristic"
	AttrServedVolume          = "solver.served_volume"
	AttrObjective             = "solver.objective"
	AttrVehiclesUsed          = "solver.vehicles_used"
	AttrDroppedCustomers      = "solver.dropped_customers"

	// Гонка стратегий
	AttrRaceWorkers    = "racer.workers"
	AttrRaceWinnerPair = "racer.winner_pair"
)

// MatrixAttributes возвращает атрибуты запроса матрицы расстояний
func MatrixAttributes(locations int, cacheHit bool, chunks int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrMatrixLocations, locations),
		attribute.Bool(AttrMatrixCacheHit, cacheHit),
		attribute.Int(AttrMatrixChunks, chunks),
	}
}

// SolveAttributes возвращает атрибуты одного запуска солвера
func SolveAttributes(firstSolution, metaheuristic string, servedVolume, objective float64, vehiclesUsed, dropped int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrFirstSolutionStrategy, firstSolution),
		attribute.String(AttrLocalSearchMetaheuristic, metaheuristic),
		attribute.Float64(AttrServedVolume, servedVolume),
		attribute.Float64(AttrObjective, objective),
		attribute.Int(AttrVehiclesUsed, vehiclesUsed),
		attribute.Int(AttrDroppedCustomers, dropped),
	}
}

// RaceAttributes возвращает атрибуты завершённой гонки стратегий
func RaceAttributes(workers int, winnerPair string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrRaceWorkers, workers),
		attribute.String(AttrRaceWinnerPair, winnerPair),
	}
}
