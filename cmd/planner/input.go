package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"routeplanner/internal/types"
	"routeplanner/pkg/logger"
)

// orderRow is one row of the tabular order source (spec §6, "Input
// orders"): client id/name, a GPS pair, and a volume. The parser itself is
// an external collaborator; this is the thin on-disk shape the planner
// binary reads to exercise the core with real orders.
type orderRow struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Volume float64 `json:"volume"`
}

// loadOrders reads orders from a JSON file and converts valid rows into
// Customer records, dropping invalid rows with a warning rather than
// failing the whole load.
func loadOrders(path string) ([]types.Customer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	var rows []orderRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse orders file: %w", err)
	}

	customers := make([]types.Customer, 0, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			logger.Log.Warn("dropping order row: missing id", "row", i)
			continue
		}
		if row.Volume < 0 {
			logger.Log.Warn("dropping order row: negative volume", "row", i, "id", row.ID)
			continue
		}
		if math.Abs(row.Lat) > 90 || math.Abs(row.Lon) > 180 {
			logger.Log.Warn("dropping order row: GPS out of range", "row", i, "id", row.ID)
			continue
		}

		customers = append(customers, types.Customer{
			ID:     row.ID,
			Name:   row.Name,
			Coord:  types.Coordinate{Lat: row.Lat, Lon: row.Lon},
			Volume: row.Volume,
			Demand: int64(math.Round(row.Volume * 100)),
		})
	}

	return customers, nil
}
