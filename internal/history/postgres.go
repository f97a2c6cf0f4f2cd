package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"routeplanner/pkg/database"
	"routeplanner/pkg/telemetry"
)

// PostgresRepository is the Postgres-backed Repository implementation.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository creates a new run-history repository.
func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Create")
	defer span.End()

	query := `
		INSERT INTO runs (
			id, requested_at, customer_count, vehicle_count, served_volume,
			total_distance_km, total_time_min, vehicles_used, objective,
			dropped_count, is_feasible, winning_pair, race_workers, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.RequestedAt,
		run.CustomerCount,
		run.VehicleCount,
		run.ServedVolume,
		run.TotalDistanceKM,
		run.TotalTimeMin,
		run.VehiclesUsed,
		run.Objective,
		run.DroppedCount,
		run.IsFeasible,
		run.WinningPair,
		run.RaceWorkers,
		run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.GetByID")
	defer span.End()

	query := `
		SELECT
			id, requested_at, customer_count, vehicle_count, served_volume,
			total_distance_km, total_time_min, vehicles_used, objective,
			dropped_count, is_feasible, winning_pair, race_workers, duration_ms
		FROM runs
		WHERE id = $1
	`

	run := &Run{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.RequestedAt,
		&run.CustomerCount,
		&run.VehicleCount,
		&run.ServedVolume,
		&run.TotalDistanceKM,
		&run.TotalTimeMin,
		&run.VehiclesUsed,
		&run.Objective,
		&run.DroppedCount,
		&run.IsFeasible,
		&run.WinningPair,
		&run.RaceWorkers,
		&run.DurationMS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts *ListOptions) ([]*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.List")
	defer span.End()

	if opts == nil {
		opts = &ListOptions{Limit: 50}
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 500 {
		opts.Limit = 500
	}

	where, args := buildWhereClause(opts.Filter)

	query := fmt.Sprintf(`
		SELECT
			id, requested_at, customer_count, vehicle_count, served_volume,
			total_distance_km, total_time_min, vehicles_used, objective,
			dropped_count, is_feasible, winning_pair, race_workers, duration_ms
		FROM runs
		WHERE %s
		ORDER BY requested_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID,
			&run.RequestedAt,
			&run.CustomerCount,
			&run.VehicleCount,
			&run.ServedVolume,
			&run.TotalDistanceKM,
			&run.TotalTimeMin,
			&run.VehiclesUsed,
			&run.Objective,
			&run.DroppedCount,
			&run.IsFeasible,
			&run.WinningPair,
			&run.RaceWorkers,
			&run.DurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		results = append(results, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return results, nil
}

func (r *PostgresRepository) Summarize(ctx context.Context, since, until time.Time) (*Summary, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Summarize")
	defer span.End()

	summary := &Summary{PairWinCounts: make(map[string]int)}

	statsQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_feasible),
			COALESCE(AVG(served_volume), 0),
			COALESCE(AVG(vehicles_used), 0),
			COALESCE(AVG(dropped_count), 0)
		FROM runs
		WHERE requested_at >= $1 AND requested_at <= $2
	`

	err := r.db.QueryRow(ctx, statsQuery, since, until).Scan(
		&summary.TotalRuns,
		&summary.FeasibleRuns,
		&summary.AverageServedVolume,
		&summary.AverageVehiclesUsed,
		&summary.AverageDroppedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize runs: %w", err)
	}

	pairQuery := `
		SELECT winning_pair, COUNT(*)
		FROM runs
		WHERE requested_at >= $1 AND requested_at <= $2
		GROUP BY winning_pair
	`

	rows, err := r.db.Query(ctx, pairQuery, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize winning pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pair string
		var count int
		if err := rows.Scan(&pair, &count); err != nil {
			return nil, fmt.Errorf("failed to scan winning pair count: %w", err)
		}
		summary.PairWinCounts[pair] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return summary, nil
}

func buildWhereClause(filter *ListFilter) (string, []any) {
	if filter == nil {
		return "TRUE", []any{}
	}

	conditions := []string{"TRUE"}
	args := []any{}
	argNum := 1

	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("requested_at >= $%d", argNum))
		args = append(args, *filter.Since)
		argNum++
	}
	if filter.Until != nil {
		conditions = append(conditions, fmt.Sprintf("requested_at <= $%d", argNum))
		args = append(args, *filter.Until)
		argNum++
	}
	if filter.OnlyFeasible {
		conditions = append(conditions, "is_feasible")
	}

	where := conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}
	return where, args
}
