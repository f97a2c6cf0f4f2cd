// Command planner wires the CVRP planning core's components together and
// runs a single end-to-end planning pass: load orders, build the location
// registry, acquire the distance matrix, pre-allocate, build the
// constraint model, race solver strategies, post-process, and record the
// outcome in the run ledger.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"

	"routeplanner/internal/history"
	"routeplanner/internal/location"
	"routeplanner/internal/matrix"
	"routeplanner/internal/model"
	"routeplanner/internal/postprocess"
	"routeplanner/internal/preallocate"
	"routeplanner/internal/racer"
	"routeplanner/internal/types"
	"routeplanner/pkg/config"
	"routeplanner/pkg/database"
	"routeplanner/pkg/logger"
	"routeplanner/pkg/metrics"
	"routeplanner/pkg/telemetry"
)

func main() {
	ordersPath := flag.String("orders", "orders.json", "path to the JSON order file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Log.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				logger.Log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	var runRepo history.Repository
	if cfg.Database.Driver != "" {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			logger.Log.Warn("failed to connect to run-history database, proceeding without a ledger", "error", err)
		} else {
			defer db.Close()

			if cfg.Database.AutoMigrate {
				if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, history.Migrations, history.MigrationsDir); err != nil {
					logger.Log.Warn("failed to run run-history migrations", "error", err)
				}
			}
			runRepo = history.NewPostgresRepository(db)
		}
	}

	customers, err := loadOrders(*ordersPath)
	if err != nil {
		logger.Fatal("failed to load orders", "error", err)
	}
	logger.Info("loaded orders", "count", len(customers))

	if err := runPlan(ctx, cfg, customers, runRepo); err != nil {
		logger.Fatal("planning run failed", "error", err)
	}
}

// runPlan executes one full planning pass: C1 through C7 in sequence, then
// records the outcome in the run ledger when one is configured.
func runPlan(ctx context.Context, cfg *config.Config, customers []types.Customer, runRepo history.Repository) error {
	start := time.Now()

	fleet := buildFleet(cfg.Vehicles)

	mainDepot := types.Coordinate{Lat: cfg.Locations.DepotLocation.Lat, Lon: cfg.Locations.DepotLocation.Lon}
	var center *types.Coordinate
	if cfg.CenterZone.Enabled {
		c := types.Coordinate{Lat: cfg.Locations.CenterLocation.Lat, Lon: cfg.Locations.CenterLocation.Lon}
		center = &c
	}

	preallocResult, err := preallocate.Partition(customers, fleet, buildPreallocateConfig(cfg))
	if err != nil {
		return err
	}
	logger.Info("pre-allocation complete",
		"solver_set", len(preallocResult.SolverSet),
		"warehouse_set", len(preallocResult.WarehouseSet),
		"projected_utilization", preallocResult.ProjectedUtilization,
	)

	registry := location.Build(mainDepot, center, fleet, preallocResult.SolverSet)

	matrixCacheBackend, err := buildCache(&cfg.Cache)
	if err != nil {
		return err
	}
	defer matrixCacheBackend.Close()

	engineCfg := matrix.DefaultEngineConfig(cfg.Matrix.EngineURL)
	engineCfg.FallbackURL = cfg.Matrix.FallbackPublicURL
	engineCfg.ChunkSize = cfg.Matrix.ChunkSize
	engineCfg.Timeout = time.Duration(cfg.Matrix.TimeoutSeconds) * time.Second
	engineCfg.RetryAttempts = cfg.Matrix.RetryAttempts
	engineCfg.RetryDelaySecs = cfg.Matrix.RetryDelaySeconds

	engineClient := matrix.NewHTTPEngineClient(engineCfg)
	matrixService := matrix.NewService(engineClient, matrix.NewMatrixCache(matrixCacheBackend))

	dm, err := matrixService.GetMatrix(ctx, registry.Locations())
	if err != nil {
		return err
	}

	m := model.Build(registry, dm, fleet, preallocResult.SolverSet, buildModelOptions(cfg))

	raceCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Solver.TimeLimitSeconds)*time.Second+30*time.Second)
	defer cancel()

	sol, winningPair := racer.Race(raceCtx, m, buildRacerConfig(cfg))

	if cfg.Solver.EnableFinalDepotReconfiguration {
		sol = postprocess.ReconfigureFromMainDepot(m, sol)
	}

	logger.Info("race complete",
		"served_volume", sol.ServedVolume,
		"vehicles_used", sol.VehiclesUsed,
		"dropped", len(sol.DroppedCustomers),
		"winning_pair", winningPair.String(),
		"feasible", sol.IsFeasible,
	)
	metrics.RecordRunOutcome(feasibilityLabel(sol.IsFeasible), sol.ServedVolume, sol.VehiclesUsed, len(sol.DroppedCustomers))

	if runRepo != nil {
		run := history.NewRun(uuid.NewString(), start, len(customers), len(m.Vehicles), sol, winningPair, cfg.Racer.NumWorkers, time.Since(start))
		if err := runRepo.Create(ctx, run); err != nil {
			logger.Log.Warn("failed to persist run history", "error", err)
		}
	}

	return nil
}

func feasibilityLabel(feasible bool) string {
	if feasible {
		return "feasible"
	}
	return "infeasible"
}
