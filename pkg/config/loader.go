// pkg/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "ROUTEPLANNER_"
	configEnvVar = "CONFIG_PATH"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/routeplanner/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml)
// 3. Environment variables (самый высокий)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		// Файл не обязателен, логируем warning
		fmt.Printf("Warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Vehicles) == 0 {
		cfg.Vehicles = defaultVehicleConfigs()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDefaults загружает значения по умолчанию
func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "routeplanner",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "routeplanner",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "routeplanner",
		"tracing.sample_rate":  0.1,

		// Database (run history ledger)
		"database.driver":             "postgres",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "routeplanner",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,

		// Cache (distance matrix cache)
		"cache.enabled":     true,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": 24 * time.Hour,
		"cache.max_entries": 10000,

		// Locations
		"locations.depot_location.lat":  0.0,
		"locations.depot_location.lon":  0.0,
		"locations.center_location.lat": 0.0,
		"locations.center_location.lon": 0.0,

		// Center-zone
		"center_zone.enable_center_zone_restrictions":       false,
		"center_zone.center_zone_radius_km":                 5.0,
		"center_zone.internal_bus_center_penalty_multiplier": 2.0,
		"center_zone.external_bus_center_penalty_multiplier": 10.0,
		"center_zone.special_bus_center_penalty_multiplier":  7.0,
		"center_zone.center_bus_center_discount_multiplier":  0.5,

		// Far-low-volume
		"far_low_volume.distance_normalization_factor": 50000.0,
		"far_low_volume.volume_normalization_factor":   10.0,
		"far_low_volume.distance_weight":                0.5,
		"far_low_volume.volume_weight":                  0.5,
		"far_low_volume.max_discount_percentage":         0.3,
		"far_low_volume.discount_factor_divisor":         1.0,

		// Drops
		"drops.distance_penalty_disjunction": int64(1000000),

		// Solver
		"solver.time_limit_seconds":                  30,
		"solver.first_solution_strategy":              "path_cheapest_arc",
		"solver.local_search_metaheuristic":           "guided_local_search",
		"solver.log_search":                           false,
		"solver.enable_final_depot_reconfiguration":   true,

		// Racer
		"racer.enable_parallel_solving":               true,
		"racer.num_workers":                            -1,
		"racer.parallel_first_solution_strategies":     []string{"path_cheapest_arc", "savings", "sweep"},
		"racer.parallel_local_search_metaheuristics":   []string{"guided_local_search", "tabu_search", "simulated_annealing"},

		// Matrix
		"matrix.engine_url":           "http://localhost:5000/table/v1/driving",
		"matrix.chunk_size":           50,
		"matrix.timeout_seconds":      30,
		"matrix.retry_attempts":       3,
		"matrix.retry_delay_seconds":  2.0,
		"matrix.fallback_public_url":  "",

		// Warehouse
		"warehouse.enable_warehouse":          false,
		"warehouse.move_largest_to_warehouse": false,
		"warehouse.large_request_threshold":   500.0,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

// defaultVehicleConfigs возвращает флот по умолчанию, если конфигурация
// не указывает ни одного типа транспортного средства.
func defaultVehicleConfigs() []VehicleConfig {
	return []VehicleConfig{
		{Type: "internal", Capacity: 1000, Count: 5, MaxDistanceKM: 150, MaxTimeHours: 8, ServiceTimeMinutes: 10, Enabled: true},
	}
}

// loadConfigFile загружает конфигурацию из файла
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

// loadEnv загружает конфигурацию из переменных окружения
func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		// ROUTEPLANNER_SOLVER_TIME_LIMIT_SECONDS -> solver.time_limit_seconds
		// Only the first underscore becomes a dot, so sections whose own
		// name contains an underscore (center_zone, far_low_volume) are not
		// reachable from the environment.
		return strings.Replace(
			strings.ToLower(
				strings.TrimPrefix(s, l.envPrefix),
			),
			"_", ".", 1,
		)
	}), nil)
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load - удобная функция для загрузки с дефолтными настройками
func Load() (*Config, error) {
	return NewLoader().Load()
}
