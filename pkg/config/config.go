// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App          AppConfig          `koanf:"app"`
	Log          LogConfig          `koanf:"log"`
	Metrics      MetricsConfig      `koanf:"metrics"`
	Tracing      TracingConfig      `koanf:"tracing"`
	Database     DatabaseConfig     `koanf:"database"`
	Cache        CacheConfig        `koanf:"cache"`
	Vehicles     []VehicleConfig    `koanf:"vehicles"`
	Locations    LocationsConfig    `koanf:"locations"`
	CenterZone   CenterZoneConfig   `koanf:"center_zone"`
	FarLowVolume FarLowVolumeConfig `koanf:"far_low_volume"`
	Drops        DropsConfig        `koanf:"drops"`
	Solver       SolverConfig       `koanf:"solver"`
	Racer        RacerConfig        `koanf:"racer"`
	Matrix       MatrixConfig       `koanf:"matrix"`
	Warehouse    WarehouseConfig    `koanf:"warehouse"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig - настройки базы данных, backing the run history ledger
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // postgres
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	MigrationsPath  string        `koanf:"migrations_path"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения
func (d DatabaseConfig) DSN() string {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
		)
	default:
		return ""
	}
}

// CacheConfig - настройки кэширования матрицы расстояний
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory, file
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
	Dir        string        `koanf:"dir"`         // для file backend
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// VehicleConfig - один тип транспортного средства во флоте (spec §6, Vehicles group)
type VehicleConfig struct {
	Type                 string  `koanf:"type"`
	Capacity             float64 `koanf:"capacity"`
	Count                int     `koanf:"count"`
	MaxDistanceKM        float64 `koanf:"max_distance_km"`
	MaxTimeHours         float64 `koanf:"max_time_hours"`
	ServiceTimeMinutes   float64 `koanf:"service_time_minutes"`
	Enabled              bool    `koanf:"enabled"`
	StartLocation        string  `koanf:"start_location"`
	MaxCustomersPerRoute int     `koanf:"max_customers_per_route"`
}

// LocationsConfig - якоря реестра локаций (spec §4.1)
type LocationsConfig struct {
	DepotLocation  CoordinateConfig `koanf:"depot_location"`
	CenterLocation CoordinateConfig `koanf:"center_location"`
}

// CoordinateConfig - географическая точка из конфигурации
type CoordinateConfig struct {
	Lat float64 `koanf:"lat"`
	Lon float64 `koanf:"lon"`
}

// CenterZoneConfig - модификаторы стоимости дуг внутри зоны центра (spec §4.4)
type CenterZoneConfig struct {
	Enabled                      bool    `koanf:"enable_center_zone_restrictions"`
	RadiusKM                     float64 `koanf:"center_zone_radius_km"`
	InternalBusCenterPenaltyMult float64 `koanf:"internal_bus_center_penalty_multiplier"`
	ExternalBusCenterPenaltyMult float64 `koanf:"external_bus_center_penalty_multiplier"`
	SpecialBusCenterPenaltyMult  float64 `koanf:"special_bus_center_penalty_multiplier"`
	CenterBusCenterDiscountMult  float64 `koanf:"center_bus_center_discount_multiplier"`
}

// FarLowVolumeConfig - скидка для дальних клиентов с малым объёмом (spec §4.4)
type FarLowVolumeConfig struct {
	DistanceNormalizationFactor float64 `koanf:"distance_normalization_factor"`
	VolumeNormalizationFactor   float64 `koanf:"volume_normalization_factor"`
	DistanceWeight              float64 `koanf:"distance_weight"`
	VolumeWeight                float64 `koanf:"volume_weight"`
	MaxDiscountPercentage       float64 `koanf:"max_discount_percentage"`
	DiscountFactorDivisor       float64 `koanf:"discount_factor_divisor"`
}

// DropsConfig - штраф за пропуск клиента (spec §4.4)
type DropsConfig struct {
	DistancePenaltyDisjunction int64 `koanf:"distance_penalty_disjunction"`
}

// SolverConfig - параметры одиночного запуска солвера (spec §4.5, §4.7)
type SolverConfig struct {
	TimeLimitSeconds                int    `koanf:"time_limit_seconds"`
	FirstSolutionStrategy            string `koanf:"first_solution_strategy"`
	LocalSearchMetaheuristic         string `koanf:"local_search_metaheuristic"`
	LogSearch                        bool   `koanf:"log_search"`
	EnableFinalDepotReconfiguration  bool   `koanf:"enable_final_depot_reconfiguration"`
}

// RacerConfig - параметры параллельной гонки стратегий (spec §4.6)
type RacerConfig struct {
	EnableParallelSolving             bool     `koanf:"enable_parallel_solving"`
	NumWorkers                        int      `koanf:"num_workers"` // -1 => cpu-1
	ParallelFirstSolutionStrategies   []string `koanf:"parallel_first_solution_strategies"`
	ParallelLocalSearchMetaheuristics []string `koanf:"parallel_local_search_metaheuristics"`
}

// MatrixConfig - получение матрицы расстояний (spec §4.2)
type MatrixConfig struct {
	EngineURL         string  `koanf:"engine_url"`
	ChunkSize         int     `koanf:"chunk_size"`
	TimeoutSeconds    int     `koanf:"timeout_seconds"`
	RetryAttempts     int     `koanf:"retry_attempts"`
	RetryDelaySeconds float64 `koanf:"retry_delay_seconds"`
	FallbackPublicURL string  `koanf:"fallback_public_url"`
}

// WarehouseConfig - предварительное резервирование крупных заказов (spec §4.3)
type WarehouseConfig struct {
	EnableWarehouse        bool    `koanf:"enable_warehouse"`
	MoveLargestToWarehouse bool    `koanf:"move_largest_to_warehouse"`
	LargeRequestThreshold  float64 `koanf:"large_request_threshold"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if len(c.Vehicles) == 0 {
		errs = append(errs, "vehicles: at least one vehicle type must be configured")
	}
	enabledCount := 0
	for _, v := range c.Vehicles {
		if v.Enabled {
			enabledCount++
		}
		if v.Count < 0 {
			errs = append(errs, fmt.Sprintf("vehicles[%s].count must be non-negative", v.Type))
		}
	}
	if len(c.Vehicles) > 0 && enabledCount == 0 {
		errs = append(errs, "vehicles: at least one vehicle type must be enabled")
	}

	if c.CenterZone.Enabled && c.CenterZone.RadiusKM <= 0 {
		errs = append(errs, "center_zone.center_zone_radius_km must be positive when center-zone restrictions are enabled")
	}

	if c.Racer.NumWorkers < -1 {
		errs = append(errs, "racer.num_workers must be -1 or non-negative")
	}

	if c.Solver.TimeLimitSeconds <= 0 {
		errs = append(errs, "solver.time_limit_seconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
