package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

const (
	DefaultMemoryCacheSizeMB = 128
	// below 64MB a single entry caps at 64KB, short of a full exercise pool
	MinMemoryCacheSizeMB = 64
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// display locale (en | he) and the zone used for calendar dates
	Locale   string `toml:"locale"`
	Timezone string `toml:"timezone"`

	// remote exercise catalog
	CatalogBaseURL             string `toml:"catalog_base_url"`
	CatalogFetchTimeoutSeconds int    `toml:"catalog_fetch_timeout_seconds"`
	CatalogPageLimit           int    `toml:"catalog_page_limit"`
	ExerciseCacheTTLHours      int    `toml:"exercise_cache_ttl_hours"`
	FallbackDatasetPath        string `toml:"fallback_dataset_path"`

	// retention
	PlanRetentionDays int `toml:"plan_retention_days"`
	HistoryLimit      int `toml:"history_limit"`

	// storage
	StorageBackend     string `toml:"storage_backend"`
	MemoryCacheSizeMB  int    `toml:"memory_cache_size_mb"`
	MemoryMaxEntries   int    `toml:"memory_max_entries"`
	SQLitePath         string `toml:"sqlite_path"`
	SQLiteMaxBytes     int64  `toml:"sqlite_max_bytes"`
	RedisHost          string `toml:"redis_host"`
	RedisPort          string `toml:"redis_port"`
	PostgresHost       string `toml:"postgres_host"`
	PostgresPort       string `toml:"postgres_port"`
	PostgresDBName     string `toml:"postgres_db_name"`
	PostgresUser       string `toml:"postgres_user"`
	PostgresMaxEntries int    `toml:"postgres_max_entries"`

	// events
	KafkaEnabled bool     `toml:"kafka_enabled"`
	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`

	RegenerateRateLimitPerMin int    `toml:"regenerate_rate_limit_per_min"`
	MaintenanceSchedule       string `toml:"maintenance_schedule"`
	MCPEnabled                bool   `toml:"mcp_enabled"`

	// browser origins allowed to call the api
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env,
// with defaults filled in.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return FromToml(&t, env)
}

func FromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s missing", env)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.CatalogBaseURL == "" {
		c.CatalogBaseURL = "https://wger.de/api/v2"
	}
	if c.CatalogFetchTimeoutSeconds == 0 {
		c.CatalogFetchTimeoutSeconds = 5
	}
	if c.CatalogPageLimit == 0 {
		c.CatalogPageLimit = 25
	}
	if c.ExerciseCacheTTLHours == 0 {
		c.ExerciseCacheTTLHours = 24
	}
	if c.PlanRetentionDays == 0 {
		c.PlanRetentionDays = 30
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 90
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageMemory
	}
	if c.MemoryCacheSizeMB == 0 {
		c.MemoryCacheSizeMB = DefaultMemoryCacheSizeMB
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "fitquest.db"
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.PostgresHost == "" {
		c.PostgresHost = "localhost"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresDBName == "" {
		c.PostgresDBName = "fitquest"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "fitquest.workouts"
	}
	if c.RegenerateRateLimitPerMin == 0 {
		c.RegenerateRateLimitPerMin = 10
	}
	if c.MaintenanceSchedule == "" {
		c.MaintenanceSchedule = "@every 6h"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:8080", "http://localhost:5173"}
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageRedis, StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}

	switch c.Locale {
	case "en", "he":
	default:
		return fmt.Errorf("unsupported locale: %s", c.Locale)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("kafka enabled but no brokers set")
	}

	if c.StorageBackend == StorageMemory && c.MemoryCacheSizeMB < MinMemoryCacheSizeMB {
		return fmt.Errorf("memory_cache_size_mb %d is below %d, a full exercise pool would not fit in one entry",
			c.MemoryCacheSizeMB, MinMemoryCacheSizeMB)
	}

	if c.CatalogFetchTimeoutSeconds < 0 || c.ExerciseCacheTTLHours < 0 || c.PlanRetentionDays < 0 {
		return errors.New("timeouts and retention must not be negative")
	}

	return nil
}

func (c *Config) CatalogFetchTimeout() time.Duration {
	return time.Duration(c.CatalogFetchTimeoutSeconds) * time.Second
}

func (c *Config) ExerciseCacheTTL() time.Duration {
	return time.Duration(c.ExerciseCacheTTLHours) * time.Hour
}

func (c *Config) PlanRetention() time.Duration {
	return time.Duration(c.PlanRetentionDays) * 24 * time.Hour
}

// Location never fails after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
