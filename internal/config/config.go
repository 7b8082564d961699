package config

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/kv"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ServiceName tags logs, metrics and traces.
const ServiceName = "storefront"

// KV backends selectable with KV_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

var backends = []string{BackendMemory, BackendRedis, BackendPostgres, BackendFile}

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CatalogCacheMaxAge int      `env:"CATALOG_CACHE_MAX_AGE" envDefault:"300"`
	RateLimitRPS       int      `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"100"`
	// PprofAllowedCIDRs mounts /debug/pprof for peers in these ranges. Empty disables it.
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// Persistence
	KVBackend     string `env:"KV_BACKEND" envDefault:"memory"`
	StateTTLHours int    `env:"STATE_TTL_HOURS" envDefault:"168"`
	KVFilePath    string `env:"KV_FILE_PATH" envDefault:"data/storefront.toml"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	DBHost             string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort             int           `env:"DB_PORT" envDefault:"5432"`
	DBUser             string        `env:"DB_USER" envDefault:"storefront"`
	DBPassword         string        `env:"DB_PASSWORD" envDefault:"storefront"`
	DBName             string        `env:"DB_NAME" envDefault:"storefront"`
	DBSSLMode          string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Circuit breaker around the KV backend
	BreakerMaxFailures uint32        `env:"KV_BREAKER_MAX_FAILURES" envDefault:"5"`
	BreakerOpenTimeout time.Duration `env:"KV_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	// Sessions
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	InboxSize      int           `env:"NOTIFICATION_INBOX_SIZE" envDefault:"20"`

	// Kafka
	KafkaBrokers         []string `env:"KAFKA_BROKERS" envSeparator:","`
	NotifyKafka          bool     `env:"NOTIFY_KAFKA" envDefault:"false"`
	SessionEventsEnabled bool     `env:"SESSION_EVENTS_ENABLED" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from the environment, after loading envFiles
// that exist.
func Load(envFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, envFiles...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects inconsistent settings.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains(backends, c.KVBackend) {
		return fmt.Errorf("KV_BACKEND must be one of %v, got %q", backends, c.KVBackend)
	}
	if c.KVBackend == BackendFile && c.KVFilePath == "" {
		return fmt.Errorf("KV_FILE_PATH is required for the file backend")
	}
	if c.StateTTLHours < 0 {
		return fmt.Errorf("STATE_TTL_HOURS must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	for _, cidr := range c.PprofAllowedCIDRs {
		if _, err := netip.ParsePrefix(strings.TrimSpace(cidr)); err != nil {
			return fmt.Errorf("PPROF_ALLOWED_CIDRS: invalid CIDR %q", cidr)
		}
	}
	if c.InboxSize < 1 {
		return fmt.Errorf("NOTIFICATION_INBOX_SIZE must be positive")
	}
	if (c.NotifyKafka || c.SessionEventsEnabled) && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when NOTIFY_KAFKA or SESSION_EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}

// KafkaEnabled reports whether any Kafka integration is on.
func (c *Config) KafkaEnabled() bool {
	return c.NotifyKafka || c.SessionEventsEnabled
}

// StateTTL is how long Redis keeps shopping state. Zero means forever.
func (c *Config) StateTTL() time.Duration {
	return time.Duration(c.StateTTLHours) * time.Hour
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPass,
		DB:       c.RedisDB,
	}
}

// Postgres returns the PostgreSQL pool settings.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.DBHost
	pg.Port = c.DBPort
	pg.User = c.DBUser
	pg.Password = c.DBPassword
	pg.DBName = c.DBName
	pg.SSLMode = c.DBSSLMode
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = min(pg.MinConns, c.DBMaxConns)
	return pg
}

// Breaker returns the KV circuit breaker settings.
func (c *Config) Breaker() kv.BreakerConfig {
	return kv.BreakerConfig{
		Name:        "kv-" + c.KVBackend,
		MaxFailures: c.BreakerMaxFailures,
		OpenTimeout: c.BreakerOpenTimeout,
	}
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}
