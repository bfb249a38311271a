package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/saikat7890/Lost-and-Found-System/pkg/config"
	"github.com/saikat7890/Lost-and-Found-System/pkg/database"
	"github.com/saikat7890/Lost-and-Found-System/pkg/httpclient"
)

// Item store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Media backends.
const (
	MediaMemory = "memory"
	MediaRemote = "remote"
)

// Config holds all configuration for the item service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"4000"`

	// Item store
	ItemStore string `env:"ITEM_STORE" envDefault:"postgres"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"lostfound"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"lostfound_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"lostfound"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis item cache. An empty host disables the cache.
	RedisHost       string `env:"REDIS_HOST" envDefault:""`
	RedisPort       int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize   int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	ItemCacheTTLSec int    `env:"ITEM_CACHE_TTL_SECONDS" envDefault:"300"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Identity
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:""`

	// Media
	MediaBackend      string `env:"MEDIA_BACKEND" envDefault:"memory"`
	MediaBaseURL      string `env:"MEDIA_BASE_URL" envDefault:"http://localhost:4000"`
	MediaRemoteURL    string `env:"MEDIA_REMOTE_URL" envDefault:""`
	MediaRemoteAPIKey string `env:"MEDIA_REMOTE_API_KEY" envDefault:""`
	MediaFolder       string `env:"MEDIA_FOLDER" envDefault:"trackitdown"`
	MediaMaxWidth     int    `env:"MEDIA_MAX_WIDTH" envDefault:"800"`
	MediaMaxHeight    int    `env:"MEDIA_MAX_HEIGHT" envDefault:"600"`
	MediaJPEGQuality  int    `env:"MEDIA_JPEG_QUALITY" envDefault:"82"`
	MediaOpTimeoutSec int    `env:"MEDIA_OP_TIMEOUT_SECONDS" envDefault:"30"`
	MediaCompensate   bool   `env:"MEDIA_COMPENSATE_ON_FAILURE" envDefault:"true"`
	MediaCacheMaxAge  int    `env:"MEDIA_CACHE_MAX_AGE_SECONDS" envDefault:"86400"`

	// Circuit breaker settings for the remote object store
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Rate limiting of mutating routes. Zero RPS disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Profiling endpoints. Empty disables them.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load item service config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.ItemStore {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresHost == "" {
			return errors.New("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return errors.New("POSTGRES_USER is required")
		}
	default:
		return fmt.Errorf("ITEM_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.ItemStore)
	}

	switch c.MediaBackend {
	case MediaMemory:
	case MediaRemote:
		if c.MediaRemoteURL == "" {
			return errors.New("MEDIA_REMOTE_URL is required when MEDIA_BACKEND=remote")
		}
		if _, err := url.ParseRequestURI(c.MediaRemoteURL); err != nil {
			return fmt.Errorf("invalid MEDIA_REMOTE_URL %q: %w", c.MediaRemoteURL, err)
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be %q or %q, got %q", MediaMemory, MediaRemote, c.MediaBackend)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Environment == "production" && c.JWTSecret == "change-me-in-production" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when EVENTS_ENABLED=true")
	}
	if c.MediaOpTimeoutSec <= 0 {
		return fmt.Errorf("MEDIA_OP_TIMEOUT_SECONDS must be positive, got %d", c.MediaOpTimeoutSec)
	}
	if c.MediaJPEGQuality < 1 || c.MediaJPEGQuality > 100 {
		return fmt.Errorf("MEDIA_JPEG_QUALITY must be between 1 and 100, got %d", c.MediaJPEGQuality)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.MediaCacheMaxAge < 0 {
		return fmt.Errorf("MEDIA_CACHE_MAX_AGE_SECONDS must not be negative, got %d", c.MediaCacheMaxAge)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	return nil
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the cache connection configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		PoolSize: c.RedisPoolSize,
	}
}

// CircuitBreaker returns the breaker configuration for the remote object
// store.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         "object-store",
		MaxRequests:  c.CBMaxRequests,
		Interval:     time.Duration(c.CBInterval) * time.Second,
		Timeout:      time.Duration(c.CBTimeout) * time.Second,
		FailureRatio: c.CBFailureRatio,
		MinRequests:  c.CBMinRequests,
	}
}

// ItemCacheTTL returns the item cache entry lifetime.
func (c *Config) ItemCacheTTL() time.Duration {
	return time.Duration(c.ItemCacheTTLSec) * time.Second
}

// MediaOpTimeout returns the per-call object store timeout.
func (c *Config) MediaOpTimeout() time.Duration {
	return time.Duration(c.MediaOpTimeoutSec) * time.Second
}

// SlowQueryThreshold returns the slow query logging threshold.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
