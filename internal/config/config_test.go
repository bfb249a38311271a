package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs sets multiple env vars for the duration of the test.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.HTTPPort)
	assert.Equal(t, StorePostgres, cfg.ItemStore)
	assert.Equal(t, MediaMemory, cfg.MediaBackend)
	assert.Equal(t, "trackitdown", cfg.MediaFolder)
	assert.Equal(t, 800, cfg.MediaMaxWidth)
	assert.Equal(t, 600, cfg.MediaMaxHeight)
	assert.True(t, cfg.MediaCompensate)
	assert.False(t, cfg.EventsEnabled)
	assert.Empty(t, cfg.RedisHost)
	assert.Empty(t, cfg.PprofAllowedCIDRs)
	assert.Equal(t, 86400, cfg.MediaCacheMaxAge)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.MediaOpTimeout())
	assert.Equal(t, 5*time.Minute, cfg.ItemCacheTTL())
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
}

func TestLoad_Overrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"HTTP_PORT":                   "8080",
		"ITEM_STORE":                  "memory",
		"MEDIA_BACKEND":               "remote",
		"MEDIA_REMOTE_URL":            "https://objects.example.com/v1",
		"MEDIA_COMPENSATE_ON_FAILURE": "false",
		"KAFKA_BROKERS":               "k1:9092,k2:9092",
		"EVENTS_ENABLED":              "true",
		"CORS_ALLOWED_ORIGINS":        "https://a.example,https://b.example",
		"PPROF_ALLOWED_CIDRS":         "127.0.0.0/8,10.0.0.0/8",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.ItemStore)
	assert.Equal(t, MediaRemote, cfg.MediaBackend)
	assert.False(t, cfg.MediaCompensate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
	assert.Equal(t, []string{"127.0.0.0/8", "10.0.0.0/8"}, cfg.PprofAllowedCIDRs)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr string
	}{
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"unknown store", map[string]string{"ITEM_STORE": "mongo"}, "ITEM_STORE must be"},
		{"unknown media backend", map[string]string{"MEDIA_BACKEND": "s3"}, "MEDIA_BACKEND must be"},
		{"remote without url", map[string]string{"MEDIA_BACKEND": "remote"}, "MEDIA_REMOTE_URL is required"},
		{"remote bad url", map[string]string{"MEDIA_BACKEND": "remote", "MEDIA_REMOTE_URL": "not a url"}, "invalid MEDIA_REMOTE_URL"},
		{"default secret in production", map[string]string{"ENVIRONMENT": "production"}, "JWT_SECRET must be set"},
		{"bad sample rate", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "OTEL_SAMPLE_RATE"},
		{"bad quality", map[string]string{"MEDIA_JPEG_QUALITY": "0"}, "MEDIA_JPEG_QUALITY"},
		{"bad timeout", map[string]string{"MEDIA_OP_TIMEOUT_SECONDS": "0"}, "MEDIA_OP_TIMEOUT_SECONDS"},
		{"negative rps", map[string]string{"RATE_LIMIT_RPS": "-1"}, "RATE_LIMIT_RPS"},
		{"negative media max-age", map[string]string{"MEDIA_CACHE_MAX_AGE_SECONDS": "-5"}, "MEDIA_CACHE_MAX_AGE_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, tt.envs)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Derived(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: 5433, PostgresUser: "u", PostgresPass: "p",
		PostgresDB: "items", PostgresSSL: "require", DBMaxConns: 7, DBMaxConnLifetimeMins: 2,
		RedisHost: "cache", RedisPort: 6380, RedisPoolSize: 4, CBTimeout: 9, CBMaxRequests: 3,
	}

	pg := cfg.Postgres()
	assert.Equal(t, "postgres://u:p@db:5433/items?sslmode=require", pg.DSN())
	assert.Equal(t, int32(7), pg.MaxConns)
	assert.Equal(t, 2*time.Minute, pg.MaxConnLifetime)

	assert.Equal(t, "cache:6380", cfg.Redis().Addr())
	assert.Equal(t, 4, cfg.Redis().PoolSize)

	cb := cfg.CircuitBreaker()
	assert.Equal(t, "object-store", cb.Name)
	assert.Equal(t, 9*time.Second, cb.Timeout)
	assert.Equal(t, uint32(3), cb.MaxRequests)
}
