// Package config reads the perizinan server and CLI settings from the
// environment and loads the sector and permit catalog.
//
// Each field names its variable in an env tag, with optional envAlt,
// default and required tags. Load reports every invalid setting at once.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the full set of runtime settings.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Upload     UploadConfig
	Extract    ExtractConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Resilience ResilienceConfig
	Catalog    CatalogConfig
}

// ServerConfig controls the HTTP listener. RequestTimeout applies to the
// JSON endpoints; uploads use UploadConfig.Timeout instead.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// DatabaseConfig configures the Postgres pool that holds imported permits.
// The URL is required by the server and the import commands only.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig limits workbook uploads.
type UploadConfig struct {
	// MaxFileSize in bytes, 25 MiB by default.
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"26214400"`
	// MaxConcurrent imports and standardize runs.
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"3"`
	// MaxWaitTime a request queues for a free slot before UPL002.
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
	Timeout     time.Duration `env:"UPLOAD_TIMEOUT" default:"10m"`
}

// ExtractConfig tunes extraction and the in-memory stacking sessions.
type ExtractConfig struct {
	Workers     int           `env:"EXTRACT_WORKERS" default:"4"`
	PreviewRows int           `env:"SHEET_PREVIEW_ROWS" default:"20"`
	SessionTTL  time.Duration `env:"SESSION_TTL" default:"2h"`
	MaxSessions int           `env:"SESSION_MAX" default:"200"`
}

// RateLimitConfig sets per-client request budgets, in requests per minute.
// Upload endpoints draw from their own, smaller budget.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
	UploadLimit       int  `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig covers proxies, response headers and API keys.
type SecurityConfig struct {
	// TrustedProxies lists CIDRs or addresses whose X-Real-IP and
	// X-Forwarded-For headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
	EnableCSP      bool     `env:"SECURITY_ENABLE_CSP" default:"true"`
	RequireAPIKey  bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys        []string `env:"API_KEYS"`
}

// LoggingConfig selects the slog level (debug, info, warn, error) and
// handler (text or json).
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ResilienceConfig tunes retries and the circuit breaker around store writes.
type ResilienceConfig struct {
	RetryMaxAttempts    int           `env:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff time.Duration `env:"RETRY_INITIAL_BACKOFF" default:"100ms"`
	RetryMaxBackoff     time.Duration `env:"RETRY_MAX_BACKOFF" default:"1s"`
	RetryMultiplier     float64       `env:"RETRY_MULTIPLIER" default:"2"`

	BreakerEnabled          bool          `env:"BREAKER_ENABLED" default:"true"`
	BreakerMinRequests      uint32        `env:"BREAKER_MIN_REQUESTS" default:"10"`
	BreakerFailureRatio     float64       `env:"BREAKER_FAILURE_RATIO" default:"0.5"`
	BreakerOpenTimeout      time.Duration `env:"BREAKER_OPEN_TIMEOUT" default:"30s"`
	BreakerHalfOpenMaxCalls uint32        `env:"BREAKER_HALF_OPEN_MAX_CALLS" default:"2"`
}

// CatalogConfig points at a YAML catalog replacing the built-in one.
type CatalogConfig struct {
	Path string `env:"CATALOG_PATH"`
}

// Addr is the listen address for http.Server.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
