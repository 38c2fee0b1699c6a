package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads the configuration from the environment, applies defaults and
// validates the result. DATABASE_URL is required.
func Load() (*Config, error) {
	return loadFrom(os.LookupEnv, true)
}

// LoadLocal is Load for commands that never open the database:
// DATABASE_URL is optional and the database section is not validated.
func LoadLocal() (*Config, error) {
	return loadFrom(os.LookupEnv, false)
}

// MustLoad is Load that panics. Only main should call it.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// lookupFunc matches os.LookupEnv.
type lookupFunc func(string) (string, bool)

func loadFrom(lookup lookupFunc, requireDB bool) (*Config, error) {
	cfg := &Config{}
	l := loader{lookup: lookup, skipRequired: !requireDB}
	if err := l.fill(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.validate(requireDB); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

type loader struct {
	lookup       lookupFunc
	skipRequired bool
}

// value resolves a field from its env tag, then envAlt, then default.
// ok is false when nothing applies.
func (l loader) value(tag reflect.StructTag) (string, bool, error) {
	name := tag.Get("env")
	for _, key := range []string{name, tag.Get("envAlt")} {
		if key == "" {
			continue
		}
		if v, ok := l.lookup(key); ok && v != "" {
			return v, true, nil
		}
	}
	if tag.Get("required") == "true" && !l.skipRequired {
		return "", false, fmt.Errorf("required environment variable %s is not set", name)
	}
	def := tag.Get("default")
	return def, def != "", nil
}

// fill walks nested section structs and sets every field carrying an env tag.
func (l loader) fill(v reflect.Value) error {
	t := v.Type()
	for i := range t.NumField() {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := l.fill(fv); err != nil {
				return err
			}
			continue
		}
		if field.Tag.Get("env") == "" {
			continue
		}

		raw, ok, err := l.value(field.Tag)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := assign(fv.Addr().Interface(), raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", field.Tag.Get("env"), raw, err)
		}
	}
	return nil
}

// assign parses raw into the field behind ptr.
func assign(ptr any, raw string) error {
	var err error
	switch p := ptr.(type) {
	case *string:
		*p = raw
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *int:
		*p, err = strconv.Atoi(raw)
	case *int64:
		*p, err = strconv.ParseInt(raw, 10, 64)
	case *uint32:
		var u uint64
		u, err = strconv.ParseUint(raw, 10, 32)
		*p = uint32(u)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	case *time.Duration:
		*p, err = time.ParseDuration(raw)
	case *[]string:
		*p = splitList(raw)
	default:
		return fmt.Errorf("unsupported field type %T", ptr)
	}
	return err
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	return c.validate(true)
}

// problems collects validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (c *Config) validate(requireDB bool) error {
	var p problems

	if requireDB {
		db := c.Database
		p.check(db.URL != "", "DATABASE_URL is required")
		p.check(db.MaxConns >= db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)
		p.check(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
		p.check(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	}

	s := c.Server
	p.check(s.Port > 0 && s.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", s.Port)
	p.check(s.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(s.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	u := c.Upload
	p.check(u.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(u.MaxConcurrent > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.check(u.MaxWaitTime > 0, "UPLOAD_MAX_WAIT_TIME must be positive")
	p.check(u.Timeout > 0, "UPLOAD_TIMEOUT must be positive")

	e := c.Extract
	p.check(e.Workers > 0, "EXTRACT_WORKERS must be positive")
	p.check(e.PreviewRows > 0, "SHEET_PREVIEW_ROWS must be positive")
	p.check(e.SessionTTL > 0, "SESSION_TTL must be positive")
	p.check(e.MaxSessions > 0, "SESSION_MAX must be positive")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.UploadLimit > 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	r := c.Resilience
	p.check(r.RetryMaxAttempts > 0, "RETRY_MAX_ATTEMPTS must be positive")
	p.check(r.BreakerFailureRatio > 0 && r.BreakerFailureRatio <= 1,
		"BREAKER_FAILURE_RATIO (%g) must be in (0, 1]", r.BreakerFailureRatio)

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String renders the config for startup logs with the database URL and
// API keys masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Host: %q, Port: %d}, "+
		"Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, "+
		"Upload: {MaxFileSize: %d, MaxConcurrent: %d}, "+
		"Extract: {Workers: %d, SessionTTL: %s}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d}, "+
		"Security: {RequireAPIKey: %v, APIKeys: [%d MASKED]}, "+
		"Logging: {Level: %q, Format: %q}, Catalog: %q}",
		c.Server.Host, c.Server.Port,
		c.Database.MaxConns, c.Database.MinConns,
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent,
		c.Extract.Workers, c.Extract.SessionTTL,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		c.Security.RequireAPIKey, len(c.Security.APIKeys),
		c.Logging.Level, c.Logging.Format, c.Catalog.Path)
}
