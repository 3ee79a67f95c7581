// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read into the configuration.
// Nested keys use a double underscore: MATCH_ORACLE__TIMEOUT=20s sets oracle.timeout.
const EnvPrefix = "MATCH_"

// ConfigPathEnv names the environment variable holding an optional YAML config path.
const ConfigPathEnv = "MATCH_CONFIG"

// Cache backends
const (
	CacheBackendPostgres = "postgres"
	CacheBackendBadger   = "badger"
	CacheBackendMemory   = "memory"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Oracle    OracleConfig    `koanf:"oracle"`
	Log       LogConfig       `koanf:"log"`
	JWT       JWTConfig       `koanf:"jwt"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int             `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration   `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration   `koanf:"write_timeout" validate:"gt=0"`
	AllowedOrigins []string        `koanf:"allowed_origins"`
	RateLimit      RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig configures per-client request limits. Refresh requests
// trigger a new generation and get their own, stricter bucket.
type RateLimitConfig struct {
	Enabled           bool     `koanf:"enabled"`
	RequestsPerMinute int      `koanf:"requests_per_minute" validate:"min=1"`
	Burst             int      `koanf:"burst" validate:"min=1"`
	RefreshPerHour    int      `koanf:"refresh_per_hour" validate:"min=1"`
	RefreshBurst      int      `koanf:"refresh_burst" validate:"min=1"`
	Whitelist         []string `koanf:"whitelist"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// CacheConfig configures the recommendation cache store.
type CacheConfig struct {
	Backend         string        `koanf:"backend" validate:"oneof=postgres badger memory"`
	BadgerPath      string        `koanf:"badger_path" validate:"required_if=Backend badger"`
	FreshnessWindow time.Duration `koanf:"freshness_window" validate:"gt=0"`
}

// RecommendConfig tunes ranking and enrichment.
type RecommendConfig struct {
	K                   int     `koanf:"k" validate:"min=1"`
	MaxPoolSize         int     `koanf:"max_pool_size" validate:"gtefield=K"`
	FallbackStart       float64 `koanf:"fallback_start" validate:"gt=0,lte=1"`
	FallbackStep        float64 `koanf:"fallback_step" validate:"gte=0,lte=1"`
	FallbackFloor       float64 `koanf:"fallback_floor" validate:"gte=0,lte=1"`
	PercentageTolerance int     `koanf:"percentage_tolerance" validate:"gte=0,lte=100"`
	EnrichConcurrency   int     `koanf:"enrich_concurrency" validate:"min=1"`
}

// OracleConfig configures the external scoring service.
type OracleConfig struct {
	APIKey  string        `koanf:"api_key"`
	Tier    string        `koanf:"tier" validate:"oneof=lite standard advanced"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of the oracle.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MinRequests  uint32        `koanf:"min_requests" validate:"min=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	OpenTimeout  time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second, // must outlast the oracle timeout
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             20,
				RefreshPerHour:    20,
				RefreshBurst:      3,
			},
		},
		Cache: CacheConfig{
			Backend:         CacheBackendPostgres,
			FreshnessWindow: 24 * time.Hour,
		},
		Recommend: RecommendConfig{
			K:                   2,
			MaxPoolSize:         50,
			FallbackStart:       0.8,
			FallbackStep:        0.1,
			FallbackFloor:       0.5,
			PercentageTolerance: 1,
			EnrichConcurrency:   4,
		},
		Oracle: OracleConfig{
			Tier:    "standard",
			Timeout: 30 * time.Second,
			Breaker: BreakerConfig{
				Enabled:      true,
				MinRequests:  5,
				FailureRatio: 0.6,
				Interval:     time.Minute,
				OpenTimeout:  time.Minute,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			ExpirationHours: 24,
		},
	}
}

// Load builds a Config by layering, lowest precedence first:
//  1. Default()
//  2. the YAML file at path (or $MATCH_CONFIG when path is empty), if any
//  3. MATCH_* environment variables
//  4. the unprefixed DATABASE_URL, GEMINI_API_KEY, JWT_SECRET and JWT_EXPIRATION_HOURS
//     variables, for fields still unset
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyLegacyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLegacyEnv fills unset fields from the conventional unprefixed variables.
func applyLegacyEnv(cfg *Config) {
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	}
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" && os.Getenv(EnvPrefix+"JWT__EXPIRATION_HOURS") == "" {
		if hours, err := strconv.Atoi(v); err == nil {
			cfg.JWT.ExpirationHours = hours
		}
	}
}

var configValidator = validator.New()

// Validate checks that the configuration has usable values.
// JWT settings are checked separately by the commands that need them.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
