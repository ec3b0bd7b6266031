// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file,
// when present), loads them into structured Go types, and validates that
// required values are present so they can be reused across the application
// runtime.
//
// Responsibilities:
//   - Load an optional YAML file named by PAGES_CONFIG_FILE.
//   - Load environment variables (optionally from a `.env` file); they
//     override values from the file.
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (rate limit, observability).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any config is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable must carry.
//
// Nesting uses "." so PAGES_SERVER.PORT maps to Config.Server.Port.
const EnvPrefix = "PAGES_"

// FileEnv names the environment variable holding an optional YAML config
// path. Keys in the file use the same nesting as the env variables.
const FileEnv = EnvPrefix + "CONFIG_FILE"

// listKeys are koanf keys whose env value is a comma-separated list.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":         true,
	"observability.health_checks.checks": true,
}

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf should map values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
//
// RateLimit and Observability are pointers because they are optional.
// When missing, defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	RateLimit     *RateLimitConfig     `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Used to tag logs/traces and switch behavior based on env ("local" enables SQL logs).
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig selects the relational store and its connection parameters.
//
// Driver "postgres" needs the network fields, driver "sqlite" only Path.
// Pool settings are optional; zero keeps database/sql defaults.
type DatabaseConfig struct {
	Driver          string `koanf:"driver" validate:"oneof=postgres sqlite"`
	Host            string `koanf:"host" validate:"required_if=Driver postgres"`
	Port            int    `koanf:"port" validate:"required_if=Driver postgres"`
	User            string `koanf:"user" validate:"required_if=Driver postgres"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode         string `koanf:"ssl_mode"`
	Path            string `koanf:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; empty means Redis is not used.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// AuthConfig stores the bearer token settings.
//
// SecretKey signs and verifies HS256 tokens, so it must be long enough to
// resist brute force.
type AuthConfig struct {
	SecretKey string        `koanf:"secret_key" validate:"required,min=32"`
	Issuer    string        `koanf:"issuer"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"min=0"`
}

// RateLimitConfig throttles requests per client IP.
type RateLimitConfig struct {
	Enabled           bool `koanf:"enabled"`
	RequestsPerMinute int  `koanf:"requests_per_minute" validate:"min=1"`
	Burst             int  `koanf:"burst" validate:"min=0"`
}

// DefaultRateLimitConfig is used when no rate_limit block is configured.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 120,
		Burst:             30,
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config structs, applies defaults, validates it, and returns the result.
//
// Behavior summary:
//   - Loads the YAML file named by PAGES_CONFIG_FILE, if set
//   - Loads env vars with prefix PAGES_ on top of it
//   - Converts env keys into koanf keys using "." nesting
//   - Splits list-valued keys on commas
//   - Unmarshals into Config and fills defaults for optional blocks
//   - Validates struct tags, then observability rules
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		if key == FileEnv {
			return "", nil
		}
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Driver == "postgres" && c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}

	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "pages-api"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	if c.RateLimit == nil {
		c.RateLimit = DefaultRateLimitConfig()
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = DefaultRateLimitConfig().RequestsPerMinute
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config so
	// logs and traces are tagged consistently.
	c.Observability.ServiceName = "pages-api"
	c.Observability.Environment = c.Primary.Env
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
