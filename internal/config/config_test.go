package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("PAGES_PRIMARY.ENV", "local")
	t.Setenv("PAGES_SERVER.PORT", "8080")
	t.Setenv("PAGES_SERVER.READ_TIMEOUT", "30")
	t.Setenv("PAGES_SERVER.WRITE_TIMEOUT", "30")
	t.Setenv("PAGES_SERVER.IDLE_TIMEOUT", "60")
	t.Setenv("PAGES_DATABASE.HOST", "localhost")
	t.Setenv("PAGES_DATABASE.PORT", "5432")
	t.Setenv("PAGES_DATABASE.USER", "pages")
	t.Setenv("PAGES_DATABASE.PASSWORD", "p@ss:word")
	t.Setenv("PAGES_DATABASE.NAME", "pages")
	t.Setenv("PAGES_AUTH.SECRET_KEY", "0123456789abcdef0123456789abcdef")
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected default driver postgres, got %q", cfg.Database.Driver)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Fatalf("expected default ssl mode disable, got %q", cfg.Database.SSLMode)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected default token ttl 24h, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.RateLimit == nil || cfg.RateLimit.RequestsPerMinute != 120 {
		t.Fatalf("expected default rate limit, got %+v", cfg.RateLimit)
	}
	if cfg.Observability.ServiceName != "pages-api" || cfg.Observability.Environment != "local" {
		t.Fatalf("expected observability tagged with service and env, got %+v", cfg.Observability)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS default, got %v", cfg.Server.CORSAllowedOrigins)
	}
}

func TestLoadConfigSplitsListValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAGES_SERVER.CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	origins := cfg.Server.CORSAllowedOrigins
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("expected two trimmed origins, got %v", origins)
	}
}

func TestLoadConfigSQLiteNeedsOnlyPath(t *testing.T) {
	t.Setenv("PAGES_PRIMARY.ENV", "local")
	t.Setenv("PAGES_SERVER.PORT", "8080")
	t.Setenv("PAGES_SERVER.READ_TIMEOUT", "30")
	t.Setenv("PAGES_SERVER.WRITE_TIMEOUT", "30")
	t.Setenv("PAGES_SERVER.IDLE_TIMEOUT", "60")
	t.Setenv("PAGES_DATABASE.DRIVER", "sqlite")
	t.Setenv("PAGES_DATABASE.PATH", "./data/pages.db")
	t.Setenv("PAGES_AUTH.SECRET_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Database.Path != "./data/pages.db" {
		t.Fatalf("expected sqlite path, got %q", cfg.Database.Path)
	}
}

func TestLoadConfigRejectsShortSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAGES_AUTH.SECRET_KEY", "short")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error for short secret key")
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAGES_DATABASE.DRIVER", "mysql")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error for unknown driver")
	}
}

func TestObservabilityValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultObservabilityConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}

	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid level to be rejected")
	}

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid format to be rejected")
	}
}

func TestGetLogLevelDefaultsByEnvironment(t *testing.T) {
	t.Parallel()

	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "production"
	if got := cfg.GetLogLevel(); got != "info" {
		t.Fatalf("expected info in production, got %q", got)
	}

	cfg.Environment = "development"
	if got := cfg.GetLogLevel(); got != "debug" {
		t.Fatalf("expected debug in development, got %q", got)
	}

	cfg.Logging.Level = "warn"
	if got := cfg.GetLogLevel(); got != "warn" {
		t.Fatalf("expected explicit level to win, got %q", got)
	}
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "pages.yaml")
	content := `
server:
  port: "9090"
  cors_allowed_origins:
    - https://pages.example.com
database:
  driver: sqlite
  path: /tmp/pages.db
auth:
  token_ttl: 2h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("PAGES_SERVER.PORT", "7070")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env to override file port, got %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "/tmp/pages.db" {
		t.Fatalf("expected sqlite settings from file, got %+v", cfg.Database)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Fatalf("expected token ttl from file, got %s", cfg.Auth.TokenTTL)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "https://pages.example.com" {
		t.Fatalf("unexpected origins %v", cfg.Server.CORSAllowedOrigins)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
