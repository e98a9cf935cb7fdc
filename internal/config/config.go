package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is built once at startup and handed to every component. There is
// no package-level settings state.
type Config struct {
	API struct {
		BaseURL               string `yaml:"base_url"`
		TimeoutSeconds        int    `yaml:"timeout_seconds"`
		ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
		HealthTimeoutSeconds  int    `yaml:"health_timeout_seconds"`
	} `yaml:"api"`

	Retry struct {
		MaxAttempts        int     `yaml:"max_attempts"`
		BackoffBaseSeconds float64 `yaml:"backoff_base_seconds"`
	} `yaml:"retry"`

	Stream struct {
		PollSeconds         int `yaml:"poll_seconds"`
		ErrorBackoffSeconds int `yaml:"error_backoff_seconds"`
		WindowSize          int `yaml:"window_size"`
	} `yaml:"stream"`

	Log struct {
		Level           string `yaml:"level"`
		Format          string `yaml:"format"`
		DetailedLogging bool   `yaml:"detailed"`
		TracingEnabled  bool   `yaml:"tracing_enabled"`
	} `yaml:"log"`

	Tokens struct {
		UseKeyring bool `yaml:"use_keyring"`
	} `yaml:"tokens"`

	Display struct {
		Currency       string `yaml:"currency"`
		PaginationSize int    `yaml:"pagination_size"`
	} `yaml:"display"`
}

// Default returns a Config with working defaults for a local platform.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.API.TimeoutSeconds = 30
	cfg.API.ConnectTimeoutSeconds = 10
	cfg.API.HealthTimeoutSeconds = 5
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BackoffBaseSeconds = 1.0
	cfg.Stream.PollSeconds = 1
	cfg.Stream.ErrorBackoffSeconds = 2
	cfg.Stream.WindowSize = 15
	cfg.Log.Level = "INFO"
	cfg.Log.Format = "text"
	cfg.Log.TracingEnabled = false
	cfg.Tokens.UseKeyring = true
	cfg.Display.Currency = "TRY"
	cfg.Display.PaginationSize = 20
	return cfg
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BackoffBaseSeconds <= 0 {
		return fmt.Errorf("retry.backoff_base_seconds must be positive, got %.2f", c.Retry.BackoffBaseSeconds)
	}
	if c.Stream.PollSeconds <= 0 {
		return fmt.Errorf("stream.poll_seconds must be positive, got %d", c.Stream.PollSeconds)
	}
	if c.Stream.WindowSize <= 0 {
		return fmt.Errorf("stream.window_size must be positive, got %d", c.Stream.WindowSize)
	}
	return nil
}

// Load reads the YAML config at path and applies environment overrides.
// A missing file is not an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets BIST_* environment variables override file values. godotenv
// has already populated the environment from .env by the time this runs.
func (c *Config) applyEnv() {
	if v := os.Getenv("BIST_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("BIST_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BIST_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("BIST_LOG_DETAILED"); v != "" {
		c.Log.DetailedLogging = v == "true"
	}
	if v := os.Getenv("BIST_TRACING_ENABLED"); v != "" {
		c.Log.TracingEnabled = v == "true"
	}
	if v := os.Getenv("BIST_USE_KEYRING"); v != "" {
		c.Tokens.UseKeyring = v == "true"
	}
	if v := os.Getenv("BIST_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Stream.PollSeconds = n
		}
	}
}

// AppDir returns the per-user application directory, creating it if needed.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".bist-cli")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating app directory: %w", err)
	}
	return dir, nil
}
