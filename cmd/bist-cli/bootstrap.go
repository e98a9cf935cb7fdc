package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"bist-cli/internal/api"
	"bist-cli/internal/auth"
	"bist-cli/internal/broker"
	"bist-cli/internal/config"
	"bist-cli/internal/logger"
	"bist-cli/internal/secrets"
	"bist-cli/internal/trace"
	"bist-cli/internal/ui"
	"bist-cli/internal/watchlist"
)

// components holds everything the menu loop needs, wired once at startup.
type components struct {
	cfg *config.Config
	log *logger.Logger
	app *ui.App
}

// initializeSystem loads environment, config, logger, and tracer.
func initializeSystem(configPath string) (*config.Config, *logger.Logger, error) {
	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr so they never interleave with rendered tables.
	log := logger.New(os.Stderr, logger.Options{
		Level:           cfg.Log.Level,
		Format:          cfg.Log.Format,
		DetailedLogging: cfg.Log.DetailedLogging,
		TracingEnabled:  cfg.Log.TracingEnabled,
	})

	if err := trace.Init(cfg.Log.TracingEnabled); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize tracer: %v\n", err)
	}

	return cfg, log, nil
}

// initializeComponents wires the client, auth manager, broker service, and
// watchlist store around the shared config and logger.
func initializeComponents(cfg *config.Config, log *logger.Logger) (*components, error) {
	appDir, err := config.AppDir()
	if err != nil {
		return nil, err
	}

	tokens := secrets.NewStore(appDir, cfg.Tokens.UseKeyring, log)

	client := api.NewClient(tokens, log,
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		api.WithConnectTimeout(time.Duration(cfg.API.ConnectTimeoutSeconds)*time.Second),
		api.WithHealthTimeout(time.Duration(cfg.API.HealthTimeoutSeconds)*time.Second),
	)

	session := auth.NewSessionCache(appDir, log)
	authMgr := auth.NewManager(client, session, log)

	retry := api.NewRetryPolicy(cfg.Retry.MaxAttempts, cfg.Retry.BackoffBaseSeconds)
	brokerSvc := broker.NewService(client, retry, log)

	watchlists := watchlist.Open(appDir, log)

	app := ui.NewApp(cfg, log, client, authMgr, brokerSvc, watchlists, os.Stdin, os.Stdout)

	return &components{cfg: cfg, log: log, app: app}, nil
}

// configPath resolves the config file location: flag value, then
// BIST_CONFIG, then the per-user app directory.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("BIST_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".bist-cli", "config.yaml")
}
