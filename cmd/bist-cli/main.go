package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bist-cli/internal/trace"
)

func main() {
	var configFlag string
	flag.StringVar(&configFlag, "config", "", "path to config.yaml")
	flag.Parse()

	cfg, log, err := initializeSystem(configPath(configFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sys, err := initializeComponents(cfg, log)
	if err != nil {
		log.ErrorWithErr(ctx, "component wiring failed", err)
		os.Exit(1)
	}

	err = sys.app.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = trace.Shutdown(shutdownCtx)

	if err != nil && !errors.Is(err, context.Canceled) {
		log.ErrorWithErr(ctx, "terminal exited with error", err)
		os.Exit(1)
	}
}
