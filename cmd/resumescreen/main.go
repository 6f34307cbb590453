package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"resumescreen/internal/catalog"
	"resumescreen/internal/cli"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"github.com/joho/godotenv"
)

func main() {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "Failed to apply Vault secrets")
		os.Exit(1)
	}

	cat, err := catalog.FromConfig(cfg.Screening, logger)
	if err != nil {
		logger.LogError(err, "Failed to load role catalog")
		os.Exit(1)
	}

	logger.Info("Starting resumescreen application",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"roles", len(cat.Roles()))

	if err := cli.Execute(ctx, cfg, logger, cat); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}
