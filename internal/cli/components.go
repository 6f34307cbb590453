package cli

import (
	"context"
	"fmt"
	"time"

	"resumescreen/internal/catalog"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/extract"
	"resumescreen/internal/observability"
	"resumescreen/internal/screening"
)

// components are the screening pieces shared by the CLI and the HTTP server
type components struct {
	catalog       *catalog.Catalog
	registry      *extract.Registry
	screener      *screening.Screener
	observability *observability.ObservabilityManager
}

// buildComponents wires extraction, scoring and observability. The Prometheus
// endpoint is only served for long-running commands.
func buildComponents(cfg *config.Config, logger *errors.Logger, cat *catalog.Catalog, serving bool) (*components, error) {
	obsConfig := observability.GetObservabilityConfig(cfg, Version)
	if !serving {
		obsConfig.Prometheus.Enabled = false
	}

	om, err := observability.NewObservabilityManager(obsConfig, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	observer := observability.NewScreeningObserver(om)
	registry := extract.NewRegistry(cfg.Extraction, logger, observer)
	screener := screening.NewScreener(cat, registry, logger, screening.ScreenerOptions{
		SummaryWordLimit: cfg.Screening.SummaryWordLimit,
		Observer:         observer,
	})

	return &components{
		catalog:       cat,
		registry:      registry,
		screener:      screener,
		observability: om,
	}, nil
}

// shutdown flushes telemetry
func (c *components) shutdown(logger *errors.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.observability.Shutdown(ctx); err != nil {
		logger.LogError(err, "Failed to shutdown observability")
	}
}
