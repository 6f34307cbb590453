package observability

import (
	"fmt"
	"net/http"
	"time"

	"resumescreen/internal/errors"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// SetupPrometheusExporter creates and configures a Prometheus metrics exporter
func SetupPrometheusExporter(config PrometheusConfig) (metric.Reader, *http.ServeMux, error) {
	if !config.Enabled {
		return nil, nil, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}

	// promhttp.Handler serves the default registry, which the exporter registers to
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.Handler())

	return exporter, mux, nil
}

// StartPrometheusServer serves mux on its own port in the background
func StartPrometheusServer(mux *http.ServeMux, port string, logger *errors.Logger) *http.Server {
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if logger != nil {
		logger.Info("Starting Prometheus metrics server", "address", addr)
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed && logger != nil {
			logger.LogError(err, "Prometheus server error", "address", addr)
		}
	}()

	return server
}
