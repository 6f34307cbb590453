package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// scoreBuckets are histogram bounds for match percentages
var scoreBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics for resumescreen
type Metrics struct {
	// Screening metrics
	ResumesScored      metric.Int64Counter
	MatchScore         metric.Float64Histogram
	ExtractionFailures metric.Int64Counter
	ExtractionDuration metric.Float64Histogram
	Batches            metric.Int64Counter
	BatchDuration      metric.Float64Histogram

	// Business metrics
	ReportsExported metric.Int64Counter
	RolesListed     metric.Int64Counter

	// Certificate metrics
	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config         ObservabilityConfig
	fullConfig     *config.Config
	logger         *errors.Logger
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	manualReader   *sdkmetric.ManualReader
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewObservabilityManager creates a new observability manager. fullConfig may be nil.
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config, logger *errors.Logger) (*ObservabilityManager, error) {
	om := &ObservabilityManager{
		config:     obsConfig,
		fullConfig: fullConfig,
		logger:     logger,
	}
	if !obsConfig.Enabled {
		return om, nil
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.otlpEnabled():
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	// With no exporter configured, keep metrics collectable in-process
	if len(readers) == 0 {
		om.manualReader = sdkmetric.NewManualReader()
		readers = append(readers, om.manualReader)
	}

	return readers, nil
}

func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if !om.otlpEnabled() {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	*readers = append(*readers, otlpReader)
	return nil
}

func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	if prometheusReader == nil {
		return nil
	}
	*readers = append(*readers, prometheusReader)

	server := StartPrometheusServer(prometheusMux, om.config.Prometheus.Port, om.logger)
	om.shutdownFuncs = append(om.shutdownFuncs, server.Shutdown)
	return nil
}

// initCustomMetrics creates all custom metrics for resumescreen
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createScreeningMetrics(meter); err != nil {
		return err
	}

	if err := om.createBusinessMetrics(meter); err != nil {
		return err
	}

	if err := om.createCertificateMetrics(meter); err != nil {
		return err
	}

	return om.createRateLimitMetrics(meter)
}

func (om *ObservabilityManager) createScreeningMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ResumesScored, err = meter.Int64Counter(
		"resumescreen_resumes_scored_total",
		metric.WithDescription("Total number of resumes scored against a role"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resumes scored metric: %w", err)
	}

	om.metrics.MatchScore, err = meter.Float64Histogram(
		"resumescreen_match_score_percent",
		metric.WithDescription("Distribution of resume match scores"),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create match score metric: %w", err)
	}

	om.metrics.ExtractionFailures, err = meter.Int64Counter(
		"resumescreen_extraction_failures_total",
		metric.WithDescription("Total number of documents skipped because no text could be extracted"),
	)
	if err != nil {
		return fmt.Errorf("failed to create extraction failures metric: %w", err)
	}

	om.metrics.ExtractionDuration, err = meter.Float64Histogram(
		"resumescreen_extraction_duration_seconds",
		metric.WithDescription("Time spent extracting text from documents"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create extraction duration metric: %w", err)
	}

	om.metrics.Batches, err = meter.Int64Counter(
		"resumescreen_batches_total",
		metric.WithDescription("Total number of screening batches completed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create batches metric: %w", err)
	}

	om.metrics.BatchDuration, err = meter.Float64Histogram(
		"resumescreen_batch_duration_seconds",
		metric.WithDescription("Time spent screening a batch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create batch duration metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createBusinessMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ReportsExported, err = meter.Int64Counter(
		"resumescreen_reports_exported_total",
		metric.WithDescription("Total number of CSV screening exports"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reports exported metric: %w", err)
	}

	om.metrics.RolesListed, err = meter.Int64Counter(
		"resumescreen_roles_listed_total",
		metric.WithDescription("Total number of role catalog listings"),
	)
	if err != nil {
		return fmt.Errorf("failed to create roles listed metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createCertificateMetrics(meter metric.Meter) error {
	var err error

	om.metrics.CertReloadCount, err = meter.Int64Counter(
		"resumescreen_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate reload count metric: %w", err)
	}

	om.metrics.CertExpiryTime, err = meter.Float64Gauge(
		"resumescreen_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate expiry time metric: %w", err)
	}

	return nil
}

func (om *ObservabilityManager) createRateLimitMetrics(meter metric.Meter) error {
	var err error

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"resumescreen_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown flushes exporters and stops the Prometheus server
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (om *ObservabilityManager) customMetrics() config.CustomMetricsConfig {
	if om == nil || om.fullConfig == nil {
		return config.CustomMetricsConfig{
			Screening: config.ScreeningMetricsConfig{
				Enabled: true, TrackScores: true, TrackExtraction: true, TrackBatchDuration: true,
			},
			BusinessMetrics: config.BusinessMetricsConfig{Enabled: true},
			Infrastructure: config.InfrastructureMetricsConfig{
				Enabled: true, TrackRateLimits: true, TrackCertReloads: true,
			},
		}
	}
	return om.fullConfig.Observability.CustomMetrics
}

// RecordBusinessMetric records business-specific metrics
func (om *ObservabilityManager) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	custom := om.customMetrics()
	if !custom.BusinessMetrics.Enabled {
		return
	}

	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)

	m := om.GetMetrics()
	switch metricType {
	case "report_exported":
		if m.ReportsExported != nil {
			m.ReportsExported.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	case "roles_listed":
		if m.RolesListed != nil {
			m.RolesListed.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, limiter string) {
	custom := om.customMetrics()
	if !custom.Infrastructure.Enabled || !custom.Infrastructure.TrackRateLimits {
		return
	}
	if m := om.GetMetrics(); m.RateLimitHits != nil {
		m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter", limiter)))
	}
}

// RecordCertReload counts a certificate reload and records the new expiry
func (om *ObservabilityManager) RecordCertReload(ctx context.Context, success bool, notAfter time.Time) {
	custom := om.customMetrics()
	if !custom.Infrastructure.Enabled || !custom.Infrastructure.TrackCertReloads {
		return
	}
	m := om.GetMetrics()
	if m.CertReloadCount != nil {
		m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
	if success && m.CertExpiryTime != nil && !notAfter.IsZero() {
		m.CertExpiryTime.Record(ctx, time.Until(notAfter).Seconds())
	}
}

type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (om *ObservabilityManager) otlpEnabled() bool {
	return om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return "resumescreen-1"
}

func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
