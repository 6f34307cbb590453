package observability

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestManager(t *testing.T, custom config.CustomMetricsConfig) *ObservabilityManager {
	t.Helper()

	full := &config.Config{}
	full.Observability.CustomMetrics = custom

	om, err := NewObservabilityManager(ObservabilityConfig{
		ServiceName:    "resumescreen-test",
		ServiceVersion: "test",
		Enabled:        true,
		SampleRate:     1,
	}, full, nil)
	require.NoError(t, err)
	require.NotNil(t, om.manualReader)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })
	return om
}

func allMetrics() config.CustomMetricsConfig {
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

func collect(t *testing.T, om *ObservabilityManager) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, om.manualReader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func counterTotal(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func histogramCount(t *testing.T, m metricdata.Metrics) uint64 {
	t.Helper()
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "metric %s is not a float64 histogram", m.Name)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	return count
}

func TestScreeningObserverRecordsMetrics(t *testing.T) {
	om := newTestManager(t, allMetrics())
	observer := NewScreeningObserver(om)
	ctx := context.Background()

	observer.DocumentScored(ctx, "Frontend Developer", types.ResumeRecord{
		Filename: "a.txt",
		Match:    types.MatchResult{Score: 0.75},
	})
	observer.DocumentScored(ctx, "Frontend Developer", types.ResumeRecord{Filename: "b.txt"})
	observer.DocumentFailed(ctx, "Frontend Developer", types.DocumentFailure{
		Filename: "c.pdf", Code: errors.ErrCodeExtractionFailed,
	})
	observer.BatchCompleted(ctx, &types.ScreeningReport{
		Role:     "Frontend Developer",
		Failures: []types.DocumentFailure{{Filename: "c.pdf"}},
	}, 250*time.Millisecond)
	observer.RecordExtraction(ctx, ".pdf", 10*time.Millisecond, stderrors.New("boom"))

	metrics := collect(t, om)
	assert.Equal(t, int64(2), counterTotal(t, metrics["resumescreen_resumes_scored_total"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["resumescreen_extraction_failures_total"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["resumescreen_batches_total"]))
	assert.Equal(t, uint64(2), histogramCount(t, metrics["resumescreen_match_score_percent"]))
	assert.Equal(t, uint64(1), histogramCount(t, metrics["resumescreen_batch_duration_seconds"]))
	assert.Equal(t, uint64(1), histogramCount(t, metrics["resumescreen_extraction_duration_seconds"]))
}

func TestScreeningObserverRespectsToggles(t *testing.T) {
	custom := allMetrics()
	custom.Screening.TrackScores = false
	custom.Screening.TrackExtraction = false
	om := newTestManager(t, custom)
	observer := NewScreeningObserver(om)

	observer.DocumentScored(context.Background(), "Data Analyst", types.ResumeRecord{Match: types.MatchResult{Score: 1}})
	observer.RecordExtraction(context.Background(), ".txt", time.Millisecond, nil)

	metrics := collect(t, om)
	assert.Equal(t, int64(1), counterTotal(t, metrics["resumescreen_resumes_scored_total"]))
	assert.NotContains(t, metrics, "resumescreen_match_score_percent")
	assert.NotContains(t, metrics, "resumescreen_extraction_duration_seconds")
}

func TestInfrastructureAndBusinessMetrics(t *testing.T) {
	om := newTestManager(t, allMetrics())
	ctx := context.Background()

	om.RecordRateLimitHit(ctx, "ip")
	om.RecordRateLimitHit(ctx, "api_key")
	om.RecordCertReload(ctx, true, time.Now().Add(24*time.Hour))
	om.RecordBusinessMetric(ctx, "report_exported", true)
	om.RecordBusinessMetric(ctx, "unknown_metric", true)

	metrics := collect(t, om)
	assert.Equal(t, int64(2), counterTotal(t, metrics["resumescreen_rate_limit_hits_total"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["resumescreen_cert_reloads_total"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["resumescreen_reports_exported_total"]))
	assert.Contains(t, metrics, "resumescreen_cert_expiry_seconds")
}

func TestDisabledManagerIsSafe(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	observer := NewScreeningObserver(om)
	assert.NotPanics(t, func() {
		observer.DocumentScored(ctx, "Data Analyst", types.ResumeRecord{})
		observer.BatchCompleted(ctx, &types.ScreeningReport{}, time.Second)
		om.RecordRateLimitHit(ctx, "ip")
		om.RecordBusinessMetric(ctx, "roles_listed", true)
	})

	var nilManager *ObservabilityManager
	assert.NotPanics(t, func() {
		NewScreeningObserver(nilManager).DocumentFailed(ctx, "Data Analyst", types.DocumentFailure{})
	})
	assert.NoError(t, nilManager.Shutdown(ctx))
}

func TestGetObservabilityConfig(t *testing.T) {
	fallback := GetObservabilityConfig(nil, "1.2.3")
	assert.Equal(t, "resumescreen", fallback.ServiceName)
	assert.Equal(t, "1.2.3", fallback.ServiceVersion)

	cfg := &config.Config{}
	cfg.Observability.ServiceName = "screen"
	cfg.Observability.SampleRate = 0.5
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.SampleRate = 0.25
	cfg.Observability.ServiceVersion = "custom"

	got := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "screen", got.ServiceName)
	assert.Equal(t, "custom", got.ServiceVersion)
	assert.Equal(t, 0.25, got.SampleRate)
}
