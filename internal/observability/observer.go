package observability

import (
	"context"
	"time"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScreeningObserver turns screening and extraction outcomes into metrics
type ScreeningObserver struct {
	om *ObservabilityManager
}

// NewScreeningObserver returns an observer backed by om's metrics. om may be nil.
func NewScreeningObserver(om *ObservabilityManager) *ScreeningObserver {
	return &ScreeningObserver{om: om}
}

func (o *ScreeningObserver) enabled() bool {
	return o.om.customMetrics().Screening.Enabled
}

// DocumentScored counts the resume and records its score
func (o *ScreeningObserver) DocumentScored(ctx context.Context, role string, record types.ResumeRecord) {
	if !o.enabled() {
		return
	}
	m := o.om.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("role", role))

	if m.ResumesScored != nil {
		m.ResumesScored.Add(ctx, 1, attrs)
	}
	if m.MatchScore != nil && o.om.customMetrics().Screening.TrackScores {
		m.MatchScore.Record(ctx, record.Match.Score*100, attrs)
	}
}

// DocumentFailed counts a document that was skipped
func (o *ScreeningObserver) DocumentFailed(ctx context.Context, role string, failure types.DocumentFailure) {
	if !o.enabled() {
		return
	}
	if m := o.om.GetMetrics(); m.ExtractionFailures != nil {
		m.ExtractionFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("role", role),
			attribute.String("code", failure.Code),
		))
	}
}

// BatchCompleted counts the batch and records how long it took
func (o *ScreeningObserver) BatchCompleted(ctx context.Context, report *types.ScreeningReport, duration time.Duration) {
	if !o.enabled() {
		return
	}
	m := o.om.GetMetrics()
	attrs := metric.WithAttributes(
		attribute.String("role", report.Role),
		attribute.Bool("partial", len(report.Failures) > 0),
	)
	if m.Batches != nil {
		m.Batches.Add(ctx, 1, attrs)
	}
	if m.BatchDuration != nil && o.om.customMetrics().Screening.TrackBatchDuration {
		m.BatchDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordExtraction records how long one extraction attempt took
func (o *ScreeningObserver) RecordExtraction(ctx context.Context, format string, duration time.Duration, err error) {
	custom := o.om.customMetrics().Screening
	if !custom.Enabled || !custom.TrackExtraction {
		return
	}
	m := o.om.GetMetrics()
	if m.ExtractionDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("format", format),
		attribute.Bool("success", err == nil),
	}
	if appErr, ok := errors.AsAppError(err); ok {
		attrs = append(attrs, attribute.String("code", appErr.Code))
	}
	m.ExtractionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
