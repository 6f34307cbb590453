package extract

import (
	stderrors "errors"
	"fmt"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// ExtractionCircuitBreaker guards a remote extraction backend
type ExtractionCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[string]
}

// NewExtractionCircuitBreaker returns nil when the breaker is disabled; a nil breaker
// passes every call straight through.
func NewExtractionCircuitBreaker(backend string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *ExtractionCircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("extract-%s", backend),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		// A document the backend rejects says nothing about the backend's health.
		IsSuccessful: func(err error) bool {
			return err == nil || isDocumentFault(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"backend", backend,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &ExtractionCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Execute runs fn under the breaker. Rejections while open become CIRCUIT_OPEN errors.
func (b *ExtractionCircuitBreaker) Execute(fn func() (string, error)) (string, error) {
	if b == nil || b.cb == nil {
		return fn()
	}

	text, err := b.cb.Execute(fn)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", errors.NewNetworkError(errors.ErrCodeCircuitOpen,
			"extraction backend temporarily unavailable", err).
			WithContext("breaker", b.cb.Name())
	}
	return text, err
}

// GetStats returns circuit breaker statistics
func (b *ExtractionCircuitBreaker) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is closed or absent
func (b *ExtractionCircuitBreaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
