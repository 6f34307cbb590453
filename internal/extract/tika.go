package extract

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// contentTypes tells Tika what it is receiving; it falls back to sniffing otherwise
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".rtf":  "application/rtf",
}

// documentFault is a rejection of the document itself (4xx), not a backend failure
type documentFault struct {
	status int
	body   string
}

func (e *documentFault) Error() string {
	if e.body == "" {
		return fmt.Sprintf("tika rejected document with status %d", e.status)
	}
	return fmt.Sprintf("tika rejected document with status %d: %s", e.status, e.body)
}

func isDocumentFault(err error) bool {
	var fault *documentFault
	return stderrors.As(err, &fault)
}

// TikaExtractor sends documents to an Apache Tika server for text extraction
type TikaExtractor struct {
	endpoint string
	client   *http.Client
	breaker  *ExtractionCircuitBreaker
	logger   *errors.Logger
}

// NewTikaExtractor creates a Tika client with an instrumented transport and a circuit breaker
func NewTikaExtractor(cfg config.TikaConfig, logger *errors.Logger) *TikaExtractor {
	return &TikaExtractor{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewExtractionCircuitBreaker("tika", cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

// Extract PUTs the document to {endpoint}/tika and returns the plain text response
func (t *TikaExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	return t.breaker.Execute(func() (string, error) {
		return t.put(ctx, filename, data)
	})
}

func (t *TikaExtractor) put(ctx context.Context, filename string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.endpoint+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create tika request: %w", err)
	}

	req.Header.Set("Accept", "text/plain; charset=UTF-8")
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		req.Header.Set("Content-Type", ct)
	}
	if filename != "" {
		req.Header.Set("X-Tika-Resource-Name", filepath.Base(filename))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tika request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read tika response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		t.logger.Debug("Tika extraction completed", "filename", filename, "chars", len(body))
		return string(body), nil
	case resp.StatusCode == http.StatusNoContent:
		return "", nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", &documentFault{status: resp.StatusCode, body: strings.TrimSpace(truncate(string(body), 200))}
	default:
		return "", fmt.Errorf("tika server returned status %d", resp.StatusCode)
	}
}

// Health checks that the Tika server answers on /version
func (t *TikaExtractor) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"/version", nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tika unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tika health check returned status %d", resp.StatusCode)
	}
	return strings.TrimSpace(string(body)), nil
}

// BreakerStats exposes the circuit breaker for health reporting
func (t *TikaExtractor) BreakerStats() map[string]any {
	return t.breaker.GetStats()
}

// Healthy reports whether the circuit breaker lets requests through
func (t *TikaExtractor) Healthy() bool {
	return t.breaker.IsHealthy()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
