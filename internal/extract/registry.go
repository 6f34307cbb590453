package extract

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Extractor pulls plain text out of one document's bytes
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Recorder receives the outcome of every extraction attempt
type Recorder interface {
	RecordExtraction(ctx context.Context, format string, duration time.Duration, err error)
}

var plainTextExtensions = []string{".txt", ".text", ".md", ".markdown"}

var tikaOnlyExtensions = []string{".doc", ".docx", ".odt", ".rtf"}

// Registry picks an Extractor by file extension
type Registry struct {
	extractors map[string]Extractor
	tika       *TikaExtractor
	recorder   Recorder
	logger     *errors.Logger
}

// NewRegistry wires plain text, PDF and (when enabled) Tika extractors from configuration.
// recorder may be nil.
func NewRegistry(cfg config.ExtractionConfig, logger *errors.Logger, recorder Recorder) *Registry {
	r := &Registry{
		extractors: make(map[string]Extractor),
		recorder:   recorder,
		logger:     logger,
	}

	for _, ext := range plainTextExtensions {
		r.extractors[ext] = PlainTextExtractor{}
	}

	if cfg.Tika.Enabled {
		r.tika = NewTikaExtractor(cfg.Tika, logger)
		for _, ext := range tikaOnlyExtensions {
			r.extractors[ext] = r.tika
		}
	}

	if cfg.PDFEngine == config.PDFEngineTika && r.tika != nil {
		r.extractors[".pdf"] = r.tika
	} else {
		r.extractors[".pdf"] = PDFExtractor{}
	}

	logger.Debug("Document extractors registered", "extensions", r.Supported(), "tika", r.tika != nil)
	return r
}

// Register adds or replaces the extractor for an extension such as ".pdf"
func (r *Registry) Register(ext string, extractor Extractor) {
	r.extractors[strings.ToLower(ext)] = extractor
}

// Supported lists the handled extensions, sorted
func (r *Registry) Supported() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Supports reports whether filename has a handled extension
func (r *Registry) Supports(filename string) bool {
	_, ok := r.extractors[extension(filename)]
	return ok
}

// Extract dispatches on the file extension. Failures come back as AppErrors carrying
// the filename: UNSUPPORTED_DOCUMENT, CIRCUIT_OPEN or EXTRACTION_FAILED.
func (r *Registry) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := extension(filename)
	extractor, ok := r.extractors[ext]
	if !ok {
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			"unsupported document type "+displayExt(ext)+" (supported: "+strings.Join(r.Supported(), ", ")+")", nil).
			WithContext("filename", filename)
	}

	ctx, span := otel.Tracer("resumescreen.extract").Start(ctx, "extract.document")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.filename", filename),
		attribute.String("document.format", ext),
		attribute.Int("document.size_bytes", len(data)),
	)

	start := time.Now()
	text, err := extractor.Extract(ctx, filename, data)
	if r.recorder != nil {
		r.recorder.RecordExtraction(ctx, ext, time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		if appErr, ok := errors.AsAppError(err); ok {
			return "", appErr.WithContext("filename", filename)
		}
		return "", errors.NewIOError(errors.ErrCodeExtractionFailed, "failed to extract text", err).
			WithContext("filename", filename)
	}

	span.SetAttributes(attribute.Int("document.text_chars", len(text)))
	return text, nil
}

// Health reports the extraction backends for the health endpoint
func (r *Registry) Health(ctx context.Context) map[string]any {
	status := map[string]any{
		"status":     "healthy",
		"extensions": r.Supported(),
	}
	if r.tika == nil {
		status["tika"] = map[string]any{"enabled": false}
		return status
	}

	tikaStatus := map[string]any{
		"enabled":        true,
		"circuitBreaker": r.tika.BreakerStats(),
	}
	version, err := r.tika.Health(ctx)
	if err != nil {
		tikaStatus["error"] = err.Error()
		status["status"] = "degraded"
	} else {
		tikaStatus["version"] = version
	}
	if !r.tika.Healthy() {
		status["status"] = "degraded"
	}
	status["tika"] = tikaStatus
	return status
}

func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func displayExt(ext string) string {
	if ext == "" {
		return "(no extension)"
	}
	return ext
}
