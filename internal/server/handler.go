package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"resumescreen/internal/errors"
	"resumescreen/internal/screening"
	"resumescreen/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// screenHandler scores the posted documents and returns the full report as JSON
func (s *Server) screenHandler(w http.ResponseWriter, r *http.Request) {
	report, ok := s.runScreening(w, r, "api.screen")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.Logger.LogError(err, "Failed to encode screening report", "run_id", report.RunID)
	}
}

// exportHandler scores the posted documents and returns the flat keyword table as CSV
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	report, ok := s.runScreening(w, r, "api.screen.export")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := screening.WriteCSV(&buf, report.Rows); err != nil {
		s.Observability.RecordBusinessMetric(r.Context(), "report_exported", false)
		writeAppError(w, errors.NewInternalError("EXPORT_FAILED", "failed to render CSV export", err))
		return
	}
	s.Observability.RecordBusinessMetric(r.Context(), "report_exported", true,
		attribute.String("role", report.Role))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.exportFilename()))
	w.Header().Set("X-Run-ID", report.RunID)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.Logger.LogError(err, "Failed to write CSV export", "run_id", report.RunID)
	}
}

// rolesHandler lists the role catalog
func (s *Server) rolesHandler(w http.ResponseWriter, r *http.Request) {
	roles := s.Catalog.Summaries()
	s.Observability.RecordBusinessMetric(r.Context(), "roles_listed", true,
		attribute.Int("roles", len(roles.Roles)))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(roles); err != nil {
		s.Logger.LogError(err, "Failed to encode role list")
	}
}

// runScreening parses, validates and screens one request. On failure it has already
// written the error response and returns false.
func (s *Server) runScreening(w http.ResponseWriter, r *http.Request, spanName string) (*types.ScreeningReport, bool) {
	ctx, span := s.Observability.Tracer("resumescreen.api").Start(r.Context(), spanName)
	defer span.End()

	var req ScreenRequest
	if err := s.parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeAppError(w, err)
		return nil, false
	}

	if !s.Catalog.Has(req.Role) {
		err := errors.NewScreeningError(errors.ErrCodeUnknownRole,
			fmt.Sprintf("unknown role %q", req.Role), nil).
			WithContext("available_roles", s.Catalog.Roles())
		span.RecordError(err)
		writeAppError(w, err)
		return nil, false
	}

	docs, err := s.decodeDocuments(req.Documents)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeAppError(w, err)
		return nil, false
	}

	span.SetAttributes(
		attribute.String("screening.role", req.Role),
		attribute.Int("screening.documents", len(docs)),
	)

	report, err := s.Screener.Run(ctx, req.Role, docs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "screening failed")
		s.Logger.LogError(err, "Screening request failed", "role", req.Role)
		writeAppError(w, err)
		return nil, false
	}

	span.SetAttributes(
		attribute.String("screening.run_id", report.RunID),
		attribute.Int("screening.scored", len(report.Records)),
		attribute.Int("screening.failed", len(report.Failures)),
	)
	return report, true
}

// decodeDocuments turns request payloads into screening documents
func (s *Server) decodeDocuments(payloads []DocumentPayload) ([]types.Document, error) {
	docs := make([]types.Document, len(payloads))
	for i, payload := range payloads {
		name := filepath.Base(payload.Filename)

		if payload.ContentBase64 == "" {
			if err := s.checkDocumentSize(name, len(payload.Text)); err != nil {
				return nil, err
			}
			docs[i] = types.Document{Filename: name, Content: []byte(payload.Text), IsText: true}
			continue
		}

		content, err := base64.StdEncoding.DecodeString(payload.ContentBase64)
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"contentBase64 is not valid base64", err).WithContext("filename", name)
		}
		if err := s.checkDocumentSize(name, len(content)); err != nil {
			return nil, err
		}
		docs[i] = types.Document{Filename: name, Content: content}
	}
	return docs, nil
}

func (s *Server) checkDocumentSize(filename string, size int) error {
	if s.MaxDocumentSize > 0 && int64(size) > s.MaxDocumentSize {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("document exceeds the %d byte limit", s.MaxDocumentSize), nil).
			WithContext("filename", filename)
	}
	return nil
}

func (s *Server) exportFilename() string {
	if s.AppConfig != nil && s.AppConfig.Screening.ExportFile != "" {
		return filepath.Base(s.AppConfig.Screening.ExportFile)
	}
	return screening.DefaultExportFilename
}

// healthContext bounds dependency probes made by /health
func (s *Server) healthContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.getHealthCheckTimeout())
}
