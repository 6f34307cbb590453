package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"resumescreen/internal/errors"

	"github.com/go-playground/validator/v10"
)

const defaultHealthCheckTimeout = 5 * time.Second

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig == nil || s.AppConfig.Observability.HealthCheck.Timeout <= 0 {
		return defaultHealthCheckTimeout
	}
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler reports the catalog, extraction backends and certificates
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumescreen",
		"version": s.Version,
	}
	healthy := true

	roles := s.Catalog.Roles()
	response["catalog"] = map[string]any{
		"roles": len(roles),
	}
	if len(roles) == 0 {
		healthy = false
	}

	if s.Extraction != nil {
		ctx, cancel := s.healthContext(r.Context())
		extraction := s.Extraction.Health(ctx)
		cancel()
		response["extraction"] = extraction
		if status, _ := extraction["status"].(string); status != "" && status != "healthy" {
			healthy = false
		}
	}

	if s.Certs != nil {
		certStatus := s.Certs.Status()
		response["certificates"] = certStatus
		if ok, _ := certStatus["healthy"].(bool); !ok {
			healthy = false
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.Logger.LogError(err, "Failed to encode health response")
	}
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumescreen",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes":  s.MaxRequestSize,
			"max_document_size_bytes": s.MaxDocumentSize,
			"auth_enabled":            len(s.APIKeys) > 0,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.Logger.LogError(err, "Failed to encode stats response")
	}
}

// parseJSONRequest decodes and validates a JSON request body into v
func (s *Server) parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return errors.NewValidationError("UNSUPPORTED_MEDIA_TYPE", "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError("REQUEST_TOO_LARGE",
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), nil)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}

	if err := s.validate.Struct(v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, describeValidation(err), nil)
	}
	return nil
}

// describeValidation turns validator errors into one readable line
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "ScreenRequest.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, field+" must contain at least "+fe.Param()+" item")
		case "base64":
			msgs = append(msgs, field+" must be base64 encoded")
		case "excluded_with":
			msgs = append(msgs, field+" cannot be combined with text")
		default:
			msgs = append(msgs, field+" failed "+fe.Tag()+" validation")
		}
	}
	return strings.Join(msgs, "; ")
}

// statusFor maps an application error onto an HTTP status
func statusFor(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeUnknownRole:
		return http.StatusNotFound
	case "REQUEST_TOO_LARGE":
		return http.StatusRequestEntityTooLarge
	case "UNSUPPORTED_MEDIA_TYPE":
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeCircuitOpen:
		return http.StatusServiceUnavailable
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err as an ErrorResponse with a status derived from its type and code
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(appErr))
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusFor(appErr)),
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
