package server

import (
	"context"
	"io"
	"os"
	"time"

	"resumescreen/internal/config"
	resumescreenErrors "resumescreen/internal/errors"
	"resumescreen/internal/observability"
	"resumescreen/internal/types"

	"github.com/go-playground/validator/v10"
)

// ScreenRequest is the body of POST /screen and POST /screen/export
type ScreenRequest struct {
	Role      string            `json:"role" validate:"required"`
	Documents []DocumentPayload `json:"documents" validate:"required,min=1,dive"`
}

// DocumentPayload carries one resume, either as extracted text or as base64 file bytes
type DocumentPayload struct {
	Filename      string `json:"filename" validate:"required"`
	Text          string `json:"text,omitempty"`
	ContentBase64 string `json:"contentBase64,omitempty" validate:"omitempty,base64,excluded_with=Text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// RoleCatalog is the read side of the role catalog the server needs
type RoleCatalog interface {
	Has(role string) bool
	Roles() []string
	Summaries() types.RoleList
}

// BatchScreener screens a batch of documents against one role
type BatchScreener interface {
	Run(ctx context.Context, role string, docs []types.Document) (*types.ScreeningReport, error)
}

// HealthReporter reports the state of a dependency for /health
type HealthReporter interface {
	Health(ctx context.Context) map[string]any
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig
	Certs     *CertStore

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxRequestSize bounds the whole request body; MaxDocumentSize bounds each decoded document
	MaxRequestSize  int64
	MaxDocumentSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Catalog    RoleCatalog
	Screener   BatchScreener
	Extraction HealthReporter // optional

	Observability *observability.ObservabilityManager
	Logger        *resumescreenErrors.Logger

	validate *validator.Validate
	out      io.Writer
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host            string
	Port            string
	Version         string
	TLSConfig       config.TLSConfig
	APIKeys         []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxRequestSize  int64
	MaxDocumentSize int64
	RateLimit       *config.RateLimitConfig
}

// Dependencies are the screening components the server exposes over HTTP
type Dependencies struct {
	Catalog       RoleCatalog
	Screener      BatchScreener
	Extraction    HealthReporter
	Observability *observability.ObservabilityManager
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *resumescreenErrors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Version:         cfg.Version,
		AppConfig:       appCfg,
		TLSConfig:       cfg.TLSConfig,
		APIKeys:         apiKeyMap,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		MaxRequestSize:  cfg.MaxRequestSize,
		MaxDocumentSize: cfg.MaxDocumentSize,
		RateLimit:       cfg.RateLimit,
		RateLimiter:     rateLimiter,
		Catalog:         deps.Catalog,
		Screener:        deps.Screener,
		Extraction:      deps.Extraction,
		Observability:   deps.Observability,
		Logger:          logger,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		out:             os.Stdout,
	}
}

// Close releases background resources held by the server
func (s *Server) Close() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
}
