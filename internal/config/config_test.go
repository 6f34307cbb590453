package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	cfg, err := decode(newViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, []string{"json", "text", "markdown", "csv"}, cfg.App.SupportedFormats)
	assert.Equal(t, 50, cfg.Screening.SummaryWordLimit)
	assert.Equal(t, "resume_screening_results.csv", cfg.Screening.ExportFile)
	assert.Equal(t, PDFEngineNative, cfg.Extraction.PDFEngine)
	assert.False(t, cfg.Extraction.Tika.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Extraction.Tika.Timeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestDecodeEnvironmentOverrides(t *testing.T) {
	t.Setenv("RESUMESCREEN_SCREENING_DEFAULTROLE", "Web Developer")
	t.Setenv("RESUMESCREEN_SCREENING_SUMMARYWORDLIMIT", "20")
	t.Setenv("RESUMESCREEN_SERVER_APIKEYS", "alpha, beta ,gamma")

	cfg, err := decode(newViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "Web Developer", cfg.Screening.DefaultRole)
	assert.Equal(t, 20, cfg.Screening.SummaryWordLimit)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.Server.APIKeys)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		set      map[string]any
		errorMsg string
	}{
		{
			name:     "unsupported default format",
			set:      map[string]any{"app.defaultFormat": "xml"},
			errorMsg: "invalid default format: xml",
		},
		{
			name:     "negative summary limit",
			set:      map[string]any{"screening.summaryWordLimit": -1},
			errorMsg: "summaryWordLimit must not be negative",
		},
		{
			name:     "unknown pdf engine",
			set:      map[string]any{"extraction.pdfEngine": "ocr"},
			errorMsg: "invalid pdfEngine: ocr",
		},
		{
			name:     "tika engine without tika",
			set:      map[string]any{"extraction.pdfEngine": "tika"},
			errorMsg: "requires extraction.tika.enabled",
		},
		{
			name: "tika with bad endpoint",
			set: map[string]any{
				"extraction.tika.enabled":  true,
				"extraction.tika.endpoint": "localhost",
			},
			errorMsg: "invalid tika endpoint",
		},
		{
			name: "catalog file and content",
			set: map[string]any{
				"screening.catalogFile":    "roles.yaml",
				"screening.catalogContent": "roles: []",
			},
			errorMsg: "catalog specified as both file and content",
		},
		{
			name:     "non-positive max file size",
			set:      map[string]any{"app.maxFileSize": 0},
			errorMsg: "app.maxFileSize must be positive",
		},
		{
			name:     "bad tls mode",
			set:      map[string]any{"server.tls.mode": "strict"},
			errorMsg: "TLS configuration error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			for key, value := range tt.set {
				v.Set(key, value)
			}

			_, err := decode(v, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidateAcceptsTikaEngine(t *testing.T) {
	v := newViper()
	v.Set("extraction.tika.enabled", true)
	v.Set("extraction.pdfEngine", "TIKA")

	cfg, err := decode(v, "")
	require.NoError(t, err)
	assert.Equal(t, PDFEngineTika, cfg.Extraction.PDFEngine)
}
