package config

import (
	"fmt"
	"net/url"
	"strings"
)

// PDF engines
const (
	PDFEngineNative = "native"
	PDFEngineTika   = "tika"
)

// DefaultExportFile is where `screen --export` writes when no path is given
const DefaultExportFile = "resume_screening_results.csv"

// ValidateScreeningConfig validates catalog and summary settings
func (c *Config) ValidateScreeningConfig() error {
	if c.Screening.SummaryWordLimit < 0 {
		return fmt.Errorf("screening.summaryWordLimit must not be negative, got %d", c.Screening.SummaryWordLimit)
	}
	if c.Screening.DefaultRole != strings.TrimSpace(c.Screening.DefaultRole) {
		return fmt.Errorf("screening.defaultRole must not have surrounding whitespace")
	}
	if c.Screening.CatalogFile != "" && c.Screening.CatalogContent != "" {
		return fmt.Errorf("catalog specified as both file and content, please use only one")
	}
	return nil
}

// ValidateExtractionConfig validates the PDF engine and Tika endpoint
func (c *Config) ValidateExtractionConfig() error {
	switch c.Extraction.PDFEngine {
	case PDFEngineNative:
	case PDFEngineTika:
		if !c.Extraction.Tika.Enabled {
			return fmt.Errorf("pdfEngine %q requires extraction.tika.enabled", PDFEngineTika)
		}
	default:
		return fmt.Errorf("invalid pdfEngine: %s (must be %s or %s)", c.Extraction.PDFEngine, PDFEngineNative, PDFEngineTika)
	}

	if !c.Extraction.Tika.Enabled {
		return nil
	}

	u, err := url.Parse(c.Extraction.Tika.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid tika endpoint: %q", c.Extraction.Tika.Endpoint)
	}
	if c.Extraction.Tika.Timeout <= 0 {
		return fmt.Errorf("tika timeout must be positive")
	}

	cb := c.Extraction.Tika.CircuitBreaker
	if cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("circuit breaker failureThreshold must be in (0, 1], got %v", cb.FailureThreshold)
	}
	return nil
}

