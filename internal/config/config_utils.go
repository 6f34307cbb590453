package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyScreeningDefaults()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks accepts comma-separated keys from the environment
// and trims whitespace around each key
func (c *Config) applyServerAPIKeyFallbacks() {
	keys := c.Server.APIKeys
	if len(keys) == 0 {
		if apiKeysEnv := os.Getenv("RESUMESCREEN_SERVER_APIKEYS"); apiKeysEnv != "" {
			keys = []string{apiKeysEnv}
		}
	}

	normalized := make([]string, 0, len(keys))
	for _, key := range keys {
		normalized = append(normalized, splitAndTrim(key)...)
	}
	c.Server.APIKeys = normalized
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// applyScreeningDefaults fills values that an explicit empty setting would otherwise zero out
func (c *Config) applyScreeningDefaults() {
	if c.Screening.ExportFile == "" {
		c.Screening.ExportFile = DefaultExportFile
	}
	c.Extraction.PDFEngine = strings.ToLower(strings.TrimSpace(c.Extraction.PDFEngine))
	if c.Extraction.PDFEngine == "" {
		c.Extraction.PDFEngine = PDFEngineNative
	}
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}

	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMESCREEN_SCREENING_DEFAULTROLE",
		"RESUMESCREEN_SCREENING_CATALOGFILE",
		"RESUMESCREEN_EXTRACTION_PDFENGINE",
		"RESUMESCREEN_EXTRACTION_TIKA_ENDPOINT",
		"RESUMESCREEN_SERVER_PORT",
		"RESUMESCREEN_SERVER_HOST",
		"RESUMESCREEN_SERVER_APIKEYS",
		"RESUMESCREEN_APP_LOGLEVEL",
		"RESUMESCREEN_VAULT_ENABLED",
		"RESUMESCREEN_VAULT_TOKEN",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			lower := strings.ToLower(envVar)
			if strings.Contains(lower, "key") || strings.Contains(lower, "token") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	if c.Screening.CatalogFile != "" {
		log.Printf("[CONFIG] Role Catalog: %s", c.Screening.CatalogFile)
	} else {
		log.Println("[CONFIG] Role Catalog: built-in")
	}
	log.Printf("[CONFIG] Default Role: %q", c.Screening.DefaultRole)
	log.Printf("[CONFIG] Summary Word Limit: %d", c.Screening.SummaryWordLimit)
	log.Printf("[CONFIG] PDF Engine: %s", c.Extraction.PDFEngine)
	log.Printf("[CONFIG] Tika Enabled: %t", c.Extraction.Tika.Enabled)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	if len(c.Server.APIKeys) > 0 {
		log.Printf("[CONFIG] API Keys: ***CONFIGURED*** (%d)", len(c.Server.APIKeys))
	} else {
		log.Println("[CONFIG] API Keys: ***NOT SET*** (authentication disabled)")
	}
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}
