package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown", "csv"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB, PDFs are large

	// Screening Configuration
	v.SetDefault("screening.defaultRole", "")
	v.SetDefault("screening.summaryWordLimit", 50)
	v.SetDefault("screening.exportFile", "resume_screening_results.csv")
	v.SetDefault("screening.catalogFile", "")
	v.SetDefault("screening.catalogContent", "")

	// Extraction Configuration
	v.SetDefault("extraction.pdfEngine", PDFEngineNative)
	v.SetDefault("extraction.tika.enabled", false)
	v.SetDefault("extraction.tika.endpoint", "http://localhost:9998")
	v.SetDefault("extraction.tika.timeout", 30*time.Second)
	v.SetDefault("extraction.tika.circuitBreaker.enabled", true)
	v.SetDefault("extraction.tika.circuitBreaker.maxRequests", 3)
	v.SetDefault("extraction.tika.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("extraction.tika.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("extraction.tika.circuitBreaker.minRequests", 3)
	v.SetDefault("extraction.tika.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second) // Batches with many PDFs take a while
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 32*1024*1024)

	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.cipherSuites", []string{}) // Use Go defaults
	v.SetDefault("server.tls.clientAuthPolicy", "require")

	// Auto-reload configuration defaults
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.fileWatcher.enabled", true)
	v.SetDefault("server.tls.autoReload.fileWatcher.debounceDelay", time.Second)

	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.tlsCerts", "")
	v.SetDefault("vault.secrets.catalog", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumescreen")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.screening.enabled", true)
	v.SetDefault("observability.customMetrics.screening.trackScores", true)
	v.SetDefault("observability.customMetrics.screening.trackExtraction", true)
	v.SetDefault("observability.customMetrics.screening.trackBatchDuration", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackCertReloads", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	v.SetDefault("observability.healthCheck.timeout", 5*time.Second)
}
