package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Precedence order:
// 1. Vault (if configured) - API keys, TLS material, role catalog
// 2. Environment Variables (RESUMESCREEN_SERVER_PORT, etc., including values from .env)
// 3. Config File values
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Screening     ScreeningConfig     `mapstructure:"screening"`
	Extraction    ExtractionConfig    `mapstructure:"extraction"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"` // Per document, in bytes
}

// ScreeningConfig holds role catalog and scoring presentation settings
type ScreeningConfig struct {
	DefaultRole      string `mapstructure:"defaultRole"`
	SummaryWordLimit int    `mapstructure:"summaryWordLimit"`
	ExportFile       string `mapstructure:"exportFile"`

	// CatalogFile points to a YAML role catalog; empty means the built-in catalog
	CatalogFile string `mapstructure:"catalogFile"`
	// CatalogContent is YAML catalog content, normally loaded from Vault
	CatalogContent string `mapstructure:"catalogContent"`
}

// ExtractionConfig selects how text is pulled out of binary documents
type ExtractionConfig struct {
	PDFEngine string     `mapstructure:"pdfEngine"` // "native" or "tika"
	Tika      TikaConfig `mapstructure:"tika"`
}

// TikaConfig holds Apache Tika server settings
type TikaConfig struct {
	Enabled        bool                 `mapstructure:"enabled"`
	Endpoint       string               `mapstructure:"endpoint"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// MaxRequestSize bounds a whole /screen request body
	MaxRequestSize int64 `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// Valid API keys for authentication; empty disables auth
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"`     // TLS mode: "disabled", "server", "mutual"
	CertFile string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile  string `mapstructure:"keyFile"`  // Server private key file (PEM)
	CAFile   string `mapstructure:"caFile"`   // CA for client cert verification (PEM, mutual mode)

	// Certificate content (used when loaded from Vault instead of files)
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string   `mapstructure:"minVersion"`       // "1.2", "1.3"
	CipherSuites     []string `mapstructure:"cipherSuites"`     // Allowed cipher suites (optional)
	ClientAuthPolicy string   `mapstructure:"clientAuthPolicy"` // "require", "request", "verify"

	AutoReload AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig holds configuration for automatic certificate reloading
type AutoReloadConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	FileWatcher FileWatcherConfig `mapstructure:"fileWatcher"`
}

// FileWatcherConfig holds configuration for file-based certificate watching
type FileWatcherConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"` // Quiet period before a reload
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	Screening       ScreeningMetricsConfig      `mapstructure:"screening"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// ScreeningMetricsConfig controls per-document metrics
type ScreeningMetricsConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	TrackScores        bool `mapstructure:"trackScores"`
	TrackExtraction    bool `mapstructure:"trackExtraction"`
	TrackBatchDuration bool `mapstructure:"trackBatchDuration"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackContentSizes bool `mapstructure:"trackContentSizes"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	TrackRateLimits  bool `mapstructure:"trackRateLimits"`
	TrackCertReloads bool `mapstructure:"trackCertReloads"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumescreen/")
	v.AddConfigPath("$HOME/.resumescreen")
	v.AddConfigPath(".")
	log.Println("[CONFIG] Configured config file search paths: /etc/resumescreen/, $HOME/.resumescreen, .")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	return decode(v, configFileUsed)
}

// newViper returns a viper instance with defaults and env handling applied
func newViper() *viper.Viper {
	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("RESUMESCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMESCREEN'")

	return v
}

// decode turns a populated viper instance into a validated Config
func decode(v *viper.Viper, configFileUsed string) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app.maxFileSize must be positive")
	}

	if err := c.ValidateScreeningConfig(); err != nil {
		return fmt.Errorf("screening configuration error: %w", err)
	}

	if err := c.ValidateExtractionConfig(); err != nil {
		return fmt.Errorf("extraction configuration error: %w", err)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}
