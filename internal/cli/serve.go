package cli

import (
	"fmt"

	"resumescreen/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume screening",
	Long: `Start an HTTP server that exposes resume screening as a REST API.

Available endpoints:
- POST /screen: Screen resumes (text or base64 documents) against a role
- POST /screen/export: Same as /screen, returns the keyword table as CSV
- GET /roles: List roles and their keywords
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveFlags struct {
	port, host, tlsMode, certFile, keyFile, caFile string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.caFile, "ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// flagOverride copies a flag value over a config field when the flag was set
type flagOverride struct {
	flag  string
	value string
	dst   *string
}

func applyOverrides(cmd *cobra.Command, overrides []flagOverride) {
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst = o.value
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	cat := getCatalogFromContext(cmd.Context())

	applyOverrides(cmd, []flagOverride{
		{"port", serveFlags.port, &cfg.Server.Port},
		{"host", serveFlags.host, &cfg.Server.Host},
		{"tls-mode", serveFlags.tlsMode, &cfg.Server.TLS.Mode},
		{"cert-file", serveFlags.certFile, &cfg.Server.TLS.CertFile},
		{"key-file", serveFlags.keyFile, &cfg.Server.TLS.KeyFile},
		{"ca-file", serveFlags.caFile, &cfg.Server.TLS.CAFile},
	})

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	comps, err := buildComponents(cfg, logger, cat, true)
	if err != nil {
		return err
	}
	defer comps.shutdown(logger)

	serverCfg := server.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Version:         Version,
		TLSConfig:       cfg.Server.TLS,
		APIKeys:         cfg.Server.APIKeys,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		MaxRequestSize:  cfg.Server.MaxRequestSize,
		MaxDocumentSize: cfg.App.MaxFileSize,
		RateLimit:       &cfg.Server.RateLimit,
	}
	srv := server.NewServer(cfg, serverCfg, server.Dependencies{
		Catalog:       comps.catalog,
		Screener:      comps.screener,
		Extraction:    comps.registry,
		Observability: comps.observability,
	}, logger)

	return srv.Start(cmd.Context())
}
