package cli

import (
	"context"

	"resumescreen/internal/catalog"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type catalogKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var catalogKey = catalogKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumescreen",
	Short: "Screen resumes against job role keywords",
	Long: `Resumescreen scores resumes (PDF or plain text) against the keyword set of a
job role, ranks the candidates, and explains which keywords each resume is missing.
Results can be printed as JSON, text or markdown, and exported as a CSV table.`,
	SilenceUsage: true,
}

// Execute runs the root command with the shared configuration, logger and role catalog
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, cat *catalog.Catalog) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, catalogKey, cat)
	rootCmd.SetContext(ctx)
	return rootCmd.ExecuteContext(ctx)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

func getCatalogFromContext(ctx context.Context) *catalog.Catalog {
	if cat, ok := ctx.Value(catalogKey).(*catalog.Catalog); ok {
		return cat
	}
	panic("catalog not found in context")
}

func init() {
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
