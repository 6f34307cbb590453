package cli

import (
	"resumescreen/internal/common"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the job roles and their keywords",
	Long: `List every role in the catalog with its keyword set, in catalog order.
Keywords that can never match normalized resume text are flagged.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if rolesConfig.OutputFormat == "" {
			rolesConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(rolesConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLoggerFromContext(cmd.Context())
		cat := getCatalogFromContext(cmd.Context())

		return common.NewOutputHandler(logger).HandleOutput(cat.Summaries(), rolesConfig)
	},
}

var rolesConfig common.CommandConfig

func init() {
	rolesCmd.Flags().StringVarP(&rolesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rolesCmd.Flags().StringVar(&rolesConfig.OutputFormat, "format", "", "Output format: json, text or markdown")
}
