package cli

import (
	"context"
	"fmt"

	"resumescreen/internal/common"
	"resumescreen/internal/errors"
	"resumescreen/internal/screening"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var screenCmd = &cobra.Command{
	Use:   "screen [resume-files...]",
	Short: "Score resumes against a job role",
	Long: `Score one or more resumes (PDF, txt or md) against the keyword set of a role.

Every resume gets a match score, the keywords it is missing, a short summary and
improvement suggestions. Resumes are ranked by score. A resume whose text cannot
be extracted is reported and skipped; the rest of the batch is still scored.

Use --export to also write the resume x keyword table as CSV
(default file: resume_screening_results.csv).`,
	Example: `  resumescreen screen --role "Data Scientist" alice.pdf bob.txt
  resumescreen screen --role "Web Developer" --format markdown --export cv/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if screenConfig.OutputFormat == "" {
			screenConfig.OutputFormat = cfg.App.DefaultFormat
		}
		role, err := common.ResolveRole(screenRole, cfg.Screening.DefaultRole)
		if err != nil {
			return err
		}
		screenRole = role
		return common.ValidateOutputFormat(screenConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScreen,
}

var (
	screenConfig common.CommandConfig
	screenRole   string
)

func init() {
	screenCmd.Flags().StringVarP(&screenRole, "role", "r", "", "Role to screen against (default from config)")
	screenCmd.Flags().StringVarP(&screenConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	screenCmd.Flags().StringVar(&screenConfig.OutputFormat, "format", "", "Output format: json, text, markdown or csv")
	screenCmd.Flags().StringVar(&screenConfig.ExportFile, "export", "", "Also write the keyword table as CSV to this path")
	screenCmd.Flags().Lookup("export").NoOptDefVal = screening.DefaultExportFilename

	_ = screenCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = screenCmd.RegisterFlagCompletionFunc("role", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getCatalogFromContext(cmd.Context()).Roles(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	cat := getCatalogFromContext(cmd.Context())

	if !cat.Has(screenRole) {
		return errors.NewScreeningError(errors.ErrCodeUnknownRole,
			fmt.Sprintf("unknown role %q", screenRole), nil).
			WithContext("available_roles", cat.Roles())
	}

	comps, err := buildComponents(cfg, logger, cat, false)
	if err != nil {
		return err
	}
	defer comps.shutdown(logger)

	logger.Info("Starting resume screening",
		"role", screenRole,
		"documents", len(args),
		"output_format", screenConfig.OutputFormat,
		"export_file", screenConfig.ExportFile)

	operation := func(ctx context.Context, docs []types.Document) (*types.ScreeningReport, error) {
		return comps.screener.Run(ctx, screenRole, docs)
	}

	if err := common.RunFileCommand(cmd.Context(), logger, screenConfig, cfg.App.MaxFileSize, args, operation); err != nil {
		return fmt.Errorf("failed to screen resumes: %w", err)
	}
	logger.Info("Resume screening completed successfully")
	return nil
}
