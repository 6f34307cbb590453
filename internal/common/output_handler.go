package common

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"resumescreen/internal/errors"
	"resumescreen/internal/formatters"
	"resumescreen/internal/screening"
	"resumescreen/internal/types"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	// ExportFile, when set, receives the CSV export of a screening report.
	ExportFile string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
	stdout        io.Writer
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
		stdout:        os.Stdout,
	}
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		_, err := fmt.Fprintln(oh.stdout, output)
		return err
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, []byte(output)); err != nil {
		return err
	}
	oh.logger.Info("Output written successfully",
		"file", config.OutputFile, "format", config.OutputFormat)
	return nil
}

// WriteExport writes the report's flat keyword table as CSV to filename
func (oh *OutputHandler) WriteExport(report *types.ScreeningReport, filename string) error {
	if err := oh.fileProcessor.ValidateOutputFile(filename); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := screening.WriteCSV(&buf, report.Rows); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED", "failed to render CSV export", err)
	}
	if err := oh.fileProcessor.WriteFile(filename, buf.Bytes()); err != nil {
		return err
	}

	oh.logger.Info("Screening results exported", "file", filename, "rows", len(report.Rows))
	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
