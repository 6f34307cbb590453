package common

import (
	"context"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"
)

// DocumentOperationFunc runs a command's work over the loaded documents.
type DocumentOperationFunc[Output any] func(context.Context, []types.Document) (Output, error)

// RunFileCommand loads the files named by args, runs operation over them and writes
// the formatted result. A screening report is also exported as CSV when
// cmdConfig.ExportFile is set.
func RunFileCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	maxFileSize int64,
	args []string,
	operation DocumentOperationFunc[Output],
) error {
	fileProcessor := NewFileProcessor(logger, maxFileSize)
	outputHandler := NewOutputHandler(logger)

	docs, err := fileProcessor.ValidateAndReadDocuments(args...)
	if err != nil {
		return err
	}

	result, err := operation(ctx, docs)
	if err != nil {
		return err
	}

	if err := outputHandler.HandleOutput(result, cmdConfig); err != nil {
		return err
	}

	if cmdConfig.ExportFile == "" {
		return nil
	}
	report, ok := any(result).(*types.ScreeningReport)
	if !ok {
		logger.Warn("Export requested for a result that is not a screening report")
		return nil
	}
	return outputHandler.WriteExport(report, cmdConfig.ExportFile)
}
