package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"
	"resumescreen/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance. maxFileSize <= 0 means unlimited.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil && fp.logger != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename string, content []byte) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, content, 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadDocuments validates every path before reading any of them, so one
// unreadable path fails the command before screening starts.
func (fp *FileProcessor) ValidateAndReadDocuments(filenames ...string) ([]types.Document, error) {
	if len(filenames) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"at least one resume file is required", nil)
	}

	for _, filename := range filenames {
		if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}
	}

	docs := make([]types.Document, len(filenames))
	for i, filename := range filenames {
		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		docs[i] = types.Document{
			Filename: filepath.Base(filename),
			Content:  content,
			IsText:   utils.IsTextFile(filename),
		}
		if fp.logger != nil {
			fp.logger.Debug("Document loaded",
				"filename", filename,
				"size", utils.FormatFileSize(int64(len(content))),
				"text", docs[i].IsText)
		}
	}

	return docs, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
