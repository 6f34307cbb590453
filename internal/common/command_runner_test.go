package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *errors.Logger {
	logger, _ := errors.New("error")
	return logger
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestValidateAndReadDocuments(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "jane.txt", "React developer")
	pdf := writeFile(t, dir, "joe.pdf", "%PDF-1.4")

	fp := NewFileProcessor(testLogger(), 1024)
	docs, err := fp.ValidateAndReadDocuments(txt, pdf)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, types.Document{Filename: "jane.txt", Content: []byte("React developer"), IsText: true}, docs[0])
	assert.Equal(t, "joe.pdf", docs[1].Filename)
	assert.False(t, docs[1].IsText)

	_, err = fp.ValidateAndReadDocuments()
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	_, err = fp.ValidateAndReadDocuments(txt, filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "INVALID_INPUT_FILE"))

	_, err = NewFileProcessor(testLogger(), 4).ValidateAndReadDocuments(txt)
	assert.True(t, errors.HasCode(err, "INVALID_INPUT_FILE"))
}

func TestRunFileCommandWritesOutputAndExport(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "jane.txt", "React developer")
	outFile := filepath.Join(dir, "out", "report.json")
	exportFile := filepath.Join(dir, "export", "results.csv")

	var seen []types.Document
	err := RunFileCommand(context.Background(), testLogger(),
		CommandConfig{OutputFile: outFile, OutputFormat: "json", ExportFile: exportFile},
		0, []string{resume},
		func(_ context.Context, docs []types.Document) (*types.ScreeningReport, error) {
			seen = docs
			return &types.ScreeningReport{
				Role: "Frontend Developer",
				Rows: []types.ExportRow{{Filename: "jane.txt", Keyword: "react", Matched: true, ScorePercent: "100.00"}},
			}, nil
		})
	require.NoError(t, err)
	require.Len(t, seen, 1)

	out, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"role": "Frontend Developer"`)

	csv, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	assert.Equal(t, "Filename,Keyword,Matched,Match Score (%)\njane.txt,react,Yes,100.00\n", string(csv))
}

func TestRunFileCommandStopsOnOperationError(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "jane.txt", "React developer")
	outFile := filepath.Join(dir, "report.json")

	wantErr := errors.NewScreeningError(errors.ErrCodeUnknownRole, "unknown role", nil)
	err := RunFileCommand(context.Background(), testLogger(),
		CommandConfig{OutputFile: outFile, OutputFormat: "json"},
		0, []string{resume},
		func(context.Context, []types.Document) (*types.ScreeningReport, error) {
			return nil, wantErr
		})
	assert.ErrorIs(t, err, wantErr)
	assert.NoFileExists(t, outFile)
}

func TestHandleOutputToStdout(t *testing.T) {
	var buf bytes.Buffer
	handler := NewOutputHandler(testLogger())
	handler.stdout = &buf

	err := handler.HandleOutput(types.RoleList{Roles: []types.RoleSummary{{Name: "Data Analyst", Keywords: []string{"sql"}}}},
		CommandConfig{OutputFormat: "text"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Data Analyst: sql")

	err = handler.HandleOutput(types.RoleList{}, CommandConfig{OutputFormat: "csv"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}
