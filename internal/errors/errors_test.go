package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError(ErrCodeUnknownRole, "unknown role: Chef", nil),
			want: "UNKNOWN_ROLE: unknown role: Chef",
		},
		{
			name: "with cause",
			err:  NewIOError(ErrCodeExtractionFailed, "failed to extract text", io.ErrUnexpectedEOF),
			want: "EXTRACTION_FAILED: failed to extract text (caused by: unexpected EOF)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	inner := NewConfigError(ErrCodeEmptyKeywordSet, "role has no keywords", nil)
	outer := NewConfigError(ErrCodeInvalidConfig, "catalog rejected", inner)
	wrapped := fmt.Errorf("startup: %w", outer)

	assert.True(t, HasCode(wrapped, ErrCodeInvalidConfig))
	assert.True(t, HasCode(wrapped, ErrCodeEmptyKeywordSet))
	assert.False(t, HasCode(wrapped, ErrCodeUnknownRole))
	assert.False(t, HasCode(io.EOF, ErrCodeInvalidConfig))
	assert.False(t, HasCode(nil, ErrCodeInvalidConfig))
}

func TestAsAppError(t *testing.T) {
	appErr := NewScreeningError(ErrCodeUnknownRole, "unknown role", nil).WithContext("role", "Chef")

	got, ok := AsAppError(fmt.Errorf("wrapped: %w", appErr))
	require.True(t, ok)
	assert.Equal(t, ErrorTypeScreening, got.Type)
	assert.Equal(t, "Chef", got.Context["role"])

	_, ok = AsAppError(io.EOF)
	assert.False(t, ok)
}

func TestLogErrorIncludesContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	err := NewIOError(ErrCodeExtractionFailed, "failed to extract text", io.ErrUnexpectedEOF).
		WithContext("filename", "cv.pdf")
	logger.LogError(err, "document skipped", "role", "Data Scientist")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "document skipped", entry["msg"])
	assert.Equal(t, "EXTRACTION_FAILED", entry["error_code"])
	assert.Equal(t, "cv.pdf", entry["filename"])
	assert.Equal(t, "Data Scientist", entry["role"])
	assert.Equal(t, "unexpected EOF", entry["cause"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose")
	assert.Error(t, err)

	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}
}
