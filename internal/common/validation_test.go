package common

import (
	"testing"

	"resumescreen/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown", "csv"}

	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedError    string
	}{
		{name: "valid format - json", format: "json", supportedFormats: supported},
		{name: "valid format - csv", format: "csv", supportedFormats: supported},
		{name: "valid format - markdown", format: "markdown", supportedFormats: supported},
		{
			name:             "invalid format - xml",
			format:           "xml",
			supportedFormats: supported,
			expectError:      true,
			expectedError:    "INVALID_FORMAT: unsupported output format 'xml'. Supported formats: [json text markdown csv]",
		},
		{
			name:             "case sensitive - JSON uppercase",
			format:           "JSON",
			supportedFormats: supported,
			expectError:      true,
			expectedError:    "INVALID_FORMAT: unsupported output format 'JSON'. Supported formats: [json text markdown csv]",
		},
		{
			name:             "empty format string",
			format:           "",
			supportedFormats: []string{"json"},
			expectError:      true,
			expectedError:    "INVALID_FORMAT: unsupported output format ''. Supported formats: [json]",
		},
		{name: "empty supported formats - should allow all", format: "xml", supportedFormats: []string{}},
		{name: "nil supported formats - should allow all", format: "anything", supportedFormats: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
		})
	}
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		fallback  string
		want      string
		wantErr   bool
	}{
		{name: "requested wins", requested: "Data Analyst", fallback: "Backend Developer", want: "Data Analyst"},
		{name: "requested trimmed", requested: "  Data Analyst ", want: "Data Analyst"},
		{name: "fallback used", requested: "", fallback: "Backend Developer", want: "Backend Developer"},
		{name: "whitespace falls back", requested: "  ", fallback: "Backend Developer", want: "Backend Developer"},
		{name: "nothing configured", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRole(tt.requested, tt.fallback)
			if tt.wantErr {
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
