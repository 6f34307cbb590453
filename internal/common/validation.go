package common

import (
	"fmt"
	"slices"
	"strings"

	"resumescreen/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil)
}

// ResolveRole picks the requested role, falling back to the configured default
func ResolveRole(requested, fallback string) (string, error) {
	if role := strings.TrimSpace(requested); role != "" {
		return role, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
		"a role is required: pass --role or set screening.defaultRole", nil)
}
