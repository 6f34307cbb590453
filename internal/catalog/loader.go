package catalog

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// catalogDocument is the on-disk shape of a role catalog:
//
//	roles:
//	  - name: Data Scientist
//	    keywords: [python, pandas]
type catalogDocument struct {
	Roles []roleDocument `yaml:"roles" validate:"required,min=1,dive"`
}

type roleDocument struct {
	Name     string   `yaml:"name" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required"`
}

var validate = validator.New()

// Parse decodes and validates a YAML role catalog
func Parse(data []byte) (*Catalog, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc catalogDocument
	if err := decoder.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewConfigError(errors.ErrCodeEmptyCatalog, "role catalog document is empty", nil)
		}
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to parse role catalog", err)
	}

	if err := validate.Struct(doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"role catalog failed validation: "+describeValidation(err), err)
	}

	roles := make([]Role, len(doc.Roles))
	for i, r := range doc.Roles {
		roles[i] = Role{Name: r.Name, Keywords: r.Keywords}
	}
	return New(roles)
}

// LoadFile reads a YAML role catalog from path
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "role catalog file not found", err).
				WithContext("path", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read role catalog file", err).
			WithContext("path", path)
	}

	cat, err := Parse(data)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return cat, nil
}

// FromConfig builds the catalog from inline content, a file, or the built-in defaults,
// in that order of preference, and checks the configured default role against it.
func FromConfig(cfg config.ScreeningConfig, logger *errors.Logger) (*Catalog, error) {
	var (
		cat    *Catalog
		err    error
		source string
	)

	switch {
	case cfg.CatalogContent != "":
		source = "vault"
		cat, err = Parse([]byte(cfg.CatalogContent))
	case cfg.CatalogFile != "":
		source = cfg.CatalogFile
		cat, err = LoadFile(cfg.CatalogFile)
	default:
		source = "built-in"
		cat = Default()
	}
	if err != nil {
		return nil, err
	}

	if cfg.DefaultRole != "" && !cat.Has(cfg.DefaultRole) {
		return nil, errors.NewConfigError(errors.ErrCodeUnknownRole,
			fmt.Sprintf("configured default role %q is not in the catalog", cfg.DefaultRole), nil).
			WithContext("source", source)
	}

	logger.Info("Role catalog loaded", "source", source, "roles", len(cat.Roles()))
	for role, keywords := range cat.Warnings() {
		logger.Warn("Catalog keywords can never match normalized text",
			"role", role,
			"keywords", keywords)
	}

	return cat, nil
}

func describeValidation(err error) string {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
