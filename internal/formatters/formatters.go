package formatters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumescreen/internal/screening"
	"resumescreen/internal/types"
)

const (
	typeAny    = "any"
	typeReport = "ScreeningReport"
	typeRoles  = "RoleList"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", typeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", typeReport, &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", typeReport, &ReportMarkdownFormatter{})
	registry.RegisterFormatter("csv", typeReport, &ReportCSVFormatter{})
	registry.RegisterFormatter("text", typeRoles, &RolesTextFormatter{})
	registry.RegisterFormatter("markdown", typeRoles, &RolesMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[typeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ScreeningReport, *types.ScreeningReport:
		return typeReport
	case types.RoleList, *types.RoleList:
		return typeRoles
	default:
		return typeAny
	}
}

func asReport(data any) (types.ScreeningReport, error) {
	switch v := data.(type) {
	case types.ScreeningReport:
		return v, nil
	case *types.ScreeningReport:
		if v == nil {
			return types.ScreeningReport{}, fmt.Errorf("nil ScreeningReport")
		}
		return *v, nil
	default:
		return types.ScreeningReport{}, fmt.Errorf("expected ScreeningReport, got %T", data)
	}
}

func asRoleList(data any) (types.RoleList, error) {
	switch v := data.(type) {
	case types.RoleList:
		return v, nil
	case *types.RoleList:
		if v == nil {
			return types.RoleList{}, fmt.Errorf("nil RoleList")
		}
		return *v, nil
	default:
		return types.RoleList{}, fmt.Errorf("expected RoleList, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return typeAny
}

// ReportTextFormatter renders a screening report for the terminal
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	fmt.Fprintf(&output, "=== SCREENING: %s ===\n", report.Role)
	fmt.Fprintf(&output, "Keywords: %s\n", strings.Join(report.Keywords, ", "))
	fmt.Fprintf(&output, "Run: %s\n\n", report.RunID)

	for _, record := range report.Records {
		fmt.Fprintf(&output, "--- %s ---\n", record.Filename)
		fmt.Fprintf(&output, "Match Score: %s%%\n", record.ScorePercent)
		fmt.Fprintf(&output, "Matched: %s\n", joinOr(record.Match.MatchedKeywords, screening.NoMatchesMessage))
		fmt.Fprintf(&output, "Missing: %s\n", joinOr(record.MissingKeywords, screening.NoGapsMessage))
		output.WriteString("Summary:\n")
		output.WriteString(record.Summary)
		output.WriteString("\n")
		output.WriteString("Suggestions:\n")
		for _, tip := range record.Suggestions {
			fmt.Fprintf(&output, "  - %s\n", strings.ReplaceAll(tip, "**", ""))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== RANKING ===\n")
	for _, entry := range report.Ranking {
		fmt.Fprintf(&output, "%d. %s (%.2f%%)\n", entry.Rank, entry.Filename, entry.ScorePercent)
	}

	if len(report.Failures) > 0 {
		output.WriteString("\n=== SKIPPED ===\n")
		for _, failure := range report.Failures {
			fmt.Fprintf(&output, "%s: %s\n", failure.Filename, failure.Reason)
		}
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return typeReport
}

// ReportMarkdownFormatter renders a screening report as markdown
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	fmt.Fprintf(&output, "# Resume Screening: %s\n\n", report.Role)
	fmt.Fprintf(&output, "**Keywords:** %s\n\n", strings.Join(report.Keywords, ", "))

	output.WriteString("## Ranking\n\n")
	output.WriteString("| Rank | Resume | Match Score (%) |\n")
	output.WriteString("|------|--------|-----------------|\n")
	for _, entry := range report.Ranking {
		fmt.Fprintf(&output, "| %d | %s | %.2f |\n", entry.Rank, escapeCell(entry.Filename), entry.ScorePercent)
	}
	output.WriteString("\n")

	for _, record := range report.Records {
		fmt.Fprintf(&output, "## %s\n\n", record.Filename)
		fmt.Fprintf(&output, "**Match Score:** %s%%\n\n", record.ScorePercent)
		fmt.Fprintf(&output, "**Matched Keywords:** %s\n\n", joinOr(record.Match.MatchedKeywords, screening.NoMatchesMessage))
		fmt.Fprintf(&output, "**Missing Keywords:** %s\n\n", joinOr(record.MissingKeywords, screening.NoGapsMessage))
		output.WriteString("### Summary\n\n")
		output.WriteString(record.Summary)
		output.WriteString("\n\n")
		output.WriteString("### Suggestions\n\n")
		for _, tip := range record.Suggestions {
			fmt.Fprintf(&output, "- %s\n", tip)
		}
		output.WriteString("\n")
	}

	if len(report.Failures) > 0 {
		output.WriteString("## Skipped Documents\n\n")
		for _, failure := range report.Failures {
			fmt.Fprintf(&output, "- **%s** (%s): %s\n", failure.Filename, failure.Code, failure.Reason)
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return typeReport
}

// ReportCSVFormatter renders the flat resume x keyword export table
type ReportCSVFormatter struct{}

func (rcf *ReportCSVFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := screening.WriteCSV(&buf, report.Rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (rcf *ReportCSVFormatter) SupportedType() string {
	return typeReport
}

// RolesTextFormatter lists catalog roles for the terminal
type RolesTextFormatter struct{}

func (r *RolesTextFormatter) Format(data any) (string, error) {
	list, err := asRoleList(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== ROLES ===\n")
	for _, role := range list.Roles {
		fmt.Fprintf(&output, "%s: %s\n", role.Name, strings.Join(role.Keywords, ", "))
		for _, warning := range role.Warnings {
			fmt.Fprintf(&output, "  warning: %s\n", warning)
		}
	}
	return output.String(), nil
}

func (r *RolesTextFormatter) SupportedType() string {
	return typeRoles
}

// RolesMarkdownFormatter lists catalog roles as a markdown table
type RolesMarkdownFormatter struct{}

func (r *RolesMarkdownFormatter) Format(data any) (string, error) {
	list, err := asRoleList(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Roles\n\n")
	output.WriteString("| Role | Keywords |\n")
	output.WriteString("|------|----------|\n")
	for _, role := range list.Roles {
		fmt.Fprintf(&output, "| %s | %s |\n", escapeCell(role.Name), escapeCell(strings.Join(role.Keywords, ", ")))
	}

	var warnings []string
	for _, role := range list.Roles {
		warnings = append(warnings, role.Warnings...)
	}
	if len(warnings) > 0 {
		output.WriteString("\n## Warnings\n\n")
		for _, warning := range warnings {
			fmt.Fprintf(&output, "- %s\n", warning)
		}
	}
	return output.String(), nil
}

func (r *RolesMarkdownFormatter) SupportedType() string {
	return typeRoles
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// GlobalRegistry is the default formatter registry
var GlobalRegistry = NewFormatterRegistry()
