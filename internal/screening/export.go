package screening

import (
	"encoding/csv"
	"fmt"
	"io"

	"resumescreen/internal/types"
)

// DefaultExportFilename is the conventional name of the CSV export
const DefaultExportFilename = "resume_screening_results.csv"

// CSVHeader is the header row of the export table
var CSVHeader = []string{"Filename", "Keyword", "Matched", "Match Score (%)"}

// Flatten expands records into one row per resume and role keyword, in catalog order.
func Flatten(records []types.ResumeRecord, role string, source KeywordSource) ([]types.ExportRow, error) {
	keywords, err := source.Keywords(role)
	if err != nil {
		return nil, err
	}
	return flatten(records, keywords), nil
}

func flatten(records []types.ResumeRecord, keywords []string) []types.ExportRow {
	rows := make([]types.ExportRow, 0, len(records)*len(keywords))
	for _, record := range records {
		matched := make(map[string]struct{}, len(record.Match.MatchedKeywords))
		for _, keyword := range record.Match.MatchedKeywords {
			matched[keyword] = struct{}{}
		}

		percent := FormatPercent(record.Match.Score)
		for _, keyword := range keywords {
			_, ok := matched[keyword]
			rows = append(rows, types.ExportRow{
				Filename:     record.Filename,
				Keyword:      keyword,
				Matched:      ok,
				ScorePercent: percent,
			})
		}
	}
	return rows
}

// WriteCSV writes rows with the export header, rendering Matched as Yes or No
func WriteCSV(w io.Writer, rows []types.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		matched := "No"
		if row.Matched {
			matched = "Yes"
		}
		if err := cw.Write([]string{row.Filename, row.Keyword, matched, row.ScorePercent}); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", row.Filename, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
