package screening

import (
	"resumescreen/internal/types"
)

// KeywordSource resolves a role to its ordered keyword set.
// catalog.Catalog is the production implementation.
type KeywordSource interface {
	Keywords(role string) ([]string, error)
}

// Scorer scores single resumes against roles from a KeywordSource
type Scorer struct {
	source           KeywordSource
	summaryWordLimit int
}

// NewScorer creates a scorer. A non-positive summaryWordLimit means DefaultSummaryWordLimit.
func NewScorer(source KeywordSource, summaryWordLimit int) *Scorer {
	if summaryWordLimit <= 0 {
		summaryWordLimit = DefaultSummaryWordLimit
	}
	return &Scorer{source: source, summaryWordLimit: summaryWordLimit}
}

// Score normalizes raw, matches it against role's keywords and builds the record.
// An unknown role is reported as UNKNOWN_ROLE.
func (s *Scorer) Score(filename, raw, role string) (types.ResumeRecord, error) {
	keywords, err := s.source.Keywords(role)
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return s.scoreKeywords(filename, raw, keywords)
}

func (s *Scorer) scoreKeywords(filename, raw string, keywords []string) (types.ResumeRecord, error) {
	normalized := Normalize(raw)

	match, err := Match(normalized, keywords)
	if err != nil {
		return types.ResumeRecord{}, err
	}

	missing := Gaps(keywords, match.MatchedKeywords)

	return types.ResumeRecord{
		Filename:        filename,
		Match:           match,
		ScorePercent:    FormatPercent(match.Score),
		MissingKeywords: missing,
		Summary:         Summarize(raw, s.summaryWordLimit),
		Suggestions:     Suggestions(missing),
		RawText:         raw,
		NormalizedText:  normalized,
	}, nil
}

// Score is a one-off Scorer call with the default summary length.
func Score(filename, raw, role string, source KeywordSource) (types.ResumeRecord, error) {
	return NewScorer(source, DefaultSummaryWordLimit).Score(filename, raw, role)
}
