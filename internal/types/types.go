package types

import "time"

// Document is one resume handed to the screener.
type Document struct {
	Filename string
	Content  []byte
	// IsText marks Content as already-extracted plain text.
	IsText bool
}

// MatchResult is the outcome of matching one normalized text against a keyword set
type MatchResult struct {
	MatchedKeywords []string `json:"matchedKeywords"`
	Score           float64  `json:"score"` // matched / total, in [0, 1]
}

// ResumeRecord represents the scored result for one resume
type ResumeRecord struct {
	Filename        string      `json:"filename"`
	Match           MatchResult `json:"match"`
	ScorePercent    string      `json:"scorePercent"`
	MissingKeywords []string    `json:"missingKeywords"`
	Summary         string      `json:"summary"`
	Suggestions     []string    `json:"suggestions"`

	RawText        string `json:"-"`
	NormalizedText string `json:"-"`
}

// RankingEntry is one row of the ranked batch
type RankingEntry struct {
	Rank         int     `json:"rank"`
	Filename     string  `json:"filename"`
	ScorePercent float64 `json:"scorePercent"`
}

// ExportRow is one resume x keyword row of the flat export table
type ExportRow struct {
	Filename     string `json:"filename"`
	Keyword      string `json:"keyword"`
	Matched      bool   `json:"matched"`
	ScorePercent string `json:"scorePercent"`
}

// DocumentFailure records a document that could not be scored
type DocumentFailure struct {
	Filename string `json:"filename"`
	Code     string `json:"code,omitempty"`
	Reason   string `json:"reason"`
}

// ScreeningReport is the full result of screening a batch against one role
type ScreeningReport struct {
	RunID       string            `json:"runId"`
	Role        string            `json:"role"`
	Keywords    []string          `json:"keywords"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Records     []ResumeRecord    `json:"records"`
	Ranking     []RankingEntry    `json:"ranking"`
	Rows        []ExportRow       `json:"rows"`
	Failures    []DocumentFailure `json:"failures,omitempty"`
}

// RoleSummary describes one catalog role
type RoleSummary struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	// Warnings lists keywords that can never match after normalization.
	Warnings []string `json:"warnings,omitempty"`
}

// RoleList is the catalog as presented to users
type RoleList struct {
	Roles []RoleSummary `json:"roles"`
}
