package screening

import (
	"context"
	"fmt"
	"time"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/google/uuid"
)

// TextExtractor pulls plain text out of a document's bytes
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Observer is told about each document outcome and about the finished batch
type Observer interface {
	DocumentScored(ctx context.Context, role string, record types.ResumeRecord)
	DocumentFailed(ctx context.Context, role string, failure types.DocumentFailure)
	BatchCompleted(ctx context.Context, report *types.ScreeningReport, duration time.Duration)
}

// ScreenerOptions tunes a Screener
type ScreenerOptions struct {
	SummaryWordLimit int
	Observer         Observer // optional
	Now              func() time.Time
}

// Screener scores batches of documents against one role at a time
type Screener struct {
	source    KeywordSource
	scorer    *Scorer
	extractor TextExtractor
	logger    *errors.Logger
	observer  Observer
	now       func() time.Time
}

// NewScreener creates a screener. extractor may be nil when every document is plain text.
func NewScreener(source KeywordSource, extractor TextExtractor, logger *errors.Logger, opts ScreenerOptions) *Screener {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Screener{
		source:    source,
		scorer:    NewScorer(source, opts.SummaryWordLimit),
		extractor: extractor,
		logger:    logger,
		observer:  opts.Observer,
		now:       now,
	}
}

// Run screens docs in input order. An unknown role fails the whole batch up front;
// a document whose text cannot be extracted is reported in Failures and skipped.
func (s *Screener) Run(ctx context.Context, role string, docs []types.Document) (*types.ScreeningReport, error) {
	start := s.now()

	keywords, err := s.source.Keywords(role)
	if err != nil {
		return nil, err
	}

	report := &types.ScreeningReport{
		RunID:       uuid.NewString(),
		Role:        role,
		Keywords:    keywords,
		GeneratedAt: start.UTC(),
		Records:     make([]types.ResumeRecord, 0, len(docs)),
	}
	log := s.logger.With("run_id", report.RunID, "role", role)
	log.Info("Screening batch started", "documents", len(docs))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("screening cancelled after %d documents: %w", len(report.Records)+len(report.Failures), err)
		}

		text, err := s.documentText(ctx, doc)
		if err != nil {
			failure := toFailure(doc.Filename, err)
			report.Failures = append(report.Failures, failure)
			log.LogError(err, "Document skipped", "filename", doc.Filename)
			if s.observer != nil {
				s.observer.DocumentFailed(ctx, role, failure)
			}
			continue
		}

		record, err := s.scorer.scoreKeywords(doc.Filename, text, keywords)
		if err != nil {
			return nil, err
		}
		report.Records = append(report.Records, record)
		log.Debug("Document scored",
			"filename", doc.Filename,
			"score_percent", record.ScorePercent,
			"matched", len(record.Match.MatchedKeywords))
		if s.observer != nil {
			s.observer.DocumentScored(ctx, role, record)
		}
	}

	report.Ranking = Rank(report.Records)
	report.Rows = flatten(report.Records, keywords)

	duration := s.now().Sub(start)
	log.Info("Screening batch completed",
		"scored", len(report.Records),
		"failed", len(report.Failures),
		"duration", duration.String())
	if s.observer != nil {
		s.observer.BatchCompleted(ctx, report, duration)
	}

	return report, nil
}

func (s *Screener) documentText(ctx context.Context, doc types.Document) (string, error) {
	if doc.IsText {
		return string(doc.Content), nil
	}
	if s.extractor == nil {
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			"no text extractor configured for binary documents", nil).
			WithContext("filename", doc.Filename)
	}
	return s.extractor.Extract(ctx, doc.Filename, doc.Content)
}

func toFailure(filename string, err error) types.DocumentFailure {
	failure := types.DocumentFailure{Filename: filename, Code: errors.ErrCodeExtractionFailed, Reason: err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		failure.Code = appErr.Code
		failure.Reason = appErr.Message
		if appErr.Cause != nil {
			failure.Reason += ": " + appErr.Cause.Error()
		}
	}
	return failure
}
