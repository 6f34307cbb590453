package screening

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor map[string]string

func (s stubExtractor) Extract(_ context.Context, filename string, _ []byte) (string, error) {
	text, ok := s[filename]
	if !ok {
		return "", errors.NewIOError(errors.ErrCodeExtractionFailed, "failed to extract text", stderrors.New("corrupt xref table")).
			WithContext("filename", filename)
	}
	return text, nil
}

type recordingObserver struct {
	scored    []string
	failed    []string
	completed int
}

func (o *recordingObserver) DocumentScored(_ context.Context, _ string, record types.ResumeRecord) {
	o.scored = append(o.scored, record.Filename)
}

func (o *recordingObserver) DocumentFailed(_ context.Context, _ string, failure types.DocumentFailure) {
	o.failed = append(o.failed, failure.Filename)
}

func (o *recordingObserver) BatchCompleted(_ context.Context, _ *types.ScreeningReport, _ time.Duration) {
	o.completed++
}

func newTestScreener(extractor TextExtractor, observer Observer) *Screener {
	logger, _ := errors.New("error")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewScreener(testRoles, extractor, logger, ScreenerOptions{
		Observer: observer,
		Now:      func() time.Time { return fixed },
	})
}

func TestScreenerRun(t *testing.T) {
	observer := &recordingObserver{}
	screener := newTestScreener(stubExtractor{
		"strong.pdf": "Python, pandas, numpy, regression and machine learning",
	}, observer)

	docs := []types.Document{
		{Filename: "weak.txt", Content: []byte("I know Python"), IsText: true},
		{Filename: "broken.pdf", Content: []byte("%PDF-garbage")},
		{Filename: "strong.pdf", Content: []byte("%PDF-1.7")},
		{Filename: "empty.txt", Content: nil, IsText: true},
	}

	report, err := screener.Run(context.Background(), "Data Scientist", docs)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "Data Scientist", report.Role)
	assert.Equal(t, dataScientist, report.Keywords)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), report.GeneratedAt)

	require.Len(t, report.Records, 3)
	assert.Equal(t, "weak.txt", report.Records[0].Filename)
	assert.Equal(t, "strong.pdf", report.Records[1].Filename)
	assert.Equal(t, "0.00", report.Records[2].ScorePercent, "empty text scores zero")

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "broken.pdf", report.Failures[0].Filename)
	assert.Equal(t, errors.ErrCodeExtractionFailed, report.Failures[0].Code)
	assert.Contains(t, report.Failures[0].Reason, "corrupt xref table")

	require.Len(t, report.Ranking, 3)
	assert.Equal(t, "strong.pdf", report.Ranking[0].Filename)
	assert.Equal(t, 71.43, report.Ranking[0].ScorePercent)
	assert.Equal(t, "weak.txt", report.Ranking[1].Filename)
	assert.Equal(t, 14.29, report.Ranking[1].ScorePercent)

	assert.Len(t, report.Rows, 3*len(dataScientist))

	assert.Equal(t, []string{"weak.txt", "strong.pdf", "empty.txt"}, observer.scored)
	assert.Equal(t, []string{"broken.pdf"}, observer.failed)
	assert.Equal(t, 1, observer.completed)
}

func TestScreenerRunUnknownRole(t *testing.T) {
	observer := &recordingObserver{}
	screener := newTestScreener(stubExtractor{}, observer)

	_, err := screener.Run(context.Background(), "Chef", []types.Document{{Filename: "a.txt", IsText: true}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownRole))
	assert.Empty(t, observer.scored)
	assert.Zero(t, observer.completed)
}

func TestScreenerRunWithoutExtractor(t *testing.T) {
	screener := newTestScreener(nil, nil)

	report, err := screener.Run(context.Background(), "API", []types.Document{
		{Filename: "cv.pdf", Content: []byte("%PDF")},
		{Filename: "cv.txt", Content: []byte("rapid"), IsText: true},
	})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, errors.ErrCodeUnsupportedDocument, report.Failures[0].Code)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "100.00", report.Records[0].ScorePercent)
}

func TestScreenerRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScreener(nil, nil).Run(ctx, "API", []types.Document{{Filename: "a.txt", IsText: true}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScreenerRunEmptyBatch(t *testing.T) {
	report, err := newTestScreener(nil, nil).Run(context.Background(), "API", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	assert.Empty(t, report.Ranking)
	assert.Empty(t, report.Rows)
}
