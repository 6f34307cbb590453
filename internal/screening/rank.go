package screening

import (
	"cmp"
	"slices"

	"resumescreen/internal/types"
)

// Rank orders records by score, highest first. Ties keep input order.
func Rank(records []types.ResumeRecord) []types.RankingEntry {
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b types.ResumeRecord) int {
		return cmp.Compare(b.Match.Score, a.Match.Score)
	})

	ranking := make([]types.RankingEntry, len(ordered))
	for i, record := range ordered {
		ranking[i] = types.RankingEntry{
			Rank:         i + 1,
			Filename:     record.Filename,
			ScorePercent: RoundPercent(record.Match.Score),
		}
	}
	return ranking
}
