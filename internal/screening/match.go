package screening

import (
	"strings"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"
)

// Match checks each keyword for a plain substring occurrence in normalized text.
// There is no word-boundary check, so "api" is found inside "rapid".
// Matched keywords keep catalog order and spelling.
func Match(normalized string, keywords []string) (types.MatchResult, error) {
	if len(keywords) == 0 {
		return types.MatchResult{}, errors.NewConfigError(errors.ErrCodeEmptyKeywordSet,
			"cannot score against an empty keyword set", nil)
	}

	matched := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if strings.Contains(normalized, Lower(keyword)) {
			matched = append(matched, keyword)
		}
	}

	return types.MatchResult{
		MatchedKeywords: matched,
		Score:           float64(len(matched)) / float64(len(keywords)),
	}, nil
}
