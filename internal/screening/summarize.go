package screening

import "strings"

// DefaultSummaryWordLimit is the word budget of a resume summary
const DefaultSummaryWordLimit = 50

// Summarize returns the first wordLimit whitespace-separated words of raw followed by "...",
// or raw unchanged when it has wordLimit words or fewer. A non-positive limit means the default.
func Summarize(raw string, wordLimit int) string {
	if wordLimit <= 0 {
		wordLimit = DefaultSummaryWordLimit
	}

	words := strings.Fields(raw)
	if len(words) <= wordLimit {
		return raw
	}
	return strings.Join(words[:wordLimit], " ") + "..."
}
