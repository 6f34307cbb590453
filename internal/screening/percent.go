package screening

import "strconv"

// FormatPercent renders a [0, 1] score as a percentage with exactly two decimals.
// Ranking and export both go through here so they never disagree.
func FormatPercent(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 2, 64)
}

// RoundPercent is FormatPercent as a number.
func RoundPercent(score float64) float64 {
	v, err := strconv.ParseFloat(FormatPercent(score), 64)
	if err != nil {
		// FormatFloat output always parses
		panic(err)
	}
	return v
}
