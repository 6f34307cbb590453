package screening

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// nonWord matches runs of anything that is not a Unicode letter, digit or underscore
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Lower applies full Unicode lowercasing.
func Lower(s string) string {
	// A Caser keeps state, so one per call keeps this safe across goroutines.
	return cases.Lower(language.Und).String(s)
}

// Normalize lowercases text and collapses every run of non-word characters
// into a single space. Leading and trailing separators survive as one space.
func Normalize(text string) string {
	return nonWord.ReplaceAllString(Lower(text), " ")
}
