package screening

import "fmt"

// Messages shown alongside a scored resume
const (
	NoMatchesMessage   = "No relevant keywords matched."
	NoGapsMessage      = "No skill gaps detected."
	FullMatchMessage   = "Your resume aligns very well with the selected role!"
	suggestionTemplate = "Consider learning or showcasing **%s**."
)

// Suggestions turns skill gaps into improvement tips
func Suggestions(missing []string) []string {
	if len(missing) == 0 {
		return []string{FullMatchMessage}
	}

	tips := make([]string, len(missing))
	for i, keyword := range missing {
		tips[i] = fmt.Sprintf(suggestionTemplate, keyword)
	}
	return tips
}
