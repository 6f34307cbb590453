package screening

// Gaps returns the keywords in all that are not in matched, in the order of all,
// each at most once.
func Gaps(all, matched []string) []string {
	have := make(map[string]struct{}, len(matched))
	for _, keyword := range matched {
		have[keyword] = struct{}{}
	}

	missing := make([]string, 0, len(all))
	for _, keyword := range all {
		if _, ok := have[keyword]; ok {
			continue
		}
		have[keyword] = struct{}{}
		missing = append(missing, keyword)
	}
	return missing
}
