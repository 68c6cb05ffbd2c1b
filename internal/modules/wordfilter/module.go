package wordfilter

import "strings"

// Filter flags messages containing any configured word as a plain substring.
// Matching is not token-bounded; "AMKsin" matches "amk".
type Filter struct {
	words []string
}

func New(words []string) *Filter {
	return &Filter{words: words}
}

func (f *Filter) IsViolation(text string) bool {
	if text == "" {
		return false
	}
	content := strings.ToLower(text)
	for _, word := range f.words {
		if strings.Contains(content, word) {
			return true
		}
	}
	return false
}
