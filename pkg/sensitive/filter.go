package sensitive

import (
	"regexp"
	"strings"
)

// Filter screens blessing content for disallowed terms. Matching is a
// case-insensitive substring search over the configured list.
type Filter struct {
	pattern *regexp.Regexp
}

func NewFilter(words []string) *Filter {
	var quoted []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return &Filter{}
	}
	return &Filter{
		pattern: regexp.MustCompile(`(?i)` + strings.Join(quoted, "|")),
	}
}

// Contains reports whether text matches any disallowed term.
func (f *Filter) Contains(text string) bool {
	if f.pattern == nil {
		return false
	}
	return f.pattern.MatchString(text)
}

// Redact replaces each matched term with a fixed four-asterisk mask. The
// mask width is deliberately not proportional to the term, so redacted log
// lines do not leak term length. Redact is for audit logging only; the send
// path rejects disallowed content outright.
func (f *Filter) Redact(text string) string {
	if f.pattern == nil {
		return text
	}
	return f.pattern.ReplaceAllString(text, "****")
}
