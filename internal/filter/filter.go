package filter

import (
	"strings"

	"github.com/amishk599/feedwatch/internal/model"
)

// SubjectFilter matches changes whose subject contains any of the include
// keywords and none of the exclude keywords. Matching is case-insensitive.
// An empty include list is treated as "match all".
type SubjectFilter struct {
	keywords []string
	excludes []string
}

// NewSubjectFilter returns a filter over change subjects (case-insensitive
// substring).
func NewSubjectFilter(keywords []string, excludes []string) *SubjectFilter {
	return &SubjectFilter{
		keywords: lowerAll(keywords),
		excludes: lowerAll(excludes),
	}
}

// Match returns true if the change should be reported.
func (f *SubjectFilter) Match(change model.Change) bool {
	subject := strings.ToLower(change.Record.Subject)

	for _, kw := range f.excludes {
		if strings.Contains(subject, kw) {
			return false
		}
	}

	if len(f.keywords) == 0 {
		return true
	}
	for _, kw := range f.keywords {
		if strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the filter lets every change through.
func (f *SubjectFilter) IsEmpty() bool {
	return len(f.keywords) == 0 && len(f.excludes) == 0
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
