// Package classify provides the substring rules used to classify lot rows.
//
// Sheet labels are free text ("3 NEAR DUE", "ENGR-SPLIT LOW YIELD"), so every
// classification is an ordered list of case-insensitive substring rules that
// can be replaced from configuration without touching the analysis code.
package classify

import (
	"strings"
)

// Rule matches text containing Pattern, unless it also contains any Exclude.
type Rule struct {
	Label   string   `mapstructure:"label"   json:"label"   yaml:"label"`
	Pattern string   `mapstructure:"pattern" json:"pattern" yaml:"pattern"`
	Exclude []string `mapstructure:"exclude" json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Matches reports whether text satisfies the rule, ignoring case.
func (r Rule) Matches(text string) bool {
	if r.Pattern == "" {
		return false
	}

	upper := strings.ToUpper(text)
	if !strings.Contains(upper, strings.ToUpper(r.Pattern)) {
		return false
	}

	for _, ex := range r.Exclude {
		if ex != "" && strings.Contains(upper, strings.ToUpper(ex)) {
			return false
		}
	}

	return true
}

// Matcher is an ordered rule list. The first matching rule wins.
type Matcher []Rule

// NewMatcher builds a matcher with one rule per pattern, labelled by the pattern.
func NewMatcher(patterns ...string) Matcher {
	m := make(Matcher, 0, len(patterns))

	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}

		m = append(m, Rule{Label: p, Pattern: p})
	}

	return m
}

// Match returns the first rule matching text. Blank text never matches.
func (m Matcher) Match(text string) (Rule, bool) {
	if strings.TrimSpace(text) == "" {
		return Rule{}, false
	}

	for _, r := range m {
		if r.Matches(text) {
			return r, true
		}
	}

	return Rule{}, false
}

// Any reports whether any rule matches text.
func (m Matcher) Any(text string) bool {
	_, ok := m.Match(text)

	return ok
}
