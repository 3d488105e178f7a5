// Package danger matches a fixed catalogue of security-sensitive call
// patterns (process execution, dynamic evaluation, filesystem destruction,
// network primitives, untrusted deserialization) against arbitrary text.
package danger

import "regexp"

// Hit records one matched rule with a short evidence excerpt.
type Hit struct {
	RuleID   string `json:"rule_id"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Evidence string `json:"evidence,omitempty"`
}

const (
	// SourcePattern marks hits produced by the regex rule catalogue.
	SourcePattern = "pattern"
	// SourceModel marks hits produced by the model guard.
	SourceModel = "model"
)

const evidenceLimit = 80

type compiledRule struct {
	id       string
	category string
	re       *regexp.Regexp
}

// Scanner holds the compiled catalogue. It is immutable after construction
// and safe for concurrent use.
type Scanner struct {
	rules []compiledRule
}

// NewScanner compiles the fixed rule catalogue.
func NewScanner() *Scanner {
	defs := ruleDefs()
	rules := make([]compiledRule, 0, len(defs))
	for _, d := range defs {
		rules = append(rules, compiledRule{
			id:       d.ID,
			category: d.Category,
			re:       regexp.MustCompile(`(?i)` + d.Pattern),
		})
	}
	return &Scanner{rules: rules}
}

// Match reports whether any catalogue pattern occurs anywhere in text.
func (s *Scanner) Match(text string) bool {
	for _, r := range s.rules {
		if r.re.MatchString(text) {
			return true
		}
	}
	return false
}

// Scan returns one hit per matching rule, with the first match as evidence.
func (s *Scanner) Scan(text string) []Hit {
	var hits []Hit
	for _, r := range s.rules {
		m := r.re.FindString(text)
		if m == "" {
			continue
		}
		if len(m) > evidenceLimit {
			m = m[:evidenceLimit]
		}
		hits = append(hits, Hit{
			RuleID:   r.id,
			Category: r.category,
			Source:   SourcePattern,
			Evidence: m,
		})
	}
	return hits
}
