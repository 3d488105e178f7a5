package pylang

import "regexp"

// Strong keywords reliably indicate Python when they appear as standalone
// tokens in a line. The weak set ("in", "is", "and", "or", "not") is kept
// separate on purpose: those words are far too common in prose to qualify a
// line on their own.
var strongKeywords = map[string]struct{}{
	"def": {}, "class": {}, "import": {}, "from": {}, "if": {}, "elif": {},
	"else": {}, "try": {}, "except": {}, "with": {}, "for": {}, "while": {},
	"return": {}, "print": {}, "lambda": {}, "yield": {}, "assert": {},
	"nonlocal": {}, "global": {}, "raise": {}, "async": {}, "await": {},
	"pass": {}, "continue": {}, "break": {},
}

var weakKeywords = map[string]struct{}{
	"in": {}, "is": {}, "and": {}, "or": {}, "not": {},
}

var (
	tokenRe = regexp.MustCompile(`[A-Za-z_]+`)

	// Compound-statement header: a leading block keyword followed by
	// anything and a trailing colon.
	blockHeaderRe = regexp.MustCompile(`^\s*(def|class|if|elif|else|try|except|with|for|while)\b.*:\s*$`)
)

// Tokens returns the maximal letter/underscore runs of s.
func Tokens(s string) []string {
	return tokenRe.FindAllString(s, -1)
}

// HasStrongKeyword reports whether any token of s is in the strong set.
func HasStrongKeyword(s string) bool {
	for _, tok := range Tokens(s) {
		if _, ok := strongKeywords[tok]; ok {
			return true
		}
	}
	return false
}

// IsStrongKeyword reports whether tok itself is a strong keyword.
func IsStrongKeyword(tok string) bool {
	_, ok := strongKeywords[tok]
	return ok
}

// IsWeakKeyword reports whether tok is in the weak set.
func IsWeakKeyword(tok string) bool {
	_, ok := weakKeywords[tok]
	return ok
}
