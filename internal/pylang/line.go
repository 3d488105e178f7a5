package pylang

import "strings"

// LineIsCodeLike decides whether a single line, taken in isolation, resembles
// a Python statement. The checks are ordered: cheap rejections first, then
// strong negative signals from other language families, then positive
// structure and keyword checks.
func LineIsCodeLike(line string) bool {
	stripped := strings.TrimSpace(line)
	if len(stripped) < 3 {
		return false
	}

	// Truncate at an inline comment before further analysis.
	if idx := strings.Index(stripped, "#"); idx >= 0 {
		partial := strings.TrimRight(stripped[:idx], " \t")
		if len(partial) < 3 {
			return false
		}
		stripped = partial
	}

	low := strings.ToLower(stripped)
	// C-family punctuation and JS idioms override everything else.
	if strings.Contains(low, "function ") || strings.Contains(low, "console.") {
		return false
	}
	if strings.ContainsAny(stripped, "{};") {
		return false
	}

	if blockHeaderRe.MatchString(stripped) {
		return true
	}

	return HasStrongKeyword(stripped)
}

// MightContainCode is a cheap whole-text gate run before segmentation and
// scoring. Foreign-language signals demand a strong keyword to proceed;
// otherwise any strong keyword is enough.
func MightContainCode(s string) bool {
	low := strings.ToLower(s)
	if strings.Contains(low, "function ") || strings.Contains(low, "console.") {
		if !HasStrongKeyword(low) {
			return false
		}
	}
	return HasStrongKeyword(low)
}
