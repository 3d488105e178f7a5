package pylang

import "strings"

// Many payloads carry code as a single logically-multi-line string with
// escaped newlines. UnescapeNewlines and EscapeNewlines convert between the
// two forms and are exact inverses of each other for strings that contain no
// pre-existing real line breaks.

// UnescapeNewlines converts literal `\n` and `\r` sequences into real breaks.
func UnescapeNewlines(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.ReplaceAll(s, `\r`, "\r")
}

// EscapeNewlines converts real line breaks back into literal `\r` and `\n`.
func EscapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r", `\r`)
	return strings.ReplaceAll(s, "\n", `\n`)
}
