package pylang

import "strings"

// StripComments truncates every line of block at its first '#'. There is no
// string-literal awareness: this is a heuristic feeding the scorer, not a
// lexer, and it never touches the text actually emitted to output.
func StripComments(block string) string {
	lines := strings.Split(block, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimRight(ln, "\r")
		if idx := strings.Index(ln, "#"); idx >= 0 {
			ln = ln[:idx]
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}

// Dedent removes the longest common leading whitespace prefix shared by all
// non-blank lines, so nested snippets parse as top-level statements.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")

	var prefix string
	havePrefix := false
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		indent := ln[:len(ln)-len(strings.TrimLeft(ln, " \t"))]
		if !havePrefix {
			prefix = indent
			havePrefix = true
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	if prefix == "" {
		return s
	}

	out := make([]string, len(lines))
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			out[i] = ln
			continue
		}
		out[i] = strings.TrimPrefix(ln, prefix)
	}
	return strings.Join(out, "\n")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
