// Package pysyntax implements a minimal structural checker for Python
// statement and indentation well-formedness. It stands in for a real Python
// parser: no Go binding to CPython's ast module exists, so the scorer treats
// this check plus its keyword fallback as the authoritative signal. The
// checker is deliberately lenient about semantics (it accepts `return` at
// module level) and strict about shape (bracket balance, indentation
// discipline, adjacent bare words).
package pysyntax

import (
	"fmt"
	"strings"
	"unicode"
)

// Error describes why a snippet failed the structural check.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errAt(line int, format string, args ...any) error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

type tokenKind int

const (
	kindName tokenKind = iota
	kindKeyword
	kindNumber
	kindString
	kindOp
)

type token struct {
	kind tokenKind
	text string
}

// Full keyword set plus the constant names. Keywords may legally sit next to
// bare words, which is what separates "import numpy as np" from prose.
var keywords = map[string]struct{}{
	"and": {}, "as": {}, "assert": {}, "async": {}, "await": {}, "break": {},
	"class": {}, "continue": {}, "def": {}, "del": {}, "elif": {}, "else": {},
	"except": {}, "finally": {}, "for": {}, "from": {}, "global": {}, "if": {},
	"import": {}, "in": {}, "is": {}, "lambda": {}, "nonlocal": {}, "not": {},
	"or": {}, "pass": {}, "raise": {}, "return": {}, "try": {}, "while": {},
	"with": {}, "yield": {}, "None": {}, "True": {}, "False": {},
}

var blockKeywords = map[string]struct{}{
	"if": {}, "elif": {}, "else": {}, "try": {}, "except": {}, "finally": {},
	"with": {}, "for": {}, "while": {}, "def": {}, "class": {}, "async": {},
}

// Operator characters Python actually uses. Anything else at top level
// (backticks, dollar signs, question marks) fails the check outright.
const opChars = "+-*/%@<>=!&|^~,:.;()[]{}\\"

type logicalLine struct {
	num    int // 1-based physical line the logical line starts on
	indent string
	tokens []token
}

// Parse checks src for statement and indentation well-formedness and returns
// nil when the text plausibly parses as a sequence of Python statements.
func Parse(src string) error {
	lines, err := lex(src)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return errAt(1, "empty input")
	}

	stack := []int{0}
	expectIndent := false

	for i, ll := range lines {
		width := indentWidth(ll.indent)
		if i == 0 && width != 0 {
			return errAt(ll.num, "unexpected indent")
		}
		if expectIndent {
			if width <= stack[len(stack)-1] {
				return errAt(ll.num, "expected an indented block")
			}
			stack = append(stack, width)
		} else {
			for width < stack[len(stack)-1] {
				stack = stack[:len(stack)-1]
			}
			if width != stack[len(stack)-1] {
				return errAt(ll.num, "unindent does not match any outer level")
			}
		}

		opens, err := checkStatement(ll)
		if err != nil {
			return err
		}
		expectIndent = opens
	}
	if expectIndent {
		last := lines[len(lines)-1]
		return errAt(last.num, "expected an indented block at end of input")
	}
	return nil
}

// checkStatement validates a single logical line and reports whether it
// opens a block (trailing colon on a compound-statement header).
func checkStatement(ll logicalLine) (bool, error) {
	toks := ll.tokens
	if len(toks) == 0 {
		return false, errAt(ll.num, "empty statement")
	}

	first := toks[0]
	if first.kind == kindOp && !strings.Contains("([{-+~*@", first.text) {
		return false, errAt(ll.num, "statement cannot start with %q", first.text)
	}

	// Two adjacent bare words is how prose betrays itself.
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		if !isValueKind(prev.kind) || !isValueKind(cur.kind) {
			continue
		}
		if prev.kind == kindKeyword || cur.kind == kindKeyword {
			continue
		}
		if prev.kind == kindString && cur.kind == kindString {
			continue // implicit string concatenation
		}
		return false, errAt(ll.num, "invalid syntax near %q %q", prev.text, cur.text)
	}

	head := first.text
	if first.kind == kindKeyword && head == "async" && len(toks) > 1 {
		head = toks[1].text
	}
	if first.kind == kindKeyword {
		if _, isBlock := blockKeywords[head]; isBlock {
			colon := -1
			for i, tk := range toks {
				if tk.kind == kindOp && tk.text == ":" {
					colon = i
					break
				}
			}
			if colon < 0 {
				return false, errAt(ll.num, "expected ':' after %q", head)
			}
			if head == "def" || head == "class" {
				idx := 1
				if first.text == "async" {
					idx = 2
				}
				if idx >= len(toks) || toks[idx].kind != kindName {
					return false, errAt(ll.num, "expected name after %q", head)
				}
			}
			if head == "for" && !hasKeyword(toks, "in") {
				return false, errAt(ll.num, "expected 'in' in for statement")
			}
			// A colon as the final token opens a block; anything after it
			// is an inline body.
			return colon == len(toks)-1, nil
		}
		if head == "from" && !hasKeyword(toks, "import") {
			return false, errAt(ll.num, "expected 'import' after 'from'")
		}
	}
	return false, nil
}

func isValueKind(k tokenKind) bool {
	return k == kindName || k == kindKeyword || k == kindNumber || k == kindString
}

func hasKeyword(toks []token, kw string) bool {
	for _, tk := range toks {
		if tk.kind == kindKeyword && tk.text == kw {
			return true
		}
	}
	return false
}

func indentWidth(indent string) int {
	w := 0
	for _, r := range indent {
		if r == '\t' {
			w = (w/8 + 1) * 8
		} else {
			w++
		}
	}
	return w
}

// lex splits src into logical lines of tokens, joining physical lines that
// continue inside brackets, after a trailing backslash, or inside a
// triple-quoted string.
func lex(src string) ([]logicalLine, error) {
	runes := []rune(src)
	var out []logicalLine

	pos := 0
	lineNum := 1
	for pos < len(runes) {
		// Leading whitespace of the physical line is the indent.
		start := pos
		for pos < len(runes) && (runes[pos] == ' ' || runes[pos] == '\t') {
			pos++
		}
		indent := string(runes[start:pos])

		if pos >= len(runes) {
			break
		}
		if runes[pos] == '\n' {
			pos++
			lineNum++
			continue
		}
		if runes[pos] == '\r' {
			pos++
			continue
		}
		if runes[pos] == '#' {
			for pos < len(runes) && runes[pos] != '\n' {
				pos++
			}
			continue
		}

		ll := logicalLine{num: lineNum, indent: indent}
		depth := 0
		for pos < len(runes) {
			r := runes[pos]
			switch {
			case r == '\n':
				lineNum++
				pos++
				if depth == 0 {
					goto lineDone
				}
			case r == '\r':
				pos++
			case r == ' ' || r == '\t':
				pos++
			case r == '#':
				for pos < len(runes) && runes[pos] != '\n' {
					pos++
				}
			case r == '\\' && pos+1 < len(runes) && (runes[pos+1] == '\n' || runes[pos+1] == '\r'):
				pos++ // explicit continuation joins the next physical line
				if pos < len(runes) && runes[pos] == '\r' {
					pos++
				}
				if pos < len(runes) && runes[pos] == '\n' {
					pos++
					lineNum++
				}
			case unicode.IsLetter(r) || r == '_':
				word := scanWord(runes, &pos)
				if isStringPrefix(word) && pos < len(runes) && (runes[pos] == '\'' || runes[pos] == '"') {
					if err := scanString(runes, &pos, &lineNum); err != nil {
						return nil, err
					}
					ll.tokens = append(ll.tokens, token{kindString, word})
					break
				}
				kind := kindName
				if _, ok := keywords[word]; ok {
					kind = kindKeyword
				}
				ll.tokens = append(ll.tokens, token{kind, word})
			case unicode.IsDigit(r):
				ll.tokens = append(ll.tokens, token{kindNumber, scanNumber(runes, &pos)})
			case r == '\'' || r == '"':
				if err := scanString(runes, &pos, &lineNum); err != nil {
					return nil, err
				}
				ll.tokens = append(ll.tokens, token{kindString, "str"})
			case strings.ContainsRune(opChars, r):
				switch r {
				case '(', '[', '{':
					depth++
				case ')', ']', '}':
					depth--
					if depth < 0 {
						return nil, errAt(lineNum, "unmatched %q", string(r))
					}
				}
				ll.tokens = append(ll.tokens, token{kindOp, string(r)})
				pos++
			default:
				return nil, errAt(lineNum, "invalid character %q", string(r))
			}
		}
	lineDone:
		if depth != 0 {
			return nil, errAt(ll.num, "unclosed bracket")
		}
		if len(ll.tokens) > 0 {
			out = append(out, ll)
		}
	}
	return out, nil
}

func scanWord(runes []rune, pos *int) string {
	start := *pos
	for *pos < len(runes) && (unicode.IsLetter(runes[*pos]) || unicode.IsDigit(runes[*pos]) || runes[*pos] == '_') {
		*pos++
	}
	return string(runes[start:*pos])
}

func scanNumber(runes []rune, pos *int) string {
	start := *pos
	for *pos < len(runes) {
		r := runes[*pos]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			*pos++
			continue
		}
		// Exponent sign: 1e-5
		if (r == '+' || r == '-') && *pos > start {
			prev := runes[*pos-1]
			if prev == 'e' || prev == 'E' {
				*pos++
				continue
			}
		}
		break
	}
	return string(runes[start:*pos])
}

func isStringPrefix(word string) bool {
	if len(word) > 2 {
		return false
	}
	for _, r := range strings.ToLower(word) {
		if r != 'r' && r != 'b' && r != 'f' && r != 'u' {
			return false
		}
	}
	return true
}

// scanString consumes a quoted literal, including triple-quoted forms that
// may span physical lines.
func scanString(runes []rune, pos *int, lineNum *int) error {
	quote := runes[*pos]
	startLine := *lineNum
	if *pos+2 < len(runes) && runes[*pos+1] == quote && runes[*pos+2] == quote {
		*pos += 3
		for *pos+2 < len(runes) {
			if runes[*pos] == quote && runes[*pos+1] == quote && runes[*pos+2] == quote {
				*pos += 3
				return nil
			}
			if runes[*pos] == '\n' {
				*lineNum++
			}
			*pos++
		}
		return errAt(startLine, "unterminated triple-quoted string")
	}

	*pos++
	for *pos < len(runes) {
		switch runes[*pos] {
		case '\\':
			*pos += 2
		case quote:
			*pos++
			return nil
		case '\n':
			return errAt(startLine, "unterminated string literal")
		default:
			*pos++
		}
	}
	return errAt(startLine, "unterminated string literal")
}
