package detector

import (
	"strings"

	"github.com/pyfence-ai/pyfence/internal/pylang"
)

// blockSpan is an inclusive range of line indices forming one code block.
type blockSpan struct {
	start int
	end   int
}

// splitLines splits text into lines keeping the terminators, so joining the
// slice reproduces the input exactly. \n, \r\n and lone \r all end a line.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, s[start:i+1])
			start = i + 1
		case '\r':
			end := i + 1
			if end < len(s) && s[end] == '\n' {
				end++
			}
			lines = append(lines, s[start:end])
			start = end
			i = end - 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// formCodeBlocks groups consecutive lines into code blocks. A block opens at
// a code-like line and stays open through further code-like, blank or
// indented lines; the first unindented non-code line closes it.
func formCodeBlocks(lines []string) []blockSpan {
	var blocks []blockSpan
	inBlock := false
	blockStart := 0

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if inBlock {
			if pylang.LineIsCodeLike(line) || stripped == "" ||
				strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
				continue
			}
			blocks = append(blocks, blockSpan{start: blockStart, end: i - 1})
			inBlock = false
			continue
		}
		if pylang.LineIsCodeLike(line) {
			inBlock = true
			blockStart = i
		}
	}
	if inBlock {
		blocks = append(blocks, blockSpan{start: blockStart, end: len(lines) - 1})
	}
	return blocks
}
