package detector

import (
	"strings"

	"github.com/pyfence-ai/pyfence/internal/pylang"
	"github.com/pyfence-ai/pyfence/internal/pysyntax"
)

// Block confidence levels. A block that parses (or at least carries a strong
// keyword) scores 100 when multi-line and 80 when single-line; everything
// else scores 0.
const (
	confNone   = 0.0
	confSingle = 80.0
	confMulti  = 100.0
)

// scoreBlock rates how confidently block is Python code. Comments are
// stripped, blank lines dropped and the remainder dedented before the
// structural parse; on parse failure a strong keyword anywhere in the
// comment-stripped text still earns the same score.
func scoreBlock(block string) float64 {
	stripped := pylang.StripComments(block)

	var codeLines []string
	for _, ln := range strings.Split(stripped, "\n") {
		if strings.TrimSpace(ln) != "" {
			codeLines = append(codeLines, ln)
		}
	}
	if len(codeLines) == 0 {
		return confNone
	}

	score := confMulti
	if len(codeLines) == 1 {
		score = confSingle
	}

	dedented := pylang.Dedent(strings.Join(codeLines, "\n"))
	if pysyntax.Parse(dedented) == nil {
		return score
	}
	if pylang.HasStrongKeyword(stripped) {
		return score
	}
	return confNone
}
