package detector

import (
	"strings"

	"github.com/pyfence-ai/pyfence/internal/danger"
	"github.com/pyfence-ai/pyfence/internal/pylang"
)

// procResult is the cached outcome of processing one JSON string field.
type procResult struct {
	out       string
	conf      float64
	hasConf   bool
	didWrap   bool
	changed   bool
	dangerous bool
	hits      []danger.Hit
}

// processString handles a single string field from a JSON document. Escaped
// newlines are interpreted before scanning and re-escaped after wrapping, so
// the rewritten field stays a valid JSON string. Fields under five
// significant characters and fields that pass the cheap prefilter are
// returned untouched.
func (d *Detector) processString(original, startTag, endTag string, st *scanState) procResult {
	if len(strings.TrimSpace(original)) < 5 {
		return procResult{out: original}
	}

	key := startTag + "\x1f" + endTag + "\x1f" + original
	if d.cache != nil {
		if pr, ok := d.cache.Get(key); ok {
			st.absorb(pr)
			return pr
		}
	}

	pr := d.processStringUncached(original, startTag, endTag)
	if d.cache != nil {
		d.cache.Add(key, pr)
	}
	st.absorb(pr)
	return pr
}

func (d *Detector) processStringUncached(original, startTag, endTag string) procResult {
	unescaped := pylang.UnescapeNewlines(original)
	if !pylang.MightContainCode(unescaped) && !d.scanner.Match(unescaped) {
		return procResult{out: original}
	}

	local := newScanState()
	local.scanText(d.scanner, unescaped)
	wr := d.wrapCodeBlocks(unescaped, startTag, endTag, local)

	pr := procResult{
		conf:      wr.conf,
		hasConf:   true,
		dangerous: local.dangerous,
		hits:      local.hits,
	}
	if wr.didWrap {
		pr.out = pylang.EscapeNewlines(wr.text)
		pr.didWrap = true
		pr.changed = pr.out != original
		return pr
	}
	pr.out = original
	return pr
}

// absorb folds a processed field's danger findings into the call-level state.
func (s *scanState) absorb(pr procResult) {
	if pr.dangerous {
		s.dangerous = true
	}
	s.note(pr.hits)
}
