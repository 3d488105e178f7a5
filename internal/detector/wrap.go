package detector

import "strings"

// wrapResult is the outcome of wrapping one piece of plain text.
type wrapResult struct {
	text     string
	conf     float64
	didWrap  bool
	reverted bool
}

// wrapCodeBlocks segments text into code blocks, scores each block and wraps
// the ones at or above the threshold. Dangerous-pattern scanning covers every
// span (prefix, block, tail) regardless of scores. When something was wrapped
// but the mean confidence stays below the threshold, the original text is
// restored and reverted is set.
//
// A block that already contains either tag, or that sits directly between a
// start-tag line and an end-tag line, is never wrapped again; its score still
// counts toward the mean. This keeps repeated application stable.
func (d *Detector) wrapCodeBlocks(text, startTag, endTag string, st *scanState) wrapResult {
	lines := splitLines(text)
	blocks := formCodeBlocks(lines)
	if len(blocks) == 0 {
		st.scanText(d.scanner, text)
		return wrapResult{text: text}
	}

	var out strings.Builder
	var confs []float64
	last := 0
	didWrap := false

	for _, b := range blocks {
		if b.start > last {
			prefix := strings.Join(lines[last:b.start], "")
			st.scanText(d.scanner, prefix)
			out.WriteString(prefix)
		}

		blockStr := strings.Join(lines[b.start:b.end+1], "")
		conf := scoreBlock(blockStr)
		confs = append(confs, conf)
		st.scanText(d.scanner, blockStr)

		alreadyTagged := strings.Contains(blockStr, startTag) || strings.Contains(blockStr, endTag)
		if !alreadyTagged && b.start > 0 && b.end+1 < len(lines) {
			alreadyTagged = strings.Contains(lines[b.start-1], startTag) &&
				strings.Contains(lines[b.end+1], endTag)
		}
		if conf >= d.threshold && !alreadyTagged {
			out.WriteString(startTag)
			out.WriteString(blockStr)
			out.WriteString(endTag)
			didWrap = true
		} else {
			out.WriteString(blockStr)
		}
		last = b.end + 1
	}

	if last < len(lines) {
		tail := strings.Join(lines[last:], "")
		st.scanText(d.scanner, tail)
		out.WriteString(tail)
	}

	avg := mean(confs)
	if didWrap && avg < d.threshold {
		return wrapResult{text: text, conf: avg, reverted: true}
	}
	return wrapResult{text: out.String(), conf: avg, didWrap: didWrap}
}
