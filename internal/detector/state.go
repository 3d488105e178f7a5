package detector

import "github.com/pyfence-ai/pyfence/internal/danger"

// scanState accumulates dangerous-pattern findings over one detection call.
// Hits are deduplicated by rule ID so repeated scans of overlapping spans do
// not inflate the report. Not safe for concurrent use; parallel walkers get
// their own state and merge afterwards.
type scanState struct {
	dangerous bool
	hits      []danger.Hit
	seen      map[string]struct{}
}

func newScanState() *scanState {
	return &scanState{seen: make(map[string]struct{})}
}

func (s *scanState) note(hits []danger.Hit) {
	if len(hits) == 0 {
		return
	}
	s.dangerous = true
	for _, h := range hits {
		if _, ok := s.seen[h.RuleID]; ok {
			continue
		}
		s.seen[h.RuleID] = struct{}{}
		s.hits = append(s.hits, h)
	}
}

func (s *scanState) scanText(sc *danger.Scanner, text string) {
	s.note(sc.Scan(text))
}

func (s *scanState) merge(o *scanState) {
	if o.dangerous {
		s.dangerous = true
	}
	s.note(o.hits)
}
