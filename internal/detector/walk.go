package detector

import "sync"

// walkValue descends a decoded document, rewriting string fields in place.
// It returns the new value, the per-field confidences collected beneath it
// and whether anything was wrapped or changed.
func (d *Detector) walkValue(v jsonValue, startTag, endTag string, parallel bool, st *scanState) (jsonValue, []float64, bool, bool) {
	switch v.kind {
	case kindObject:
		var confs []float64
		didWrap := false
		changed := false
		out := jsonValue{kind: kindObject, members: make([]member, len(v.members))}
		for i, m := range v.members {
			nv, c, dw, ch := d.walkValue(m.val, startTag, endTag, parallel, st)
			out.members[i] = member{key: m.key, val: nv}
			confs = append(confs, c...)
			didWrap = didWrap || dw
			changed = changed || ch
		}
		return out, confs, didWrap, changed

	case kindArray:
		if parallel && len(v.items) > 1 {
			return d.walkArrayParallel(v, startTag, endTag, st)
		}
		var confs []float64
		didWrap := false
		changed := false
		out := jsonValue{kind: kindArray, items: make([]jsonValue, len(v.items))}
		for i, it := range v.items {
			nv, c, dw, ch := d.walkValue(it, startTag, endTag, parallel, st)
			out.items[i] = nv
			confs = append(confs, c...)
			didWrap = didWrap || dw
			changed = changed || ch
		}
		return out, confs, didWrap, changed

	case kindString:
		pr := d.processString(v.str, startTag, endTag, st)
		var confs []float64
		if pr.hasConf {
			confs = []float64{pr.conf}
		}
		return jsonValue{kind: kindString, str: pr.out}, confs, pr.didWrap, pr.changed

	default:
		return v, nil, false, false
	}
}

// walkArrayParallel fans array items out to a bounded set of goroutines.
// Each item gets a private scan state; states are merged and results
// reassembled in index order once every worker is done, so the output is
// byte-identical to the sequential walk.
func (d *Detector) walkArrayParallel(v jsonValue, startTag, endTag string, st *scanState) (jsonValue, []float64, bool, bool) {
	type itemResult struct {
		val     jsonValue
		confs   []float64
		didWrap bool
		changed bool
		state   *scanState
	}

	results := make([]itemResult, len(v.items))
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup

	for i := range v.items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			local := newScanState()
			nv, confs, dw, ch := d.walkValue(v.items[i], startTag, endTag, true, local)
			results[i] = itemResult{val: nv, confs: confs, didWrap: dw, changed: ch, state: local}
		}(i)
	}
	wg.Wait()

	var confs []float64
	didWrap := false
	changed := false
	out := jsonValue{kind: kindArray, items: make([]jsonValue, len(v.items))}
	for i, r := range results {
		out.items[i] = r.val
		confs = append(confs, r.confs...)
		didWrap = didWrap || r.didWrap
		changed = changed || r.changed
		st.merge(r.state)
	}
	return out, confs, didWrap, changed
}
