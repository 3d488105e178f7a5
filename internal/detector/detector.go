// Package detector implements the heuristic Python code detector: it scans
// plain text or JSON documents for Python-like regions, scores them, wraps
// confident regions in caller-supplied tags and flags dangerous call patterns.
package detector

import (
	"context"
	"errors"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pyfence-ai/pyfence/internal/config"
	"github.com/pyfence-ai/pyfence/internal/danger"
	"github.com/pyfence-ai/pyfence/internal/guard"
	"github.com/pyfence-ai/pyfence/internal/redact"
	"github.com/pyfence-ai/pyfence/internal/telemetry"
)

var (
	// ErrInputTooLarge is returned when an input exceeds the configured
	// maximum size. The caller decides whether to pass the input through.
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")

	// ErrMalformedJSON is returned when a JSON document cannot be decoded.
	ErrMalformedJSON = errors.New("malformed JSON document")
)

// Result describes the outcome of a single detection call.
type Result struct {
	// Output is the possibly rewritten input. It equals the input verbatim
	// whenever nothing was wrapped or the wrap was reverted.
	Output string

	// Confidence is the mean block confidence in [0,100].
	Confidence float64

	// Wrapped reports whether at least one region was wrapped in the output.
	Wrapped bool

	// Changed reports whether Output differs from the input.
	Changed bool

	// Reverted reports that regions were wrapped but the mean confidence
	// stayed below the threshold, so the original input was restored.
	Reverted bool

	// Dangerous is set independently of wrapping whenever a dangerous call
	// pattern was seen anywhere in the input.
	Dangerous bool

	// Hits lists the distinct dangerous-pattern rules (and guard model
	// flags) that fired.
	Hits []danger.Hit
}

// Decision labels the outcome for logs, metrics and audit events.
func (r *Result) Decision() string {
	switch {
	case r.Reverted:
		return "reverted"
	case r.Wrapped:
		return "wrapped"
	default:
		return "passed"
	}
}

// Option configures optional detector collaborators.
type Option func(*Detector)

// WithGuard attaches the model-based guard engine. Guard flags are appended
// to Result.Hits with the model source.
func WithGuard(g guard.Engine) Option {
	return func(d *Detector) { d.guard = g }
}

// WithTelemetry attaches a telemetry provider for scan metrics.
func WithTelemetry(p *telemetry.Provider) Option {
	return func(d *Detector) { d.tel = p }
}

// WithVerbose enables per-call debug logging.
func WithVerbose(v bool) Option {
	return func(d *Detector) { d.verbose = v }
}

// Detector scans text and JSON for Python-like code. It is safe for
// concurrent use.
type Detector struct {
	startTag  string
	endTag    string
	threshold float64
	workers   int
	maxInput  int
	verbose   bool

	scanner *danger.Scanner
	cache   *lru.Cache[string, procResult]
	guard   guard.Engine
	tel     *telemetry.Provider
}

// New builds a detector from cfg, normalising out-of-range values the same
// way config.Validate reports them: the threshold is clamped to [0,100] and
// zero sizes fall back to defaults.
func New(cfg config.DetectorConfig, opts ...Option) (*Detector, error) {
	d := &Detector{
		startTag:  cfg.StartTag,
		endTag:    cfg.EndTag,
		threshold: cfg.Threshold,
		workers:   cfg.Workers,
		maxInput:  cfg.MaxInputSizeBytes,
		scanner:   danger.NewScanner(),
	}
	if d.startTag == "" {
		d.startTag = config.DefaultStartTag
	}
	if d.endTag == "" {
		d.endTag = config.DefaultEndTag
	}
	if d.threshold < 0 {
		d.threshold = 0
	}
	if d.threshold > 100 {
		d.threshold = 100
	}
	if d.workers <= 0 {
		d.workers = config.DefaultWorkers
	}
	if d.maxInput <= 0 {
		d.maxInput = config.DefaultMaxInputSize
	}
	if cfg.CacheSize > 0 {
		c, err := lru.New[string, procResult](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		d.cache = c
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// DetectText scans a plain string for code blocks and wraps confident ones.
// Empty tags fall back to the configured tags with a trailing newline, so
// wrapped blocks stay on their own lines.
func (d *Detector) DetectText(ctx context.Context, input, startTag, endTag string) (*Result, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if startTag == "" {
		startTag = d.startTag + "\n"
	}
	if endTag == "" {
		endTag = d.endTag + "\n"
	}
	if len(input) > d.maxInput {
		return nil, ErrInputTooLarge
	}

	st := newScanState()
	wr := d.wrapCodeBlocks(input, startTag, endTag, st)

	res := &Result{Confidence: wr.conf}
	switch {
	case wr.reverted:
		res.Output = input
		res.Reverted = true
	case !wr.didWrap:
		// No wrap happened; the whole input may still carry dangerous calls.
		st.scanText(d.scanner, input)
		res.Output = input
	default:
		res.Output = wr.text
		res.Wrapped = true
		res.Changed = wr.text != input
	}
	res.Dangerous = st.dangerous
	res.Hits = st.hits

	d.applyGuard(ctx, input, res)
	if d.verbose {
		redact.Logf("detect text: conf=%.1f threshold=%.1f decision=%s dangerous=%v",
			res.Confidence, d.threshold, res.Decision(), res.Dangerous)
	}
	d.record("text", res, started, len(input))
	return res, nil
}

// DetectJSON decodes a JSON document, scans every string field for code and
// re-serialises the document when anything was wrapped. Key order and number
// literals survive the round trip. When wrapping is reverted, or nothing
// changed, the original document is returned byte for byte.
func (d *Detector) DetectJSON(ctx context.Context, input, startTag, endTag string, parallel bool) (*Result, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if startTag == "" {
		startTag = d.startTag
	}
	if endTag == "" {
		endTag = d.endTag
	}
	if len(input) > d.maxInput {
		return nil, ErrInputTooLarge
	}

	root, err := decodeValue(input)
	if err != nil {
		return nil, err
	}

	st := newScanState()
	newRoot, confs, didWrap, changed := d.walkValue(root, startTag, endTag, parallel, st)
	avg := mean(confs)

	res := &Result{Confidence: avg, Dangerous: st.dangerous, Hits: st.hits}
	switch {
	case didWrap && avg < d.threshold:
		res.Output = input
		res.Reverted = true
	case !changed:
		res.Output = input
	default:
		res.Output = encodeValue(newRoot)
		res.Wrapped = true
		res.Changed = true
	}

	d.applyGuard(ctx, input, res)
	if d.verbose {
		redact.Logf("detect json: conf=%.1f threshold=%.1f decision=%s changed=%v dangerous=%v",
			res.Confidence, d.threshold, res.Decision(), res.Changed, res.Dangerous)
	}
	d.record("json", res, started, len(input))
	return res, nil
}

// applyGuard runs the model guard over the raw input and appends its flags.
// The guard only runs when the heuristics found something worth a second
// opinion.
func (d *Detector) applyGuard(ctx context.Context, input string, res *Result) {
	if d.guard == nil {
		return
	}
	if !d.guard.Status().Enabled {
		return
	}
	if res.Confidence == 0 && len(res.Hits) == 0 {
		return
	}
	gr, err := d.guard.Evaluate(ctx, input)
	if err != nil {
		redact.Logf("guard evaluate failed: %v", err)
		return
	}
	for _, flag := range gr.Flags {
		res.Hits = append(res.Hits, danger.Hit{
			RuleID:   flag,
			Category: "model",
			Source:   danger.SourceModel,
		})
		if strings.HasSuffix(flag, "_high") {
			res.Dangerous = true
		}
	}
}

func (d *Detector) record(mode string, res *Result, started time.Time, inputBytes int) {
	if d.tel == nil {
		return
	}
	d.tel.RecordScan(mode, res.Decision(), float64(time.Since(started).Microseconds())/1000.0, inputBytes, len(res.Hits))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
