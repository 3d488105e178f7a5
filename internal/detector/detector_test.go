package detector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pyfence-ai/pyfence/internal/config"
	"github.com/pyfence-ai/pyfence/internal/danger"
	"github.com/pyfence-ai/pyfence/internal/guard"
)

func testConfig() config.DetectorConfig {
	return config.DetectorConfig{
		StartTag:          config.DefaultStartTag,
		EndTag:            config.DefaultEndTag,
		Threshold:         config.DefaultThreshold,
		Workers:           config.DefaultWorkers,
		MaxInputSizeBytes: config.DefaultMaxInputSize,
		CacheSize:         64,
	}
}

func newTestDetector(t *testing.T, mutate func(*config.DetectorConfig), opts ...Option) *Detector {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDetectTextWrapsDefBlock(t *testing.T) {
	d := newTestDetector(t, nil)
	input := "Some intro prose.\ndef add(a, b):\n    return a + b\nplain tail prose here.\n"

	res, err := d.DetectText(context.Background(), input, "", "")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	want := "Some intro prose.\n<PythonCode>\ndef add(a, b):\n    return a + b\n</PythonCode>\nplain tail prose here.\n"
	if res.Output != want {
		t.Fatalf("output mismatch:\n got: %q\nwant: %q", res.Output, want)
	}
	if !res.Wrapped || !res.Changed || res.Reverted {
		t.Fatalf("unexpected flags: %+v", res)
	}
	if res.Confidence != 100 {
		t.Fatalf("confidence = %v, want 100", res.Confidence)
	}
	if res.Dangerous {
		t.Fatalf("benign code flagged dangerous")
	}
}

func TestDetectTextProseUnchanged(t *testing.T) {
	d := newTestDetector(t, nil)
	input := "This text talks about nothing much at all.\nIt has two harmless lines."

	res, err := d.DetectText(context.Background(), input, "", "")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if res.Output != input {
		t.Fatalf("prose was modified: %q", res.Output)
	}
	if res.Wrapped || res.Changed || res.Dangerous || res.Confidence != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Decision() != "passed" {
		t.Fatalf("decision = %s, want passed", res.Decision())
	}
}

func TestDetectTextRevertsBelowThreshold(t *testing.T) {
	d := newTestDetector(t, func(c *config.DetectorConfig) { c.Threshold = 90 })
	input := "def f():\n    return 1\nplain separator words.\nprint('a')\nmore separator words.\nprint('b')\n"

	res, err := d.DetectText(context.Background(), input, "", "")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if res.Output != input {
		t.Fatalf("revert should restore original input")
	}
	if !res.Reverted || res.Wrapped || res.Changed {
		t.Fatalf("unexpected flags: %+v", res)
	}
	// (100 + 80 + 80) / 3
	if res.Confidence < 86 || res.Confidence > 87 {
		t.Fatalf("confidence = %v, want about 86.7", res.Confidence)
	}
	if res.Decision() != "reverted" {
		t.Fatalf("decision = %s, want reverted", res.Decision())
	}
}

func TestDetectTextCustomTags(t *testing.T) {
	d := newTestDetector(t, nil)
	input := "def f():\n    return 1\n"

	res, err := d.DetectText(context.Background(), input, "[[CODE]]", "[[/CODE]]")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	want := "[[CODE]]def f():\n    return 1\n[[/CODE]]"
	if res.Output != want {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
}

func TestDetectTextSizeCap(t *testing.T) {
	d := newTestDetector(t, func(c *config.DetectorConfig) { c.MaxInputSizeBytes = 10 })

	if _, err := d.DetectText(context.Background(), "abcdefghijk", "", ""); !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("want ErrInputTooLarge one byte over the cap, got %v", err)
	}
	if _, err := d.DetectText(context.Background(), "abcdefghij", "", ""); err != nil {
		t.Fatalf("input at the cap rejected: %v", err)
	}
}

func TestDetectTextDangerInProse(t *testing.T) {
	d := newTestDetector(t, nil)
	input := "please call eval(user_input) quickly."

	res, err := d.DetectText(context.Background(), input, "", "")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if res.Output != input || res.Wrapped {
		t.Fatalf("prose with dangerous call should pass unchanged: %+v", res)
	}
	if !res.Dangerous {
		t.Fatalf("eval call not flagged")
	}
	if len(res.Hits) != 1 || res.Hits[0].RuleID != "eval_call" || res.Hits[0].Source != danger.SourcePattern {
		t.Fatalf("unexpected hits: %+v", res.Hits)
	}
}

func TestDetectTextIdempotent(t *testing.T) {
	d := newTestDetector(t, nil)
	input := "intro words first.\ndef f():\n    return 1\nclosing words last.\n"

	first, err := d.DetectText(context.Background(), input, "", "")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if !first.Wrapped {
		t.Fatalf("first pass did not wrap")
	}
	second, err := d.DetectText(context.Background(), first.Output, "", "")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.Output != first.Output {
		t.Fatalf("second pass changed already-wrapped text:\n got: %q\nwant: %q", second.Output, first.Output)
	}
	if second.Wrapped || second.Changed {
		t.Fatalf("second pass should not wrap again: %+v", second)
	}
}

func TestDetectTextGuardFlags(t *testing.T) {
	g := &fakeGuard{flags: []string{"malicious_high"}}
	d := newTestDetector(t, nil, WithGuard(g))
	input := "def f():\n    return 1\n"

	res, err := d.DetectText(context.Background(), input, "", "")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if !res.Dangerous {
		t.Fatalf("high guard flag should mark result dangerous")
	}
	found := false
	for _, h := range res.Hits {
		if h.RuleID == "malicious_high" && h.Source == danger.SourceModel {
			found = true
		}
	}
	if !found {
		t.Fatalf("guard flag missing from hits: %+v", res.Hits)
	}
}

func TestDetectJSONWrapsCode(t *testing.T) {
	d := newTestDetector(t, nil)
	input := `{"title":"demo","payload":"def add(a, b):\n    return a + b\n","count":3}`

	res, err := d.DetectJSON(context.Background(), input, "", "", false)
	if err != nil {
		t.Fatalf("DetectJSON: %v", err)
	}
	if !res.Wrapped || !res.Changed {
		t.Fatalf("unexpected flags: %+v", res)
	}
	if res.Confidence != 100 {
		t.Fatalf("confidence = %v, want 100", res.Confidence)
	}
	// Real newlines in the field were re-escaped to literal \n before
	// re-serialisation, so the document carries them double-escaped.
	if !strings.HasPrefix(res.Output, `{"title":"demo","payload":"<PythonCode>def add(a, b):\\n`) {
		t.Fatalf("key order or tag placement wrong: %s", res.Output)
	}
	if !strings.HasSuffix(res.Output, `</PythonCode>","count":3}`) {
		t.Fatalf("trailing structure wrong: %s", res.Output)
	}
	if _, err := decodeValue(res.Output); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestDetectJSONUnchangedReturnsVerbatim(t *testing.T) {
	d := newTestDetector(t, nil)
	// Odd spacing survives because the original document is returned as-is.
	input := `{ "a" : "hello there world" , "n" : 5 }`

	res, err := d.DetectJSON(context.Background(), input, "", "", false)
	if err != nil {
		t.Fatalf("DetectJSON: %v", err)
	}
	if res.Output != input {
		t.Fatalf("unchanged document was re-serialised: %q", res.Output)
	}
	if res.Wrapped || res.Changed {
		t.Fatalf("unexpected flags: %+v", res)
	}
}

func TestDetectJSONSimpleAssignmentUntouched(t *testing.T) {
	d := newTestDetector(t, nil)
	input := `{"v":"x = 1"}`

	res, err := d.DetectJSON(context.Background(), input, "", "", false)
	if err != nil {
		t.Fatalf("DetectJSON: %v", err)
	}
	if res.Output != input || res.Wrapped || res.Confidence != 0 {
		t.Fatalf("bare assignment should not trip the prefilter: %+v", res)
	}
}

func TestDetectJSONRevertRestoresOriginal(t *testing.T) {
	d := newTestDetector(t, nil)
	input := `{"a":"see import {x} from 'y';","b":"def f():\n    return 1\n"}`

	res, err := d.DetectJSON(context.Background(), input, "", "", false)
	if err != nil {
		t.Fatalf("DetectJSON: %v", err)
	}
	if res.Output != input {
		t.Fatalf("revert should restore original document")
	}
	if !res.Reverted || res.Wrapped || res.Changed {
		t.Fatalf("unexpected flags: %+v", res)
	}
	if res.Confidence != 50 {
		t.Fatalf("confidence = %v, want 50", res.Confidence)
	}
}

func TestDetectJSONMalformed(t *testing.T) {
	d := newTestDetector(t, nil)
	if _, err := d.DetectJSON(context.Background(), "{not json", "", "", false); !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("want ErrMalformedJSON, got %v", err)
	}
}

func TestDetectJSONParallelMatchesSequential(t *testing.T) {
	d := newTestDetector(t, func(c *config.DetectorConfig) { c.Workers = 3 })
	input := `{"items":["def f():\n    return 1\n","no real code in this one","import os\nos.system('ls')\n",` +
		`"plain filler text goes here","def g(x):\n    return x * 2\n",{"nested":"print('deep')\nprint('deeper')\n"}]}`

	seq, err := d.DetectJSON(context.Background(), input, "", "", false)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := d.DetectJSON(context.Background(), input, "", "", true)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if seq.Output != par.Output {
		t.Fatalf("parallel output diverged:\nseq: %s\npar: %s", seq.Output, par.Output)
	}
	if seq.Confidence != par.Confidence || seq.Wrapped != par.Wrapped ||
		seq.Changed != par.Changed || seq.Dangerous != par.Dangerous {
		t.Fatalf("parallel flags diverged: seq=%+v par=%+v", seq, par)
	}
	if len(seq.Hits) != len(par.Hits) {
		t.Fatalf("hit counts diverged: %d vs %d", len(seq.Hits), len(par.Hits))
	}
	if !seq.Dangerous {
		t.Fatalf("os.system call not flagged")
	}
}

type fakeGuard struct {
	flags []string
}

func (g *fakeGuard) Status() guard.Status {
	return guard.Status{Enabled: true, Model: "fake"}
}

func (g *fakeGuard) Evaluate(context.Context, string) (*guard.Result, error) {
	return &guard.Result{Flags: g.flags}, nil
}
