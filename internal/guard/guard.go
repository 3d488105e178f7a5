// Package guard optionally refines danger flagging with a local ONNX
// classifier. The static pattern catalogue stays authoritative: guard flags
// only add hits (source "model"), they never alter confidence scores or the
// wrap decision. When no bundle is configured or the runtime is missing,
// the noop engine keeps the pipeline on pattern rules alone.
package guard

import (
	"context"

	"github.com/pyfence-ai/pyfence/internal/config"
	"github.com/pyfence-ai/pyfence/internal/redact"
)

// Status describes the current guard state.
type Status struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Result captures raw per-label scores and derived flags for one input.
type Result struct {
	Scores map[string]float32 `json:"scores"`
	Flags  []string           `json:"flags"`
}

// Engine is the classifier interface the detector consumes.
type Engine interface {
	Status() Status
	Evaluate(ctx context.Context, text string) (*Result, error)
}

type noopEngine struct {
	err string
}

// NewNoop returns an engine that flags nothing.
func NewNoop() Engine {
	return &noopEngine{}
}

func (e *noopEngine) Status() Status {
	return Status{Enabled: false, Err: e.err}
}

func (e *noopEngine) Evaluate(context.Context, string) (*Result, error) {
	return &Result{Scores: map[string]float32{}}, nil
}

// Load builds the configured engine. Any load failure falls back to the
// noop engine with the error recorded in its status; detection must keep
// working without the model.
func Load(cfg config.GuardConfig) Engine {
	if !cfg.Enabled {
		return NewNoop()
	}
	dir := ResolveBundleDir(cfg.BundleDir)
	model, err := LoadModel(dir, cfg.SeqLen)
	if err != nil {
		redact.Logf("guard: model unavailable, continuing with pattern rules only: %v", err)
		return &noopEngine{err: err.Error()}
	}
	return model
}
