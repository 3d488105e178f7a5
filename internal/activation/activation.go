// Package activation builds and delivers audit events for detection calls.
// Events carry outcomes and redacted evidence previews, never the scanned
// input itself.
package activation

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/pyfence-ai/pyfence/internal/detector"
	"github.com/pyfence-ai/pyfence/internal/guard"
	"github.com/pyfence-ai/pyfence/internal/redact"
)

const (
	ModeText = "text"
	ModeJSON = "json"
)

// evidence excerpts in events are capped shorter than the scanner's own limit
const evidencePreviewLimit = 60

// HitEntry is one dangerous-pattern or guard-model finding.
type HitEntry struct {
	RuleID   string `json:"rule_id"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Evidence string `json:"evidence,omitempty"`
}

// GuardInfo describes the model guard's state at event time.
type GuardInfo struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// Event is the canonical audit payload for one detection call.
type Event struct {
	Version    string     `json:"version"`
	Timestamp  time.Time  `json:"timestamp"`
	RequestID  string     `json:"request_id"`
	Mode       string     `json:"mode"`
	Decision   string     `json:"decision"`
	Confidence float64    `json:"confidence"`
	Wrapped    bool       `json:"wrapped"`
	Changed    bool       `json:"changed"`
	Reverted   bool       `json:"reverted"`
	Dangerous  bool       `json:"dangerous"`
	Hits       []HitEntry `json:"hits,omitempty"`
	InputBytes int        `json:"input_bytes"`
	LatencyMs  float64    `json:"latency_ms"`
	Guard      *GuardInfo `json:"guard,omitempty"`
}

// BuildParams collects the inputs for one event.
type BuildParams struct {
	Result       *detector.Result
	Mode         string
	InputBytes   int
	LatencyMs    float64
	RequestID    string
	GuardStatus  guard.Status
	IncludeGuard bool
}

// BuildEvent assembles an audit event from a detection result. Evidence
// excerpts pass through the redactor before leaving the process.
func BuildEvent(params BuildParams) *Event {
	if params.Result == nil {
		return nil
	}
	res := params.Result

	mode := strings.TrimSpace(strings.ToLower(params.Mode))
	if mode == "" {
		mode = ModeText
	}

	var hits []HitEntry
	for _, h := range res.Hits {
		hits = append(hits, HitEntry{
			RuleID:   h.RuleID,
			Category: h.Category,
			Source:   h.Source,
			Evidence: redact.Preview(h.Evidence, evidencePreviewLimit),
		})
	}

	ev := &Event{
		Version:    "1",
		Timestamp:  time.Now().UTC(),
		RequestID:  ensureRequestID(params.RequestID),
		Mode:       mode,
		Decision:   res.Decision(),
		Confidence: res.Confidence,
		Wrapped:    res.Wrapped,
		Changed:    res.Changed,
		Reverted:   res.Reverted,
		Dangerous:  res.Dangerous,
		Hits:       hits,
		InputBytes: params.InputBytes,
		LatencyMs:  params.LatencyMs,
	}

	if params.IncludeGuard {
		status := "disabled"
		if params.GuardStatus.Enabled {
			status = "active"
		} else if params.GuardStatus.Err != "" {
			status = "error"
		}
		ev.Guard = &GuardInfo{Status: status, Model: params.GuardStatus.Model}
	}
	return ev
}

// LogEvent prints a redacted JSON rendering of the event.
func LogEvent(ev *Event) {
	if ev == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		redact.Logf("activation: failed to marshal event: %v", err)
		return
	}
	redact.Logf("activation: %s", string(data))
}

func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
