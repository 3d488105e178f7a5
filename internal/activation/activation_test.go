package activation

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pyfence-ai/pyfence/internal/danger"
	"github.com/pyfence-ai/pyfence/internal/detector"
	"github.com/pyfence-ai/pyfence/internal/guard"
)

type captureSink struct {
	mu     sync.Mutex
	events []*Event
	fail   bool
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Deliver(_ context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return context.DeadlineExceeded
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestBuildEvent(t *testing.T) {
	res := &detector.Result{
		Output:     "wrapped output",
		Confidence: 100,
		Wrapped:    true,
		Changed:    true,
		Dangerous:  true,
		Hits: []danger.Hit{
			{RuleID: "os_system", Category: danger.CategoryProcessExec, Source: danger.SourcePattern, Evidence: "os.system('ls')"},
		},
	}
	ev := BuildEvent(BuildParams{
		Result:       res,
		Mode:         ModeJSON,
		InputBytes:   64,
		LatencyMs:    1.5,
		GuardStatus:  guard.Status{Enabled: true, Model: "pyguard_v1"},
		IncludeGuard: true,
	})
	if ev == nil {
		t.Fatal("BuildEvent returned nil")
	}
	if ev.Version != "1" || ev.Mode != ModeJSON || ev.Decision != "wrapped" {
		t.Fatalf("unexpected event header: %+v", ev)
	}
	if ev.RequestID == "" {
		t.Fatal("request id not generated")
	}
	if len(ev.Hits) != 1 || ev.Hits[0].RuleID != "os_system" {
		t.Fatalf("unexpected hits: %+v", ev.Hits)
	}
	if ev.Guard == nil || ev.Guard.Status != "active" || ev.Guard.Model != "pyguard_v1" {
		t.Fatalf("unexpected guard info: %+v", ev.Guard)
	}
	if BuildEvent(BuildParams{}) != nil {
		t.Fatal("nil result should produce nil event")
	}
}

func TestEmitterDeliversToSinks(t *testing.T) {
	sink := &captureSink{}
	em := NewEmitter(EmitterConfig{QueueSize: 8, Workers: 2}, []Sink{sink})

	for i := 0; i < 5; i++ {
		em.Emit(context.Background(), &Event{Version: "1", Decision: "passed"})
	}
	em.Close(context.Background())

	if got := sink.count(); got != 5 {
		t.Fatalf("delivered %d events, want 5", got)
	}
	m := em.MetricsSnapshot()
	if m.Enqueued() != 5 || m.Dropped() != 0 {
		t.Fatalf("unexpected metrics: enqueued=%d dropped=%d", m.Enqueued(), m.Dropped())
	}
	if m.SinkSuccess("capture") != 5 {
		t.Fatalf("sink success = %d, want 5", m.SinkSuccess("capture"))
	}
}

func TestEmitterDropsWhenClosed(t *testing.T) {
	sink := &captureSink{}
	em := NewEmitter(EmitterConfig{QueueSize: 2, Workers: 1, ShutdownTimeout: 100 * time.Millisecond}, []Sink{sink})
	em.Close(context.Background())

	em.Emit(context.Background(), &Event{Version: "1"})
	if m := em.MetricsSnapshot(); m.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", m.Dropped())
	}
}

func TestEmitterCountsSinkFailures(t *testing.T) {
	sink := &captureSink{fail: true}
	em := NewEmitter(EmitterConfig{QueueSize: 4, Workers: 1}, []Sink{sink})

	em.Emit(context.Background(), &Event{Version: "1"})
	em.Close(context.Background())

	if m := em.MetricsSnapshot(); m.SinkFailure("capture") != 1 {
		t.Fatalf("sink failure = %d, want 1", m.SinkFailure("capture"))
	}
}

func TestFileSinkWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events", "audit.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := sink.Deliver(context.Background(), &Event{Version: "1", Decision: "passed"}); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("wrote %d lines, want 3", lines)
	}
}
