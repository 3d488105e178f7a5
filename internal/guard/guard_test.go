package guard

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyfence-ai/pyfence/internal/config"
)

func TestLoadDisabledReturnsNoop(t *testing.T) {
	eng := Load(config.GuardConfig{Enabled: false})
	st := eng.Status()
	if st.Enabled {
		t.Fatalf("disabled guard reported enabled")
	}
	res, err := eng.Evaluate(context.Background(), "eval(x)")
	if err != nil {
		t.Fatalf("noop evaluate: %v", err)
	}
	if len(res.Flags) != 0 {
		t.Fatalf("noop produced flags: %v", res.Flags)
	}
}

func TestLoadMissingBundleFallsBack(t *testing.T) {
	eng := Load(config.GuardConfig{Enabled: true, BundleDir: t.TempDir()})
	st := eng.Status()
	if st.Enabled {
		t.Fatalf("guard with missing bundle reported enabled")
	}
	if st.Err == "" {
		t.Fatalf("expected load error in status")
	}
}

func TestResolveBundleDir(t *testing.T) {
	base := t.TempDir()
	if got := ResolveBundleDir(base); got != base {
		t.Fatalf("no state.json: got %q, want %q", got, base)
	}

	if err := os.MkdirAll(filepath.Join(base, "v2"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, _ := json.Marshal(BundleState{CurrentVersion: "v2"})
	if err := os.WriteFile(filepath.Join(base, "state.json"), data, 0o644); err != nil {
		t.Fatalf("write state: %v", err)
	}
	if got := ResolveBundleDir(base); got != filepath.Join(base, "v2") {
		t.Fatalf("versioned: got %q", got)
	}

	// A dangling version falls back to the base directory.
	data, _ = json.Marshal(BundleState{CurrentVersion: "v3"})
	if err := os.WriteFile(filepath.Join(base, "state.json"), data, 0o644); err != nil {
		t.Fatalf("write state: %v", err)
	}
	if got := ResolveBundleDir(base); got != base {
		t.Fatalf("dangling version: got %q, want %q", got, base)
	}
}

func TestTokenizerEncode(t *testing.T) {
	dir := t.TempDir()
	vocab := "[PAD]\n[UNK]\n[CLS]\n[SEP]\nhello\nworld\n##ly\n(\n)\n"
	if err := os.WriteFile(filepath.Join(dir, "vocab.txt"), []byte(vocab), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	tok, err := LoadTokenizer(filepath.Join(dir, "vocab.txt"))
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}

	ids, mask := tok.Encode("hello world()", 8)
	if len(ids) != 8 || len(mask) != 8 {
		t.Fatalf("lengths: ids=%d mask=%d", len(ids), len(mask))
	}
	// [CLS] hello world ( ) [SEP] [PAD] [PAD]
	want := []int64{2, 4, 5, 7, 8, 3, 0, 0}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	if mask[5] != 1 || mask[6] != 0 {
		t.Fatalf("mask = %v", mask)
	}

	// Known stem plus continuation piece.
	ids, _ = tok.Encode("worldly", 8)
	if ids[1] != 5 || ids[2] != 6 {
		t.Fatalf("wordpiece ids = %v", ids)
	}

	// Unknown words collapse to [UNK].
	ids, _ = tok.Encode("zzz", 8)
	if ids[1] != 1 {
		t.Fatalf("unk id = %v", ids)
	}
}
