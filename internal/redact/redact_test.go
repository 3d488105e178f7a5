package redact

import (
	"strings"
	"testing"
)

func TestStringRedactsSecrets(t *testing.T) {
	cases := []struct {
		name string
		in   string
		leak string
	}{
		{"bearer", "Authorization: Bearer sk-abc123def456", "sk-abc123def456"},
		{"api key", "api_key=supersecretvalue", "supersecretvalue"},
		{"header key", "x-api-key: abcd1234efgh", "abcd1234efgh"},
		{"tokenish", "token=hunter2hunter2", "hunter2hunter2"},
		{"webhook url path", "posting to https://hooks.example.com/T000/B000/secret", "/T000/B000/secret"},
	}
	for _, tc := range cases {
		out := String(tc.in)
		if strings.Contains(out, tc.leak) {
			t.Fatalf("%s: %q still contains %q", tc.name, out, tc.leak)
		}
		if !strings.Contains(out, "REDACTED") {
			t.Fatalf("%s: expected a REDACTED marker in %q", tc.name, out)
		}
	}
}

func TestStringLeavesPlainTextAlone(t *testing.T) {
	in := "scanned 3 blocks, wrapped 1"
	if out := String(in); out != in {
		t.Fatalf("String(%q) = %q", in, out)
	}
}

func TestPreviewTruncates(t *testing.T) {
	out := Preview(strings.Repeat("a", 100), 10)
	if len(out) > 14 {
		t.Fatalf("Preview too long: %d bytes", len(out))
	}
	if !strings.HasPrefix(out, "aaaaaaaaaa") {
		t.Fatalf("Preview lost prefix: %q", out)
	}
}
