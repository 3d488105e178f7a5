package pylang

import "testing"

func TestLineIsCodeLike(t *testing.T) {
	cases := []struct {
		name string
		line string
		want bool
	}{
		{"too short", "ab", false},
		{"blank", "   ", false},
		{"comment only", "# just a comment", false},
		{"short after comment", "a # trailing", false},
		{"plain prose", "the quick brown fox jumps", false},
		{"weak keywords only", "this and that or the other is in here", false},
		{"js function", "function greet(name) {", false},
		{"console call", "console.log('hi')", false},
		{"braces", "int main() { return 0; }", false},
		{"semicolon", "let x = 1;", false},
		{"def header", "def greet(name):", true},
		{"indented for header", "    for i in range(10):", true},
		{"class header", "class Greeter:", true},
		{"import", "import numpy as np", true},
		{"return stmt", "return a, b, c", true},
		{"print call", "print('hello')", true},
		{"strong keyword after comment strip", "import os  # needed below", true},
		{"code hidden behind comment", "# def not_code():", false},
	}
	for _, tc := range cases {
		if got := LineIsCodeLike(tc.line); got != tc.want {
			t.Fatalf("%s: LineIsCodeLike(%q) = %v, want %v", tc.name, tc.line, got, tc.want)
		}
	}
}

func TestMightContainCode(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"prose", "hello world, nothing here", false},
		{"assignment only", "x = 1", false},
		{"strong keyword", "some text\nimport os\nmore text", true},
		{"js without python", "function f() { console.log(1) }", false},
		{"js wrapping python", "function f() {}\ndef g(): pass", true},
	}
	for _, tc := range cases {
		if got := MightContainCode(tc.text); got != tc.want {
			t.Fatalf("%s: MightContainCode(%q) = %v, want %v", tc.name, tc.text, got, tc.want)
		}
	}
}

func TestStripComments(t *testing.T) {
	in := "x = 1  # set x\n# whole line\nprint(x)"
	want := "x = 1  \n\nprint(x)"
	if got := StripComments(in); got != want {
		t.Fatalf("StripComments = %q, want %q", got, want)
	}
}

func TestDedent(t *testing.T) {
	in := "    def f():\n        return 1"
	want := "def f():\n    return 1"
	if got := Dedent(in); got != want {
		t.Fatalf("Dedent = %q, want %q", got, want)
	}

	// Mixed top-level lines share no prefix; nothing is removed.
	in = "def f():\n    return 1"
	if got := Dedent(in); got != in {
		t.Fatalf("Dedent changed already-flush text: %q", got)
	}
}

func TestNewlineEscapingRoundTrip(t *testing.T) {
	original := `def f():\n    return 1\r\n`
	unescaped := UnescapeNewlines(original)
	if unescaped == original {
		t.Fatalf("expected real newlines after unescape")
	}
	if got := EscapeNewlines(unescaped); got != original {
		t.Fatalf("round trip = %q, want %q", got, original)
	}
}
