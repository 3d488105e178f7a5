package detector

import (
	"reflect"
	"testing"
)

func TestSplitLinesKeepsTerminators(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"one line", []string{"one line"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\r\nb\rc\n", []string{"a\r\n", "b\r", "c\n"}},
		{"\n\n", []string{"\n", "\n"}},
	}
	for _, tc := range cases {
		got := splitLines(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("splitLines(%q) = %q, want %q", tc.in, got, tc.want)
		}
		joined := ""
		for _, ln := range got {
			joined += ln
		}
		if joined != tc.in {
			t.Fatalf("splitLines(%q) does not rejoin to input", tc.in)
		}
	}
}

func TestFormCodeBlocks(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []blockSpan
	}{
		{
			name: "no code",
			text: "plain prose here\nmore prose follows\n",
			want: nil,
		},
		{
			name: "block with indented body and blank line",
			text: "prose line here\ndef f():\n    pass\n\ntail prose line\n",
			want: []blockSpan{{start: 1, end: 3}},
		},
		{
			name: "block runs to end of input",
			text: "import os\n    x\n",
			want: []blockSpan{{start: 0, end: 1}},
		},
		{
			name: "two separate blocks",
			text: "print('a')\nordinary words only\nprint('b')\n",
			want: []blockSpan{{start: 0, end: 0}, {start: 2, end: 2}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formCodeBlocks(splitLines(tc.text))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("formCodeBlocks = %v, want %v", got, tc.want)
			}
		})
	}
}
