package detector

import "testing"

func TestScoreBlock(t *testing.T) {
	cases := []struct {
		name  string
		block string
		want  float64
	}{
		{"simple assignment parses", "x = 1", confSingle},
		{"multi-line def", "def add(a, b):\n    return a + b\n", confMulti},
		{"single import with comment", "import os  # stdlib\n", confSingle},
		{"comment only", "# just a comment\n", confNone},
		{"plain prose", "hello world again", confNone},
		{"keyword rescues unparseable line", "return of the jedi", confSingle},
		{"keyword rescues unparseable pair", "for each item\nyield the next one\n", confMulti},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoreBlock(tc.block); got != tc.want {
				t.Fatalf("scoreBlock(%q) = %v, want %v", tc.block, got, tc.want)
			}
		})
	}
}
