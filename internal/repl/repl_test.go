package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestBraceDepth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"block t() => (unsigned<8> o) { o = 1; }", 0},
		{"block t() => (unsigned<8> o) {", 1},
		{"}", -1},
		{"no braces here", 0},
	}
	for _, tt := range tests {
		if got := braceDepth(tt.in); got != tt.want {
			t.Errorf("braceDepth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEvaluateConstantFoldsOutput(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.evaluate("block t() => (unsigned<8> o) { o = 3 + 4; }", &buf)
	out := buf.String()
	if !strings.Contains(out, "o") || !strings.Contains(out, "7") {
		t.Errorf("evaluate() output = %q, want it to report o = 7", out)
	}
}

func TestEvaluateReportsParseErrors(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.evaluate("block t(", &buf)
	if !strings.Contains(buf.String(), "parse error") {
		t.Errorf("evaluate() on malformed input should report a parse error, got %q", buf.String())
	}
}

func TestEvaluateRequiresABlock(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.evaluate("int x;", &buf)
	if !strings.Contains(buf.String(), "hardware block") {
		t.Errorf("evaluate() on input with no block should report the missing-block error, got %q", buf.String())
	}
}
