package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestRunCompileWritesVHDLFile(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "adder.ec", `block adder() => (unsigned<8> o) { o = 3 + 4; }`)
	out := filepath.Join(dir, "adder.vhd")

	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(dir)

	code := run([]string{"-o", out, src})
	if code != 0 {
		t.Fatalf("run(compile) = %d, want 0", code)
	}
	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected %s to be written: %v", out, err)
	}
	if !bytes.Contains(content, []byte("entity adder is")) {
		t.Errorf("output VHDL missing entity declaration, got:\n%s", content)
	}
}

func TestRunCheckSucceedsWithoutWritingOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "adder.ec", `block adder() => (unsigned<8> o) { o = 3 + 4; }`)

	code := run([]string{"check", src})
	if code != 0 {
		t.Fatalf("run(check) = %d, want 0", code)
	}
	if _, err := os.ReadFile(filepath.Join(dir, "adder.vhd")); err == nil {
		t.Errorf("check should not write a VHDL file")
	}
}

func TestRunCompileRequiresTopWhenAmbiguous(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "two.ec", `
block a() => (unsigned<8> o) { o = 1; }
block b() => (unsigned<8> o) { o = 2; }
`)
	out := filepath.Join(dir, "out.vhd")

	code := run([]string{"-o", out, src})
	if code != 3 {
		t.Errorf("run(compile) with an ambiguous top = %d, want 3", code)
	}

	code = run([]string{"-o", out, "--top", "b", src})
	if code != 0 {
		t.Errorf("run(compile) with --top=b = %d, want 0", code)
	}
}

func TestRunMissingInputIsUsageError(t *testing.T) {
	if code := run([]string{"compile"}); code != 3 {
		t.Errorf("run(compile) with no input = %d, want 3", code)
	}
}

func TestRunHelpExitsThree(t *testing.T) {
	if code := run([]string{"--help"}); code != 3 {
		t.Errorf("run(--help) = %d, want 3", code)
	}
}

func TestRunMalformedFlagIsUsageError(t *testing.T) {
	if code := run([]string{"--not-a-real-flag"}); code != 2 {
		t.Errorf("run() with an unrecognized flag = %d, want 2", code)
	}
}

func TestRunNonexistentFileIsDiagnosedNotPanicked(t *testing.T) {
	if code := run([]string{"does-not-exist.ec"}); code != 3 {
		t.Errorf("run() on a missing file = %d, want 3", code)
	}
}
