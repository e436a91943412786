package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConformanceFilesRead(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"--dir", filepath.Join("..", "slip", "testdata", "conformance")}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit %d:\n%s%s", code, out.String(), errOut.String())
	}
	if !strings.Contains(out.String(), "Failed: 0") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}

func TestSyntaxErrorReported(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.slip")
	bad := filepath.Join(dir, "bad.slip")
	os.WriteFile(good, []byte("(def a 1)\n(+ a 2)\n"), 0644)
	os.WriteFile(bad, []byte("(def a 1)\n\n(+ a 2))\n"), 0644)

	var out, errOut bytes.Buffer
	code := run([]string{good, bad}, &out, &errOut)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out.String(), "OK   "+good+" (2 forms)") {
		t.Errorf("expected good file to pass:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "FAIL "+bad) || !strings.Contains(out.String(), "line 3") {
		t.Errorf("expected bad file to fail on line 3:\n%s", out.String())
	}
}

func TestUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if code := run([]string{"--dir"}, &out, &errOut); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
}
