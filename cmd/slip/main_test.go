package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestEvalFlag(t *testing.T) {
	out, errOut, code := runCLI(t, "", "-db", "", "-e", "(length '(1 2 3))")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("expected 3, got %q", out)
	}
}

func TestEvalFlagError(t *testing.T) {
	_, errOut, code := runCLI(t, "", "-db", "", "-e", "(car 1)")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "Error:") {
		t.Errorf("expected an error message, got %q", errOut)
	}
}

func TestFileFlag(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.slip")
	content := `; square every element
(def square (lambda (x) (* x x)))
(print-debug (map square '(1 2 3)))
(square 9)
`
	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	out, errOut, code := runCLI(t, "", "-db", "", "-f", testFile)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "(1 4 9)\n81\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPipedInput(t *testing.T) {
	out, errOut, code := runCLI(t, "(def a 2)\n(* a 21)\n", "-db", "", "-no-stdlib")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "42" {
		t.Errorf("expected 42, got %q", out)
	}
}

func TestUnknownPersistMode(t *testing.T) {
	_, errOut, code := runCLI(t, "", "-db", "", "-persist-mode", "sometimes", "-e", "1")
	if code != 2 || !strings.Contains(errOut, "Unknown persist mode") {
		t.Errorf("expected usage failure, got %d %q", code, errOut)
	}
}

// TestDefinitionsSurviveRestart verifies that compile mode stores
// definitions that a later run picks up from the database.
func TestDefinitionsSurviveRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	_, errOut, code := runCLI(t, "", "-db", dbPath, "-compile",
		"-e", "(def base 100) (def bump (lambda (x) (+ x base)))")
	if code != 0 {
		t.Fatalf("first run exit %d: %s", code, errOut)
	}

	out, errOut, code := runCLI(t, "", "-db", dbPath, "-e", "(bump 1)")
	if code != 0 {
		t.Fatalf("second run exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "101" {
		t.Errorf("expected 101, got %q", out)
	}
}

func TestBasicREPL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "repl.db")
	input := strings.Join([]string{
		"(def total",
		"  (+ 1 2))",
		"total",
		":persist total",
		":history total",
		":apropos totl",
		"(car 5)",
		":bogus",
		":quit",
		"(print-debug 'unreachable)",
	}, "\n")

	out, errOut, _ := runCLI(t, input, "-db", dbPath, "-repl")

	for _, want := range []string{"persisted total v1", "(def total (+ 1 2))", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "3\n") {
		t.Errorf("expected the value 3, got:\n%s", out)
	}
	if !strings.Contains(out, "unknown command :bogus") {
		t.Errorf("expected unknown command notice, got:\n%s", out)
	}
	if !strings.Contains(errOut, "Error:") {
		t.Errorf("expected an error for (car 5), got:\n%s", errOut)
	}
	if strings.Contains(out, "unreachable") {
		t.Error("input after :quit was evaluated")
	}
}

func TestNeedsMore(t *testing.T) {
	tests := []struct {
		src  string
		more bool
	}{
		{"(def a", true},
		{"(def a 1)", false},
		{"'", true},
		{`"open`, true},
		{")", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := needsMore(tt.src); got != tt.more {
			t.Errorf("%q: expected %v, got %v", tt.src, tt.more, got)
		}
	}
}
