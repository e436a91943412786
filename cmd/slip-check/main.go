// slip-check: Syntax checker for .slip files.
//
// Reads every expression in each file and reports unbalanced parentheses,
// unterminated strings and malformed numbers with their line numbers.
// Nothing is evaluated.
//
// Usage:
//
//	slip-check FILE [FILE...]
//	slip-check --dir DIR
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nickandperla.net/slip/internal/reader"
)

const expectedDirective = "; EXPECTED:"

// checkResult holds the outcome of checking a single file.
type checkResult struct {
	path         string
	forms        int
	err          error
	expectsError bool
}

// checkFile reads a .slip file and returns its first syntax error.
// If any ; EXPECTED: line starts with "Error:", the file is marked as
// expecting errors.
func checkFile(path string) checkResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return checkResult{path: path, err: fmt.Errorf("read error: %w", err)}
	}

	expectsError := false
	for _, line := range strings.Split(string(content), "\n") {
		if rest, ok := strings.CutPrefix(line, expectedDirective); ok {
			if strings.HasPrefix(strings.TrimSpace(rest), "Error:") {
				expectsError = true
			}
		}
	}

	forms, err := reader.ReadString(string(content))
	return checkResult{
		path:         path,
		forms:        len(forms),
		err:          err,
		expectsError: expectsError,
	}
}

// findSlipFiles recursively finds all .slip files under dir.
func findSlipFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".slip") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: slip-check [--dir DIR] FILE [FILE...]")
		return 1
	}

	var files []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--dir" {
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "Error: --dir requires an argument")
				return 1
			}
			i++
			found, err := findSlipFiles(args[i])
			if err != nil {
				fmt.Fprintf(stderr, "Error scanning directory %s: %v\n", args[i], err)
				return 1
			}
			files = append(files, found...)
		} else {
			files = append(files, args[i])
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(stderr, "No .slip files found")
		return 1
	}

	passed := 0
	failed := 0

	for _, f := range files {
		result := checkFile(f)
		switch {
		case result.err == nil:
			passed++
			fmt.Fprintf(stdout, "OK   %s (%d forms)\n", f, result.forms)
		case result.expectsError:
			// Runtime errors are expected there; a syntax error is not.
			failed++
			fmt.Fprintf(stdout, "FAIL %s (expects a runtime error but does not read)\n     %v\n", f, result.err)
		default:
			failed++
			fmt.Fprintf(stdout, "FAIL %s\n     %v\n", f, result.err)
		}
	}

	fmt.Fprintf(stdout, "\n--- Summary ---\n")
	fmt.Fprintf(stdout, "Passed: %d\n", passed)
	fmt.Fprintf(stdout, "Failed: %d\n", failed)
	fmt.Fprintf(stdout, "Total:  %d\n", len(files))

	if failed > 0 {
		return 1
	}
	return 0
}
