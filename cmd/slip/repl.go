package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"nickandperla.net/slip/internal/eval"
	"nickandperla.net/slip/internal/reader"
	"nickandperla.net/slip/pkg/slip"
)

const (
	promptMain  = "slip> "
	promptCont  = "  ... "
	historyFile = ".slip_history"
)

func printBanner(out io.Writer) {
	fmt.Fprintln(out, "slip REPL (Ctrl+D to exit, :help for commands)")
}

const helpText = `Commands:
  :quit            exit
  :help            show this help
  :env             list bound names
  :apropos NAME    names spelled like NAME
  :persist NAME    store the latest definition of NAME
  :history NAME    stored versions of NAME
  :forget NAME     unbind NAME and delete its stored versions`

// needsMore reports whether src is an unfinished expression.
func needsMore(src string) bool {
	_, err := reader.ReadString(src)
	return reader.IsIncomplete(err)
}

// handleCommand runs a :command line. It returns true when the REPL should
// exit.
func handleCommand(runtime *slip.Runtime, line string, out io.Writer) (exit bool) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	needArg := func() bool {
		if arg == "" {
			fmt.Fprintf(out, "%s needs a name\n", cmd)
			return false
		}
		return true
	}

	switch cmd {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(out, helpText)
	case ":env":
		fmt.Fprintln(out, strings.Join(runtime.Bindings(), " "))
	case ":apropos":
		if needArg() {
			if s := runtime.Suggest(arg, 5); len(s) > 0 {
				fmt.Fprintln(out, strings.Join(s, " "))
			} else {
				fmt.Fprintln(out, "no similar names")
			}
		}
	case ":persist":
		if needArg() {
			if runtime.PersistMode() == slip.PersistNever {
				fmt.Fprintln(out, "persistence is disabled")
				break
			}
			v, err := runtime.Persist(arg)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				break
			}
			fmt.Fprintf(out, "persisted %s v%d\n", arg, v)
		}
	case ":history":
		if needArg() {
			entries, err := runtime.History(arg, 10)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				break
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "no stored versions of %s\n", arg)
			}
			for _, e := range entries {
				fmt.Fprintf(out, "v%d  %s  %s\n", e.Version, e.Ts, e.Value)
			}
		}
	case ":forget":
		if needArg() {
			if err := runtime.Forget(arg); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
	default:
		fmt.Fprintf(out, "unknown command %s. Type :help for a list.\n", cmd)
	}
	return false
}

// evalAndPrint evaluates src and prints its value, or the failures.
func evalAndPrint(runtime *slip.Runtime, src string, out, errOut io.Writer) {
	result, err := runtime.Eval(src)
	if err != nil {
		var perr *eval.ProgramError
		if errors.As(err, &perr) && len(perr.Forms) == 1 {
			fmt.Fprintf(errOut, "Error: %v\n", perr.Forms[0].Err)
		} else {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return
	}
	fmt.Fprintln(out, result)
}

// runBasicREPL handles non-TTY input, one line at a time. Lines are joined
// until they form complete expressions.
func runBasicREPL(runtime *slip.Runtime, in io.Reader, out, errOut io.Writer) {
	printBanner(out)
	scanner := bufio.NewScanner(in)
	var pending strings.Builder

	for {
		if pending.Len() == 0 {
			fmt.Fprint(out, promptMain)
		} else {
			fmt.Fprint(out, promptCont)
		}
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := scanner.Text()

		if pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if handleCommand(runtime, strings.TrimSpace(line), out) {
				return
			}
			continue
		}

		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)
		src := pending.String()
		if needsMore(src) {
			continue
		}
		pending.Reset()

		if strings.TrimSpace(src) == "" {
			continue
		}
		evalAndPrint(runtime, src, out, errOut)
	}
}

// runLinerREPL handles TTY input with line editing, history and completion.
func runLinerREPL(runtime *slip.Runtime, out, errOut io.Writer) {
	printBanner(out)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		return completions(runtime, line)
	})

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readByParseProbe(ln)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if handleCommand(runtime, trimmed, out) {
				return
			}
			continue
		}
		evalAndPrint(runtime, src, out, errOut)
	}
}

// readByParseProbe prompts until the collected lines read as complete
// expressions. ok is false at end of input.
func readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl+C drops the pending input.
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !needsMore(src) {
			return src, true
		}
	}
}

// completions completes the identifier at the end of line against bound
// names and keywords.
func completions(runtime *slip.Runtime, line string) []string {
	start := strings.LastIndexAny(line, " \t()'`,") + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, names := range [][]string{eval.Keywords(), runtime.Bindings()} {
		for _, n := range names {
			if strings.HasPrefix(n, prefix) {
				out = append(out, line[:start]+n)
			}
		}
	}
	return out
}
