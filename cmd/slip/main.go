// Command slip is the slip interpreter CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
	"nickandperla.net/slip/pkg/slip"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("slip", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		evalStr     = fs.String("e", "", "Evaluate slip string")
		file        = fs.String("f", "", "Execute slip file")
		dbPath      = fs.String("db", "slip.db", "SQLite database path (empty for no persistence)")
		noStdlib    = fs.Bool("no-stdlib", false, "Disable standard library prelude")
		persistMode = fs.String("persist-mode", "on_demand", "Persistence mode: on_demand, always, or never")
		compile     = fs.Bool("compile", false, "Compile mode: persist every definition the program makes")
		verbose     = fs.Bool("v", false, "Log macro expansions and closure captures")
		maxDepth    = fs.Int("max-depth", 0, "Maximum evaluation depth (0 for the default)")
		forceREPL   = fs.Bool("repl", false, "Start a line-mode REPL even when stdin is not a terminal")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Build options
	opts := []slip.Option{
		slip.WithLogger(logger),
		slip.WithOutput(stdout),
		slip.WithMaxDepth(*maxDepth),
	}
	if *dbPath != "" {
		opts = append(opts, slip.WithSQLiteStore(*dbPath))
	}
	if *noStdlib {
		opts = append(opts, slip.WithNoStdlib())
	}

	// Configure persist mode
	if *compile {
		opts = append(opts, slip.WithPersistMode(slip.PersistAlways))
	} else {
		mode, ok := slip.ParsePersistMode(*persistMode)
		if !ok {
			fmt.Fprintf(stderr, "Unknown persist mode: %s (use on_demand, always, or never)\n", *persistMode)
			return 2
		}
		opts = append(opts, slip.WithPersistMode(mode))
	}

	runtime, err := slip.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer runtime.Close()

	status := 0
	report := func(result fmt.Stringer, err error) {
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			status = 1
			return
		}
		fmt.Fprintln(stdout, result)
	}

	switch {
	case *file != "" || *evalStr != "":
		if *file != "" {
			report(runtime.EvalFile(*file))
		}
		if *evalStr != "" {
			report(runtime.Eval(*evalStr))
		}

	case *forceREPL:
		runBasicREPL(runtime, stdin, stdout, stderr)

	case isTerminal(stdin):
		runLinerREPL(runtime, stdout, stderr)

	default:
		// Piped input
		report(runtime.EvalReader(stdin))
	}

	return status
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
