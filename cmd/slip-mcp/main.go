// Command slip-mcp serves a slip runtime as MCP tools over stdio.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"nickandperla.net/slip/internal/eval"
	"nickandperla.net/slip/pkg/slip"
)

// tools holds the runtime behind the MCP handlers. print-debug output is
// collected in out and returned with the result of the call that made it.
type tools struct {
	mu  sync.Mutex
	rt  *slip.Runtime
	out bytes.Buffer
}

func newTools(opts ...slip.Option) (*tools, error) {
	t := &tools{}
	rt, err := slip.New(append(opts, slip.WithOutput(&t.out))...)
	if err != nil {
		return nil, err
	}
	t.rt = rt
	return t, nil
}

func (t *tools) handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.Reset()
	result, err := t.rt.Eval(src)
	printed := t.out.String()

	if err != nil {
		var msg strings.Builder
		msg.WriteString(printed)
		var perr *eval.ProgramError
		if errors.As(err, &perr) {
			for _, f := range perr.Forms {
				msg.WriteString(f.Error() + "\n")
			}
		} else {
			msg.WriteString(err.Error())
		}
		return mcp.NewToolResultError(strings.TrimRight(msg.String(), "\n")), nil
	}
	return mcp.NewToolResultText(printed + result.String()), nil
}

func (t *tools) handleBindings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(t.rt.Bindings(), "\n")), nil
}

func (t *tools) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := t.rt.History(name, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no stored versions of %s", name)), nil
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "v%d %s %s\n", e.Version, e.Ts, e.Value)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (t *tools) register(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("slip_eval",
			mcp.WithDescription("Evaluate slip source. Returns print-debug output followed by the value of the last form."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("One or more s-expressions, e.g. (def sq (lambda (x) (* x x))) (sq 4)"),
			),
		),
		t.handleEval,
	)

	s.AddTool(
		mcp.NewTool("slip_bindings",
			mcp.WithDescription("List every bound name, one per line."),
		),
		t.handleBindings,
	)

	s.AddTool(
		mcp.NewTool("slip_history",
			mcp.WithDescription("List the stored versions of a definition, newest first."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Defined name"),
			),
		),
		t.handleHistory,
	)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr, func(s *server.MCPServer) error {
		return server.ServeStdio(s)
	}))
}

// run starts the runtime and hands the configured server to serve. The
// runtime is closed before run returns.
func run(args []string, stderr io.Writer, serve func(*server.MCPServer) error) int {
	fs := flag.NewFlagSet("slip-mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		dbPath      = fs.String("db", "slip.db", "SQLite database path (empty for no persistence)")
		persistMode = fs.String("persist-mode", "always", "Persistence mode: on_demand, always, or never")
		noStdlib    = fs.Bool("no-stdlib", false, "Disable standard library prelude")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// stdout carries the protocol.
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	mode, ok := slip.ParsePersistMode(*persistMode)
	if !ok {
		logger.Error("unknown persist mode", "mode", *persistMode)
		return 2
	}
	opts := []slip.Option{slip.WithLogger(logger), slip.WithPersistMode(mode)}
	if *dbPath != "" {
		opts = append(opts, slip.WithSQLiteStore(*dbPath))
	}
	if *noStdlib {
		opts = append(opts, slip.WithNoStdlib())
	}

	t, err := newTools(opts...)
	if err != nil {
		logger.Error("start runtime", "err", err)
		return 1
	}
	defer t.rt.Close()

	s := server.NewMCPServer(
		"slip",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	t.register(s)

	if err := serve(s); err != nil {
		logger.Error("server error", "err", err)
		return 1
	}
	return 0
}
