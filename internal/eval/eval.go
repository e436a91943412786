// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval implements the slip evaluator.
package eval

import (
	"context"
	"io"
	"log/slog"
	"os"

	"nickandperla.net/slip/internal/expr"
)

// DefaultMaxDepth bounds nested evaluation when no WithMaxDepth option is given.
const DefaultMaxDepth = 10000

// UnboundHook is called when an identifier lookup misses. env is the
// environment the lookup ran against.
type UnboundHook func(name string, env expr.Bindings)

// Evaluator holds the configuration shared by every Context it creates. It is
// never modified after New returns, so Contexts from one Evaluator may be used
// from different goroutines.
type Evaluator struct {
	output    io.Writer
	logger    *slog.Logger
	maxDepth  int
	onUnbound UnboundHook
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithOutput sets the writer print-debug writes to.
func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) { e.output = w }
}

// WithLogger sets the logger diagnostics are emitted through.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithMaxDepth bounds the nesting depth of a single evaluation. Non-positive
// values keep the default.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithUnboundHook sets a callback for identifier lookup misses.
func WithUnboundHook(h UnboundHook) Option {
	return func(e *Evaluator) { e.onUnbound = h }
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		output: os.Stdout,
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		})),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewContext returns an empty top-level Context.
func (e *Evaluator) NewContext() Context {
	return Context{
		expr: expr.Nil{},
		env:  expr.NewBindings(),
		ev:   e,
	}
}

// Logger returns the evaluator's logger.
func (e *Evaluator) Logger() *slog.Logger {
	return e.logger
}

// EvaluateExpression evaluates one expression tree in ctx. An error left on
// ctx by a previous form is cleared first; bindings are kept.
func EvaluateExpression(ctx Context, e expr.Expr) Context {
	ctx.err = nil
	ctx.depth = 0
	return ctx.SetExpr(e).Eval()
}

// EvaluateProgram evaluates forms in order, threading the environment from
// each form to the next. A failing form does not stop the program: bindings
// made before the failure stay in place and later forms still run. The
// returned error is a *ProgramError, or nil if every form succeeded.
func EvaluateProgram(ctx Context, forms []expr.Expr) (Context, error) {
	var failed []*FormError
	for i, f := range forms {
		ctx = EvaluateExpression(ctx, f)
		if ctx.HasError() {
			failed = append(failed, &FormError{Index: i, Form: f, Err: ctx.Err()})
		}
	}
	if len(failed) > 0 {
		return ctx, &ProgramError{Forms: failed}
	}
	return ctx, nil
}

// Eval reduces the current expression.
func (c Context) Eval() Context {
	if c.depth >= c.ev.maxDepth {
		return c.fail(ErrDepth, "evaluation nested too deeply", "limit", c.ev.maxDepth)
	}
	inner := c
	inner.depth++
	res := inner.eval()
	res.depth = c.depth
	return res
}

func (c Context) eval() Context {
	switch e := c.expr.(type) {
	case expr.Nil, expr.Integer, expr.Float, expr.Text:
		return c
	case expr.Quote:
		return c.SetExpr(e.Expr)
	case expr.Quasiquote:
		return c.SetExpr(e.Expr).quasiquote()
	case expr.Ident:
		return c.Lookup(e.Name)
	case *expr.Cons:
		return c.apply(e.Head, e.Tail)
	default:
		return c
	}
}

// apply dispatches a call form on its head. args is the unevaluated
// argument list.
func (c Context) apply(head, args expr.Expr) Context {
	switch h := head.(type) {
	case expr.Ident:
		if form := lookupForm(h.Name); form != nil {
			return form(c, args)
		}
		fn := c.Lookup(h.Name)
		if fn.HasError() {
			return fn
		}
		return c.reapply(fn.expr, args)
	case *expr.Lambda:
		return c.call(h, args)
	case *expr.Macro:
		return c.expandMacro(h, args)
	case *expr.Cons:
		fn := c.SetExpr(h).Eval()
		if fn.HasError() {
			return fn
		}
		return fn.reapply(fn.expr, args)
	default:
		return c.fail(ErrNotCallable, "head of call is not callable", "head", head.String())
	}
}

// reapply applies a resolved head value. It counts against the depth limit so
// that an identifier bound to itself cannot loop forever.
func (c Context) reapply(head, args expr.Expr) Context {
	if c.depth >= c.ev.maxDepth {
		return c.fail(ErrDepth, "evaluation nested too deeply", "limit", c.ev.maxDepth)
	}
	inner := c
	inner.depth++
	res := inner.apply(head, args)
	res.depth = c.depth
	return res
}

// evalIn evaluates e in c's environment.
func (c Context) evalIn(e expr.Expr) Context {
	return c.SetExpr(e).Eval()
}

func (c Context) debugEnabled() bool {
	return c.ev.logger.Enabled(context.Background(), slog.LevelDebug)
}
