// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"

	"nickandperla.net/slip/internal/expr"
)

// Context is the evaluation state: the expression being reduced, the
// bindings it sees and the error state.
//
// Context is a value. Every method returns a new Context and leaves the
// receiver untouched, so a caller can always go back to the Context it
// started from.
type Context struct {
	expr  expr.Expr
	env   expr.Bindings
	err   error
	depth int
	ev    *Evaluator
}

// Expr returns the current expression (the result, after Eval).
func (c Context) Expr() expr.Expr {
	return c.expr
}

// Env returns the current bindings.
func (c Context) Env() expr.Bindings {
	return c.env
}

// HasError reports whether this Context is the error sentinel.
func (c Context) HasError() bool {
	return c.err != nil
}

// Err returns the failure this Context carries, or nil.
func (c Context) Err() error {
	return c.err
}

// SetExpr returns a Context with the same bindings and error state and a
// different current expression.
func (c Context) SetExpr(e expr.Expr) Context {
	c.expr = e
	return c
}

// WithEnv returns a Context with the same expression and error state and
// different bindings.
func (c Context) WithEnv(env expr.Bindings) Context {
	c.env = env
	return c
}

// Lookup returns a Context whose expression is the value bound to name, or
// the error sentinel if name is unbound.
func (c Context) Lookup(name string) Context {
	v, ok := c.env.Get(name)
	if !ok {
		if c.ev.onUnbound != nil {
			c.ev.onUnbound(name, c.env)
		}
		return c.fail(ErrUnbound, "variable not found in environment", "ident", name)
	}
	return c.SetExpr(v)
}

// Bind returns a Context with name bound to v. The current expression is
// kept. Binding a reserved keyword fails and leaves the bindings unchanged.
func (c Context) Bind(name string, v expr.Expr) Context {
	if IsReserved(name) {
		return c.fail(ErrReserved, "keyword is reserved", "ident", name)
	}
	return c.WithEnv(c.env.With(name, v))
}

// fail returns the error sentinel: Nil expression, error set, bindings kept.
// A diagnostic is logged at the point of failure.
func (c Context) fail(kind error, msg string, attrs ...any) Context {
	c.ev.logger.Error(msg, append([]any{"kind", kind.Error()}, attrs...)...)
	c.expr = expr.Nil{}
	c.err = fmt.Errorf("%w: %s%s", kind, msg, detail(attrs))
	return c
}

// detail renders key/value attributes for the error message.
func detail(attrs []any) string {
	s := ""
	for i := 0; i+1 < len(attrs); i += 2 {
		s += fmt.Sprintf(" %v=%v", attrs[i], attrs[i+1])
	}
	return s
}
