// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/slip/internal/expr"
)

// formDefmacro builds a macro and binds it: (defmacro name params body).
func formDefmacro(c Context, args expr.Expr) Context {
	parts, res, ok := c.destructure("defmacro", args, 3)
	if !ok {
		return res
	}
	name, isIdent := parts[0].(expr.Ident)
	if !isIdent {
		return c.fail(ErrMalformed, "macro name is not an ident", "name", parts[0].String())
	}
	if _, res, ok := c.paramNames("defmacro", parts[1]); !ok {
		return res
	}
	m := &expr.Macro{Params: parts[1], Body: parts[2]}
	return c.SetExpr(m).Bind(name.Name, m)
}

// expandMacro runs a macro call in two phases. The body is evaluated with
// the parameters bound to the unevaluated arguments, producing the expansion;
// the expansion is then evaluated in the caller's own bindings.
func (c Context) expandMacro(m *expr.Macro, args expr.Expr) Context {
	names, res, ok := c.paramNames("defmacro", m.Params)
	if !ok {
		return res
	}
	argExprs, proper := expr.Slice(args)
	if !proper {
		return c.fail(ErrMalformed, "argument list is not a list", "form", "macro call")
	}
	if len(argExprs) != len(names) {
		return c.fail(ErrMalformed, "number of arguments don't match", "want", len(names), "got", len(argExprs))
	}

	expanded := c.WithEnv(c.env.Extend(names, argExprs)).evalIn(m.Body)
	if expanded.HasError() {
		return expanded.WithEnv(c.env)
	}
	if c.debugEnabled() {
		c.ev.logger.Debug("macroexpand", "expansion", expanded.expr.String())
	}
	return c.evalIn(expanded.expr)
}
