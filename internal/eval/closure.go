// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/slip/internal/expr"
)

// paramNames checks a parameter list: a possibly empty proper list of
// distinct, non-reserved identifiers.
func (c Context) paramNames(form string, params expr.Expr) ([]string, Context, bool) {
	items, proper := expr.Slice(params)
	if !proper {
		return nil, c.fail(ErrMalformed, "invalid form for args (must be a list of idents)", "form", form, "params", params.String()), false
	}
	names := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		id, ok := item.(expr.Ident)
		if !ok {
			return nil, c.fail(ErrMalformed, "invalid form for args (must be a list of idents)", "form", form, "param", item.String()), false
		}
		if IsReserved(id.Name) {
			return nil, c.fail(ErrReserved, "keyword is reserved", "form", form, "ident", id.Name), false
		}
		if seen[id.Name] {
			return nil, c.fail(ErrMalformed, "duplicate parameter", "form", form, "ident", id.Name), false
		}
		seen[id.Name] = true
		names = append(names, id.Name)
	}
	return names, c, true
}

// formLambda builds a closure: (lambda [name] params body).
//
// Bindings are a flat map, so a closure called elsewhere would otherwise see
// its caller's bindings. Instead the closure snapshots exactly the free
// identifiers of its body from the defining environment.
func formLambda(c Context, args expr.Expr) Context {
	items, proper := expr.Slice(args)
	if !proper {
		return c.fail(ErrMalformed, "argument list is not a list", "form", "lambda")
	}

	var name string
	var params, body expr.Expr
	switch len(items) {
	case 2:
		params, body = items[0], items[1]
	case 3:
		id, ok := items[0].(expr.Ident)
		if !ok {
			return c.fail(ErrMalformed, "lambda name must be an ident", "name", items[0].String())
		}
		name = id.Name
		params, body = items[1], items[2]
	default:
		if len(items) < 2 {
			return c.fail(ErrMalformed, "too few arguments", "form", "lambda", "got", len(items))
		}
		return c.fail(ErrMalformed, "too many arguments", "form", "lambda", "got", len(items))
	}

	names, res, ok := c.paramNames("lambda", params)
	if !ok {
		return res
	}
	ignore := make(map[string]bool, len(names)+1)
	for _, n := range names {
		ignore[n] = true
	}
	if name != "" {
		ignore[name] = true
	}

	free := FreeVars(body, ignore)
	values := make([]expr.Expr, len(free))
	for i, id := range free {
		v, ok := c.env.Get(id)
		if !ok {
			return c.fail(ErrCapture, "lambda depends on an ident that is not bound here", "ident", id)
		}
		values[i] = v
	}
	var captured expr.Bindings
	if len(free) > 0 {
		captured = expr.NewBindings().Extend(free, values)
	}

	if c.debugEnabled() {
		c.ev.logger.Debug("closure built", "name", name, "captured", free)
	}

	closure := &expr.Lambda{Name: name, Params: params, Body: body, Captured: captured}
	res = c.SetExpr(closure)
	if name != "" {
		res = res.Bind(name, closure)
	}
	return res
}

// call applies a closure. Arguments are evaluated in the caller's
// environment; the body runs in the caller's bindings overlaid with the
// captured ones, then the closure's own name, then the parameters. The
// caller's bindings are restored on the result.
func (c Context) call(fn *expr.Lambda, args expr.Expr) Context {
	names, res, ok := c.paramNames("lambda", fn.Params)
	if !ok {
		return res
	}
	argExprs, proper := expr.Slice(args)
	if !proper {
		return c.fail(ErrMalformed, "argument list is not a list", "form", "call")
	}
	if len(argExprs) != len(names) {
		return c.fail(ErrMalformed, "number of arguments don't match", "want", len(names), "got", len(argExprs))
	}

	values := make([]expr.Expr, len(argExprs))
	for i, a := range argExprs {
		v := c.evalIn(a)
		if v.HasError() {
			return v.WithEnv(c.env)
		}
		values[i] = v.expr
	}

	env := c.env.Merge(fn.Captured)
	if fn.Name != "" {
		env = env.With(fn.Name, fn)
	}
	env = env.Extend(names, values)
	out := c.WithEnv(env).evalIn(fn.Body)
	return out.WithEnv(c.env)
}
