// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"

	"nickandperla.net/slip/internal/expr"
)

// formFunc implements a special form. args is the unevaluated argument list.
type formFunc func(c Context, args expr.Expr) Context

// reserved lists every keyword handled by lookupForm. None of them can be
// bound.
var reserved = map[string]bool{
	"if":          true,
	"def":         true,
	"+":           true,
	"-":           true,
	"*":           true,
	"/":           true,
	"=":           true,
	"car":         true,
	"cdr":         true,
	"cons":        true,
	"quote":       true,
	"lambda":      true,
	"defmacro":    true,
	"eval":        true,
	"print-debug": true,
}

// IsReserved reports whether name is a special-form or primitive keyword.
func IsReserved(name string) bool {
	return reserved[name]
}

// Keywords returns the reserved keywords.
func Keywords() []string {
	names := make([]string, 0, len(reserved))
	for k := range reserved {
		names = append(names, k)
	}
	return names
}

// lookupForm returns the special form for the given name, or nil if not found.
func lookupForm(name string) formFunc {
	switch name {
	case "if":
		return formIf
	case "def":
		return formDef
	case "+":
		return formAdd
	case "-":
		return formSub
	case "*":
		return formMul
	case "/":
		return formDiv
	case "=":
		return formEqual
	case "car":
		return formCar
	case "cdr":
		return formCdr
	case "cons":
		return formCons
	case "quote":
		return formQuote
	case "lambda":
		return formLambda
	case "defmacro":
		return formDefmacro
	case "eval":
		return formEval
	case "print-debug":
		return formPrintDebug
	}
	return nil
}

// destructure splits args into exactly n elements. Too few, too many and an
// improper list are distinct malformed-form failures.
func (c Context) destructure(form string, args expr.Expr, n int) ([]expr.Expr, Context, bool) {
	parts := make([]expr.Expr, 0, n)
	cur := args
	for {
		switch a := cur.(type) {
		case expr.Nil:
			if len(parts) < n {
				return nil, c.fail(ErrMalformed, "too few arguments", "form", form, "want", n, "got", len(parts)), false
			}
			return parts, c, true
		case *expr.Cons:
			if len(parts) == n {
				return nil, c.fail(ErrMalformed, "too many arguments", "form", form, "want", n), false
			}
			parts = append(parts, a.Head)
			cur = a.Tail
		default:
			return nil, c.fail(ErrMalformed, "argument list is not a list", "form", form), false
		}
	}
}

// operands evaluates exactly two arguments left to right, threading the
// bindings from the first into the second.
func (c Context) operands(form string, args expr.Expr) (expr.Expr, expr.Expr, Context, bool) {
	parts, res, ok := c.destructure(form, args, 2)
	if !ok {
		return nil, nil, res, false
	}
	a := c.evalIn(parts[0])
	if a.HasError() {
		return nil, nil, a, false
	}
	b := a.evalIn(parts[1])
	if b.HasError() {
		return nil, nil, b, false
	}
	return a.expr, b.expr, b, true
}

// operand evaluates exactly one argument.
func (c Context) operand(form string, args expr.Expr) Context {
	parts, res, ok := c.destructure(form, args, 1)
	if !ok {
		return res
	}
	return c.evalIn(parts[0])
}

func formIf(c Context, args expr.Expr) Context {
	parts, res, ok := c.destructure("if", args, 3)
	if !ok {
		return res
	}
	p := c.evalIn(parts[0])
	if p.HasError() {
		return p
	}
	// Only Nil is false; 0 and "" are true.
	if p.expr.IsNil() {
		return p.evalIn(parts[2])
	}
	return p.evalIn(parts[1])
}

func formDef(c Context, args expr.Expr) Context {
	parts, res, ok := c.destructure("def", args, 2)
	if !ok {
		return res
	}
	target, isIdent := parts[0].(expr.Ident)
	if !isIdent {
		return c.fail(ErrMalformed, "def must take an ident as first parameter", "target", parts[0].String())
	}
	if IsReserved(target.Name) {
		return c.fail(ErrReserved, "keyword is reserved", "ident", target.Name)
	}
	v := c.evalIn(parts[1])
	if v.HasError() {
		return v
	}
	return v.Bind(target.Name, v.expr)
}

func formQuote(c Context, args expr.Expr) Context {
	parts, res, ok := c.destructure("quote", args, 1)
	if !ok {
		return res
	}
	return c.SetExpr(parts[0])
}

// arith applies a numeric operator. Integer op Integer stays Integer; a Float
// on either side widens the other.
func arith(c Context, form string, args expr.Expr,
	ints func(a, b int64) int64, floats func(a, b float64) float64) Context {
	a, b, res, ok := c.operands(form, args)
	if !ok {
		return res
	}
	switch x := a.(type) {
	case expr.Integer:
		switch y := b.(type) {
		case expr.Integer:
			if form == "/" && y.Value == 0 {
				return res.fail(ErrDivisionByZero, "integer division by zero", "form", form)
			}
			return res.SetExpr(expr.Integer{Value: ints(x.Value, y.Value)})
		case expr.Float:
			return res.SetExpr(expr.Float{Value: floats(float64(x.Value), y.Value)})
		}
	case expr.Float:
		switch y := b.(type) {
		case expr.Integer:
			return res.SetExpr(expr.Float{Value: floats(x.Value, float64(y.Value))})
		case expr.Float:
			return res.SetExpr(expr.Float{Value: floats(x.Value, y.Value)})
		}
	}
	return res.fail(ErrType, fmt.Sprintf("invalid types for arguments of %s", form),
		"left", a.String(), "right", b.String())
}

func formAdd(c Context, args expr.Expr) Context {
	return arith(c, "+", args,
		func(a, b int64) int64 { return a + b },
		func(a, b float64) float64 { return a + b })
}

func formSub(c Context, args expr.Expr) Context {
	return arith(c, "-", args,
		func(a, b int64) int64 { return a - b },
		func(a, b float64) float64 { return a - b })
}

func formMul(c Context, args expr.Expr) Context {
	return arith(c, "*", args,
		func(a, b int64) int64 { return a * b },
		func(a, b float64) float64 { return a * b })
}

func formDiv(c Context, args expr.Expr) Context {
	return arith(c, "/", args,
		func(a, b int64) int64 { return a / b },
		func(a, b float64) float64 { return a / b })
}

func formEqual(c Context, args expr.Expr) Context {
	a, b, res, ok := c.operands("=", args)
	if !ok {
		return res
	}
	if expr.Equal(a, b) {
		return res.SetExpr(expr.True)
	}
	return res.SetExpr(expr.Nil{})
}

func formCar(c Context, args expr.Expr) Context {
	v := c.operand("car", args)
	if v.HasError() {
		return v
	}
	pair, ok := v.expr.(*expr.Cons)
	if !ok {
		return v.fail(ErrType, "car must take a list", "value", v.expr.String())
	}
	return v.SetExpr(pair.Head)
}

func formCdr(c Context, args expr.Expr) Context {
	v := c.operand("cdr", args)
	if v.HasError() {
		return v
	}
	pair, ok := v.expr.(*expr.Cons)
	if !ok {
		return v.fail(ErrType, "cdr must take a list", "value", v.expr.String())
	}
	return v.SetExpr(pair.Tail)
}

func formCons(c Context, args expr.Expr) Context {
	a, b, res, ok := c.operands("cons", args)
	if !ok {
		return res
	}
	return res.SetExpr(expr.NewCons(a, b))
}

// formEval evaluates its operand, then evaluates the result again.
func formEval(c Context, args expr.Expr) Context {
	v := c.operand("eval", args)
	if v.HasError() {
		return v
	}
	return v.Eval()
}

func formPrintDebug(c Context, args expr.Expr) Context {
	v := c.operand("print-debug", args)
	if v.HasError() {
		return v
	}
	fmt.Fprintln(c.ev.output, v.expr.String())
	return v.SetExpr(expr.Nil{})
}
