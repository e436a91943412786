// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr defines slip expression types.
//
// Expressions are immutable once built. The same node may be shared by any
// number of contexts, closures and lists; nothing in the module writes to a
// node after construction.
package expr

import (
	"math"
	"strconv"
	"strings"
)

// Expr is the interface all expression types implement.
type Expr interface {
	// String returns the printed representation of the expression.
	String() string
	// IsNil returns true only for the empty list.
	IsNil() bool
}

// Nil is the empty list and the only false value.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) IsNil() bool    { return true }

// Integer is a 64-bit integer literal.
type Integer struct {
	Value int64
}

func (i Integer) String() string { return strconv.FormatInt(i.Value, 10) }
func (Integer) IsNil() bool      { return false }

// Float is a 64-bit floating point literal.
type Float struct {
	Value float64
}

func (f Float) String() string {
	if math.IsInf(f.Value, 0) || math.IsNaN(f.Value) {
		return strconv.FormatFloat(f.Value, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
func (Float) IsNil() bool { return false }

// Text is a string literal.
type Text struct {
	Value string
}

func (t Text) String() string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range t.Value {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
func (Text) IsNil() bool { return false }

// Ident is a symbol, resolved by environment lookup when evaluated.
type Ident struct {
	Name string
}

func (i Ident) String() string { return i.Name }
func (Ident) IsNil() bool      { return false }

// True is the canonical truthy value returned by predicates.
var True = Ident{Name: "t"}

// Cons is a pair. Chains of cons cells ending in Nil are lists.
type Cons struct {
	Head Expr
	Tail Expr
}

func (c *Cons) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	var cur Expr = c
	first := true
	for {
		switch n := cur.(type) {
		case *Cons:
			if !first {
				sb.WriteByte(' ')
			}
			sb.WriteString(n.Head.String())
			first = false
			cur = n.Tail
			continue
		case Nil:
		default:
			sb.WriteString(" . ")
			sb.WriteString(n.String())
		}
		break
	}
	sb.WriteByte(')')
	return sb.String()
}
func (*Cons) IsNil() bool { return false }

// Quote evaluates to its body without reduction.
type Quote struct {
	Expr Expr
}

func (q Quote) String() string { return "'" + q.Expr.String() }
func (Quote) IsNil() bool      { return false }

// Quasiquote is a template whose Unquote parts are evaluated.
type Quasiquote struct {
	Expr Expr
}

func (q Quasiquote) String() string { return "`" + q.Expr.String() }
func (Quasiquote) IsNil() bool      { return false }

// Unquote marks a sub-expression evaluated during quasiquote expansion.
type Unquote struct {
	Expr Expr
}

func (u Unquote) String() string { return "," + u.Expr.String() }
func (Unquote) IsNil() bool      { return false }

// Lambda is a closure. Captured holds exactly the free identifiers the body
// needs from its defining environment; it is empty when there are none.
// A named closure is bound to Name while its body runs.
type Lambda struct {
	Name     string
	Params   Expr
	Body     Expr
	Captured Bindings
}

func (l *Lambda) String() string {
	head := "(lambda "
	if l.Name != "" {
		head += l.Name + " "
	}
	return head + paramString(l.Params) + " " + l.Body.String() + ")"
}
func (*Lambda) IsNil() bool { return false }

// Macro is like Lambda, but its arguments are bound unevaluated and the
// result of its body is evaluated again at the call site.
type Macro struct {
	Params Expr
	Body   Expr
}

func (m *Macro) String() string {
	return "(macro " + paramString(m.Params) + " " + m.Body.String() + ")"
}
func (*Macro) IsNil() bool { return false }

func paramString(params Expr) string {
	if params.IsNil() {
		return "()"
	}
	return params.String()
}

// NewCons creates a new pair.
func NewCons(head, tail Expr) *Cons {
	return &Cons{Head: head, Tail: tail}
}

// List builds a Nil-terminated list from items.
func List(items ...Expr) Expr {
	var result Expr = Nil{}
	for i := len(items) - 1; i >= 0; i-- {
		result = &Cons{Head: items[i], Tail: result}
	}
	return result
}

// Slice returns the elements of a proper list. ok is false if e is not a
// Nil-terminated chain of cons cells.
func Slice(e Expr) (items []Expr, ok bool) {
	for {
		switch n := e.(type) {
		case Nil:
			return items, true
		case *Cons:
			items = append(items, n.Head)
			e = n.Tail
		default:
			return items, false
		}
	}
}

// IsIdent reports whether e is the identifier name.
func IsIdent(e Expr, name string) bool {
	id, ok := e.(Ident)
	return ok && id.Name == name
}

// Equal reports whether a and b are structurally equal. Values of different
// variants are never equal, so Integer 1 and Float 1.0 differ.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Integer:
		y, ok := b.(Integer)
		return ok && x.Value == y.Value
	case Float:
		y, ok := b.(Float)
		return ok && x.Value == y.Value
	case Text:
		y, ok := b.(Text)
		return ok && x.Value == y.Value
	case Ident:
		y, ok := b.(Ident)
		return ok && x.Name == y.Name
	case *Cons:
		y, ok := b.(*Cons)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		return Equal(x.Head, y.Head) && Equal(x.Tail, y.Tail)
	case Quote:
		y, ok := b.(Quote)
		return ok && Equal(x.Expr, y.Expr)
	case Quasiquote:
		y, ok := b.(Quasiquote)
		return ok && Equal(x.Expr, y.Expr)
	case Unquote:
		y, ok := b.(Unquote)
		return ok && Equal(x.Expr, y.Expr)
	case *Lambda:
		y, ok := b.(*Lambda)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		return x.Name == y.Name && Equal(x.Params, y.Params) && Equal(x.Body, y.Body) && x.Captured.Equal(y.Captured)
	case *Macro:
		y, ok := b.(*Macro)
		if !ok {
			return false
		}
		return x == y || (Equal(x.Params, y.Params) && Equal(x.Body, y.Body))
	}
	return false
}
