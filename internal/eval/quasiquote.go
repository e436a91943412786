package eval

import "nickandperla.net/slip/internal/expr"

// quasiquote rebuilds the current expression, replacing each Unquote with the
// value of its body. Pairs are rebuilt; everything else is literal. A nested
// Quasiquote is literal too, so quasiquote does not nest.
func (c Context) quasiquote() Context {
	switch e := c.expr.(type) {
	case expr.Unquote:
		return c.evalIn(e.Expr)
	case *expr.Cons:
		head := c.SetExpr(e.Head).quasiquote()
		if head.HasError() {
			return head
		}
		tail := head.SetExpr(e.Tail).quasiquote()
		if tail.HasError() {
			return tail
		}
		return tail.SetExpr(expr.NewCons(head.expr, tail.expr))
	default:
		return c
	}
}
