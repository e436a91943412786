// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"sort"

	"nickandperla.net/slip/internal/expr"
)

// FreeVars returns, sorted, the identifiers body refers to that are neither
// in ignore nor reserved keywords.
//
// A nested (lambda ...) form is skipped: the inner closure captures its own
// free variables when it is built. Inside a quasiquote only unquoted parts
// are references; everything else is literal data, as is anything under
// quote.
func FreeVars(body expr.Expr, ignore map[string]bool) []string {
	ids := make(map[string]bool)
	collectIdents(body, ids, ignore, false)
	names := make([]string, 0, len(ids))
	for k := range ids {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func collectIdents(e expr.Expr, ids, ignore map[string]bool, quoted bool) {
	switch n := e.(type) {
	case expr.Ident:
		if !quoted && !ignore[n.Name] && !IsReserved(n.Name) {
			ids[n.Name] = true
		}
	case *expr.Cons:
		if expr.IsIdent(n.Head, "lambda") {
			if quoted {
				collectIdents(n.Tail, ids, ignore, quoted)
			}
			return
		}
		if expr.IsIdent(n.Head, "quote") && !quoted {
			return
		}
		// Walk the elements directly so a lambda or quote identifier in
		// argument position is not mistaken for a form.
		var cur expr.Expr = n
		// A def target is bound, not referenced.
		if expr.IsIdent(n.Head, "def") && !quoted {
			if args, ok := n.Tail.(*expr.Cons); ok {
				cur = args.Tail
			}
		}
		for {
			cell, ok := cur.(*expr.Cons)
			if !ok {
				collectIdents(cur, ids, ignore, quoted)
				break
			}
			collectIdents(cell.Head, ids, ignore, quoted)
			cur = cell.Tail
		}
	case expr.Quasiquote:
		collectIdents(n.Expr, ids, ignore, true)
	case expr.Unquote:
		collectIdents(n.Expr, ids, ignore, false)
	}
}
