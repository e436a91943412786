// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"sort"

	"github.com/benbjohnson/immutable"
)

// Bindings is a persistent identifier-to-value mapping.
//
// A Bindings value is never modified once built. With, Extend, Without and
// Merge return a new mapping that shares structure with the receiver, so
// each costs O(log n) per changed name. The zero value is an empty mapping.
type Bindings struct {
	m *immutable.Map[string, Expr]
}

// NewBindings creates an empty mapping.
func NewBindings() Bindings {
	return Bindings{}
}

func (b Bindings) base() *immutable.Map[string, Expr] {
	if b.m == nil {
		return immutable.NewMap[string, Expr](nil)
	}
	return b.m
}

// Get retrieves the value bound to name.
func (b Bindings) Get(name string) (Expr, bool) {
	if b.m == nil {
		return nil, false
	}
	return b.m.Get(name)
}

// Has returns true if name is bound.
func (b Bindings) Has(name string) bool {
	_, ok := b.Get(name)
	return ok
}

// Len returns the number of bindings.
func (b Bindings) Len() int {
	if b.m == nil {
		return 0
	}
	return b.m.Len()
}

// With returns b with name bound to e, shadowing any earlier value.
func (b Bindings) With(name string, e Expr) Bindings {
	return Bindings{m: b.base().Set(name, e)}
}

// Extend binds names[i] to values[i].
func (b Bindings) Extend(names []string, values []Expr) Bindings {
	if len(names) == 0 {
		return b
	}
	m := b.base()
	for i, name := range names {
		m = m.Set(name, values[i])
	}
	return Bindings{m: m}
}

// Without returns b with name unbound. It returns b itself when name is not
// bound.
func (b Bindings) Without(name string) Bindings {
	if !b.Has(name) {
		return b
	}
	return Bindings{m: b.m.Delete(name)}
}

// Merge returns b overlaid with every binding of other. The cost depends on
// the size of other, not of b.
func (b Bindings) Merge(other Bindings) Bindings {
	if other.Len() == 0 {
		return b
	}
	m := b.base()
	itr := other.m.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		m = m.Set(k, v)
	}
	return Bindings{m: m}
}

// Names returns the bound names in sorted order.
func (b Bindings) Names() []string {
	names := make([]string, 0, b.Len())
	if b.m == nil {
		return names
	}
	itr := b.m.Iterator()
	for !itr.Done() {
		k, _, _ := itr.Next()
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both mappings bind the same names to equal values.
func (b Bindings) Equal(other Bindings) bool {
	if b.Len() != other.Len() {
		return false
	}
	if b.Len() == 0 || b.m == other.m {
		return true
	}
	itr := b.m.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		w, ok := other.m.Get(k)
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}
