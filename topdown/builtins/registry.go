// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package builtins implements the Rego builtin-function dispatch
// contract: a name -> (arities, handler) registry with overlay support
// for `with`-scoped overrides, plus the concrete handlers for the
// minimum conformance set spec.md §4.8 names, grounded on the teacher's
// topdown/builtins package shape.
package builtins

import (
	"fmt"

	"github.com/r6e/regolite/ast"
)

// Func implements one builtin's behavior: given already-evaluated
// (ground) argument terms, it returns the result term, or an error for
// a genuine argument-type/arity problem (never for an ordinary
// Undefined-propagation point — callers translate Undefined results by
// returning ast.UndefinedTerm(), not an error).
type Func func(args []*ast.Term) (*ast.Term, error)

// Entry is one registered builtin.
type Entry struct {
	Name    string
	Arities []int
	Func    Func
}

// anyArity marks an Entry (via Arities) as accepting a call with any
// number of arguments. Used by ConstantEntry: a `with` override to a
// literal value replaces the call's result regardless of how many
// arguments the overridden builtin/function normally takes.
const anyArity = -1

func (e *Entry) acceptsArity(n int) bool {
	for _, a := range e.Arities {
		if a == anyArity || a == n {
			return true
		}
	}
	return false
}

// Registry is an immutable-after-construction name -> Entry table with
// overlay chaining: a scope created via WithOverride shadows specific
// names while falling through to its parent for everything else,
// exactly spec.md §4.8's `with_override(name, entry) -> Overlay`.
type Registry struct {
	entries map[string]*Entry
	parent  *Registry
}

// NewRegistry returns an empty, writable Registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// Register adds name to the registry. Re-registering a name that is
// already present is a no-op (idempotent), whatever arities the later
// call passes: the first registration is kept.
func (r *Registry) Register(name string, arities []int, fn Func) {
	if _, ok := r.entries[name]; ok {
		return
	}
	r.entries[name] = &Entry{Name: name, Arities: arities, Func: fn}
}

// Lookup returns the Entry for name, searching this registry then its
// overlay parent chain.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if e, ok := reg.entries[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// Registered reports whether name is bound anywhere in the overlay chain.
func (r *Registry) Registered(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Call validates arity and invokes the registered handler for name.
func (r *Registry) Call(name string, args []*ast.Term) (*ast.Term, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unregistered builtin %q", name)
	}
	if !e.acceptsArity(len(args)) {
		return nil, ast.NewError(ast.BuiltinArgumentErr, nil,
			"builtin %q: wrong number of arguments (got %d)", name, len(args)).WithContext("builtin " + name)
	}
	return e.Func(args)
}

// WithOverride returns a new overlay Registry: calls for name resolve to
// entry; every other name falls through to r. r itself is never mutated.
func (r *Registry) WithOverride(name string, entry *Entry) *Registry {
	return &Registry{entries: map[string]*Entry{name: entry}, parent: r}
}

// ConstantEntry wraps a fixed value as a builtin entry that accepts any
// number of arguments and ignores them, used
// when a `with` modifier replaces a function/builtin with a literal
// constant (spec.md §4.7).
func ConstantEntry(name string, value *ast.Term) *Entry {
	return &Entry{
		Name:    name,
		Arities: []int{anyArity},
		Func: func(args []*ast.Term) (*ast.Term, error) {
			return value, nil
		},
	}
}

// argError reports a builtin-argument type mismatch.
func argError(name string, format string, a ...interface{}) error {
	return ast.NewError(ast.BuiltinArgumentErr, nil, format, a...).WithContext("builtin " + name)
}
