// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package topdown implements Rego's expression/rule evaluator: trivalent
// truthiness, structural unification, reference resolution, memoization
// and the with-modifier override engine (spec.md §4.4-§4.7). It is
// deliberately simpler than the teacher's global-binding-ID namespacing
// scheme: rather than rewriting every bound variable with a per-call
// namespace suffix to make recursive rule re-entrancy collision-free, it
// uses an ordinary scope stack of binding maps and Go's own call stack
// for recursion, plus an in-progress rule-name set to turn genuine
// self-recursion into a RecursionErr instead of infinite regress.
package topdown

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/r6e/regolite/ast"
	"github.com/r6e/regolite/topdown/builtins"
)

// memoCacheSize bounds each memoization context's rule/function caches.
// Long-running embedders that push many with-scopes (spec.md §4.4 pushes
// a fresh context per with-modifier) would otherwise grow unboundedly;
// an LRU caps the working set instead of leaking across a long session.
const memoCacheSize = 1024

// memoContext is one memoization scope: rule results and user-function
// results get invalidated together whenever a with-modifier swaps in new
// input/data/builtins (spec.md §4.4), so they're pushed and popped as a
// unit. Reference resolutions are not cached; each is re-evaluated.
type memoContext struct {
	rules *lru.Cache[string, *ruleResult]
	funcs *lru.Cache[string, *ast.Term]
}

func newMemoContext() *memoContext {
	rules, err := lru.New[string, *ruleResult](memoCacheSize)
	if err != nil {
		panic(err)
	}
	funcs, err := lru.New[string, *ast.Term](memoCacheSize)
	if err != nil {
		panic(err)
	}
	return &memoContext{rules: rules, funcs: funcs}
}

type ruleResult struct {
	value *ast.Term
}

// Environment holds everything an evaluation needs that is local to one
// Evaluator: the compiled module being evaluated against, the current
// input/data roots (swappable by with-modifiers), the active builtin
// registry (likewise swappable), the binding-stack, and the memoization
// stack. It is not safe to share across goroutines (spec.md §5).
type Environment struct {
	Module *ast.CompiledModule
	Input  *ast.Term
	Data   *ast.Term

	Registry *builtins.Registry
	Tracer   Tracer
	// Strict selects strict builtin-argument-error mode (spec.md §7):
	// false (the default, set by the Policy facade) converts a
	// BuiltinArgumentErr into Undefined at the call site; true lets it
	// abort evaluation as a genuine error.
	Strict bool

	scopes     []map[ast.Var]*ast.Term
	memo       []*memoContext
	inProgress map[string]bool
}

// NewEnvironment returns an Environment ready to evaluate queries against
// mod with the given input/data documents and builtin registry.
func NewEnvironment(mod *ast.CompiledModule, input, data *ast.Term, registry *builtins.Registry) *Environment {
	if input == nil {
		input = ast.NullTerm()
	}
	if data == nil {
		data = ast.NewTerm(ast.NewObject())
	}
	return &Environment{
		Module:     mod,
		Input:      input,
		Data:       data,
		Registry:   registry,
		Tracer:     NopTracer{},
		scopes:     []map[ast.Var]*ast.Term{{}},
		memo:       []*memoContext{newMemoContext()},
		inProgress: map[string]bool{},
	}
}

func (env *Environment) pushScope() {
	env.scopes = append(env.scopes, map[ast.Var]*ast.Term{})
}

func (env *Environment) popScope() {
	env.scopes = env.scopes[:len(env.scopes)-1]
}

// Bind records name -> term in the innermost scope. Wildcard bindings are
// discarded per spec.md §4.4.
func (env *Environment) Bind(name ast.Var, term *ast.Term) {
	if name == "_" || name.IsWildcard() {
		return
	}
	env.scopes[len(env.scopes)-1][name] = term
}

// currentScopeValue reports whether name is already bound in the
// innermost scope specifically (used by `:=` redefinition checking,
// which is scoped, unlike Unify's ordinary rebind-across-stack lookup).
func (env *Environment) currentScopeValue(name ast.Var) (*ast.Term, bool) {
	t, ok := env.scopes[len(env.scopes)-1][name]
	return t, ok
}

// localValue searches the full binding stack, innermost scope first.
func (env *Environment) localValue(name ast.Var) (*ast.Term, bool) {
	for i := len(env.scopes) - 1; i >= 0; i-- {
		if t, ok := env.scopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Lookup implements spec.md §4.4's lookup(name) order: local bindings,
// then a same-module rule of that name (treated as a reference into the
// local data subtree), then the reserved input/data roots, else
// Undefined.
func (env *Environment) Lookup(name ast.Var) (*ast.Term, bool) {
	if t, ok := env.localValue(name); ok {
		return t, true
	}
	if _, ok := env.Module.RulesByName[string(name)]; ok {
		v, err := env.EvalRule(string(name))
		if err != nil {
			return nil, false
		}
		return v, true
	}
	switch name {
	case "input":
		return env.Input, true
	case "data":
		return env.Data, true
	}
	return nil, false
}

func (env *Environment) pushMemo() {
	env.memo = append(env.memo, newMemoContext())
}

func (env *Environment) popMemo() {
	env.memo = env.memo[:len(env.memo)-1]
}

func (env *Environment) topMemo() *memoContext {
	return env.memo[len(env.memo)-1]
}

func (env *Environment) memoGetRule(name string) (*ruleResult, bool) {
	return env.topMemo().rules.Get(name)
}

func (env *Environment) memoSetRule(name string, r *ruleResult) {
	env.topMemo().rules.Add(name, r)
}

func (env *Environment) memoGetFunc(key string) (*ast.Term, bool) {
	return env.topMemo().funcs.Get(key)
}

func (env *Environment) memoSetFunc(key string, t *ast.Term) {
	env.topMemo().funcs.Add(key, t)
}

// funcCacheKey builds a deterministic key for memoizing a user-function
// call by name and ground argument values.
func funcCacheKey(name string, args []*ast.Term) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte(0)
		b.WriteString(a.String())
	}
	return b.String()
}
