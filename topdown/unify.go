// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import "github.com/r6e/regolite/ast"

// resolveSide follows a as far as the binding stack allows: if a is a
// bound variable (including the reserved input/data roots), it returns
// the bound term and unbound=false; if a is a free variable (including
// the wildcard), it returns a itself and unbound=true. Any other
// expression shape (Ref, Call, BinaryOp, comprehension, ...) is not a
// destructuring pattern, so it's evaluated to a ground value; Array,
// Object and Set terms are left alone since their elements may still be
// unbound pattern variables that unifyGround needs to recurse into.
func (env *Environment) resolveSide(a *ast.Term) (term *ast.Term, unbound bool) {
	switch v := a.Value.(type) {
	case ast.Var:
		if v.IsWildcard() {
			return a, true
		}
		switch v {
		case "input":
			return env.Input, false
		case "data":
			return env.Data, false
		}
		if bound, ok := env.localValue(v); ok {
			return env.resolveSide(bound)
		}
		return a, true
	case ast.Array, *ast.Object, *ast.Set:
		return a, false
	default:
		val, err := evalExpr(a, env)
		if err != nil {
			return ast.UndefinedTerm(), false
		}
		return val, false
	}
}

// Unify implements spec.md §4.5: structural unification with binding
// side-effects recorded directly on env's innermost scope. Conflicting
// bindings for the same name fail (return false) rather than erroring;
// callers treat a failed unify as an ordinary failed literal.
func Unify(a, b *ast.Term, env *Environment) bool {
	ar, aFree := env.resolveSide(a)
	br, bFree := env.resolveSide(b)

	if aFree && bFree {
		if bv, ok := b.Value.(ast.Var); ok && !bv.IsWildcard() {
			env.Bind(bv, a)
		}
		return true
	}
	if aFree {
		if av, ok := a.Value.(ast.Var); ok && av.IsWildcard() {
			return true
		}
		env.Bind(a.Value.(ast.Var), br)
		return true
	}
	if bFree {
		if bv, ok := b.Value.(ast.Var); ok && bv.IsWildcard() {
			return true
		}
		env.Bind(b.Value.(ast.Var), ar)
		return true
	}
	return unifyGround(ar, br, env)
}

// unifyGround unifies two terms that are not (currently) free variables,
// recursing into composite structure so that nested free variables still
// get the chance to bind.
func unifyGround(a, b *ast.Term, env *Environment) bool {
	switch x := a.Value.(type) {
	case ast.Array:
		y, ok := b.Value.(ast.Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Unify(x[i], y[i], env) {
				return false
			}
		}
		return true
	case *ast.Object:
		y, ok := b.Value.(*ast.Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		ok2 := true
		x.Foreach(func(k, v *ast.Term) {
			if !ok2 {
				return
			}
			yv := y.Get(k)
			if yv == nil || !Unify(v, yv, env) {
				ok2 = false
			}
		})
		return ok2
	case *ast.Set:
		return a.Equal(b)
	default:
		return a.Equal(b)
	}
}
