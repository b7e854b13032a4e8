// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import "github.com/r6e/regolite/ast"

// solutionFunc is invoked once per successful binding of an entire body.
// Returning stop=true ends the search early (used by complete/function
// rule evaluation, which only wants the first success); returning
// stop=false keeps the search going (used by partial-set/object rules
// and comprehensions, which want every success). A non-nil error aborts
// the search immediately and propagates to the top-level caller.
type solutionFunc func() (stop bool, err error)

// evalBody evaluates body[i:] under env, invoking k for every
// successful completion of the remaining literals. It implements
// spec.md §4.6's body semantics: left-to-right, backtracking over
// `some` bindings, with `every` and plain expressions each gating
// whether evaluation proceeds to the next literal.
func evalBody(body ast.Body, i int, env *Environment, k solutionFunc) (bool, error) {
	if i >= len(body) {
		return k()
	}
	lit := body[i]

	switch lit.Kind {
	case ast.SomeLiteral:
		return evalSome(lit.Some, body, i, env, k)
	case ast.EveryLiteral:
		ok, err := evalEvery(lit.Every, env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		return evalBody(body, i+1, env, k)
	default:
		if len(lit.With) > 0 {
			return evalWithLiteral(lit, body, i, env, k)
		}
		v, err := evalExpr(lit.Expr, env)
		if err != nil {
			return false, err
		}
		if !truthy(v) {
			return false, nil
		}
		return evalBody(body, i+1, env, k)
	}
}

// evalSome handles both the iterating form (`some x[, y] in E`) and the
// bare declaration form (`some x[, y]`), which just introduces safe
// names without producing bindings of its own.
func evalSome(some *ast.SomeDecl, body ast.Body, i int, env *Environment, k solutionFunc) (bool, error) {
	if some.Collection == nil {
		return evalBody(body, i+1, env, k)
	}
	coll, err := evalExpr(some.Collection, env)
	if err != nil {
		return false, err
	}
	if ast.TermIsUndefined(coll) {
		return false, nil
	}

	pairs, err := iterationPairs(coll)
	if err != nil {
		return false, err
	}

	for _, p := range pairs {
		env.pushScope()
		ok := bindSomeSymbols(some.Symbols, p, env)
		var stop bool
		if ok {
			stop, err = evalBody(body, i+1, env, k)
		}
		env.popScope()
		if err != nil {
			return false, err
		}
		if stop {
			return true, nil
		}
	}
	return false, nil
}

type kv struct {
	key, val *ast.Term
}

// iterationPairs returns the (key, value) pairs to iterate over for a
// `some`/`every` collection, in the order spec.md §5 mandates: index
// order for arrays, insertion order for sets and object keys.
func iterationPairs(coll *ast.Term) ([]kv, error) {
	switch v := coll.Value.(type) {
	case ast.Array:
		out := make([]kv, len(v))
		for i, e := range v {
			out[i] = kv{key: ast.IntNumberTerm(i), val: e}
		}
		return out, nil
	case *ast.Set:
		elems := v.Slice()
		out := make([]kv, len(elems))
		for i, e := range elems {
			out[i] = kv{key: e, val: e}
		}
		return out, nil
	case *ast.Object:
		keys := v.Keys()
		out := make([]kv, len(keys))
		for i, key := range keys {
			out[i] = kv{key: key, val: v.Get(key)}
		}
		return out, nil
	default:
		return nil, nil
	}
}

func bindSomeSymbols(symbols []*ast.Term, p kv, env *Environment) bool {
	switch len(symbols) {
	case 1:
		return Unify(symbols[0], p.val, env)
	case 2:
		return Unify(symbols[0], p.key, env) && Unify(symbols[1], p.val, env)
	default:
		return false
	}
}

// evalEvery implements `every [key,] value in domain { body }`: it
// succeeds iff body succeeds for every element of domain (vacuously
// true for an empty domain), and is Undefined (fails) if domain itself
// is Undefined.
func evalEvery(e *ast.Every, env *Environment) (bool, error) {
	domain, err := evalExpr(e.Domain, env)
	if err != nil {
		return false, err
	}
	if ast.TermIsUndefined(domain) {
		return false, nil
	}
	pairs, err := iterationPairs(domain)
	if err != nil {
		return false, err
	}
	for _, p := range pairs {
		env.pushScope()
		ok := true
		if e.Key != nil {
			ok = Unify(e.Key, p.key, env)
		}
		if ok {
			ok = Unify(e.Value, p.val, env)
		}
		succeeded := false
		if ok {
			succeeded, err = evalBody(e.Body, 0, env, func() (bool, error) {
				return true, nil
			})
		}
		env.popScope()
		if err != nil {
			return false, err
		}
		if !succeeded {
			return false, nil
		}
	}
	return true, nil
}
