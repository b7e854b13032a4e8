// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"strings"

	"github.com/r6e/regolite/ast"
)

func isFalse(t *ast.Term) bool {
	b, ok := t.Value.(ast.Boolean)
	return ok && !bool(b)
}

func isTrue(t *ast.Term) bool {
	b, ok := t.Value.(ast.Boolean)
	return ok && bool(b)
}

// truthy implements spec.md §4.6's body-literal success test: a literal
// succeeds iff its value is neither Undefined nor the boolean false.
func truthy(t *ast.Term) bool {
	return !ast.TermIsUndefined(t) && !isFalse(t)
}

// evalExpr evaluates t to a Value or Undefined; it never returns an
// error for an ordinary Undefined-propagation point, only for a genuine
// evaluation failure (unknown callee, builtin argument error, recursion).
func evalExpr(t *ast.Term, env *Environment) (*ast.Term, error) {
	switch v := t.Value.(type) {
	case ast.Null, ast.Boolean, ast.Number, ast.String:
		return t, nil
	case ast.Var:
		if v.IsWildcard() {
			return ast.UndefinedTerm(), nil
		}
		if val, ok := env.Lookup(v); ok {
			return val, nil
		}
		return ast.UndefinedTerm(), nil
	case ast.Ref:
		return evalRef(v, env)
	case ast.Array:
		out := make([]*ast.Term, len(v))
		for i, e := range v {
			ev, err := evalExpr(e, env)
			if err != nil {
				return nil, err
			}
			if ast.TermIsUndefined(ev) {
				return ast.UndefinedTerm(), nil
			}
			out[i] = ev
		}
		return ast.ArrayTerm(out...), nil
	case *ast.Object:
		out := ast.NewObject()
		for _, k := range v.Keys() {
			kv, err := evalExpr(k, env)
			if err != nil {
				return nil, err
			}
			if ast.TermIsUndefined(kv) {
				return ast.UndefinedTerm(), nil
			}
			vv, err := evalExpr(v.Get(k), env)
			if err != nil {
				return nil, err
			}
			if ast.TermIsUndefined(vv) {
				return ast.UndefinedTerm(), nil
			}
			out.Insert(kv, vv)
		}
		return ast.NewTerm(out), nil
	case *ast.Set:
		out := ast.NewSet()
		for _, e := range v.Slice() {
			ev, err := evalExpr(e, env)
			if err != nil {
				return nil, err
			}
			if ast.TermIsUndefined(ev) {
				return ast.UndefinedTerm(), nil
			}
			out.Add(ev)
		}
		return ast.NewTerm(out), nil
	case *ast.BinaryOp:
		return evalBinaryOp(v, env)
	case *ast.UnaryOp:
		return evalUnaryOp(v, env)
	case *ast.Call:
		return evalCall(v, env)
	case *ast.ArrayComprehension:
		return evalArrayCompr(v, env)
	case *ast.SetComprehension:
		return evalSetCompr(v, env)
	case *ast.ObjectComprehension:
		return evalObjectCompr(v, env)
	case *ast.TemplateString:
		return evalTemplateString(v, env)
	default:
		return t, nil
	}
}

// resolveRuleRef matches a `data`-rooted ref's static dot-prefix against
// the module's own package path or rule names (mirroring the compiler's
// dependency-graph resolution in ast.resolveDataRef, but returning the
// leftover path segments so the caller can index into the rule's result).
func resolveRuleRef(r ast.Ref, mod *ast.CompiledModule) (name string, rest []ast.RefArg, ok bool) {
	var dotNames []string
	i := 0
	for ; i < len(r.Path); i++ {
		if !r.Path[i].IsDot() {
			break
		}
		dotNames = append(dotNames, r.Path[i].Dot)
	}
	if len(dotNames) == 0 {
		return "", nil, false
	}
	pkgParts, _ := mod.Package.Path.StaticDotPath()
	if len(pkgParts) > 1 {
		pkgSuffix := pkgParts[1:]
		if len(dotNames) > len(pkgSuffix) && prefixEqual(dotNames, pkgSuffix) {
			candidate := dotNames[len(pkgSuffix)]
			if _, ok := mod.RulesByName[candidate]; ok {
				return candidate, r.Path[len(pkgSuffix)+1:], true
			}
		}
	}
	if _, ok := mod.RulesByName[dotNames[0]]; ok {
		return dotNames[0], r.Path[1:], true
	}
	return "", nil, false
}

func prefixEqual(a, prefix []string) bool {
	if len(a) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if a[i] != p {
			return false
		}
	}
	return true
}

func evalRef(r ast.Ref, env *Environment) (*ast.Term, error) {
	if hv, ok := r.Head.Value.(ast.Var); ok && hv == "data" {
		if name, rest, ok := resolveRuleRef(r, env.Module); ok {
			val, err := env.EvalRule(name)
			if err != nil {
				return nil, err
			}
			return indexPath(val, rest, env)
		}
	}
	head, err := evalExpr(r.Head, env)
	if err != nil {
		return nil, err
	}
	return indexPath(head, r.Path, env)
}

// indexPath walks path segment-by-segment into base; any out-of-range
// index, missing key, or type mismatch yields Undefined, never an error
// (spec.md §4.6).
func indexPath(base *ast.Term, path []ast.RefArg, env *Environment) (*ast.Term, error) {
	cur := base
	for _, seg := range path {
		if ast.TermIsUndefined(cur) {
			return ast.UndefinedTerm(), nil
		}
		var key *ast.Term
		if seg.IsDot() {
			key = ast.StringTerm(seg.Dot)
		} else {
			kv, err := evalExpr(seg.Bracket, env)
			if err != nil {
				return nil, err
			}
			if ast.TermIsUndefined(kv) {
				return ast.UndefinedTerm(), nil
			}
			key = kv
		}
		switch v := cur.Value.(type) {
		case ast.Array:
			n, ok := key.Value.(ast.Number)
			if !ok {
				return ast.UndefinedTerm(), nil
			}
			i, ok := n.Int64()
			if !ok || i < 0 || int(i) >= len(v) {
				return ast.UndefinedTerm(), nil
			}
			cur = v[i]
		case *ast.Object:
			found := v.Get(key)
			if found == nil {
				return ast.UndefinedTerm(), nil
			}
			cur = found
		case *ast.Set:
			if v.Contains(key) {
				cur = key
			} else {
				return ast.UndefinedTerm(), nil
			}
		default:
			return ast.UndefinedTerm(), nil
		}
	}
	return cur, nil
}

func evalBinaryOp(b *ast.BinaryOp, env *Environment) (*ast.Term, error) {
	switch b.Op {
	case ast.OpAnd:
		l, err := evalExpr(b.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := evalExpr(b.Right, env)
		if err != nil {
			return nil, err
		}
		switch {
		case isFalse(l) || isFalse(r):
			return ast.BooleanTerm(false), nil
		case isTrue(l):
			return r, nil
		case isTrue(r):
			return l, nil
		default:
			return ast.UndefinedTerm(), nil
		}
	case ast.OpOr:
		l, err := evalExpr(b.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := evalExpr(b.Right, env)
		if err != nil {
			return nil, err
		}
		switch {
		case isTrue(l) || isTrue(r):
			return ast.BooleanTerm(true), nil
		case isFalse(l):
			return r, nil
		case isFalse(r):
			return l, nil
		default:
			return ast.UndefinedTerm(), nil
		}
	case ast.OpEq, ast.OpNeq:
		l, err := evalExpr(b.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := evalExpr(b.Right, env)
		if err != nil {
			return nil, err
		}
		if ast.TermIsUndefined(l) || ast.TermIsUndefined(r) {
			return ast.UndefinedTerm(), nil
		}
		eq := l.Equal(r)
		if b.Op == ast.OpNeq {
			eq = !eq
		}
		return ast.BooleanTerm(eq), nil
	case ast.OpUnify:
		return ast.BooleanTerm(Unify(b.Left, b.Right, env)), nil
	case ast.OpAssign:
		return evalAssign(b.Left, b.Right, env)
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return evalComparison(b.Op, b.Left, b.Right, env)
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return evalArithmetic(b.Op, b.Left, b.Right, env)
	case ast.OpIn:
		return evalIn(b.Left, b.Right, env)
	default:
		return nil, ast.NewError(ast.EvalErr, nil, "unsupported operator %q", b.Op)
	}
}

// evalAssign binds left (a var or destructuring pattern) to the
// evaluated right, erroring on redefinition of a plain variable already
// bound in the current scope (spec.md §4.6).
func evalAssign(left, right *ast.Term, env *Environment) (*ast.Term, error) {
	rv, err := evalExpr(right, env)
	if err != nil {
		return nil, err
	}
	if ast.TermIsUndefined(rv) {
		return ast.UndefinedTerm(), nil
	}
	if lv, ok := left.Value.(ast.Var); ok && !lv.IsWildcard() {
		if _, bound := env.currentScopeValue(lv); bound {
			return nil, ast.NewError(ast.EvalErr, nil, "variable %q redefined in the same scope", lv)
		}
	}
	return ast.BooleanTerm(Unify(left, rv, env)), nil
}

func evalComparison(op string, left, right *ast.Term, env *Environment) (*ast.Term, error) {
	l, err := evalExpr(left, env)
	if err != nil {
		return nil, err
	}
	r, err := evalExpr(right, env)
	if err != nil {
		return nil, err
	}
	if ast.TermIsUndefined(l) || ast.TermIsUndefined(r) {
		return ast.UndefinedTerm(), nil
	}
	var cmp int
	switch lv := l.Value.(type) {
	case ast.Number:
		rv, ok := r.Value.(ast.Number)
		if !ok {
			return ast.UndefinedTerm(), nil
		}
		cmp = ast.NumCompare(lv, rv)
	case ast.String:
		rv, ok := r.Value.(ast.String)
		if !ok {
			return ast.UndefinedTerm(), nil
		}
		cmp = strings.Compare(string(lv), string(rv))
	default:
		return ast.UndefinedTerm(), nil
	}
	var result bool
	switch op {
	case ast.OpLt:
		result = cmp < 0
	case ast.OpLte:
		result = cmp <= 0
	case ast.OpGt:
		result = cmp > 0
	case ast.OpGte:
		result = cmp >= 0
	}
	return ast.BooleanTerm(result), nil
}

func evalArithmetic(op string, left, right *ast.Term, env *Environment) (*ast.Term, error) {
	l, err := evalExpr(left, env)
	if err != nil {
		return nil, err
	}
	r, err := evalExpr(right, env)
	if err != nil {
		return nil, err
	}
	if ast.TermIsUndefined(l) || ast.TermIsUndefined(r) {
		return ast.UndefinedTerm(), nil
	}
	ln, ok := l.Value.(ast.Number)
	if !ok {
		return ast.UndefinedTerm(), nil
	}
	rn, ok := r.Value.(ast.Number)
	if !ok {
		return ast.UndefinedTerm(), nil
	}
	switch op {
	case ast.OpAdd:
		return ast.NewTerm(ast.NumAdd(ln, rn)), nil
	case ast.OpSub:
		return ast.NewTerm(ast.NumSub(ln, rn)), nil
	case ast.OpMul:
		return ast.NewTerm(ast.NumMul(ln, rn)), nil
	case ast.OpDiv:
		n, ok := ast.NumDiv(ln, rn)
		if !ok {
			return ast.UndefinedTerm(), nil
		}
		return ast.NewTerm(n), nil
	case ast.OpMod:
		n, ok := ast.NumMod(ln, rn)
		if !ok {
			return ast.UndefinedTerm(), nil
		}
		return ast.NewTerm(n), nil
	default:
		return ast.UndefinedTerm(), nil
	}
}

func evalIn(left, right *ast.Term, env *Environment) (*ast.Term, error) {
	l, err := evalExpr(left, env)
	if err != nil {
		return nil, err
	}
	r, err := evalExpr(right, env)
	if err != nil {
		return nil, err
	}
	if ast.TermIsUndefined(l) || ast.TermIsUndefined(r) {
		return ast.UndefinedTerm(), nil
	}
	switch cv := r.Value.(type) {
	case ast.Array:
		for _, e := range cv {
			if e.Equal(l) {
				return ast.BooleanTerm(true), nil
			}
		}
		return ast.BooleanTerm(false), nil
	case *ast.Set:
		return ast.BooleanTerm(cv.Contains(l)), nil
	case *ast.Object:
		for _, k := range cv.Keys() {
			if k.Equal(l) {
				return ast.BooleanTerm(true), nil
			}
		}
		return ast.BooleanTerm(false), nil
	default:
		return ast.UndefinedTerm(), nil
	}
}

func evalUnaryOp(u *ast.UnaryOp, env *Environment) (*ast.Term, error) {
	switch u.Op {
	case ast.OpNeg:
		v, err := evalExpr(u.Operand, env)
		if err != nil {
			return nil, err
		}
		if ast.TermIsUndefined(v) {
			return ast.UndefinedTerm(), nil
		}
		n, ok := v.Value.(ast.Number)
		if !ok {
			return ast.UndefinedTerm(), nil
		}
		return ast.NewTerm(ast.NumNeg(n)), nil
	case ast.OpNot:
		v, err := evalExpr(u.Operand, env)
		if err != nil {
			return nil, err
		}
		return ast.BooleanTerm(!truthy(v)), nil
	default:
		return nil, ast.NewError(ast.EvalErr, nil, "unsupported unary operator %q", u.Op)
	}
}

func evalCall(c *ast.Call, env *Environment) (*ast.Term, error) {
	args := make([]*ast.Term, len(c.Args))
	for i, a := range c.Args {
		v, err := evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		if ast.TermIsUndefined(v) {
			return ast.UndefinedTerm(), nil
		}
		args[i] = v
	}
	if env.Registry.Registered(c.Name) {
		v, err := env.Registry.Call(c.Name, args)
		if err != nil {
			// spec.md §7: in lenient mode (the Policy facade's default)
			// a builtin argument error converts to Undefined at the
			// call site instead of aborting the whole evaluation.
			if !env.Strict && ast.IsError(ast.BuiltinArgumentErr, err) {
				return ast.UndefinedTerm(), nil
			}
			return nil, err
		}
		return v, nil
	}
	if _, ok := env.Module.RulesByName[c.Name]; ok {
		return env.EvalFunction(c.Name, args)
	}
	return nil, ast.NewError(ast.EvalErr, nil, "unknown function or builtin %q", c.Name)
}

func evalTemplateString(ts *ast.TemplateString, env *Environment) (*ast.Term, error) {
	var b strings.Builder
	for _, p := range ts.Parts {
		if p.Expr == nil {
			b.WriteString(p.Literal)
			continue
		}
		v, err := evalExpr(p.Expr, env)
		if err != nil {
			return nil, err
		}
		if ast.TermIsUndefined(v) {
			b.WriteString("<undefined>")
			continue
		}
		if s, ok := v.Value.(ast.String); ok {
			b.WriteString(string(s))
		} else {
			b.WriteString(v.Value.String())
		}
	}
	return ast.StringTerm(b.String()), nil
}

func evalArrayCompr(ac *ast.ArrayComprehension, env *Environment) (*ast.Term, error) {
	env.pushScope()
	defer env.popScope()
	var out []*ast.Term
	_, err := evalBody(ac.Body, 0, env, func() (bool, error) {
		v, err := evalExpr(ac.Term, env)
		if err != nil {
			return false, err
		}
		if !ast.TermIsUndefined(v) {
			out = append(out, v)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return ast.ArrayTerm(out...), nil
}

func evalSetCompr(sc *ast.SetComprehension, env *Environment) (*ast.Term, error) {
	env.pushScope()
	defer env.popScope()
	out := ast.NewSet()
	_, err := evalBody(sc.Body, 0, env, func() (bool, error) {
		v, err := evalExpr(sc.Term, env)
		if err != nil {
			return false, err
		}
		if !ast.TermIsUndefined(v) {
			out.Add(v)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return ast.NewTerm(out), nil
}

func evalObjectCompr(oc *ast.ObjectComprehension, env *Environment) (*ast.Term, error) {
	env.pushScope()
	defer env.popScope()
	out := ast.NewObject()
	_, err := evalBody(oc.Body, 0, env, func() (bool, error) {
		k, err := evalExpr(oc.Key, env)
		if err != nil {
			return false, err
		}
		v, err := evalExpr(oc.Value, env)
		if err != nil {
			return false, err
		}
		if ast.TermIsUndefined(k) || ast.TermIsUndefined(v) {
			return false, nil
		}
		if existing := out.Get(k); existing != nil && !existing.Equal(v) {
			return false, ast.NewError(ast.EvalErr, nil, "object comprehension: conflicting key %s", k.String())
		}
		out.Insert(k, v)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return ast.NewTerm(out), nil
}
