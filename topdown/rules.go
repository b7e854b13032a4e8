// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import "github.com/r6e/regolite/ast"

// EvalRule evaluates (and memoizes) the rule group named name, dispatching
// on its RuleKind per spec.md §4.6.
func (env *Environment) EvalRule(name string) (*ast.Term, error) {
	if cached, ok := env.memoGetRule(name); ok {
		return cached.value, nil
	}
	if env.inProgress[name] {
		return nil, ast.NewError(ast.RecursionErr, nil, "rule %q is recursively evaluated", name)
	}
	env.inProgress[name] = true
	defer delete(env.inProgress, name)

	env.Tracer.Trace(Event{Op: "enter", Message: "rule " + name})
	defer env.Tracer.Trace(Event{Op: "exit", Message: "rule " + name})

	rules := env.Module.RulesByName[name]
	kind := ast.CompleteRule
	for _, r := range rules {
		if !r.Default {
			kind = r.Head.Kind
			break
		}
	}

	var result *ast.Term
	var err error
	switch kind {
	case ast.CompleteRule:
		result, err = env.evalCompleteRule(name, rules)
	case ast.PartialSetRule:
		result, err = env.evalPartialSetRule(rules)
	case ast.PartialObjectRule:
		result, err = env.evalPartialObjectRule(rules)
	case ast.FunctionRule:
		result = ast.UndefinedTerm()
	}
	if err != nil {
		return nil, err
	}
	env.memoSetRule(name, &ruleResult{value: result})
	return result, nil
}

func (env *Environment) ruleHeadValue(r *ast.Rule) (*ast.Term, error) {
	if r.Head.Value == nil {
		return ast.BooleanTerm(true), nil
	}
	return evalExpr(r.Head.Value, env)
}

// tryRuleBody evaluates r's body once under a fresh scope, returning the
// head value of the first successful solution.
func (env *Environment) tryRuleBody(r *ast.Rule) (*ast.Term, bool, error) {
	env.pushScope()
	defer env.popScope()
	var val *ast.Term
	found := false
	_, err := evalBody(r.Body, 0, env, func() (bool, error) {
		v, err := env.ruleHeadValue(r)
		if err != nil {
			return false, err
		}
		val, found = v, true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val, found, nil
}

// evalCompleteRule implements spec.md §4.6's complete-rule semantics:
// try each body in source order, falling through to its else-chain;
// the first successful body/else wins; a default rule supplies the
// fallback value when nothing else succeeds; two differing successful
// values across rules of the same name is a runtime conflict.
func (env *Environment) evalCompleteRule(name string, rules []*ast.Rule) (*ast.Term, error) {
	var defaultRule *ast.Rule
	var winner *ast.Term
	found := false

	for _, r := range rules {
		if r.Default {
			defaultRule = r
			continue
		}
		v, ok, err := env.tryRuleBody(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			for c := r.Else; c != nil; c = c.Else {
				v, ok, err = env.tryRuleBody(c)
				if err != nil {
					return nil, err
				}
				if ok {
					break
				}
			}
		}
		if ok {
			if found && !winner.Equal(v) {
				return nil, ast.NewError(ast.EvalErr, r.Location,
					"complete rules for %q produced conflicting values", name)
			}
			winner, found = v, true
		}
	}

	if found {
		return winner, nil
	}
	if defaultRule != nil {
		env.pushScope()
		v, err := env.ruleHeadValue(defaultRule)
		env.popScope()
		return v, err
	}
	return ast.UndefinedTerm(), nil
}

func (env *Environment) evalPartialSetRule(rules []*ast.Rule) (*ast.Term, error) {
	out := ast.NewSet()
	for _, r := range rules {
		if r.Default {
			continue
		}
		env.pushScope()
		_, err := evalBody(r.Body, 0, env, func() (bool, error) {
			k, err := evalExpr(r.Head.Key, env)
			if err != nil {
				return false, err
			}
			if !ast.TermIsUndefined(k) {
				out.Add(k)
			}
			return false, nil
		})
		env.popScope()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewTerm(out), nil
}

func (env *Environment) evalPartialObjectRule(rules []*ast.Rule) (*ast.Term, error) {
	root := ast.NewObject()
	for _, r := range rules {
		if r.Default {
			continue
		}
		env.pushScope()
		_, err := evalBody(r.Body, 0, env, func() (bool, error) {
			return false, env.insertKeyPath(root, r.Head.KeyPath, r.Head.Value, r.Location)
		})
		env.popScope()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewTerm(root), nil
}

// insertKeyPath evaluates path's segments and value under env and merges
// the result into root, nesting intermediate segments into sub-objects
// (spec.md §4.6's multi-segment partial-object-key semantics). A key or
// value that evaluates to Undefined contributes nothing for this
// solution. Conflicting values for the same final key raise EvalErr.
func (env *Environment) insertKeyPath(root *ast.Object, path []ast.RefArg, value *ast.Term, loc *ast.Location) error {
	keys := make([]*ast.Term, len(path))
	for i, seg := range path {
		if seg.IsDot() {
			keys[i] = ast.StringTerm(seg.Dot)
			continue
		}
		k, err := evalExpr(seg.Bracket, env)
		if err != nil {
			return err
		}
		if ast.TermIsUndefined(k) {
			return nil
		}
		keys[i] = k
	}
	val, err := evalExpr(value, env)
	if err != nil {
		return err
	}
	if ast.TermIsUndefined(val) {
		return nil
	}

	cur := root
	for i := 0; i < len(keys)-1; i++ {
		k := keys[i]
		existing := cur.Get(k)
		if existing == nil {
			nested := ast.NewObject()
			cur.Insert(k, ast.NewTerm(nested))
			cur = nested
			continue
		}
		nested, ok := existing.Value.(*ast.Object)
		if !ok {
			return ast.NewError(ast.EvalErr, loc, "conflicting object key %s", k.String())
		}
		cur = nested
	}
	lastKey := keys[len(keys)-1]
	if existing := cur.Get(lastKey); existing != nil && !existing.Equal(val) {
		return ast.NewError(ast.EvalErr, loc, "conflicting object key %s", lastKey.String())
	}
	cur.Insert(lastKey, val)
	return nil
}

// EvalFunction calls the user-defined function named name with args,
// matching each function rule in order and unifying parameter patterns
// against the arguments, memoized by (name, argument values).
func (env *Environment) EvalFunction(name string, args []*ast.Term) (*ast.Term, error) {
	key := funcCacheKey(name, args)
	if v, ok := env.memoGetFunc(key); ok {
		return v, nil
	}
	rules := env.Module.RulesByName[name]
	for _, r := range rules {
		if r.Default || len(r.Head.Args) != len(args) {
			continue
		}
		v, ok, err := env.tryFunctionRule(r, args)
		if err != nil {
			return nil, err
		}
		if !ok {
			for c := r.Else; c != nil; c = c.Else {
				v, ok, err = env.tryFunctionRule(c, args)
				if err != nil {
					return nil, err
				}
				if ok {
					break
				}
			}
		}
		if ok {
			env.memoSetFunc(key, v)
			return v, nil
		}
	}
	return ast.UndefinedTerm(), nil
}

func (env *Environment) tryFunctionRule(r *ast.Rule, args []*ast.Term) (*ast.Term, bool, error) {
	env.pushScope()
	defer env.popScope()

	params := r.Head.Args
	for i, param := range params {
		if !Unify(param, args[i], env) {
			return nil, false, nil
		}
	}

	var val *ast.Term
	found := false
	_, err := evalBody(r.Body, 0, env, func() (bool, error) {
		v, err := env.ruleHeadValue(r)
		if err != nil {
			return false, err
		}
		val, found = v, true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val, found, nil
}
