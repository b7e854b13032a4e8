// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"github.com/r6e/regolite/ast"
	"github.com/r6e/regolite/topdown/builtins"
)

// evalWithLiteral implements spec.md §4.7: apply every `with` modifier
// attached to lit, overlaying input/data/registry for the scope of this
// literal's evaluation only, then restore on every exit path (success,
// failure, or error) via defer.
func evalWithLiteral(lit *ast.Literal, body ast.Body, i int, env *Environment, k solutionFunc) (bool, error) {
	savedInput := env.Input
	savedData := env.Data
	savedRegistry := env.Registry
	env.pushMemo()
	defer func() {
		env.Input = savedInput
		env.Data = savedData
		env.Registry = savedRegistry
		env.popMemo()
	}()

	for _, w := range lit.With {
		if err := env.applyWith(w); err != nil {
			return false, err
		}
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

// applyWith resolves w's target and mutates env's current input/data/
// registry accordingly (the caller is responsible for saving/restoring
// the originals).
func (env *Environment) applyWith(w *ast.With) error {
	if err := env.checkUnsafeReplacement(w); err != nil {
		return err
	}

	if ref, ok := w.Target.Value.(ast.Ref); ok {
		if hv, ok2 := ref.Head.Value.(ast.Var); ok2 {
			switch hv {
			case "input":
				val, err := evalExpr(w.Value, env)
				if err != nil {
					return err
				}
				nv, err := overlayPath(env, env.Input, ref.Path, val)
				if err != nil {
					return err
				}
				env.Input = nv
				return nil
			case "data":
				if _, rest, ok3 := resolveRuleRef(ref, env.Module); ok3 && len(rest) == 0 {
					return env.applyFunctionOverride(ruleNameOf(ref, env.Module), w.Value)
				}
				val, err := evalExpr(w.Value, env)
				if err != nil {
					return err
				}
				nv, err := overlayPath(env, env.Data, ref.Path, val)
				if err != nil {
					return err
				}
				env.Data = nv
				return nil
			}
		}
	}

	if v, ok := w.Target.Value.(ast.Var); ok {
		return env.applyFunctionOverride(string(v), w.Value)
	}

	return ast.NewError(ast.EvalErr, nil, "invalid with-modifier target %s", w.Target.String())
}

func ruleNameOf(ref ast.Ref, mod *ast.CompiledModule) string {
	name, _, _ := resolveRuleRef(ref, mod)
	return name
}

// checkUnsafeReplacement implements spec.md §4.7's unsafe-replacement
// rule: a bare-variable replacement value must name a known function or
// builtin, or already be bound in the current scope.
func (env *Environment) checkUnsafeReplacement(w *ast.With) error {
	v, ok := w.Value.Value.(ast.Var)
	if !ok || v.IsWildcard() || v == "input" || v == "data" {
		return nil
	}
	if _, ok := env.Module.RulesByName[string(v)]; ok {
		return nil
	}
	if env.Registry.Registered(string(v)) {
		return nil
	}
	if _, ok := env.localValue(v); ok {
		return nil
	}
	return ast.NewError(ast.EvalErr, w.Location, "unsafe with replacement variable %q", v)
}

// applyFunctionOverride replaces name (a builtin or user function) with
// another builtin/function of matching arity, or a constant value.
func (env *Environment) applyFunctionOverride(name string, valueTerm *ast.Term) error {
	arity := -1
	if e, ok := env.Registry.Lookup(name); ok && len(e.Arities) > 0 {
		arity = e.Arities[0]
	}
	if rules, ok := env.Module.RulesByName[name]; ok && len(rules) > 0 && rules[0].Head.Kind == ast.FunctionRule {
		arity = len(rules[0].Head.Args)
	}

	if v, ok := valueTerm.Value.(ast.Var); ok {
		target := string(v)
		if _, ok := env.Module.RulesByName[target]; ok {
			env.Registry = env.Registry.WithOverride(name, &builtins.Entry{
				Name:    name,
				Arities: []int{arity},
				Func: func(args []*ast.Term) (*ast.Term, error) {
					return env.EvalFunction(target, args)
				},
			})
			return nil
		}
		if e, ok := env.Registry.Lookup(target); ok {
			env.Registry = env.Registry.WithOverride(name, e)
			return nil
		}
		return ast.NewError(ast.EvalErr, nil, "with: %q is not a known function or builtin", target)
	}

	val, err := evalExpr(valueTerm, env)
	if err != nil {
		return err
	}
	env.Registry = env.Registry.WithOverride(name, builtins.ConstantEntry(name, val))
	return nil
}

// overlayPath clones root along path and sets the final segment to
// value, without mutating root or any of its ancestors' original
// objects (copy-on-write), so other concurrent scopes referencing the
// pre-override root remain unaffected.
func overlayPath(env *Environment, root *ast.Term, path []ast.RefArg, value *ast.Term) (*ast.Term, error) {
	if len(path) == 0 {
		return value, nil
	}
	seg := path[0]
	var key *ast.Term
	if seg.IsDot() {
		key = ast.StringTerm(seg.Dot)
	} else {
		k, err := evalExpr(seg.Bracket, env)
		if err != nil {
			return nil, err
		}
		key = k
	}

	var obj *ast.Object
	if o, ok := root.Value.(*ast.Object); ok {
		obj = o.Copy()
	} else {
		obj = ast.NewObject()
	}
	child := obj.Get(key)
	if child == nil {
		child = ast.NewTerm(ast.NewObject())
	}
	newChild, err := overlayPath(env, child, path[1:], value)
	if err != nil {
		return nil, err
	}
	obj.Insert(key, newChild)
	return ast.NewTerm(obj), nil
}
