// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import "github.com/r6e/regolite/ast"

// EvalQuery evaluates queryTerm (typically a `data`-rooted Ref produced by
// ast.ParseRef from a query string like "data.pkg.rule") against env and
// returns its value, which may be ast.Undefined. This is the entry point
// rego.Evaluator.Evaluate uses for the query-supplied case of spec.md
// §4.6's `evaluate(query?)`.
func EvalQuery(queryTerm *ast.Term, env *Environment) (*ast.Term, error) {
	return evalExpr(queryTerm, env)
}

// EvalRootDocument evaluates every rule declared in env.Module and
// returns the object name -> value, omitting any rule whose result is
// Undefined. This is spec.md §4.6's query-less evaluate() mode: "the
// module's root document".
func EvalRootDocument(env *Environment) (*ast.Term, error) {
	out := ast.NewObject()
	for _, name := range env.Module.RuleOrder {
		v, err := env.EvalRule(name)
		if err != nil {
			return nil, err
		}
		if !ast.TermIsUndefined(v) {
			out.Insert(ast.StringTerm(name), v)
		}
	}
	return ast.NewTerm(out), nil
}
