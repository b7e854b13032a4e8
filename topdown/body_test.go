// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"encoding/json"
	"testing"

	"github.com/r6e/regolite/ast"
	"github.com/r6e/regolite/topdown/builtins"
)

func evalRuleSrc(t *testing.T, src, rule string, input *ast.Term) *ast.Term {
	t.Helper()
	mod, err := ast.ParseModule("t.rego", src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	cm, err := ast.Compile(mod)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	env := NewEnvironment(cm, input, nil, builtins.Default())
	v, err := env.EvalRule(rule)
	if err != nil {
		t.Fatalf("EvalRule(%s): %v", rule, err)
	}
	return v
}

func TestSomeIterationBindsEachElement(t *testing.T) {
	v := evalRuleSrc(t, `package p
found[x] { some x in input.xs; x > 1 }`, "found",
		ast.NewTerm(mustObj(t, `{"xs": [1, 2, 3]}`)))
	s, ok := v.Value.(*ast.Set)
	if !ok || s.Len() != 2 {
		t.Fatalf("expected set {2,3}, got %v", v)
	}
}

func TestSomeOverUndefinedCollectionFails(t *testing.T) {
	v := evalRuleSrc(t, `package p
default ok := false
ok { some x in input.missing }`, "ok", ast.NullTerm())
	if !v.Equal(ast.BooleanTerm(false)) {
		t.Fatalf("expected default false when iterating an undefined collection, got %v", v)
	}
}

func TestEveryVacuouslyTrueOnEmptyDomain(t *testing.T) {
	v := evalRuleSrc(t, `package p
ok { every x in input.xs { x > 0 } }`, "ok", ast.NewTerm(mustObj(t, `{"xs": []}`)))
	if !v.Equal(ast.BooleanTerm(true)) {
		t.Fatalf("expected every over an empty domain to be vacuously true, got %v", v)
	}
}

func TestEveryFailsOnAnyCounterexample(t *testing.T) {
	v := evalRuleSrc(t, `package p
default ok := false
ok { every x in input.xs { x > 0 } }`, "ok", ast.NewTerm(mustObj(t, `{"xs": [1, -1, 2]}`)))
	if !v.Equal(ast.BooleanTerm(false)) {
		t.Fatalf("expected ok to fall through to its default on a counterexample, got %v", v)
	}
}

func TestEveryOverUndefinedDomainFails(t *testing.T) {
	v := evalRuleSrc(t, `package p
default ok := false
ok { every x in input.missing { x > 0 } }`, "ok", ast.NullTerm())
	if !v.Equal(ast.BooleanTerm(false)) {
		t.Fatalf("expected every over an undefined domain to fail to its default, got %v", v)
	}
}

func TestBodyBacktracksAcrossSomeToFindASolution(t *testing.T) {
	v := evalRuleSrc(t, `package p
pair := [x, y] { some x in input.xs; some y in input.ys; x + y == 5 }`, "pair",
		ast.NewTerm(mustObj(t, `{"xs": [1, 2], "ys": [3, 4]}`)))
	arr, ok := v.Value.(ast.Array)
	if !ok || len(arr) != 2 {
		t.Fatalf("expected a 2-element array solution, got %v", v)
	}
	sum := mustFloat(t, arr[0]) + mustFloat(t, arr[1])
	if sum != 5 {
		t.Fatalf("expected the found pair to sum to 5, got %v", v)
	}
}

func mustObj(t *testing.T, jsonSrc string) ast.Value {
	t.Helper()
	var x interface{}
	if err := json.Unmarshal([]byte(jsonSrc), &x); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	v, err := ast.InterfaceToValue(x)
	if err != nil {
		t.Fatalf("InterfaceToValue: %v", err)
	}
	return v
}

func mustFloat(t *testing.T, term *ast.Term) float64 {
	t.Helper()
	n, ok := term.Value.(ast.Number)
	if !ok {
		t.Fatalf("expected a Number, got %#v", term.Value)
	}
	return n.Float64()
}
