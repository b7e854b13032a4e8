// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import (
	"testing"

	"github.com/r6e/regolite/ast"
	"github.com/r6e/regolite/topdown/builtins"
)

func newTestEnv(t *testing.T) *Environment {
	t.Helper()
	mod, err := ast.ParseModule("t.rego", "package p\n")
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	cm, err := ast.Compile(mod)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return NewEnvironment(cm, nil, nil, builtins.Default())
}

func TestUnifyBindsFreeVariable(t *testing.T) {
	env := newTestEnv(t)
	x := ast.NewTerm(ast.Var("x"))
	if !Unify(x, ast.IntNumberTerm(1), env) {
		t.Fatal("expected unification of a free variable to succeed")
	}
	bound, ok := env.Lookup("x")
	if !ok || !bound.Equal(ast.IntNumberTerm(1)) {
		t.Fatalf("expected x bound to 1, got %v", bound)
	}
}

func TestUnifyTwoFreeVariablesLinksThem(t *testing.T) {
	env := newTestEnv(t)
	x := ast.NewTerm(ast.Var("x"))
	y := ast.NewTerm(ast.Var("y"))
	if !Unify(x, y, env) {
		t.Fatal("expected unification of two free variables to succeed")
	}
	// y is now bound to the Term x itself (not re-resolved), while x
	// stays free. Confirm x itself remains unresolved at this point.
	if _, ok := env.Lookup("x"); ok {
		t.Fatal("x should still be free; only y was bound to point at x")
	}
}

func TestUnifyGroundValuesEqual(t *testing.T) {
	env := newTestEnv(t)
	if !Unify(ast.IntNumberTerm(1), ast.IntNumberTerm(1), env) {
		t.Fatal("equal ground values should unify")
	}
	if Unify(ast.IntNumberTerm(1), ast.IntNumberTerm(2), env) {
		t.Fatal("unequal ground values should not unify")
	}
}

func TestUnifyArraysElementwise(t *testing.T) {
	env := newTestEnv(t)
	x := ast.NewTerm(ast.Var("x"))
	lhs := ast.ArrayTerm(ast.IntNumberTerm(1), x)
	rhs := ast.ArrayTerm(ast.IntNumberTerm(1), ast.IntNumberTerm(2))
	if !Unify(lhs, rhs, env) {
		t.Fatal("expected array destructuring to succeed")
	}
	bound, ok := env.Lookup("x")
	if !ok || !bound.Equal(ast.IntNumberTerm(2)) {
		t.Fatalf("expected x bound to 2 via array destructuring, got %v", bound)
	}
}

func TestUnifyArraysDifferentLengthFails(t *testing.T) {
	env := newTestEnv(t)
	lhs := ast.ArrayTerm(ast.IntNumberTerm(1))
	rhs := ast.ArrayTerm(ast.IntNumberTerm(1), ast.IntNumberTerm(2))
	if Unify(lhs, rhs, env) {
		t.Fatal("arrays of different lengths must not unify")
	}
}

func TestUnifyObjectsByKeySet(t *testing.T) {
	env := newTestEnv(t)
	x := ast.NewTerm(ast.Var("x"))

	a := ast.NewObject()
	a.Insert(ast.StringTerm("k"), x)
	b := ast.NewObject()
	b.Insert(ast.StringTerm("k"), ast.IntNumberTerm(42))

	if !Unify(ast.NewTerm(a), ast.NewTerm(b), env) {
		t.Fatal("expected object unification over matching key sets to succeed")
	}
	bound, ok := env.Lookup("x")
	if !ok || !bound.Equal(ast.IntNumberTerm(42)) {
		t.Fatalf("expected x bound to 42, got %v", bound)
	}
}

func TestUnifyObjectsDifferentKeySetFails(t *testing.T) {
	env := newTestEnv(t)
	a := ast.NewObject()
	a.Insert(ast.StringTerm("k"), ast.IntNumberTerm(1))
	b := ast.NewObject()
	b.Insert(ast.StringTerm("other"), ast.IntNumberTerm(1))
	if Unify(ast.NewTerm(a), ast.NewTerm(b), env) {
		t.Fatal("objects with different key sets must not unify")
	}
}

func TestUnifySetsCompareByEqualityNotDestructuring(t *testing.T) {
	env := newTestEnv(t)
	// A free variable nested inside a set term is NOT a destructuring
	// target (spec.md §4.5): sets unify by whole-value equality only.
	x := ast.NewTerm(ast.Var("x"))
	a := ast.NewTerm(ast.NewSet(x))
	b := ast.NewTerm(ast.NewSet(ast.IntNumberTerm(1)))
	if Unify(a, b, env) {
		t.Fatal("a set containing an unbound variable must not unify via destructuring")
	}
	if _, ok := env.Lookup("x"); ok {
		t.Fatal("x must remain unbound; sets never destructure their members")
	}
}

func TestUnifyReservedRootsResolveBeforeBinding(t *testing.T) {
	mod, err := ast.ParseModule("t.rego", "package p\n")
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	cm, err := ast.Compile(mod)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	env := NewEnvironment(cm, ast.IntNumberTerm(7), nil, builtins.Default())
	input := ast.NewTerm(ast.Var("input"))
	if !Unify(input, ast.IntNumberTerm(7), env) {
		t.Fatal("input must resolve to its current value before unification, not bind as a fresh variable")
	}
}

func TestEnvironmentScopeRestoresAfterPop(t *testing.T) {
	env := newTestEnv(t)
	env.Bind(ast.Var("x"), ast.IntNumberTerm(1))
	env.pushScope()
	env.Bind(ast.Var("x"), ast.IntNumberTerm(2))
	if v, ok := env.Lookup("x"); !ok || !v.Equal(ast.IntNumberTerm(2)) {
		t.Fatalf("expected inner scope shadow, got %v", v)
	}
	env.popScope()
	if v, ok := env.Lookup("x"); !ok || !v.Equal(ast.IntNumberTerm(1)) {
		t.Fatalf("expected outer binding restored after pop, got %v", v)
	}
}
