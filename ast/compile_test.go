// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "testing"

func mustCompile(t *testing.T, src string) *CompiledModule {
	t.Helper()
	mod, err := ParseModule("t.rego", src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	cm, err := Compile(mod)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return cm
}

func TestCompileIsDeterministic(t *testing.T) {
	src := `package p
allow { input.x == 1 }`
	a := mustCompile(t, src)
	b := mustCompile(t, src)
	if len(a.RulesByName) != len(b.RulesByName) || len(a.DependencyGraph) != len(b.DependencyGraph) {
		t.Fatal("two compiles of the same source produced different shapes")
	}
}

func TestCompileRejectsKindConflict(t *testing.T) {
	mod, err := ParseModule("t.rego", `package p
r := 1
r[x] { x := 1 }`)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	_, err = Compile(mod)
	if err == nil {
		t.Fatal("expected a compile error for conflicting rule kinds")
	}
	errs := err.(Errors)
	if errs[0].Code != CompileErr {
		t.Errorf("got code %v, want CompileErr", errs[0].Code)
	}
}

func TestCompileRejectsArityConflict(t *testing.T) {
	mod, err := ParseModule("t.rego", `package p
f(x) := x
f(x, y) := y`)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	_, err = Compile(mod)
	if err == nil {
		t.Fatal("expected a compile error for conflicting function arities")
	}
}

func TestCompileRejectsMultipleDefaults(t *testing.T) {
	mod, err := ParseModule("t.rego", `package p
default allow := false
default allow := true`)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	_, err = Compile(mod)
	if err == nil {
		t.Fatal("expected a compile error for multiple default rules")
	}
}

func TestCompileSafetyAcceptsBoundNames(t *testing.T) {
	mustCompile(t, `package p
r { some x in input.xs; y := x + 1; y > 0 }`)
}

func TestCompileSafetyRejectsUnboundVar(t *testing.T) {
	mod, err := ParseModule("t.rego", `package p
allow { x > 0 }`)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	_, err = Compile(mod)
	if err == nil {
		t.Fatal("expected unsafe-variable compile error")
	}
	errs := err.(Errors)
	if errs[0].Code != UnsafeVarErr {
		t.Fatalf("got code %v, want UnsafeVarErr", errs[0].Code)
	}
}

func TestCompileDependencyGraph(t *testing.T) {
	cm := mustCompile(t, `package p
allow { data.p.is_ok }
is_ok { input.x == 1 }`)
	deps := cm.DependencyGraph["allow"]
	found := false
	for _, d := range deps {
		if d == "is_ok" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected allow to depend on is_ok, got %v", deps)
	}
}

func TestCompiledModuleRuleOrderIsInsertionOrder(t *testing.T) {
	cm := mustCompile(t, `package p
z := 1
a := 2
m := 3`)
	want := []string{"z", "a", "m"}
	if len(cm.RuleOrder) != len(want) {
		t.Fatalf("got %v, want %v", cm.RuleOrder, want)
	}
	for i := range want {
		if cm.RuleOrder[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, cm.RuleOrder[i], want[i])
		}
	}
}
