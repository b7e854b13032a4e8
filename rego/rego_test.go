// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package rego

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/r6e/regolite/ast"
)

// mustJSON converts a successful Result's value into plain Go data for
// comparison against a literal expected value in the test table.
func mustJSON(t *testing.T, term *ast.Term) interface{} {
	t.Helper()
	v, err := ast.TermJSON(term)
	if err != nil {
		t.Fatalf("TermJSON: %v", err)
	}
	return v
}

// TestDefaultAllow is spec.md §8 scenario S1.
func TestDefaultAllow(t *testing.T) {
	src := `package ex
default allow := false
allow { input.user == "admin" }`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	for _, tc := range []struct {
		user string
		want bool
	}{
		{"admin", true},
		{"bob", false},
	} {
		res := p.Evaluate(WithInput(map[string]interface{}{"user": tc.user}), WithQuery("data.ex.allow"))
		if res.Status != StatusSuccess {
			t.Fatalf("user=%s: status=%v err=%v", tc.user, res.Status, res.Error)
		}
		got := mustJSON(t, res.Value)
		if got != tc.want {
			t.Errorf("user=%s: got %v, want %v", tc.user, got, tc.want)
		}
	}
}

// TestPartialSetDeny is spec.md §8 scenario S2.
func TestPartialSetDeny(t *testing.T) {
	src := `package v
deny[m] { input.enabled == false; m := "disabled" }
deny[m] { input.timeout < 30; m := "timeout too low" }`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	res := p.Evaluate(WithInput(map[string]interface{}{"enabled": false, "timeout": float64(10)}), WithQuery("data.v.deny"))
	if res.Status != StatusSuccess {
		t.Fatalf("status=%v err=%v", res.Status, res.Error)
	}
	got, ok := mustJSON(t, res.Value).([]interface{})
	if !ok {
		t.Fatalf("expected array-shaped set, got %T", res.Value.Value)
	}
	want := map[string]bool{"disabled": true, "timeout too low": true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want set of size %d", got, len(want))
	}
	for _, g := range got {
		if !want[g.(string)] {
			t.Errorf("unexpected member %v", g)
		}
	}

	res2 := p.Evaluate(WithInput(map[string]interface{}{"enabled": true, "timeout": float64(30)}), WithQuery("data.v.deny"))
	if res2.Status != StatusSuccess {
		t.Fatalf("status=%v err=%v", res2.Status, res2.Error)
	}
	got2 := mustJSON(t, res2.Value).([]interface{})
	if len(got2) != 0 {
		t.Errorf("expected empty set, got %v", got2)
	}
}

// TestComprehension is spec.md §8 scenario S3.
func TestComprehension(t *testing.T) {
	src := `package f
evens := [n | some n in input.numbers; n % 2 == 0]`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	res := p.Evaluate(WithInput(map[string]interface{}{"numbers": []interface{}{1.0, 2.0, 3.0, 4.0}}), WithQuery("data.f.evens"))
	if res.Status != StatusSuccess {
		t.Fatalf("status=%v err=%v", res.Status, res.Error)
	}
	got := mustJSON(t, res.Value)
	want := []interface{}{int64(2), int64(4)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// TestWithOverride is spec.md §8 scenario S4.
func TestWithOverride(t *testing.T) {
	src := `package w
allow if count(input.values) == 6 with count as sum`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	res := p.Evaluate(WithInput(map[string]interface{}{"values": []interface{}{1.0, 2.0, 3.0}}), WithQuery("data.w.allow"))
	if res.Status != StatusSuccess {
		t.Fatalf("status=%v err=%v", res.Status, res.Error)
	}
	if got := mustJSON(t, res.Value); got != true {
		t.Errorf("got %v, want true", got)
	}
}

// TestNestedRuleHead is spec.md §8 scenario S5.
func TestNestedRuleHead(t *testing.T) {
	src := `package h
fruit[input.color].shade := "bright" if input.color
fruit[input.color].size := input.size if input.color`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	res := p.Evaluate(WithInput(map[string]interface{}{"color": "red", "size": float64(3)}), WithQuery("data.h.fruit"))
	if res.Status != StatusSuccess {
		t.Fatalf("status=%v err=%v", res.Status, res.Error)
	}
	got := mustJSON(t, res.Value)
	want := map[string]interface{}{"red": map[string]interface{}{"shade": "bright", "size": int64(3)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// TestConflictDetection is spec.md §8 scenario S6.
func TestConflictDetection(t *testing.T) {
	src := `package c
obj["a"] := {"x":1}
obj["a"] := {"y":2}`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	res := p.Evaluate(WithQuery("data.c.obj"))
	if res.Status != StatusError {
		t.Fatalf("expected StatusError, got %v (value=%v)", res.Status, res.Value)
	}
	if res.Error.Kind != ast.EvalErr.String() {
		t.Errorf("got error kind %q, want %q", res.Error.Kind, ast.EvalErr.String())
	}
}

// TestUnsafeRuleRejection is spec.md §8 scenario S7.
func TestUnsafeRuleRejection(t *testing.T) {
	src := `package u
allow { x > 0 }`

	_, err := NewPolicy(src)
	if err == nil {
		t.Fatal("expected compile error, got nil")
	}
	errs, ok := err.(ast.Errors)
	if !ok || len(errs) == 0 {
		t.Fatalf("expected ast.Errors, got %T: %v", err, err)
	}
	if errs[0].Code != ast.UnsafeVarErr {
		t.Errorf("got code %v, want UnsafeVarErr", errs[0].Code)
	}
}

// TestEveryOverEmptyDomain is spec.md §8 scenario S8.
func TestEveryOverEmptyDomain(t *testing.T) {
	src := `package e
ok if every x in input.xs { x > 0 }`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	res := p.Evaluate(WithInput(map[string]interface{}{"xs": []interface{}{}}), WithQuery("data.e.ok"))
	if res.Status != StatusSuccess {
		t.Fatalf("status=%v err=%v", res.Status, res.Error)
	}
	if got := mustJSON(t, res.Value); got != true {
		t.Errorf("got %v, want true", got)
	}

	res2 := p.Evaluate(WithInput(map[string]interface{}{"xs": []interface{}{1.0, -1.0}}), WithQuery("data.e.ok"))
	if res2.Status != StatusUndefined {
		t.Fatalf("status=%v (value=%v)", res2.Status, res2.Value)
	}
}

func TestRootDocument(t *testing.T) {
	src := `package root
a := 1
b := 2
c { false }`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	res := p.Evaluate()
	if res.Status != StatusSuccess {
		t.Fatalf("status=%v err=%v", res.Status, res.Error)
	}
	got := mustJSON(t, res.Value)
	want := map[string]interface{}{"a": int64(1), "b": int64(2)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStrictVsLenientBuiltinErrors(t *testing.T) {
	src := `package m
r := upper(input.x)`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	lenient := p.Evaluate(WithInput(map[string]interface{}{"x": float64(1)}), WithQuery("data.m.r"))
	if lenient.Status != StatusUndefined {
		t.Fatalf("lenient: status=%v value=%v", lenient.Status, lenient.Value)
	}

	strict := p.Evaluate(WithInput(map[string]interface{}{"x": float64(1)}), WithQuery("data.m.r"), WithEvalStrictBuiltins(true))
	if strict.Status != StatusError {
		t.Fatalf("strict: status=%v value=%v", strict.Status, strict.Value)
	}
	if strict.Error.Kind != ast.BuiltinArgumentErr.String() {
		t.Errorf("got kind %q, want %q", strict.Error.Kind, ast.BuiltinArgumentErr.String())
	}
}

func TestUndefinedVsNull(t *testing.T) {
	src := `package n
isnull if input.x == null
r := input.missing.field`

	p, err := NewPolicy(src)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	nullRes := p.Evaluate(WithInput(map[string]interface{}{"x": nil}), WithQuery("data.n.isnull"))
	if nullRes.Status != StatusSuccess || mustJSON(t, nullRes.Value) != true {
		t.Fatalf("null case: status=%v value=%v", nullRes.Status, nullRes.Value)
	}

	undefRes := p.Evaluate(WithQuery("data.n.r"))
	if undefRes.Status != StatusUndefined {
		t.Fatalf("expected undefined, got status=%v value=%v", undefRes.Status, undefRes.Value)
	}
}
