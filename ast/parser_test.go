// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "testing"

func parseOK(t *testing.T, src string) *Module {
	t.Helper()
	mod, err := ParseModule("t.rego", src)
	if err != nil {
		t.Fatalf("ParseModule(%q): %v", src, err)
	}
	return mod
}

func TestParsePackageAndImport(t *testing.T) {
	mod := parseOK(t, "package a.b.c\nimport data.x.y as z\n")
	parts, ok := mod.Package.Path.StaticDotPath()
	if !ok {
		t.Fatal("expected a static package path")
	}
	want := []string{"data", "a", "b", "c"}
	if len(parts) != len(want) {
		t.Fatalf("got %v, want %v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d: got %q, want %q", i, parts[i], want[i])
		}
	}
	if len(mod.Imports) != 1 || mod.Imports[0].Alias != Var("z") {
		t.Fatalf("expected one import aliased z, got %+v", mod.Imports)
	}
}

func TestParseCompleteRuleWithDefault(t *testing.T) {
	mod := parseOK(t, `package p
default allow := false
allow { input.x == 1 }`)
	if len(mod.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(mod.Rules))
	}
	if !mod.Rules[0].Default {
		t.Error("first rule should be the default")
	}
	if mod.Rules[1].Head.Kind != CompleteRule {
		t.Errorf("second rule should be a complete rule, got %v", mod.Rules[1].Head.Kind)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 == 7 must parse as (1 + (2 * 3)) == 7, i.e. the top-level
	// node is OpEq with a OpAdd on the left whose right child is OpMul.
	mod := parseOK(t, `package p
r { 1 + 2 * 3 == 7 }`)
	body := mod.Rules[0].Body
	if len(body) != 1 {
		t.Fatalf("expected 1 literal, got %d", len(body))
	}
	eq, ok := body[0].Expr.Value.(*BinaryOp)
	if !ok || eq.Op != OpEq {
		t.Fatalf("expected top-level ==, got %#v", body[0].Expr.Value)
	}
	add, ok := eq.Left.Value.(*BinaryOp)
	if !ok || add.Op != OpAdd {
		t.Fatalf("expected left side to be +, got %#v", eq.Left.Value)
	}
	mul, ok := add.Right.Value.(*BinaryOp)
	if !ok || mul.Op != OpMul {
		t.Fatalf("expected + right child to be *, got %#v", add.Right.Value)
	}
}

func TestParseArrayComprehension(t *testing.T) {
	mod := parseOK(t, `package p
evens := [n | some n in input.xs; n % 2 == 0]`)
	r := mod.Rules[0]
	compr, ok := r.Head.Value.Value.(*ArrayComprehension)
	if !ok {
		t.Fatalf("expected an ArrayComprehension, got %#v", r.Head.Value.Value)
	}
	if len(compr.Body) != 2 {
		t.Fatalf("expected 2 literals in comprehension body, got %d", len(compr.Body))
	}
}

func TestParseSetVsObjectComprehension(t *testing.T) {
	mod := parseOK(t, `package p
s := {n | some n in input.xs}
o := {k: v | some k, v in input.m}`)
	if _, ok := mod.Rules[0].Head.Value.Value.(*SetComprehension); !ok {
		t.Errorf("expected SetComprehension, got %#v", mod.Rules[0].Head.Value.Value)
	}
	if _, ok := mod.Rules[1].Head.Value.Value.(*ObjectComprehension); !ok {
		t.Errorf("expected ObjectComprehension, got %#v", mod.Rules[1].Head.Value.Value)
	}
}

func TestParsePartialSetAndObjectHeads(t *testing.T) {
	mod := parseOK(t, `package p
deny[msg] { msg := "no" }
obj[k] := v { k := "a"; v := 1 }`)
	if mod.Rules[0].Head.Kind != PartialSetRule {
		t.Errorf("expected PartialSetRule, got %v", mod.Rules[0].Head.Kind)
	}
	if mod.Rules[1].Head.Kind != PartialObjectRule {
		t.Errorf("expected PartialObjectRule, got %v", mod.Rules[1].Head.Kind)
	}
}

func TestParseFunctionRule(t *testing.T) {
	mod := parseOK(t, `package p
add(x, y) := z { z := x + y }`)
	h := mod.Rules[0].Head
	if h.Kind != FunctionRule {
		t.Fatalf("expected FunctionRule, got %v", h.Kind)
	}
	if len(h.Args) != 2 {
		t.Fatalf("expected 2 params, got %d", len(h.Args))
	}
}

func TestParseNestedRuleHeadExpandsToKeyPath(t *testing.T) {
	mod := parseOK(t, `package p
fruit[input.color].shade := "bright" if input.color`)
	h := mod.Rules[0].Head
	if h.Kind != PartialObjectRule {
		t.Fatalf("expected PartialObjectRule, got %v", h.Kind)
	}
	if len(h.KeyPath) != 2 {
		t.Fatalf("expected a 2-segment key path (color, shade), got %d segments", len(h.KeyPath))
	}
}

func TestParseWithModifier(t *testing.T) {
	mod := parseOK(t, `package p
allow if count(input.x) == 1 with input.x as [1]`)
	lit := mod.Rules[0].Body[0]
	if len(lit.With) != 1 {
		t.Fatalf("expected one with-modifier, got %d", len(lit.With))
	}
}

func TestParseEveryQuantifier(t *testing.T) {
	mod := parseOK(t, `package p
ok if every x in input.xs { x > 0 }`)
	lit := mod.Rules[0].Body[0]
	if lit.Kind != EveryLiteral {
		t.Fatalf("expected an EveryLiteral, got %v", lit.Kind)
	}
	if !lit.Every.Value.Equal(VarTerm("x")) {
		t.Errorf("expected iteration var x, got %v", lit.Every.Value)
	}
}

func TestParseSomeDeclaration(t *testing.T) {
	mod := parseOK(t, `package p
r { some x, y in input.m; x == y }`)
	lit := mod.Rules[0].Body[0]
	if lit.Kind != SomeLiteral {
		t.Fatalf("expected a SomeLiteral, got %v", lit.Kind)
	}
	if len(lit.Some.Symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(lit.Some.Symbols))
	}
}

func TestParseReferenceDotAndBracket(t *testing.T) {
	mod := parseOK(t, `package p
r := input.a.b["c"][0]`)
	ref, ok := mod.Rules[0].Head.Value.Value.(Ref)
	if !ok {
		t.Fatalf("expected a Ref, got %#v", mod.Rules[0].Head.Value.Value)
	}
	if len(ref.Path) != 4 {
		t.Fatalf("expected 4 path segments, got %d", len(ref.Path))
	}
}

func TestParseTemplateStringInterpolation(t *testing.T) {
	mod := parseOK(t, "package p\nr := `plain`\ns := \"hello {input.name}!\"")
	if _, ok := mod.Rules[0].Head.Value.Value.(String); !ok {
		t.Errorf("expected raw string to parse as a plain String, got %#v", mod.Rules[0].Head.Value.Value)
	}
	ts, ok := mod.Rules[1].Head.Value.Value.(*TemplateString)
	if !ok {
		t.Fatalf("expected a TemplateString, got %#v", mod.Rules[1].Head.Value.Value)
	}
	var sawExpr bool
	for _, part := range ts.Parts {
		if part.Expr != nil {
			sawExpr = true
		}
	}
	if !sawExpr {
		t.Error("expected at least one interpolated expression part")
	}
}

func TestParseElseClause(t *testing.T) {
	mod := parseOK(t, `package p
grade := "A" if input.score >= 90
else := "B" if input.score >= 80
else := "C"`)
	r := mod.Rules[0]
	if r.Else == nil {
		t.Fatal("expected an else clause")
	}
	if r.Else.Else == nil {
		t.Fatal("expected a second chained else clause")
	}
}

func TestParseUnaryNotAndNegation(t *testing.T) {
	mod := parseOK(t, `package p
r { not input.x }
s := -1`)
	if _, ok := mod.Rules[0].Body[0].Expr.Value.(*UnaryOp); !ok {
		t.Errorf("expected a UnaryOp for `not`, got %#v", mod.Rules[0].Body[0].Expr.Value)
	}
	n, ok := mod.Rules[1].Head.Value.Value.(Number)
	if !ok {
		t.Fatalf("expected a folded/negated Number, got %#v", mod.Rules[1].Head.Value.Value)
	}
	if f := n.Float64(); f != -1 {
		t.Errorf("got %v, want -1", f)
	}
}

func TestParseInvalidSyntaxProducesParseError(t *testing.T) {
	_, err := ParseModule("t.rego", "package p\nr { }}")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	errs, ok := err.(Errors)
	if !ok || len(errs) == 0 || errs[0].Code != ParseErr {
		t.Fatalf("expected ParseErr, got %v", err)
	}
}
