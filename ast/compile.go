// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// CompiledModule is the immutable output of Compile: a module whose rules
// have been grouped by name, conflict- and safety-checked, and whose
// inter-rule dependency graph has been built. Nothing about a
// CompiledModule is mutated after Compile returns, so it may be shared
// across concurrent Evaluators (spec.md §5).
type CompiledModule struct {
	Package         *Package
	Imports         []*Import
	RulesByName     map[string][]*Rule
	RuleOrder       []string // insertion order, for deterministic root-document iteration
	DependencyGraph map[string][]string
}

// reservedSafeNames are always considered bound, independent of any
// binding construct.
var reservedSafeNames = NewVarSet("input", "data", "_")

// Compile runs the indexing, conflict-check, safety-check and
// dependency-graph passes over mod and returns the resulting
// CompiledModule, or the accumulated Errors if any pass fails.
func Compile(mod *Module) (*CompiledModule, error) {
	cm := &CompiledModule{
		Package:     mod.Package,
		Imports:     mod.Imports,
		RulesByName: map[string][]*Rule{},
	}

	var errs Errors

	for _, rule := range mod.Rules {
		name := string(rule.Head.Name)
		if _, ok := cm.RulesByName[name]; !ok {
			cm.RuleOrder = append(cm.RuleOrder, name)
		}
		cm.RulesByName[name] = append(cm.RulesByName[name], rule)
	}

	for name, rules := range cm.RulesByName {
		errs = append(errs, checkConflicts(name, rules)...)
	}

	ruleNames := NewVarSet()
	for name := range cm.RulesByName {
		ruleNames.Add(Var(name))
	}
	for _, rules := range cm.RulesByName {
		for _, rule := range rules {
			errs = append(errs, checkSafety(rule, ruleNames)...)
			for c := rule.Else; c != nil; c = c.Else {
				errs = append(errs, checkSafety(c, ruleNames)...)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	cm.DependencyGraph = buildDependencyGraph(mod, cm.RulesByName)

	return cm, nil
}

// checkConflicts enforces spec.md §4.3's per-name-group rules: a default
// rule is tracked separately (it never conflicts with the regular
// rules it falls back for); all remaining rules must agree on Kind, and
// function rules must agree on arity.
func checkConflicts(name string, rules []*Rule) Errors {
	var errs Errors
	var kind RuleKind
	kindSet := false
	arity := -1
	sawDefault := false

	for _, rule := range rules {
		if rule.Default {
			if sawDefault {
				errs = append(errs, NewError(CompileErr, rule.Location,
					"multiple default rules for %q", name))
			}
			sawDefault = true
			continue
		}
		if !kindSet {
			kind = rule.Head.Kind
			kindSet = true
		} else if rule.Head.Kind != kind {
			errs = append(errs, NewError(CompileErr, rule.Head.Location,
				"rule %q: %s rule conflicts with %s rule of the same name", name, rule.Head.Kind, kind))
		}
		if rule.Head.Kind == FunctionRule {
			if arity < 0 {
				arity = len(rule.Head.Args)
			} else if len(rule.Head.Args) != arity {
				errs = append(errs, NewError(CompileErr, rule.Head.Location,
					"function %q: arity %d conflicts with arity %d", name, len(rule.Head.Args), arity))
			}
		}
	}
	return errs
}

// checkSafety verifies that every variable referenced in rule's head and
// body is bound by some binding construct, a function parameter, a rule
// name of the module, or a reserved name (spec.md §4.3's safety
// semantics). It does not enforce strict left-to-right ordering of
// binding-before-use within a single literal; it is a whole-body
// over-approximation, erring toward accepting rather than spuriously
// rejecting legitimate rules. Variables that appear only in `with`
// modifiers are not checked here; a bare-variable replacement is
// checked when the modifier is applied during evaluation.
func checkSafety(rule *Rule, ruleNames VarSet) Errors {
	bound := NewVarSet()
	bound.Update(reservedSafeNames)
	bound.Update(ruleNames)

	if rule.Head.Kind == FunctionRule {
		for _, a := range rule.Head.Args {
			bound.Update(Vars(a))
		}
	}

	collectBound(rule.Body, bound)

	referenced := VarSet{}
	for _, lit := range rule.Body {
		outer := *lit
		outer.With = nil
		referenced.Update(Vars(&outer))
	}
	if rule.Head.Value != nil {
		referenced.Update(Vars(rule.Head.Value))
	}
	for _, seg := range rule.Head.KeyPath {
		if seg.Bracket != nil {
			referenced.Update(Vars(seg.Bracket))
		}
	}
	if rule.Head.Key != nil {
		referenced.Update(Vars(rule.Head.Key))
	}

	unsafe := referenced.Diff(bound)
	if len(unsafe) == 0 {
		return nil
	}

	names := unsafe.Sorted()
	parts := make([]string, len(names))
	for i, v := range names {
		parts[i] = string(v) + suggestionFor(v, bound)
	}
	return Errors{NewError(UnsafeVarErr, rule.Location,
		"unsafe variable(s): %s", strings.Join(parts, ", "))}
}

// suggestionFor returns " (did you mean X?)" if some bound name is a
// close edit-distance match for v, else "".
func suggestionFor(v Var, bound VarSet) string {
	best := ""
	bestDist := 3 // only suggest within a small edit distance
	for b := range bound {
		if b == "_" {
			continue
		}
		d := levenshtein.ComputeDistance(string(v), string(b))
		if d < bestDist {
			bestDist = d
			best = string(b)
		}
	}
	if best == "" {
		return ""
	}
	return " (did you mean " + best + "?)"
}

// collectBound walks body, adding every variable bound by `:=`/`=`,
// `some`, or `every`'s iteration variables, to bound. Comprehension and
// `every` bodies are scoped: their own iteration variables are visible
// only within a local copy, which is not merged back into bound.
func collectBound(body Body, bound VarSet) {
	for _, lit := range body {
		switch lit.Kind {
		case SomeLiteral:
			for _, sym := range lit.Some.Symbols {
				bound.Update(Vars(sym))
			}
		case EveryLiteral:
			local := NewVarSet()
			local.Update(bound)
			if lit.Every.Key != nil {
				local.Update(Vars(lit.Every.Key))
			}
			local.Update(Vars(lit.Every.Value))
			collectBound(lit.Every.Body, local)
		default:
			collectBoundExpr(lit.Expr, bound)
		}
	}
}

// collectBoundExpr records the LHS variables of assignment/unify
// expressions, and descends into comprehensions with a local scope copy.
func collectBoundExpr(t *Term, bound VarSet) {
	switch v := t.Value.(type) {
	case *BinaryOp:
		if v.Op == OpAssign || v.Op == OpUnify {
			bound.Update(Vars(v.Left))
		}
	case *ArrayComprehension:
		local := NewVarSet()
		local.Update(bound)
		collectBound(v.Body, local)
	case *SetComprehension:
		local := NewVarSet()
		local.Update(bound)
		collectBound(v.Body, local)
	case *ObjectComprehension:
		local := NewVarSet()
		local.Update(bound)
		collectBound(v.Body, local)
	}
}

// buildDependencyGraph walks every rule's head/body/else/with-modifiers
// for `data.*` references and resolves each to a rule name defined in
// this module (spec.md §4.3 step 4). It is informational: evaluation
// does not rely on topological order because rule results are memoized.
func buildDependencyGraph(mod *Module, rulesByName map[string][]*Rule) map[string][]string {
	graph := map[string][]string{}
	pkgParts, _ := mod.Package.Path.StaticDotPath() // ["data", ...pkg segments]

	for name, rules := range rulesByName {
		deps := NewVarSet() // reused as a string set via Var(name)
		for _, rule := range rules {
			collectDataRefs(rule, pkgParts, rulesByName, deps)
			for c := rule.Else; c != nil; c = c.Else {
				collectDataRefs(c, pkgParts, rulesByName, deps)
			}
		}
		names := deps.Sorted()
		out := make([]string, len(names))
		for i, v := range names {
			out[i] = string(v)
		}
		graph[name] = out
	}
	return graph
}

type refCollector struct {
	pkgParts []string
	known    map[string][]*Rule
	found    VarSet
}

func (c *refCollector) Visit(x interface{}) Visitor {
	if t, ok := x.(*Term); ok {
		if ref, ok := t.Value.(Ref); ok {
			if name, ok := resolveDataRef(ref, c.pkgParts, c.known); ok {
				c.found.Add(Var(name))
			}
		}
	}
	return c
}

func collectDataRefs(rule *Rule, pkgParts []string, known map[string][]*Rule, into VarSet) {
	c := &refCollector{pkgParts: pkgParts, known: known, found: into}
	Walk(c, rule.Head)
	Walk(c, rule.Body)
}

// resolveDataRef matches ref against `data.<pkg...>.<rule>` (package-
// qualified) or `data.<rule>` (direct) and returns the rule name if one
// of known's keys matches.
func resolveDataRef(ref Ref, pkgParts []string, known map[string][]*Rule) (string, bool) {
	parts, ok := ref.StaticDotPath()
	if !ok || len(parts) < 2 || parts[0] != "data" {
		return "", false
	}
	rest := parts[1:]

	if len(pkgParts) > 1 {
		pkgSuffix := pkgParts[1:] // drop leading "data"
		if len(rest) > len(pkgSuffix) && prefixEqual(rest, pkgSuffix) {
			candidate := rest[len(pkgSuffix)]
			if _, ok := known[candidate]; ok {
				return candidate, true
			}
		}
	}
	if _, ok := known[rest[0]]; ok {
		return rest[0], true
	}
	return "", false
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
