// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// Visitor defines the interface for recursively visiting AST nodes. Visit
// is called once per node; if it returns a non-nil Visitor, Walk
// continues into that node's children using the returned Visitor (most
// implementations just return themselves). Returning nil stops descent
// into that node's children.
type Visitor interface {
	Visit(x interface{}) Visitor
}

// Walk invokes vis over x and (depending on vis.Visit's return value)
// its children, recursively.
func Walk(vis Visitor, x interface{}) {
	w := vis.Visit(x)
	if w == nil {
		return
	}
	switch x := x.(type) {
	case *Module:
		Walk(w, x.Package)
		for _, i := range x.Imports {
			Walk(w, i)
		}
		for _, r := range x.Rules {
			Walk(w, r)
		}
	case *Package:
		// leaf: Path is a static ref, nothing variable to visit.
	case *Import:
		Walk(w, x.Path)
	case *Rule:
		Walk(w, x.Head)
		Walk(w, x.Body)
		if x.Else != nil {
			Walk(w, x.Else)
		}
	case *Head:
		if x.Key != nil {
			Walk(w, x.Key)
		}
		for _, seg := range x.KeyPath {
			if seg.Bracket != nil {
				Walk(w, seg.Bracket)
			}
		}
		if x.Value != nil {
			Walk(w, x.Value)
		}
		for _, a := range x.Args {
			Walk(w, a)
		}
	case Body:
		for _, lit := range x {
			Walk(w, lit)
		}
	case *Literal:
		switch x.Kind {
		case SomeLiteral:
			Walk(w, x.Some)
		case EveryLiteral:
			Walk(w, x.Every)
		default:
			Walk(w, x.Expr)
		}
		for _, wm := range x.With {
			Walk(w, wm)
		}
	case *SomeDecl:
		for _, s := range x.Symbols {
			Walk(w, s)
		}
		if x.Collection != nil {
			Walk(w, x.Collection)
		}
	case *Every:
		if x.Key != nil {
			Walk(w, x.Key)
		}
		Walk(w, x.Value)
		Walk(w, x.Domain)
		Walk(w, x.Body)
	case *With:
		Walk(w, x.Target)
		Walk(w, x.Value)
	case *Term:
		Walk(w, x.Value)
	case Array:
		for _, t := range x {
			Walk(w, t)
		}
	case *Object:
		x.Foreach(func(k, v *Term) {
			Walk(w, k)
			Walk(w, v)
		})
	case *Set:
		x.Foreach(func(t *Term) {
			Walk(w, t)
		})
	case Ref:
		Walk(w, x.Head)
		for _, a := range x.Path {
			if a.Bracket != nil {
				Walk(w, a.Bracket)
			}
		}
	case *BinaryOp:
		Walk(w, x.Left)
		Walk(w, x.Right)
	case *UnaryOp:
		Walk(w, x.Operand)
	case *Call:
		for _, a := range x.Args {
			Walk(w, a)
		}
	case *ArrayComprehension:
		Walk(w, x.Term)
		Walk(w, x.Body)
	case *SetComprehension:
		Walk(w, x.Term)
		Walk(w, x.Body)
	case *ObjectComprehension:
		Walk(w, x.Key)
		Walk(w, x.Value)
		Walk(w, x.Body)
	case *TemplateString:
		for _, p := range x.Parts {
			if p.Expr != nil {
				Walk(w, p.Expr)
			}
		}
	}
}

// VarSet is a set of Var names.
type VarSet map[Var]struct{}

// NewVarSet returns a VarSet containing vs.
func NewVarSet(vs ...Var) VarSet {
	s := VarSet{}
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v into the set.
func (s VarSet) Add(v Var) { s[v] = struct{}{} }

// Contains returns true if v is a member.
func (s VarSet) Contains(v Var) bool { _, ok := s[v]; return ok }

// Update adds every member of other into s.
func (s VarSet) Update(other VarSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Diff returns a new VarSet with members of s not present in other.
func (s VarSet) Diff(other VarSet) VarSet {
	out := VarSet{}
	for v := range s {
		if !other.Contains(v) {
			out[v] = struct{}{}
		}
	}
	return out
}

// Sorted returns the set's members sorted lexically.
func (s VarSet) Sorted() []Var {
	out := make([]Var, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

type varVisitor struct {
	vars VarSet
}

func (vis *varVisitor) Visit(x interface{}) Visitor {
	if v, ok := x.(*Term); ok {
		if name, ok := v.Value.(Var); ok && !name.IsWildcard() {
			vis.vars.Add(name)
		}
	}
	if v, ok := x.(Var); ok && !v.IsWildcard() {
		vis.vars.Add(v)
	}
	return vis
}

// Vars returns every Var referenced anywhere inside x (a Term, Body,
// Rule, etc.), excluding wildcards.
func Vars(x interface{}) VarSet {
	vis := &varVisitor{vars: VarSet{}}
	Walk(vis, x)
	return vis.vars
}
