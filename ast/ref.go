// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "strings"

// RefArg is one segment of a Ref's path: either a literal dot-name
// (`.foo`) or a bracketed expression (`[expr]`), per spec.md §3's
// `RefArg is Dot(string)|Bracket(expr)`.
type RefArg struct {
	Dot     string
	Bracket *Term
}

// NewDotArg returns a dot-segment RefArg.
func NewDotArg(name string) RefArg { return RefArg{Dot: name} }

// NewBracketArg returns a bracket-segment RefArg.
func NewBracketArg(expr *Term) RefArg { return RefArg{Bracket: expr} }

// IsDot returns true if this segment is a literal dot-name.
func (a RefArg) IsDot() bool { return a.Bracket == nil }

func (a RefArg) String() string {
	if a.IsDot() {
		return "." + a.Dot
	}
	if s, ok := a.Bracket.Value.(String); ok && isBareWord(string(s)) {
		return "." + string(s)
	}
	return "[" + a.Bracket.String() + "]"
}

func (a RefArg) equal(other RefArg) bool {
	if a.IsDot() != other.IsDot() {
		return false
	}
	if a.IsDot() {
		return a.Dot == other.Dot
	}
	return a.Bracket.Equal(other.Bracket)
}

func (a RefArg) hash() uint64 {
	if a.IsDot() {
		return hashFNV("dot:" + a.Dot)
	}
	return combineHash(hashFNV("bracket:"), a.Bracket.Hash())
}

func (a RefArg) isGround() bool {
	if a.IsDot() {
		return true
	}
	return a.Bracket.IsGround()
}

func isBareWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if i > 0 && !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// Ref represents a reference into a document: a base expression (usually
// a Var such as `input` or `data`, but a Call or another Ref is also
// possible as the base of a chained reference) followed by zero or more
// dot/bracket path segments.
type Ref struct {
	Head *Term
	Path []RefArg
}

// RefTerm creates a new Term with a Ref value.
func RefTerm(head *Term, path ...RefArg) *Term {
	return NewTerm(Ref{Head: head, Path: path})
}

// Append returns a new Ref with arg appended to the path.
func (r Ref) Append(arg RefArg) Ref {
	path := make([]RefArg, len(r.Path)+1)
	copy(path, r.Path)
	path[len(r.Path)] = arg
	return Ref{Head: r.Head, Path: path}
}

func (r Ref) Equal(other Value) bool {
	o, ok := other.(Ref)
	if !ok || len(r.Path) != len(o.Path) || !r.Head.Equal(o.Head) {
		return false
	}
	for i := range r.Path {
		if !r.Path[i].equal(o.Path[i]) {
			return false
		}
	}
	return true
}

func (r Ref) IsGround() bool {
	if !r.Head.IsGround() {
		return false
	}
	for _, a := range r.Path {
		if !a.isGround() {
			return false
		}
	}
	return true
}

func (r Ref) String() string {
	var b strings.Builder
	b.WriteString(r.Head.String())
	for _, a := range r.Path {
		b.WriteString(a.String())
	}
	return b.String()
}

func (r Ref) Hash() uint64 {
	h := r.Head.Hash()
	for _, a := range r.Path {
		h = combineHash(h, a.hash())
	}
	return h
}

// StaticDotPath returns the dot-delimited string path of a reference whose
// Head is a Var and whose Path segments are all dot-names or
// bracket segments holding a literal String (e.g. `data.foo.bar` or
// `data["foo"]["bar"]`), plus true. It returns false if the reference is
// not fully static (e.g. it contains a variable index).
func (r Ref) StaticDotPath() ([]string, bool) {
	v, ok := r.Head.Value.(Var)
	if !ok {
		return nil, false
	}
	parts := []string{string(v)}
	for _, a := range r.Path {
		if a.IsDot() {
			parts = append(parts, a.Dot)
			continue
		}
		s, ok := a.Bracket.Value.(String)
		if !ok {
			return nil, false
		}
		parts = append(parts, string(s))
	}
	return parts, true
}
