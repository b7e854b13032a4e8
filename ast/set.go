// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"strings"

	"github.com/r6e/regolite/internal/util"
)

// Set is an unordered collection of unique Terms. Insertion order is
// preserved for iteration (spec.md §5: "some k in O" / partial-set
// results visit in insertion order), but Equal treats Sets as unordered
// multisets-of-unique-values. Membership is backed by a util.HashMap
// keyed by Term.Equal/Term.Hash, mapping each member to its position in
// elems; elems itself stays a plain slice since HashMap's iteration
// order is not the insertion order Slice/Foreach must preserve.
type Set struct {
	elems []*Term
	index *util.HashMap[*Term, int]
}

func newSetIndex() *util.HashMap[*Term, int] {
	return util.NewHashMap[*Term, int](
		func(a, b any) bool { return a.(*Term).Equal(b.(*Term)) },
		func(a any) int { return int(a.(*Term).Hash()) },
	)
}

// NewSet returns an empty Set, optionally seeded with terms (duplicates
// per Equal are dropped, first occurrence wins its position).
func NewSet(terms ...*Term) *Set {
	s := &Set{index: newSetIndex()}
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// SetTerm creates a new Term with a Set value.
func SetTerm(terms ...*Term) *Term { return NewTerm(NewSet(terms...)) }

// Add inserts t if not already present (by Equal).
func (s *Set) Add(t *Term) {
	if s.Contains(t) {
		return
	}
	s.index.Put(t, len(s.elems))
	s.elems = append(s.elems, t)
}

// Contains returns true if t is a member of s.
func (s *Set) Contains(t *Term) bool {
	_, ok := s.index.Get(t)
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.elems) }

// Slice returns the members in insertion order.
func (s *Set) Slice() []*Term {
	out := make([]*Term, len(s.elems))
	copy(out, s.elems)
	return out
}

// Foreach calls f once per member, in insertion order.
func (s *Set) Foreach(f func(*Term)) {
	for _, t := range s.elems {
		f(t)
	}
}

func (s *Set) Equal(other Value) bool {
	o, ok := other.(*Set)
	if !ok || s.Len() != o.Len() {
		return false
	}
	for _, t := range s.elems {
		if !o.Contains(t) {
			return false
		}
	}
	return true
}

func (s *Set) IsGround() bool {
	for _, t := range s.elems {
		if !t.IsGround() {
			return false
		}
	}
	return true
}

func (s *Set) String() string {
	if len(s.elems) == 0 {
		return "set()"
	}
	parts := make([]string, len(s.elems))
	for i, t := range s.elems {
		parts[i] = t.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *Set) Hash() uint64 {
	var h uint64
	for _, t := range s.elems {
		h += t.Hash()
	}
	return hashFNV("set:") ^ h
}

// Union returns a new Set containing members of both s and other.
func (s *Set) Union(other *Set) *Set {
	out := NewSet(s.Slice()...)
	other.Foreach(out.Add)
	return out
}

// Intersect returns a new Set containing members present in both s and other.
func (s *Set) Intersect(other *Set) *Set {
	out := NewSet()
	for _, t := range s.elems {
		if other.Contains(t) {
			out.Add(t)
		}
	}
	return out
}

// Diff returns a new Set containing members of s not present in other.
func (s *Set) Diff(other *Set) *Set {
	out := NewSet()
	for _, t := range s.elems {
		if !other.Contains(t) {
			out.Add(t)
		}
	}
	return out
}
