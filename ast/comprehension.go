// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// ArrayComprehension represents `[term | body]`.
type ArrayComprehension struct {
	Term *Term
	Body Body
}

// ArrayComprehensionTerm creates a new Term with an ArrayComprehension value.
func ArrayComprehensionTerm(term *Term, body Body) *Term {
	return NewTerm(&ArrayComprehension{Term: term, Body: body})
}

func (ac *ArrayComprehension) Equal(other Value) bool {
	o, ok := other.(*ArrayComprehension)
	return ok && ac.Term.Equal(o.Term) && ac.Body.Equal(o.Body)
}
func (ac *ArrayComprehension) IsGround() bool { return ac.Term.IsGround() }
func (ac *ArrayComprehension) String() string {
	return "[" + ac.Term.String() + " | " + ac.Body.String() + "]"
}
func (ac *ArrayComprehension) Hash() uint64 {
	return combineHash(hashFNV("arraycompr:"), combineHash(ac.Term.Hash(), ac.Body.Hash()))
}

// SetComprehension represents `{term | body}`.
type SetComprehension struct {
	Term *Term
	Body Body
}

// SetComprehensionTerm creates a new Term with a SetComprehension value.
func SetComprehensionTerm(term *Term, body Body) *Term {
	return NewTerm(&SetComprehension{Term: term, Body: body})
}

func (sc *SetComprehension) Equal(other Value) bool {
	o, ok := other.(*SetComprehension)
	return ok && sc.Term.Equal(o.Term) && sc.Body.Equal(o.Body)
}
func (sc *SetComprehension) IsGround() bool { return sc.Term.IsGround() }
func (sc *SetComprehension) String() string {
	return "{" + sc.Term.String() + " | " + sc.Body.String() + "}"
}
func (sc *SetComprehension) Hash() uint64 {
	return combineHash(hashFNV("setcompr:"), combineHash(sc.Term.Hash(), sc.Body.Hash()))
}

// ObjectComprehension represents `{key: value | body}`.
type ObjectComprehension struct {
	Key   *Term
	Value *Term
	Body  Body
}

// ObjectComprehensionTerm creates a new Term with an ObjectComprehension value.
func ObjectComprehensionTerm(key, value *Term, body Body) *Term {
	return NewTerm(&ObjectComprehension{Key: key, Value: value, Body: body})
}

func (oc *ObjectComprehension) Equal(other Value) bool {
	o, ok := other.(*ObjectComprehension)
	return ok && oc.Key.Equal(o.Key) && oc.Value.Equal(o.Value) && oc.Body.Equal(o.Body)
}
func (oc *ObjectComprehension) IsGround() bool { return oc.Key.IsGround() && oc.Value.IsGround() }
func (oc *ObjectComprehension) String() string {
	return "{" + oc.Key.String() + ": " + oc.Value.String() + " | " + oc.Body.String() + "}"
}
func (oc *ObjectComprehension) Hash() uint64 {
	return combineHash(hashFNV("objcompr:"), combineHash(combineHash(oc.Key.Hash(), oc.Value.Hash()), oc.Body.Hash()))
}
