// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"strings"

	"github.com/r6e/regolite/internal/util"
)

// Object is an ordered mapping from Term to Term. Iteration (Keys, Foreach)
// preserves insertion order, as spec.md §5's ordering contract requires,
// but Equal compares the pairs as an unordered set: two Objects with the
// same key/value pairs in different insertion orders are equal. The
// key -> slice-position index is a util.HashMap keyed by Term.Equal/
// Term.Hash; keys/vals stay in their own slices since HashMap's bucket
// iteration order isn't the insertion order this type has to preserve.
type Object struct {
	keys  []*Term
	vals  []*Term
	index *util.HashMap[*Term, int]
}

func newObjectIndex() *util.HashMap[*Term, int] {
	return util.NewHashMap[*Term, int](
		func(a, b any) bool { return a.(*Term).Equal(b.(*Term)) },
		func(a any) int { return int(a.(*Term).Hash()) },
	)
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{index: newObjectIndex()}
}

// ObjectTerm creates a new Term with an Object value built from the given
// key/value pairs, in order (later duplicate keys overwrite earlier ones,
// matching ordinary map-literal semantics).
func ObjectTerm(pairs ...[2]*Term) *Term {
	obj := NewObject()
	for _, p := range pairs {
		obj.Insert(p[0], p[1])
	}
	return NewTerm(obj)
}

func (obj *Object) find(key *Term) int {
	if i, ok := obj.index.Get(key); ok {
		return i
	}
	return -1
}

// Get returns the value for key, or nil if key is absent.
func (obj *Object) Get(key *Term) *Term {
	if i := obj.find(key); i >= 0 {
		return obj.vals[i]
	}
	return nil
}

// Insert sets key to value, appending a new entry if key is not already
// present (preserving its original position if it is).
func (obj *Object) Insert(key, value *Term) {
	if i := obj.find(key); i >= 0 {
		obj.vals[i] = value
		return
	}
	obj.index.Put(key, len(obj.keys))
	obj.keys = append(obj.keys, key)
	obj.vals = append(obj.vals, value)
}

// Delete removes key, if present.
func (obj *Object) Delete(key *Term) {
	i := obj.find(key)
	if i < 0 {
		return
	}
	obj.keys = append(obj.keys[:i], obj.keys[i+1:]...)
	obj.vals = append(obj.vals[:i], obj.vals[i+1:]...)
	obj.index = newObjectIndex()
	for j, k := range obj.keys {
		obj.index.Put(k, j)
	}
}

// Len returns the number of entries.
func (obj *Object) Len() int { return len(obj.keys) }

// Keys returns the keys in insertion order.
func (obj *Object) Keys() []*Term {
	out := make([]*Term, len(obj.keys))
	copy(out, obj.keys)
	return out
}

// Foreach calls f once per entry, in insertion order.
func (obj *Object) Foreach(f func(key, value *Term)) {
	for i := range obj.keys {
		f(obj.keys[i], obj.vals[i])
	}
}

func (obj *Object) Equal(other Value) bool {
	o, ok := other.(*Object)
	if !ok || obj.Len() != o.Len() {
		return false
	}
	for i, k := range obj.keys {
		ov := o.Get(k)
		if ov == nil || !ov.Equal(obj.vals[i]) {
			return false
		}
	}
	return true
}

func (obj *Object) IsGround() bool {
	for i, k := range obj.keys {
		if !k.IsGround() || !obj.vals[i].IsGround() {
			return false
		}
	}
	return true
}

func (obj *Object) String() string {
	parts := make([]string, len(obj.keys))
	for i, k := range obj.keys {
		parts[i] = k.String() + ": " + obj.vals[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (obj *Object) Hash() uint64 {
	// Order-independent: sum of per-pair hashes, matching the
	// unordered-set-of-pairs equality contract.
	var h uint64
	for i, k := range obj.keys {
		h += combineHash(k.Hash(), obj.vals[i].Hash())
	}
	return hashFNV("object:") ^ h
}

// Copy returns a shallow copy of the object (same Term pointers, new
// backing slices/index), used by the with-modifier engine when it
// overlays a sub-path of input/data.
func (obj *Object) Copy() *Object {
	return &Object{
		keys:  append([]*Term(nil), obj.keys...),
		vals:  append([]*Term(nil), obj.vals...),
		index: obj.index.Copy(),
	}
}
