// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "strings"

// Array is an ordered sequence of Terms.
type Array []*Term

// ArrayTerm creates a new Term with an Array value.
func ArrayTerm(a ...*Term) *Term { return NewTerm(Array(a)) }

func (arr Array) Equal(other Value) bool {
	o, ok := other.(Array)
	if !ok || len(arr) != len(o) {
		return false
	}
	for i := range arr {
		if !arr[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (arr Array) IsGround() bool {
	for _, t := range arr {
		if !t.IsGround() {
			return false
		}
	}
	return true
}

func (arr Array) String() string {
	parts := make([]string, len(arr))
	for i, t := range arr {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (arr Array) Hash() uint64 {
	h := hashFNV("array:")
	for _, t := range arr {
		h = combineHash(h, t.Hash())
	}
	return h
}

// Get returns the element at index i, or nil if i is out of range.
func (arr Array) Get(i int) *Term {
	if i < 0 || i >= len(arr) {
		return nil
	}
	return arr[i]
}
