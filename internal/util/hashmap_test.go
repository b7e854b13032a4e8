// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package util

import "testing"

func strEq(a, b any) bool { return a.(string) == b.(string) }

func strHash(a any) int {
	s := a.(string)
	h := 0
	for _, c := range s {
		h = h*31 + int(c)
	}
	return h
}

func newStrMap() *HashMap[string, int] {
	return NewHashMap[string, int](strEq, strHash)
}

func TestHashMapPutGetDelete(t *testing.T) {
	m := newStrMap()
	m.Put("a", 1)
	m.Put("b", 2)
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() after delete = %d, want 1", m.Len())
	}
}

func TestHashMapPutOverwritesExistingKey(t *testing.T) {
	m := newStrMap()
	m.Put("a", 1)
	m.Put("a", 2)
	if m.Len() != 1 {
		t.Fatalf("expected re-Put of the same key not to grow the map, got Len()=%d", m.Len())
	}
	if v, _ := m.Get("a"); v != 2 {
		t.Fatalf("Get(a) = %d, want 2", v)
	}
}

func TestHashMapCollisionChaining(t *testing.T) {
	// Two distinct keys that hash to the same bucket must both survive.
	m := NewHashMap[string, int](strEq, func(any) int { return 0 })
	m.Put("x", 1)
	m.Put("y", 2)
	if v, ok := m.Get("x"); !ok || v != 1 {
		t.Fatalf("Get(x) = %v, %v", v, ok)
	}
	if v, ok := m.Get("y"); !ok || v != 2 {
		t.Fatalf("Get(y) = %v, %v", v, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestHashMapCopyIsIndependent(t *testing.T) {
	m := newStrMap()
	m.Put("a", 1)
	cpy := m.Copy()
	cpy.Put("b", 2)
	if m.Len() != 1 {
		t.Fatalf("mutating the copy must not affect the original, original Len()=%d", m.Len())
	}
	if cpy.Len() != 2 {
		t.Fatalf("expected copy to have 2 entries, got %d", cpy.Len())
	}
}

func TestHashMapEqualIgnoresInsertionOrder(t *testing.T) {
	a := newStrMap()
	a.Put("x", 1)
	a.Put("y", 2)

	b := newStrMap()
	b.Put("y", 2)
	b.Put("x", 1)

	if !a.Equal(b) {
		t.Fatal("maps with the same pairs in different insertion order must be equal")
	}

	b.Put("x", 3)
	if a.Equal(b) {
		t.Fatal("maps with a differing value for the same key must not be equal")
	}
}

func TestHashMapUpdateOverwritesFromOther(t *testing.T) {
	a := newStrMap()
	a.Put("x", 1)
	a.Put("y", 2)

	b := newStrMap()
	b.Put("y", 20)
	b.Put("z", 30)

	merged := a.Update(b)
	if v, _ := merged.Get("x"); v != 1 {
		t.Errorf("expected x to survive from the base map, got %d", v)
	}
	if v, _ := merged.Get("y"); v != 20 {
		t.Errorf("expected y to be overwritten by the other map, got %d", v)
	}
	if v, _ := merged.Get("z"); v != 30 {
		t.Errorf("expected z to be added from the other map, got %d", v)
	}
	if a.Len() != 2 {
		t.Fatal("Update must not mutate the receiver")
	}
}

func TestHashMapIterStopsEarly(t *testing.T) {
	m := newStrMap()
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 3)

	var seen int
	stopped := m.Iter(func(k string, v int) bool {
		seen++
		return seen == 2
	})
	if !stopped {
		t.Fatal("expected Iter to report early termination")
	}
	if seen != 2 {
		t.Fatalf("expected iteration to stop after 2 elements, saw %d", seen)
	}
}
