// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// Builtin describes a built-in function's name and accepted arities. The
// handler that actually implements it lives in topdown/builtins, whose
// default registry takes each builtin's arities from this table. The
// parser and compiler do not consult it: call arities are checked by the
// registry at evaluation time.
type Builtin struct {
	Name string
	// Arities lists every argument count this builtin accepts. Most
	// builtins accept exactly one arity; a few (e.g. set()) accept more
	// than one.
	Arities []int
}

// AcceptsArity returns true if n is one of b's accepted arities.
func (b *Builtin) AcceptsArity(n int) bool {
	for _, a := range b.Arities {
		if a == n {
			return true
		}
	}
	return false
}

// DefaultBuiltins is the minimum conformance set spec.md §4.8 names, plus
// the domain-stack additions spec.md's expansion wires in (glob.match,
// json.marshal/unmarshal). Each entry here must have a matching handler
// registered in topdown/builtins's default registry.
var DefaultBuiltins = []*Builtin{
	{Name: "count", Arities: []int{1}},
	{Name: "sum", Arities: []int{1}},
	{Name: "max", Arities: []int{1}},
	{Name: "min", Arities: []int{1}},
	{Name: "all", Arities: []int{1}},
	{Name: "any", Arities: []int{1}},
	{Name: "sort", Arities: []int{1}},
	{Name: "array.concat", Arities: []int{2}},
	{Name: "array.slice", Arities: []int{3}},
	{Name: "array.reverse", Arities: []int{1}},
	{Name: "object.get", Arities: []int{3}},
	{Name: "object.keys", Arities: []int{1}},
	{Name: "object.remove", Arities: []int{2}},
	{Name: "union", Arities: []int{1}},
	{Name: "intersection", Arities: []int{1}},
	{Name: "set_diff", Arities: []int{2}},
	{Name: "set", Arities: []int{0, 1}},
	{Name: "concat", Arities: []int{2}},
	{Name: "contains", Arities: []int{2}},
	{Name: "startswith", Arities: []int{2}},
	{Name: "endswith", Arities: []int{2}},
	{Name: "format_int", Arities: []int{2}},
	{Name: "indexof", Arities: []int{2}},
	{Name: "lower", Arities: []int{1}},
	{Name: "upper", Arities: []int{1}},
	{Name: "split", Arities: []int{2}},
	{Name: "sprintf", Arities: []int{2}},
	{Name: "substring", Arities: []int{3}},
	{Name: "trim", Arities: []int{2}},
	{Name: "trim_left", Arities: []int{2}},
	{Name: "trim_right", Arities: []int{2}},
	{Name: "trim_space", Arities: []int{1}},
	{Name: "equal", Arities: []int{2}},
	{Name: "to_number", Arities: []int{1}},
	{Name: "cast_string", Arities: []int{1}},
	{Name: "cast_boolean", Arities: []int{1}},
	{Name: "cast_array", Arities: []int{1}},
	{Name: "cast_set", Arities: []int{1}},
	{Name: "cast_object", Arities: []int{1}},
	{Name: "is_string", Arities: []int{1}},
	{Name: "is_number", Arities: []int{1}},
	{Name: "is_boolean", Arities: []int{1}},
	{Name: "is_array", Arities: []int{1}},
	{Name: "is_object", Arities: []int{1}},
	{Name: "is_set", Arities: []int{1}},
	{Name: "is_null", Arities: []int{1}},
	{Name: "type_name", Arities: []int{1}},
	{Name: "glob.match", Arities: []int{3}},
	{Name: "json.marshal", Arities: []int{1}},
	{Name: "json.unmarshal", Arities: []int{1}},
}

// DefaultBuiltinMap indexes DefaultBuiltins by name.
var DefaultBuiltinMap map[string]*Builtin

func init() {
	DefaultBuiltinMap = make(map[string]*Builtin, len(DefaultBuiltins))
	for _, b := range DefaultBuiltins {
		DefaultBuiltinMap[b.Name] = b
	}
}

// IsDefaultBuiltin returns true if name is in the default builtin set.
// Whether a Call resolves to a builtin or a user-defined rule is decided
// at evaluation time by the active registry, not by this function.
func IsDefaultBuiltin(name string) bool {
	_, ok := DefaultBuiltinMap[name]
	return ok
}
