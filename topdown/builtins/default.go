// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import "github.com/r6e/regolite/ast"

// Default returns a freshly populated Registry carrying every name in
// ast.DefaultBuiltins. Callers get their own instance; the registry is
// never shared/mutated concurrently once handed to an evaluator, since
// with-scoped overrides layer on top via WithOverride rather than
// mutating this one.
func Default() *Registry {
	r := NewRegistry()
	reg := func(name string, fn Func) {
		b, ok := ast.DefaultBuiltinMap[name]
		if !ok {
			panic("builtins: " + name + " missing from ast.DefaultBuiltins")
		}
		r.Register(name, b.Arities, fn)
	}

	reg("count", biCount)
	reg("sum", biSum)
	reg("max", biMax)
	reg("min", biMin)
	reg("all", biAll)
	reg("any", biAny)
	reg("sort", biSort)

	reg("array.concat", biArrayConcat)
	reg("array.slice", biArraySlice)
	reg("array.reverse", biArrayReverse)
	reg("object.get", biObjectGet)
	reg("object.keys", biObjectKeys)
	reg("object.remove", biObjectRemove)
	reg("union", biUnion)
	reg("intersection", biIntersection)
	reg("set_diff", biSetDiff)
	reg("set", biSet)

	reg("concat", biConcat)
	reg("contains", biContains)
	reg("startswith", biStartsWith)
	reg("endswith", biEndsWith)
	reg("format_int", biFormatInt)
	reg("indexof", biIndexOf)
	reg("lower", biLower)
	reg("upper", biUpper)
	reg("split", biSplit)
	reg("sprintf", biSprintf)
	reg("substring", biSubstring)
	reg("trim", biTrim)
	reg("trim_left", biTrimLeft)
	reg("trim_right", biTrimRight)
	reg("trim_space", biTrimSpace)
	reg("equal", biEqual)
	reg("to_number", biToNumber)

	reg("cast_string", biCastString)
	reg("cast_boolean", biCastBoolean)
	reg("cast_array", biCastArray)
	reg("cast_set", biCastSet)
	reg("cast_object", biCastObject)

	reg("is_string", biIsString)
	reg("is_number", biIsNumber)
	reg("is_boolean", biIsBoolean)
	reg("is_array", biIsArray)
	reg("is_object", biIsObject)
	reg("is_set", biIsSet)
	reg("is_null", biIsNull)
	reg("type_name", biTypeName)

	reg("glob.match", biGlobMatch)
	reg("json.marshal", biJSONMarshal)
	reg("json.unmarshal", biJSONUnmarshal)

	return r
}
