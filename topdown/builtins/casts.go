// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import "github.com/r6e/regolite/ast"

func biCastArray(args []*ast.Term) (*ast.Term, error) {
	switch v := args[0].Value.(type) {
	case ast.Array:
		return args[0], nil
	case *ast.Set:
		return ast.ArrayTerm(v.Slice()...), nil
	default:
		return nil, argError("cast_array", "cannot cast %T to array", args[0].Value)
	}
}

func biCastSet(args []*ast.Term) (*ast.Term, error) {
	switch v := args[0].Value.(type) {
	case *ast.Set:
		return args[0], nil
	case ast.Array:
		return ast.SetTerm(v...), nil
	default:
		return nil, argError("cast_set", "cannot cast %T to set", args[0].Value)
	}
}

func biCastString(args []*ast.Term) (*ast.Term, error) {
	if s, ok := args[0].Value.(ast.String); ok {
		return ast.StringTerm(string(s)), nil
	}
	return ast.StringTerm(args[0].Value.String()), nil
}

func biCastBoolean(args []*ast.Term) (*ast.Term, error) {
	b, ok := args[0].Value.(ast.Boolean)
	if !ok {
		return nil, argError("cast_boolean", "cannot cast %T to boolean", args[0].Value)
	}
	return ast.BooleanTerm(bool(b)), nil
}

func biCastObject(args []*ast.Term) (*ast.Term, error) {
	if _, ok := args[0].Value.(*ast.Object); !ok {
		return nil, argError("cast_object", "cannot cast %T to object", args[0].Value)
	}
	return args[0], nil
}
