// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import "github.com/r6e/regolite/ast"

func biIsString(args []*ast.Term) (*ast.Term, error) {
	_, ok := args[0].Value.(ast.String)
	return ast.BooleanTerm(ok), nil
}

func biIsNumber(args []*ast.Term) (*ast.Term, error) {
	_, ok := args[0].Value.(ast.Number)
	return ast.BooleanTerm(ok), nil
}

func biIsBoolean(args []*ast.Term) (*ast.Term, error) {
	_, ok := args[0].Value.(ast.Boolean)
	return ast.BooleanTerm(ok), nil
}

func biIsArray(args []*ast.Term) (*ast.Term, error) {
	_, ok := args[0].Value.(ast.Array)
	return ast.BooleanTerm(ok), nil
}

func biIsObject(args []*ast.Term) (*ast.Term, error) {
	_, ok := args[0].Value.(*ast.Object)
	return ast.BooleanTerm(ok), nil
}

func biIsSet(args []*ast.Term) (*ast.Term, error) {
	_, ok := args[0].Value.(*ast.Set)
	return ast.BooleanTerm(ok), nil
}

func biIsNull(args []*ast.Term) (*ast.Term, error) {
	_, ok := args[0].Value.(ast.Null)
	return ast.BooleanTerm(ok), nil
}

func biTypeName(args []*ast.Term) (*ast.Term, error) {
	switch args[0].Value.(type) {
	case ast.Null:
		return ast.StringTerm("null"), nil
	case ast.Boolean:
		return ast.StringTerm("boolean"), nil
	case ast.Number:
		return ast.StringTerm("number"), nil
	case ast.String:
		return ast.StringTerm("string"), nil
	case ast.Array:
		return ast.StringTerm("array"), nil
	case *ast.Object:
		return ast.StringTerm("object"), nil
	case *ast.Set:
		return ast.StringTerm("set"), nil
	default:
		return nil, argError("type_name", "operand is not a ground value")
	}
}
