// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import "github.com/r6e/regolite/ast"

// termsOf returns the elements of an Array or Set argument, or an error
// if x is neither.
func termsOf(name string, x *ast.Term) ([]*ast.Term, error) {
	switch v := x.Value.(type) {
	case ast.Array:
		return []*ast.Term(v), nil
	case *ast.Set:
		return v.Slice(), nil
	default:
		return nil, argError(name, "operand must be an array or set, got %T", x.Value)
	}
}

func biCount(args []*ast.Term) (*ast.Term, error) {
	switch v := args[0].Value.(type) {
	case ast.Array:
		return ast.IntNumberTerm(len(v)), nil
	case *ast.Set:
		return ast.IntNumberTerm(v.Len()), nil
	case *ast.Object:
		return ast.IntNumberTerm(v.Len()), nil
	case ast.String:
		return ast.IntNumberTerm(len([]rune(string(v)))), nil
	default:
		return nil, argError("count", "operand must be an array, set, object or string")
	}
}

func biSum(args []*ast.Term) (*ast.Term, error) {
	elems, err := termsOf("sum", args[0])
	if err != nil {
		return nil, err
	}
	total := ast.IntNumber(0)
	for _, t := range elems {
		n, ok := t.Value.(ast.Number)
		if !ok {
			return nil, argError("sum", "elements must be numbers")
		}
		total = ast.NumAdd(total, n)
	}
	return ast.NewTerm(total), nil
}

func biMax(args []*ast.Term) (*ast.Term, error) {
	elems, err := termsOf("max", args[0])
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return ast.UndefinedTerm(), nil
	}
	best := elems[0]
	for _, t := range elems[1:] {
		if less(best, t) {
			best = t
		}
	}
	return best, nil
}

func biMin(args []*ast.Term) (*ast.Term, error) {
	elems, err := termsOf("min", args[0])
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return ast.UndefinedTerm(), nil
	}
	best := elems[0]
	for _, t := range elems[1:] {
		if less(t, best) {
			best = t
		}
	}
	return best, nil
}

func biAll(args []*ast.Term) (*ast.Term, error) {
	elems, err := termsOf("all", args[0])
	if err != nil {
		return nil, err
	}
	for _, t := range elems {
		b, ok := t.Value.(ast.Boolean)
		if !ok || !bool(b) {
			return ast.BooleanTerm(false), nil
		}
	}
	return ast.BooleanTerm(true), nil
}

func biAny(args []*ast.Term) (*ast.Term, error) {
	elems, err := termsOf("any", args[0])
	if err != nil {
		return nil, err
	}
	for _, t := range elems {
		if b, ok := t.Value.(ast.Boolean); ok && bool(b) {
			return ast.BooleanTerm(true), nil
		}
	}
	return ast.BooleanTerm(false), nil
}

func biSort(args []*ast.Term) (*ast.Term, error) {
	elems, err := termsOf("sort", args[0])
	if err != nil {
		return nil, err
	}
	out := make([]*ast.Term, len(elems))
	copy(out, elems)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return ast.ArrayTerm(out...), nil
}
