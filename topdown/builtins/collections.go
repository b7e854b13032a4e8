// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import "github.com/r6e/regolite/ast"

func biArrayConcat(args []*ast.Term) (*ast.Term, error) {
	a, ok := args[0].Value.(ast.Array)
	if !ok {
		return nil, argError("array.concat", "first operand must be an array")
	}
	b, ok := args[1].Value.(ast.Array)
	if !ok {
		return nil, argError("array.concat", "second operand must be an array")
	}
	out := make([]*ast.Term, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return ast.ArrayTerm(out...), nil
}

func biArraySlice(args []*ast.Term) (*ast.Term, error) {
	a, ok := args[0].Value.(ast.Array)
	if !ok {
		return nil, argError("array.slice", "first operand must be an array")
	}
	start, ok := intArg(args[1])
	if !ok {
		return nil, argError("array.slice", "start must be an integer")
	}
	stop, ok := intArg(args[2])
	if !ok {
		return nil, argError("array.slice", "stop must be an integer")
	}
	if start < 0 {
		start = 0
	}
	if stop > len(a) {
		stop = len(a)
	}
	if start >= stop {
		return ast.ArrayTerm(), nil
	}
	return ast.ArrayTerm(a[start:stop]...), nil
}

func biArrayReverse(args []*ast.Term) (*ast.Term, error) {
	a, ok := args[0].Value.(ast.Array)
	if !ok {
		return nil, argError("array.reverse", "operand must be an array")
	}
	out := make([]*ast.Term, len(a))
	for i, t := range a {
		out[len(a)-1-i] = t
	}
	return ast.ArrayTerm(out...), nil
}

func biObjectGet(args []*ast.Term) (*ast.Term, error) {
	obj, ok := args[0].Value.(*ast.Object)
	if !ok {
		return nil, argError("object.get", "first operand must be an object")
	}
	if v := obj.Get(args[1]); v != nil {
		return v, nil
	}
	return args[2], nil
}

func biObjectKeys(args []*ast.Term) (*ast.Term, error) {
	obj, ok := args[0].Value.(*ast.Object)
	if !ok {
		return nil, argError("object.keys", "operand must be an object")
	}
	return ast.SetTerm(obj.Keys()...), nil
}

func biObjectRemove(args []*ast.Term) (*ast.Term, error) {
	obj, ok := args[0].Value.(*ast.Object)
	if !ok {
		return nil, argError("object.remove", "first operand must be an object")
	}
	keys, err := termsOf("object.remove", args[1])
	if err != nil {
		return nil, err
	}
	cp := obj.Copy()
	for _, k := range keys {
		cp.Delete(k)
	}
	return ast.NewTerm(cp), nil
}

func biUnion(args []*ast.Term) (*ast.Term, error) {
	sets, err := termsOf("union", args[0])
	if err != nil {
		return nil, err
	}
	out := ast.NewSet()
	for _, s := range sets {
		set, ok := s.Value.(*ast.Set)
		if !ok {
			return nil, argError("union", "operand must be a set of sets")
		}
		set.Foreach(out.Add)
	}
	return ast.NewTerm(out), nil
}

func biIntersection(args []*ast.Term) (*ast.Term, error) {
	sets, err := termsOf("intersection", args[0])
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return ast.NewTerm(ast.NewSet()), nil
	}
	first, ok := sets[0].Value.(*ast.Set)
	if !ok {
		return nil, argError("intersection", "operand must be a set of sets")
	}
	out := first
	for _, s := range sets[1:] {
		set, ok := s.Value.(*ast.Set)
		if !ok {
			return nil, argError("intersection", "operand must be a set of sets")
		}
		out = out.Intersect(set)
	}
	return ast.NewTerm(out), nil
}

func biSetDiff(args []*ast.Term) (*ast.Term, error) {
	a, ok := args[0].Value.(*ast.Set)
	if !ok {
		return nil, argError("set_diff", "first operand must be a set")
	}
	b, ok := args[1].Value.(*ast.Set)
	if !ok {
		return nil, argError("set_diff", "second operand must be a set")
	}
	return ast.NewTerm(a.Diff(b)), nil
}

func biSet(args []*ast.Term) (*ast.Term, error) {
	if len(args) == 0 {
		return ast.NewTerm(ast.NewSet()), nil
	}
	elems, err := termsOf("set", args[0])
	if err != nil {
		return nil, err
	}
	return ast.SetTerm(elems...), nil
}

func intArg(t *ast.Term) (int, bool) {
	n, ok := t.Value.(ast.Number)
	if !ok {
		return 0, false
	}
	i, ok := n.Int64()
	return int(i), ok
}
