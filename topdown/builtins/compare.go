// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import "github.com/r6e/regolite/ast"

// typeRank orders Value kinds for the total ordering sort/max/min rely
// on: undefined < null < boolean < number < string < array < object < set.
func typeRank(v ast.Value) int {
	switch v.(type) {
	case ast.Null:
		return 1
	case ast.Boolean:
		return 2
	case ast.Number:
		return 3
	case ast.String:
		return 4
	case ast.Array:
		return 5
	case *ast.Object:
		return 6
	case *ast.Set:
		return 7
	default:
		return 0
	}
}

// less implements the total ordering used by sort/max/min across mixed
// value kinds, falling back to type rank when kinds differ.
func less(a, b *ast.Term) bool {
	av, bv := a.Value, b.Value
	ra, rb := typeRank(av), typeRank(bv)
	if ra != rb {
		return ra < rb
	}
	switch x := av.(type) {
	case ast.Boolean:
		y := bv.(ast.Boolean)
		return !bool(x) && bool(y)
	case ast.Number:
		return ast.NumCompare(x, bv.(ast.Number)) < 0
	case ast.String:
		return x < bv.(ast.String)
	case ast.Array:
		y := bv.(ast.Array)
		for i := 0; i < len(x) && i < len(y); i++ {
			if less(x[i], y[i]) {
				return true
			}
			if less(y[i], x[i]) {
				return false
			}
		}
		return len(x) < len(y)
	default:
		return false
	}
}
