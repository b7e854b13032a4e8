// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// Arithmetic on Number follows spec.md §3: exact integer arithmetic
// whenever both operands are integers; mixed int/float arithmetic
// promotes to float; integer division with a non-zero remainder
// promotes to float rather than truncating (the open question in
// spec.md §9 resolves this way, matching the source behavior).

// NumAdd returns a + b.
func NumAdd(a, b Number) Number {
	if ai, aok := a.Int64(); aok {
		if bi, bok := b.Int64(); bok {
			return IntNumber(ai + bi)
		}
	}
	return FloatNumber(a.Float64() + b.Float64())
}

// NumSub returns a - b.
func NumSub(a, b Number) Number {
	if ai, aok := a.Int64(); aok {
		if bi, bok := b.Int64(); bok {
			return IntNumber(ai - bi)
		}
	}
	return FloatNumber(a.Float64() - b.Float64())
}

// NumMul returns a * b.
func NumMul(a, b Number) Number {
	if ai, aok := a.Int64(); aok {
		if bi, bok := b.Int64(); bok {
			return IntNumber(ai * bi)
		}
	}
	return FloatNumber(a.Float64() * b.Float64())
}

// NumDiv returns a / b and false if b is zero (division by zero is an
// Undefined point, not an error, at the evaluator boundary).
func NumDiv(a, b Number) (Number, bool) {
	if ai, aok := a.Int64(); aok {
		if bi, bok := b.Int64(); bok {
			if bi == 0 {
				return Number{}, false
			}
			if ai%bi == 0 {
				return IntNumber(ai / bi), true
			}
			return FloatNumber(float64(ai) / float64(bi)), true
		}
	}
	if b.Float64() == 0 {
		return Number{}, false
	}
	return FloatNumber(a.Float64() / b.Float64()), true
}

// NumMod returns a % b (integer-only; Rego's % requires both operands to
// be integers) and false if b is zero or either operand is non-integral.
func NumMod(a, b Number) (Number, bool) {
	ai, aok := a.Int64()
	bi, bok := b.Int64()
	if !aok || !bok || bi == 0 {
		return Number{}, false
	}
	return IntNumber(ai % bi), true
}

// NumNeg returns -a.
func NumNeg(a Number) Number {
	if ai, ok := a.Int64(); ok {
		return IntNumber(-ai)
	}
	return FloatNumber(-a.Float64())
}

// NumCompare returns -1, 0, or 1 as a is less than, equal to, or greater
// than b.
func NumCompare(a, b Number) int {
	if ai, aok := a.Int64(); aok {
		if bi, bok := b.Int64(); bok {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			default:
				return 0
			}
		}
	}
	af, bf := a.Float64(), b.Float64()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}
