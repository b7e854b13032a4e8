// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"math"
	"strconv"
	"strings"
)

// Value is the common interface for every kind of term value in the
// language: scalars (Null, Boolean, Number, String), the reserved
// Undefined sentinel, the collection types (Array, Object, Set),
// references into a document (Var, Ref), and the non-value expression
// node kinds that a Term may also carry while it is still part of an
// unevaluated AST (BinaryOp, UnaryOp, Call, the comprehensions,
// TemplateString).
type Value interface {
	// Equal returns true if this value equals the other value.
	Equal(other Value) bool
	// IsGround returns true if this value is a variable-free value, i.e.
	// it contains no Var and no unresolved Ref.
	IsGround() bool
	// String returns a human readable representation of the value.
	String() string
	// Hash returns a hash code for the value. Equal values must hash to
	// the same code.
	Hash() uint64
}

// Term is a Value together with the Location it was parsed from (nil for
// values constructed programmatically, e.g. evaluation results).
type Term struct {
	Value    Value     `json:"value"`
	Location *Location `json:"-"`
}

// NewTerm returns a new Term wrapping v with no location.
func NewTerm(v Value) *Term {
	return &Term{Value: v}
}

// SetLocation returns the receiver after attaching loc, for chaining at
// construction sites.
func (term *Term) SetLocation(loc *Location) *Term {
	term.Location = loc
	return term
}

// Equal returns true if this term's value equals other's value. A nil
// Term equals only another nil Term.
func (term *Term) Equal(other *Term) bool {
	if term == nil || other == nil {
		return term == other
	}
	return term.Value.Equal(other.Value)
}

// Hash returns the hash of the term's value.
func (term *Term) Hash() uint64 {
	return term.Value.Hash()
}

// IsGround returns true if the term's value is ground.
func (term *Term) IsGround() bool {
	return term.Value.IsGround()
}

func (term *Term) String() string {
	return term.Value.String()
}

// ---- Null ----

// Null represents the null value in Rego.
type Null struct{}

// NullTerm creates a new Term with a Null value.
func NullTerm() *Term { return NewTerm(Null{}) }

func (Null) Equal(other Value) bool { _, ok := other.(Null); return ok }
func (Null) IsGround() bool         { return true }
func (Null) String() string         { return "null" }
func (Null) Hash() uint64           { return hashFNV("null:") }

// ---- Boolean ----

// Boolean represents a boolean value in Rego.
type Boolean bool

// BooleanTerm creates a new Term with a Boolean value.
func BooleanTerm(b bool) *Term { return NewTerm(Boolean(b)) }

func (b Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && bool(b) == bool(o)
}
func (b Boolean) IsGround() bool { return true }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (b Boolean) Hash() uint64   { return hashFNV("bool:" + b.String()) }

// ---- Undefined ----

// undefinedValue is the sentinel Value representing Rego's "undefined":
// a first-class absence, distinct from Null, that propagates through
// most operators and builtins instead of raising an error.
type undefinedValue struct{}

// Undefined is the singleton Undefined value.
var Undefined Value = undefinedValue{}

// UndefinedTerm returns a new Term wrapping the Undefined sentinel.
func UndefinedTerm() *Term { return NewTerm(Undefined) }

func (undefinedValue) Equal(other Value) bool { _, ok := other.(undefinedValue); return ok }
func (undefinedValue) IsGround() bool         { return true }
func (undefinedValue) String() string         { return "<undefined>" }
func (undefinedValue) Hash() uint64           { return hashFNV("undefined:") }

// IsUndefined returns true if v is the Undefined sentinel.
func IsUndefined(v Value) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// TermIsUndefined returns true if t is nil or wraps the Undefined sentinel.
func TermIsUndefined(t *Term) bool {
	return t == nil || IsUndefined(t.Value)
}

// ---- Number ----

// Number represents a numeric value. The canonical literal text is kept
// so that integers and floats round-trip exactly (1 prints as "1", not
// "1.0") and so exact integer arithmetic can be distinguished from
// float arithmetic the way spec.md requires.
type Number struct {
	lit string
}

// IntNumber returns a Number holding the exact integer i.
func IntNumber(i int64) Number {
	return Number{lit: strconv.FormatInt(i, 10)}
}

// FloatNumber returns a Number holding the float f. Its literal form is
// Go's shortest round-trip 'g' formatting of f (e.g. 2.0 prints as "2"),
// and it compares and hashes by numeric value, matching the "1 == 1.0"
// invariant.
func FloatNumber(f float64) Number {
	return Number{lit: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NumberFromLiteral constructs a Number directly from source text
// produced by the lexer (already validated as a JSON-like numeral).
func NumberFromLiteral(lit string) Number {
	return Number{lit: lit}
}

// NumberTerm creates a new Term with a Number value from a float64.
func NumberTerm(f float64) *Term { return NewTerm(FloatNumber(f)) }

// IntNumberTerm creates a new Term with an exact integer Number value.
func IntNumberTerm(i int) *Term { return NewTerm(IntNumber(int64(i))) }

// Int64 returns the Number as an int64 and true if its value is integral:
// an integer literal that fits in an int64, or any other numeral whose
// float value has no fractional part and a magnitude below 1e18.
func (n Number) Int64() (int64, bool) {
	if isIntegerLiteral(n.lit) {
		if i, err := strconv.ParseInt(n.lit, 10, 64); err == nil {
			return i, true
		}
	}
	f, err := strconv.ParseFloat(n.lit, 64)
	if err != nil {
		return 0, false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e18 {
		return int64(f), true
	}
	return 0, false
}

// Float64 returns the Number as a float64, promoting as necessary.
func (n Number) Float64() float64 {
	f, _ := strconv.ParseFloat(n.lit, 64)
	return f
}

func isIntegerLiteral(lit string) bool {
	return !strings.ContainsAny(lit, ".eE")
}

func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	if !ok {
		return false
	}
	if ni, nok := n.Int64(); nok {
		if oi, ook := o.Int64(); ook {
			return ni == oi
		}
	}
	return n.Float64() == o.Float64()
}

func (n Number) IsGround() bool { return true }
func (n Number) String() string {
	if n.lit == "" {
		return "0"
	}
	return n.lit
}

func (n Number) Hash() uint64 {
	// Hash by numeric value (not literal text) so 1 and 1.0 collide.
	if i, ok := n.Int64(); ok {
		return hashFNV("num:" + strconv.FormatInt(i, 10))
	}
	return hashFNV("num:" + strconv.FormatFloat(n.Float64(), 'g', -1, 64))
}

// ---- String ----

// String represents a string value in Rego.
type String string

// StringTerm creates a new Term with a String value.
func StringTerm(s string) *Term { return NewTerm(String(s)) }

func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && s == o
}
func (s String) IsGround() bool { return true }
func (s String) String() string { return strconv.Quote(string(s)) }

// Text returns the raw (unquoted) string content.
func (s String) Text() string { return string(s) }

func (s String) Hash() uint64 { return hashFNV("str:" + string(s)) }

// ---- Var ----

// Var represents a variable reference in an AST expression.
type Var string

// VarTerm creates a new Term with a Var value.
func VarTerm(v string) *Term { return NewTerm(Var(v)) }

func (v Var) Equal(other Value) bool {
	o, ok := other.(Var)
	return ok && v == o
}
func (v Var) IsGround() bool { return false }
func (v Var) String() string { return string(v) }
func (v Var) Hash() uint64   { return hashFNV("var:" + string(v)) }

// IsWildcard returns true if this is the reserved wildcard variable `_`
// or a parser-generated wildcard (`$0`, `$1`, ...).
func (v Var) IsWildcard() bool {
	return v == "_" || strings.HasPrefix(string(v), WildcardPrefix)
}

// WildcardPrefix is the special character that all parser-generated
// wildcard variables are prefixed with.
const WildcardPrefix = "$"
