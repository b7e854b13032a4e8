// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "strings"

// Operator names that a BinaryOp/UnaryOp's Op field can hold. Spec.md
// §4.2 describes `==` as lowering to "eq", `=` to "unify" and `:=` to
// "assign"; the rest follow the same convention.
const (
	OpEq     = "eq"
	OpUnify  = "unify"
	OpAssign = "assign"
	OpAnd    = "and"
	OpOr     = "or"
	OpLt     = "lt"
	OpLte    = "lte"
	OpGt     = "gt"
	OpGte    = "gte"
	OpNeq    = "neq"
	OpAdd    = "add"
	OpSub    = "sub"
	OpMul    = "mul"
	OpDiv    = "div"
	OpMod    = "mod"
	OpIn     = "in"
	OpNeg    = "neg"
	OpNot    = "not"
)

// BinaryOp represents a two-operand operator expression, e.g. `a + b` or
// `x == y`. Op is one of the Op* constants above.
type BinaryOp struct {
	Op    string
	Left  *Term
	Right *Term
}

// BinaryOpTerm creates a new Term with a BinaryOp value.
func BinaryOpTerm(op string, left, right *Term) *Term {
	return NewTerm(&BinaryOp{Op: op, Left: left, Right: right})
}

func (b *BinaryOp) Equal(other Value) bool {
	o, ok := other.(*BinaryOp)
	return ok && b.Op == o.Op && b.Left.Equal(o.Left) && b.Right.Equal(o.Right)
}
func (b *BinaryOp) IsGround() bool { return b.Left.IsGround() && b.Right.IsGround() }
func (b *BinaryOp) String() string {
	return b.Left.String() + " " + symbolForOp(b.Op) + " " + b.Right.String()
}
func (b *BinaryOp) Hash() uint64 {
	return combineHash(hashFNV("binop:"+b.Op), combineHash(b.Left.Hash(), b.Right.Hash()))
}

// UnaryOp represents a one-operand prefix operator expression: `not x` or
// `-x`.
type UnaryOp struct {
	Op      string
	Operand *Term
}

// UnaryOpTerm creates a new Term with a UnaryOp value.
func UnaryOpTerm(op string, operand *Term) *Term {
	return NewTerm(&UnaryOp{Op: op, Operand: operand})
}

func (u *UnaryOp) Equal(other Value) bool {
	o, ok := other.(*UnaryOp)
	return ok && u.Op == o.Op && u.Operand.Equal(o.Operand)
}
func (u *UnaryOp) IsGround() bool { return u.Operand.IsGround() }
func (u *UnaryOp) String() string {
	if u.Op == OpNeg {
		return "-" + u.Operand.String()
	}
	return "not " + u.Operand.String()
}
func (u *UnaryOp) Hash() uint64 {
	return combineHash(hashFNV("unop:"+u.Op), u.Operand.Hash())
}

// Call represents a function call: a builtin invocation or a user-defined
// function rule invocation. Name is the raw callee name as written in
// source (e.g. "count", "array.concat", "my_func").
type Call struct {
	Name string
	Args []*Term
}

// CallTerm creates a new Term with a Call value.
func CallTerm(name string, args ...*Term) *Term {
	return NewTerm(&Call{Name: name, Args: args})
}

func (c *Call) Equal(other Value) bool {
	o, ok := other.(*Call)
	if !ok || c.Name != o.Name || len(c.Args) != len(o.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}
func (c *Call) IsGround() bool {
	for _, a := range c.Args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}
func (c *Call) Hash() uint64 {
	h := hashFNV("call:" + c.Name)
	for _, a := range c.Args {
		h = combineHash(h, a.Hash())
	}
	return h
}

// TemplatePart is one piece of a TemplateString: either literal text or
// an interpolated expression.
type TemplatePart struct {
	Literal string
	Expr    *Term
}

// TemplateString represents a backtick/quote template string with `{expr}`
// interpolations, e.g. `"count: {count(xs)}"`.
type TemplateString struct {
	Parts []TemplatePart
}

// TemplateStringTerm creates a new Term with a TemplateString value.
func TemplateStringTerm(parts ...TemplatePart) *Term {
	return NewTerm(&TemplateString{Parts: parts})
}

func (t *TemplateString) Equal(other Value) bool {
	o, ok := other.(*TemplateString)
	if !ok || len(t.Parts) != len(o.Parts) {
		return false
	}
	for i := range t.Parts {
		if t.Parts[i].Literal != o.Parts[i].Literal {
			return false
		}
		if (t.Parts[i].Expr == nil) != (o.Parts[i].Expr == nil) {
			return false
		}
		if t.Parts[i].Expr != nil && !t.Parts[i].Expr.Equal(o.Parts[i].Expr) {
			return false
		}
	}
	return true
}
func (t *TemplateString) IsGround() bool {
	for _, p := range t.Parts {
		if p.Expr != nil && !p.Expr.IsGround() {
			return false
		}
	}
	return true
}
func (t *TemplateString) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, p := range t.Parts {
		if p.Expr != nil {
			b.WriteByte('{')
			b.WriteString(p.Expr.String())
			b.WriteByte('}')
		} else {
			b.WriteString(p.Literal)
		}
	}
	b.WriteByte('"')
	return b.String()
}
func (t *TemplateString) Hash() uint64 {
	h := hashFNV("template:")
	for _, p := range t.Parts {
		h = combineHash(h, hashFNV(p.Literal))
		if p.Expr != nil {
			h = combineHash(h, p.Expr.Hash())
		}
	}
	return h
}

func symbolForOp(op string) string {
	switch op {
	case OpEq:
		return "=="
	case OpUnify:
		return "="
	case OpAssign:
		return ":="
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpNeq:
		return "!="
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpIn:
		return "in"
	default:
		return op
	}
}
