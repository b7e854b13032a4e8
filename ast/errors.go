// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Errors represents a series of errors encountered during lexing, parsing
// or compiling.
type Errors []*Error

func (e Errors) Error() string {
	if len(e) == 0 {
		return "no error(s)"
	}

	if len(e) == 1 {
		return fmt.Sprintf("1 error occurred: %v", e[0].Error())
	}

	s := make([]string, len(e))
	for i, err := range e {
		s[i] = err.Error()
	}

	return fmt.Sprintf("%d errors occurred:\n%s", len(e), strings.Join(s, "\n"))
}

// ErrCode identifies the subsystem that raised an Error and lets callers
// branch on error kind without string-matching Message.
type ErrCode int

const (
	// LexErr indicates malformed source text (bad escape, unterminated
	// string or literal, invalid number).
	LexErr ErrCode = iota

	// ParseErr indicates a token-level grammar mismatch.
	ParseErr

	// CompileErr indicates an unclassified compile-time error: a rule
	// conflict, an invalid rule head, or similar structural problem.
	CompileErr

	// UnsafeVarErr indicates a variable referenced in a rule body (or
	// else-clause) is not bound by anything in scope.
	UnsafeVarErr

	// RecursionErr indicates a rule was re-entered during evaluation
	// before its first invocation completed (direct or mutual recursion).
	// Building the dependency graph does not raise it.
	RecursionErr

	// EvalErr indicates a runtime evaluation failure that is not simply
	// Undefined: a conflicting partial-object/rule-head key, an unsafe
	// `with` replacement, or a runtime conflict between complete rules.
	EvalErr

	// BuiltinArgumentErr indicates a builtin was called with the wrong
	// arity or an argument of the wrong type.
	BuiltinArgumentErr

	// TypeErr indicates a value-level type mismatch at the
	// evaluator/builtin boundary that is not an Undefined-propagation
	// point.
	TypeErr
)

func (c ErrCode) String() string {
	switch c {
	case LexErr:
		return "rego_lex_error"
	case ParseErr:
		return "rego_parse_error"
	case CompileErr:
		return "rego_compile_error"
	case UnsafeVarErr:
		return "rego_unsafe_var_error"
	case RecursionErr:
		return "rego_recursion_error"
	case EvalErr:
		return "rego_eval_error"
	case BuiltinArgumentErr:
		return "rego_builtin_argument_error"
	case TypeErr:
		return "rego_type_error"
	default:
		return "rego_error"
	}
}

// IsError returns true if err is an AST error with the given code.
func IsError(code ErrCode, err error) bool {
	if err, ok := err.(*Error); ok {
		return err.Code == code
	}
	return false
}

// Error represents a single error caught during lexing, parsing or
// compiling. It always carries a Location when one is available so
// downstream tooling can point at the offending source text.
type Error struct {
	Code     ErrCode   `json:"code"`
	Location *Location `json:"location,omitempty"`
	Message  string    `json:"message"`
	// Context is a short, free-text label identifying what was being
	// processed when the error occurred (e.g. "builtin sum", "rule head
	// foo.bar"). Optional.
	Context string `json:"context,omitempty"`
}

func (e *Error) Error() string {
	prefix := e.Code.String()
	if e.Location != nil {
		prefix = e.Location.Format("%v", prefix)
	}
	msg := fmt.Sprintf("%s: %s", prefix, e.Message)
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	return msg
}

// NewError returns a new Error object.
func NewError(code ErrCode, loc *Location, f string, a ...interface{}) *Error {
	return &Error{
		Code:     code,
		Location: loc,
		Message:  fmt.Sprintf(f, a...),
	}
}

// WithContext attaches a free-text context label and returns the receiver
// for chaining at the call site, e.g. NewError(...).WithContext("builtin sum").
func (e *Error) WithContext(context string) *Error {
	e.Context = context
	return e
}

// Wrap decorates err with the location-prefixed message via
// github.com/pkg/errors, preserving err in the error chain (errors.Cause /
// errors.Unwrap both still work). Used at package boundaries where a
// lower-level error (e.g. a builtin's internal error) needs a Location
// pinned on it without discarding the original cause.
func Wrap(loc *Location, err error, f string, a ...interface{}) error {
	if loc == nil {
		return errors.Wrapf(err, f, a...)
	}
	return errors.Wrapf(err, loc.Format(f, a...))
}
