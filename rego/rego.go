// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package rego is the library's one blessed entry point for embedders,
// mirroring the teacher's own rego package: parse/compile a module once,
// then evaluate queries against it as many times as needed (spec.md §6).
package rego

import (
	"github.com/r6e/regolite/ast"
	"github.com/r6e/regolite/topdown"
	"github.com/r6e/regolite/topdown/builtins"
)

// Parse lexes and parses source into a Module, or returns the
// accumulated ast.Errors on a lex/parse failure.
func Parse(source string) (*ast.Module, error) {
	return ast.ParseModule("policy.rego", source)
}

// Compile parses source and runs the compiler's indexing, conflict,
// safety, and dependency-graph passes over it.
func Compile(source string) (*ast.CompiledModule, error) {
	mod, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return CompileAST(mod)
}

// CompileAST runs the compiler over an already-parsed Module.
func CompileAST(mod *ast.Module) (*ast.CompiledModule, error) {
	return ast.Compile(mod)
}

// Status classifies a Result: whether the query produced a value, was
// undefined, or failed outright.
type Status int

const (
	// StatusSuccess means the query evaluated to a concrete value.
	StatusSuccess Status = iota
	// StatusUndefined means the query evaluated to Undefined - Rego's
	// "no decision" outcome, not a failure.
	StatusUndefined
	// StatusError means evaluation raised a genuine error (compile-time
	// conflict, unsafe with-replacement, builtin arity mismatch in
	// strict mode, rule-head conflict, recursion).
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUndefined:
		return "undefined"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ResultError is the structured error shape a Result carries on
// StatusError, matching spec.md §6's `error: { kind, message, location?,
// context? }`.
type ResultError struct {
	Kind     string        `json:"kind"`
	Message  string        `json:"message"`
	Location *ast.Location `json:"location,omitempty"`
	Context  string        `json:"context,omitempty"`
}

func (e *ResultError) Error() string {
	return e.Message
}

func newResultError(err error) *ResultError {
	if ae, ok := err.(*ast.Error); ok {
		return &ResultError{Kind: ae.Code.String(), Message: ae.Message, Location: ae.Location, Context: ae.Context}
	}
	if errs, ok := err.(ast.Errors); ok && len(errs) > 0 {
		return newResultError(errs[0])
	}
	return &ResultError{Kind: "rego_error", Message: err.Error()}
}

// Result is the outcome of one Evaluate call.
type Result struct {
	Status Status       `json:"status"`
	Value  *ast.Term    `json:"value,omitempty"`
	Error  *ResultError `json:"error,omitempty"`
}

// EvaluatorOption configures a newly-constructed Evaluator.
type EvaluatorOption func(*Evaluator)

// WithRegistry overrides the builtin registry an Evaluator uses. The
// default is builtins.Default().
func WithRegistry(r *builtins.Registry) EvaluatorOption {
	return func(e *Evaluator) { e.registry = r }
}

// WithTracer attaches a step tracer to an Evaluator's environment.
func WithTracer(t topdown.Tracer) EvaluatorOption {
	return func(e *Evaluator) { e.tracer = t }
}

// WithStrictBuiltins selects strict builtin-argument-error mode: a
// BuiltinArgumentErr aborts evaluation as a genuine error instead of
// being converted to Undefined at the call site. The facade default
// (spec.md §7) is lenient (false), matching OPA's own behavior.
func WithStrictBuiltins(strict bool) EvaluatorOption {
	return func(e *Evaluator) { e.strict = strict }
}

// Evaluator evaluates queries against one CompiledModule given fixed
// input/data documents, per spec.md §6's
// `Evaluator(compiled, input, data).evaluate(query?)`. An Evaluator is
// not safe for concurrent use from multiple goroutines at once; each
// concurrent evaluation should construct its own Evaluator sharing the
// same CompiledModule (spec.md §5).
type Evaluator struct {
	compiled *ast.CompiledModule
	input    *ast.Term
	data     *ast.Term
	registry *builtins.Registry
	tracer   topdown.Tracer
	strict   bool
}

// NewEvaluator constructs an Evaluator bound to compiled, input, and
// data. A nil input defaults to Null; a nil data defaults to the empty
// object.
func NewEvaluator(compiled *ast.CompiledModule, input, data *ast.Term, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{compiled: compiled, input: input, data: data}
	for _, o := range opts {
		o(e)
	}
	if e.registry == nil {
		e.registry = builtins.Default()
	}
	if e.tracer == nil {
		e.tracer = topdown.NopTracer{}
	}
	return e
}

// Evaluate runs query (a reference string such as "data.pkg.rule")
// against the Evaluator's module and returns a Result. An empty query
// evaluates the module's root document: an object of rule name ->
// value with Undefined entries omitted (spec.md §4.6).
func (e *Evaluator) Evaluate(query string) *Result {
	env := topdown.NewEnvironment(e.compiled, e.input, e.data, e.registry)
	env.Strict = e.strict
	env.Tracer = e.tracer

	var value *ast.Term
	var err error
	if query == "" {
		value, err = topdown.EvalRootDocument(env)
	} else {
		var qterm *ast.Term
		qterm, err = ast.ParseRef(query)
		if err == nil {
			value, err = topdown.EvalQuery(qterm, env)
		}
	}
	if err != nil {
		return &Result{Status: StatusError, Error: newResultError(err)}
	}
	if ast.TermIsUndefined(value) {
		return &Result{Status: StatusUndefined}
	}
	return &Result{Status: StatusSuccess, Value: value}
}

// EvalOption configures one Policy.Evaluate call.
type EvalOption func(*evalConfig)

type evalConfig struct {
	input    interface{}
	data     interface{}
	query    string
	registry *builtins.Registry
	tracer   topdown.Tracer
	strict   bool
}

// WithInput supplies the query's input document as a native Go value
// (the shape encoding/json.Unmarshal produces: nil, bool, float64,
// string, []interface{}, map[string]interface{}).
func WithInput(x interface{}) EvalOption {
	return func(c *evalConfig) { c.input = x }
}

// WithData supplies the query's data document as a native Go value.
func WithData(x interface{}) EvalOption {
	return func(c *evalConfig) { c.data = x }
}

// WithQuery sets the query reference string (e.g. "data.pkg.rule"). An
// unset query evaluates the module's root document.
func WithQuery(q string) EvalOption {
	return func(c *evalConfig) { c.query = q }
}

// WithEvalRegistry overrides the builtin registry a Policy.Evaluate call
// uses.
func WithEvalRegistry(r *builtins.Registry) EvalOption {
	return func(c *evalConfig) { c.registry = r }
}

// WithEvalTracer attaches a step tracer to a Policy.Evaluate call.
func WithEvalTracer(t topdown.Tracer) EvalOption {
	return func(c *evalConfig) { c.tracer = t }
}

// WithEvalStrictBuiltins selects strict builtin-argument-error mode for
// a single Policy.Evaluate call (see WithStrictBuiltins).
func WithEvalStrictBuiltins(strict bool) EvalOption {
	return func(c *evalConfig) { c.strict = strict }
}

// Policy is the highest-level facade: compile a source string once, then
// evaluate(input:, data:, query:) as many times as needed, per spec.md
// §6's `Policy(source).evaluate(input:, data:, query:) → Result`.
type Policy struct {
	Source   string
	Compiled *ast.CompiledModule
}

// NewPolicy parses and compiles source, returning the accumulated
// ast.Errors on failure.
func NewPolicy(source string) (*Policy, error) {
	compiled, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return &Policy{Source: source, Compiled: compiled}, nil
}

// Evaluate evaluates this policy under the given options and returns a
// Result. It never returns a Go error itself: conversion failures (a
// non-JSON-representable input/data value) and evaluation failures both
// surface as a StatusError Result, matching spec.md §6's Result shape.
func (p *Policy) Evaluate(opts ...EvalOption) *Result {
	cfg := &evalConfig{}
	for _, o := range opts {
		o(cfg)
	}

	inputTerm := ast.NullTerm()
	if cfg.input != nil {
		t, err := ast.InterfaceToTerm(cfg.input)
		if err != nil {
			return &Result{Status: StatusError, Error: &ResultError{Kind: ast.TypeErr.String(), Message: err.Error()}}
		}
		inputTerm = t
	}
	dataTerm := ast.NewTerm(ast.NewObject())
	if cfg.data != nil {
		t, err := ast.InterfaceToTerm(cfg.data)
		if err != nil {
			return &Result{Status: StatusError, Error: &ResultError{Kind: ast.TypeErr.String(), Message: err.Error()}}
		}
		dataTerm = t
	}

	var evalOpts []EvaluatorOption
	if cfg.registry != nil {
		evalOpts = append(evalOpts, WithRegistry(cfg.registry))
	}
	if cfg.tracer != nil {
		evalOpts = append(evalOpts, WithTracer(cfg.tracer))
	}
	evalOpts = append(evalOpts, WithStrictBuiltins(cfg.strict))

	ev := NewEvaluator(p.Compiled, inputTerm, dataTerm, evalOpts...)
	return ev.Evaluate(cfg.query)
}
