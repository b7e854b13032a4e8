// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package topdown

import "github.com/r6e/regolite/ast"

// Event describes one step the Evaluator took, for tracing/debugging.
type Event struct {
	Op       string
	Location *ast.Location
	Message  string
}

// Tracer receives Events as the Evaluator runs. Implementations must
// not retain Event's Location beyond the call (the evaluator reuses
// nothing, but callers should still treat it as a snapshot).
type Tracer interface {
	Trace(Event)
}

// NopTracer discards every Event; it is the Evaluator's default.
type NopTracer struct{}

// Trace implements Tracer.
func (NopTracer) Trace(Event) {}

// BufferTracer accumulates Events in memory, useful for tests and the
// CLI's --profile output.
type BufferTracer struct {
	Events []Event
}

// Trace implements Tracer.
func (t *BufferTracer) Trace(e Event) {
	t.Events = append(t.Events, e)
}
