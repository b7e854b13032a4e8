// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "fmt"

// Location records a position in Rego source code.
type Location struct {
	Text []byte `json:"-"` // the original text fragment from the source
	File string `json:"file,omitempty"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// NewLocation returns a new Location object.
func NewLocation(text []byte, file string, row, col int) *Location {
	return &Location{Text: text, File: file, Row: row, Col: col}
}

// Errorf returns a new error value with a message formatted to include the
// location info (e.g. line, column, filename, etc).
func (loc *Location) Errorf(f string, a ...interface{}) error {
	return fmt.Errorf("%s", loc.Format(f, a...))
}

// Wrapf returns a new error value that wraps an existing error with a
// message formatted to include the location info.
func (loc *Location) Wrapf(err error, f string, a ...interface{}) error {
	return fmt.Errorf("%s: %w", loc.Format(f, a...), err)
}

// Format returns a formatted string prefixed with the location information.
func (loc *Location) Format(f string, a ...interface{}) string {
	if loc == nil {
		return fmt.Sprintf(f, a...)
	}
	msg := fmt.Sprintf(f, a...)
	if len(loc.File) > 0 {
		return fmt.Sprintf("%v:%v: %v", loc.File, loc.Row, msg)
	}
	return fmt.Sprintf("%v:%v: %v", loc.Row, loc.Col, msg)
}

// String implements fmt.Stringer.
func (loc *Location) String() string {
	if loc == nil {
		return ""
	}
	if len(loc.File) > 0 {
		return fmt.Sprintf("%v:%v", loc.File, loc.Row)
	}
	return fmt.Sprintf("%v:%v", loc.Row, loc.Col)
}

// Equal returns true if this location equals the other location. Two nil
// locations are considered equal.
func (loc *Location) Equal(other *Location) bool {
	if loc == nil || other == nil {
		return loc == other
	}
	return loc.File == other.File && loc.Row == other.Row && loc.Col == other.Col
}
