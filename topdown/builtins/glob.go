// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import (
	"github.com/gobwas/glob"

	"github.com/r6e/regolite/ast"
)

// biGlobMatch implements glob.match(pattern, delimiters, match) using
// gobwas/glob for the actual pattern compilation, the library the
// pack's example repos reach for over a hand-rolled matcher.
func biGlobMatch(args []*ast.Term) (*ast.Term, error) {
	pattern, err := strArg("glob.match", args[0], 1)
	if err != nil {
		return nil, err
	}
	delims, err := termsOf("glob.match", args[1])
	if err != nil {
		return nil, err
	}
	var seps []rune
	for _, d := range delims {
		s, ok := d.Value.(ast.String)
		if !ok {
			return nil, argError("glob.match", "delimiters must be strings")
		}
		for _, r := range string(s) {
			seps = append(seps, r)
		}
	}
	match, err := strArg("glob.match", args[2], 3)
	if err != nil {
		return nil, err
	}
	g, err := glob.Compile(pattern, seps...)
	if err != nil {
		return nil, argError("glob.match", "invalid pattern: %v", err)
	}
	return ast.BooleanTerm(g.Match(match)), nil
}
