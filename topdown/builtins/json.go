// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import (
	"encoding/json"
	"strings"

	"github.com/r6e/regolite/ast"
)

func biJSONMarshal(args []*ast.Term) (*ast.Term, error) {
	native, err := ast.JSON(args[0].Value)
	if err != nil {
		return nil, argError("json.marshal", "operand is not serializable: %v", err)
	}
	bs, err := json.Marshal(native)
	if err != nil {
		return nil, argError("json.marshal", "%v", err)
	}
	return ast.StringTerm(string(bs)), nil
}

func biJSONUnmarshal(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("json.unmarshal", args[0], 1)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return nil, argError("json.unmarshal", "invalid JSON: %v", err)
	}
	v, err := ast.InterfaceToValue(x)
	if err != nil {
		return nil, argError("json.unmarshal", "%v", err)
	}
	return ast.NewTerm(v), nil
}
