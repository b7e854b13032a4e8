// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/r6e/regolite/ast"
)

func strArg(name string, t *ast.Term, pos int) (string, error) {
	s, ok := t.Value.(ast.String)
	if !ok {
		return "", argError(name, "argument %d must be a string, got %T", pos, t.Value)
	}
	return string(s), nil
}

func biConcat(args []*ast.Term) (*ast.Term, error) {
	sep, err := strArg("concat", args[0], 1)
	if err != nil {
		return nil, err
	}
	elems, err := termsOf("concat", args[1])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(elems))
	for i, t := range elems {
		s, ok := t.Value.(ast.String)
		if !ok {
			return nil, argError("concat", "collection must contain only strings")
		}
		parts[i] = string(s)
	}
	return ast.StringTerm(strings.Join(parts, sep)), nil
}

func biContains(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("contains", args[0], 1)
	if err != nil {
		return nil, err
	}
	sub, err := strArg("contains", args[1], 2)
	if err != nil {
		return nil, err
	}
	return ast.BooleanTerm(strings.Contains(s, sub)), nil
}

func biStartsWith(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("startswith", args[0], 1)
	if err != nil {
		return nil, err
	}
	prefix, err := strArg("startswith", args[1], 2)
	if err != nil {
		return nil, err
	}
	return ast.BooleanTerm(strings.HasPrefix(s, prefix)), nil
}

func biEndsWith(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("endswith", args[0], 1)
	if err != nil {
		return nil, err
	}
	suffix, err := strArg("endswith", args[1], 2)
	if err != nil {
		return nil, err
	}
	return ast.BooleanTerm(strings.HasSuffix(s, suffix)), nil
}

func biFormatInt(args []*ast.Term) (*ast.Term, error) {
	n, ok := args[0].Value.(ast.Number)
	if !ok {
		return nil, argError("format_int", "first argument must be a number")
	}
	base, ok := intArg(args[1])
	if !ok {
		return nil, argError("format_int", "second argument must be an integer")
	}
	i, ok := n.Int64()
	if !ok {
		return nil, argError("format_int", "first argument must be an integer-valued number")
	}
	return ast.StringTerm(strconv.FormatInt(i, base)), nil
}

func biIndexOf(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("indexof", args[0], 1)
	if err != nil {
		return nil, err
	}
	sub, err := strArg("indexof", args[1], 2)
	if err != nil {
		return nil, err
	}
	return ast.IntNumberTerm(strings.Index(s, sub)), nil
}

func biLower(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("lower", args[0], 1)
	if err != nil {
		return nil, err
	}
	return ast.StringTerm(strings.ToLower(s)), nil
}

func biUpper(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("upper", args[0], 1)
	if err != nil {
		return nil, err
	}
	return ast.StringTerm(strings.ToUpper(s)), nil
}

func biSplit(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("split", args[0], 1)
	if err != nil {
		return nil, err
	}
	sep, err := strArg("split", args[1], 2)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	terms := make([]*ast.Term, len(parts))
	for i, p := range parts {
		terms[i] = ast.StringTerm(p)
	}
	return ast.ArrayTerm(terms...), nil
}

func biSprintf(args []*ast.Term) (*ast.Term, error) {
	format, err := strArg("sprintf", args[0], 1)
	if err != nil {
		return nil, err
	}
	elems, err := termsOf("sprintf", args[1])
	if err != nil {
		return nil, err
	}
	vals := make([]interface{}, len(elems))
	for i, t := range elems {
		v, err := ast.JSON(t.Value)
		if err != nil {
			return nil, argError("sprintf", "argument %d is not printable: %v", i+1, err)
		}
		vals[i] = v
	}
	return ast.StringTerm(fmt.Sprintf(format, vals...)), nil
}

func biSubstring(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("substring", args[0], 1)
	if err != nil {
		return nil, err
	}
	start, ok := intArg(args[1])
	if !ok {
		return nil, argError("substring", "start must be an integer")
	}
	length, ok := intArg(args[2])
	if !ok {
		return nil, argError("substring", "length must be an integer")
	}
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := len(runes)
	if length >= 0 && start+length < end {
		end = start + length
	}
	return ast.StringTerm(string(runes[start:end])), nil
}

func biTrim(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("trim", args[0], 1)
	if err != nil {
		return nil, err
	}
	cutset, err := strArg("trim", args[1], 2)
	if err != nil {
		return nil, err
	}
	return ast.StringTerm(strings.Trim(s, cutset)), nil
}

func biTrimLeft(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("trim_left", args[0], 1)
	if err != nil {
		return nil, err
	}
	cutset, err := strArg("trim_left", args[1], 2)
	if err != nil {
		return nil, err
	}
	return ast.StringTerm(strings.TrimLeft(s, cutset)), nil
}

func biTrimRight(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("trim_right", args[0], 1)
	if err != nil {
		return nil, err
	}
	cutset, err := strArg("trim_right", args[1], 2)
	if err != nil {
		return nil, err
	}
	return ast.StringTerm(strings.TrimRight(s, cutset)), nil
}

func biTrimSpace(args []*ast.Term) (*ast.Term, error) {
	s, err := strArg("trim_space", args[0], 1)
	if err != nil {
		return nil, err
	}
	return ast.StringTerm(strings.TrimSpace(s)), nil
}

func biEqual(args []*ast.Term) (*ast.Term, error) {
	return ast.BooleanTerm(args[0].Equal(args[1])), nil
}

func biToNumber(args []*ast.Term) (*ast.Term, error) {
	switch v := args[0].Value.(type) {
	case ast.Number:
		return args[0], nil
	case ast.String:
		if _, err := strconv.ParseFloat(string(v), 64); err != nil {
			return nil, argError("to_number", "cannot parse %q as a number", string(v))
		}
		return ast.NewTerm(ast.NumberFromLiteral(string(v))), nil
	case ast.Boolean:
		if v {
			return ast.IntNumberTerm(1), nil
		}
		return ast.IntNumberTerm(0), nil
	default:
		return nil, argError("to_number", "operand must be a number, string or boolean")
	}
}
