// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"encoding/json"
	"fmt"
)

// InterfaceToValue converts a native Go value (as produced by
// encoding/json.Unmarshal into interface{}) into an ast.Value. It is used
// to load `input`/`data` documents and to implement the json.unmarshal
// builtin.
func InterfaceToValue(x interface{}) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Boolean(x), nil
	case float64:
		return FloatNumber(x), nil
	case json.Number:
		return NumberFromLiteral(x.String()), nil
	case string:
		return String(x), nil
	case []interface{}:
		arr := make(Array, len(x))
		for i, e := range x {
			v, err := InterfaceToValue(e)
			if err != nil {
				return nil, err
			}
			arr[i] = NewTerm(v)
		}
		return arr, nil
	case map[string]interface{}:
		obj := NewObject()
		for k, v := range x {
			vv, err := InterfaceToValue(v)
			if err != nil {
				return nil, err
			}
			obj.Insert(StringTerm(k), NewTerm(vv))
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("illegal value: %T", x)
	}
}

// InterfaceToTerm is a convenience wrapper that returns the converted
// value wrapped in a Term.
func InterfaceToTerm(x interface{}) (*Term, error) {
	v, err := InterfaceToValue(x)
	if err != nil {
		return nil, err
	}
	return NewTerm(v), nil
}

// JSON converts a ground Value into plain Go data (nil, bool, string,
// Number formatted as float64/int64, []interface{}, map[string]interface{})
// suitable for encoding/json.Marshal. Used by the CLI's result output and
// the json.marshal builtin. It returns an error if v (or any value nested
// inside it) is not ground, since Rego's internal node kinds (Var, Ref,
// comprehensions, Undefined) have no JSON representation.
func JSON(v Value) (interface{}, error) {
	switch v := v.(type) {
	case Null:
		return nil, nil
	case Boolean:
		return bool(v), nil
	case Number:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		return v.Float64(), nil
	case String:
		return string(v), nil
	case Array:
		out := make([]interface{}, len(v))
		for i, t := range v {
			jv, err := JSON(t.Value)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	case *Set:
		out := make([]interface{}, 0, v.Len())
		var convErr error
		v.Foreach(func(t *Term) {
			if convErr != nil {
				return
			}
			jv, err := JSON(t.Value)
			if err != nil {
				convErr = err
				return
			}
			out = append(out, jv)
		})
		if convErr != nil {
			return nil, convErr
		}
		return out, nil
	case *Object:
		out := make(map[string]interface{}, v.Len())
		var convErr error
		v.Foreach(func(k, val *Term) {
			ks, ok := k.Value.(String)
			if !ok {
				convErr = fmt.Errorf("object key %v is not a string", k)
				return
			}
			jv, err := JSON(val.Value)
			if err != nil {
				convErr = err
				return
			}
			out[string(ks)] = jv
		})
		if convErr != nil {
			return nil, convErr
		}
		return out, nil
	case undefinedValue:
		return nil, fmt.Errorf("cannot convert undefined to JSON")
	default:
		return nil, fmt.Errorf("cannot convert %T to JSON (not ground)", v)
	}
}

// TermJSON converts t's value via JSON.
func TermJSON(t *Term) (interface{}, error) {
	if TermIsUndefined(t) {
		return nil, fmt.Errorf("cannot convert undefined to JSON")
	}
	return JSON(t.Value)
}

// MarshalJSON implements json.Marshaler by rendering the term's plain JSON
// value (not a typed AST encoding): this is what the CLI uses to print
// evaluation results and what json.marshal relies on.
func (term *Term) MarshalJSON() ([]byte, error) {
	v, err := TermJSON(term)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler by decoding plain JSON into an
// equivalent Value via InterfaceToValue.
func (term *Term) UnmarshalJSON(bs []byte) error {
	var x interface{}
	if err := json.Unmarshal(bs, &x); err != nil {
		return err
	}
	v, err := InterfaceToValue(x)
	if err != nil {
		return err
	}
	term.Value = v
	return nil
}
