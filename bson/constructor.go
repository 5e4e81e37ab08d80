// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ikmak/mongokit/bson/bsontype"
	"github.com/ikmak/mongokit/bson/objectid"
)

// VC is a convenience variable provided for access to the ValueConstructor
// methods.
var VC ValueConstructor

// ValueConstructor is used as a namespace for value constructor functions.
type ValueConstructor struct{}

// Double constructs a double Value.
func (ValueConstructor) Double(f float64) *Value {
	return &Value{t: bsontype.Double, f64: f}
}

// String constructs a string Value.
func (ValueConstructor) String(s string) *Value {
	return &Value{t: bsontype.String, str: s}
}

// Document constructs an embedded document Value. A nil document is treated
// as an empty one.
func (ValueConstructor) Document(d *Document) *Value {
	if d == nil {
		d = NewDocument()
	}
	return &Value{t: bsontype.EmbeddedDocument, doc: d}
}

// Array constructs an array Value. A nil array is treated as an empty one.
func (ValueConstructor) Array(a *Array) *Value {
	if a == nil {
		a = NewArray()
	}
	return &Value{t: bsontype.Array, arr: a}
}

// Binary constructs a binary Value with the generic subtype.
func (c ValueConstructor) Binary(b []byte) *Value {
	return c.BinaryWithSubtype(b, 0x00)
}

// BinaryWithSubtype constructs a binary Value with the given subtype.
func (ValueConstructor) BinaryWithSubtype(b []byte, subtype byte) *Value {
	return &Value{t: bsontype.Binary, bytes: b, sub: subtype}
}

// Undefined constructs an undefined Value.
func (ValueConstructor) Undefined() *Value {
	return &Value{t: bsontype.Undefined}
}

// ObjectID constructs an ObjectID Value.
func (ValueConstructor) ObjectID(oid objectid.ObjectID) *Value {
	return &Value{t: bsontype.ObjectID, oid: oid}
}

// Boolean constructs a boolean Value.
func (ValueConstructor) Boolean(b bool) *Value {
	return &Value{t: bsontype.Boolean, b: b}
}

// DateTime constructs a datetime Value from milliseconds since the Unix epoch.
func (ValueConstructor) DateTime(dt int64) *Value {
	return &Value{t: bsontype.DateTime, i64: dt}
}

// Time constructs a datetime Value from a time.Time, truncated to
// millisecond precision.
func (ValueConstructor) Time(t time.Time) *Value {
	return &Value{t: bsontype.DateTime, i64: int64(NewDateTime(t))}
}

// Null constructs a null Value.
func (ValueConstructor) Null() *Value {
	return &Value{t: bsontype.Null}
}

// Regex constructs a regex Value.
func (ValueConstructor) Regex(pattern, options string) *Value {
	return &Value{t: bsontype.Regex, str: pattern, str2: options}
}

// DBPointer constructs a dbPointer Value.
func (ValueConstructor) DBPointer(ns string, oid objectid.ObjectID) *Value {
	return &Value{t: bsontype.DBPointer, str: ns, oid: oid}
}

// JavaScript constructs a JavaScript code Value.
func (ValueConstructor) JavaScript(code string) *Value {
	return &Value{t: bsontype.JavaScript, str: code}
}

// Symbol constructs a symbol Value.
func (ValueConstructor) Symbol(s string) *Value {
	return &Value{t: bsontype.Symbol, str: s}
}

// CodeWithScope constructs a code-with-scope Value.
func (ValueConstructor) CodeWithScope(code string, scope *Document) *Value {
	if scope == nil {
		scope = NewDocument()
	}
	return &Value{t: bsontype.CodeWithScope, str: code, doc: scope}
}

// Int32 constructs an int32 Value.
func (ValueConstructor) Int32(i int32) *Value {
	return &Value{t: bsontype.Int32, i32: i}
}

// Timestamp constructs a timestamp Value.
func (ValueConstructor) Timestamp(t, i uint32) *Value {
	return &Value{t: bsontype.Timestamp, ts: Timestamp{T: t, I: i}}
}

// Int64 constructs an int64 Value.
func (ValueConstructor) Int64(i int64) *Value {
	return &Value{t: bsontype.Int64, i64: i}
}

// Decimal128 constructs a decimal128 Value.
func (ValueConstructor) Decimal128(d Decimal128) *Value {
	return &Value{t: bsontype.Decimal128, dec: d}
}

// MinKey constructs a min key Value.
func (ValueConstructor) MinKey() *Value {
	return &Value{t: bsontype.MinKey}
}

// MaxKey constructs a max key Value.
func (ValueConstructor) MaxKey() *Value {
	return &Value{t: bsontype.MaxKey}
}

// Interface will attempt to turn the provided value into a *Value. For common
// types, type casting is used, and slices and maps are converted recursively.
// If the value cannot be converted, a null Value is constructed. This method
// will never return nil. If an error is desired instead, use InterfaceErr.
func (c ValueConstructor) Interface(value interface{}) *Value {
	v, err := c.InterfaceErr(value)
	if err != nil {
		return c.Null()
	}
	return v
}

// InterfaceErr does what Interface does, but returns an error when it cannot
// properly convert a value. See Interface for details.
func (c ValueConstructor) InterfaceErr(value interface{}) (*Value, error) {
	switch t := value.(type) {
	case nil:
		return c.Null(), nil
	case bool:
		return c.Boolean(t), nil
	case int8:
		return c.Int32(int32(t)), nil
	case int16:
		return c.Int32(int32(t)), nil
	case int32:
		return c.Int32(t), nil
	case int:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			return c.Int32(int32(t)), nil
		}
		return c.Int64(int64(t)), nil
	case int64:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			return c.Int32(int32(t)), nil
		}
		return c.Int64(t), nil
	case uint8:
		return c.Int32(int32(t)), nil
	case uint16:
		return c.Int32(int32(t)), nil
	case uint32:
		if t <= math.MaxInt32 {
			return c.Int32(int32(t)), nil
		}
		return c.Int64(int64(t)), nil
	case uint:
		switch {
		case t <= math.MaxInt32:
			return c.Int32(int32(t)), nil
		case uint64(t) > math.MaxInt64:
			return nil, fmt.Errorf("BSON only has signed integer types and %d overflows an int64", t)
		default:
			return c.Int64(int64(t)), nil
		}
	case uint64:
		switch {
		case t <= math.MaxInt32:
			return c.Int32(int32(t)), nil
		case t > math.MaxInt64:
			return nil, fmt.Errorf("BSON only has signed integer types and %d overflows an int64", t)
		default:
			return c.Int64(int64(t)), nil
		}
	case float32:
		return c.Double(float64(t)), nil
	case float64:
		return c.Double(t), nil
	case string:
		return c.String(t), nil
	case []byte:
		return c.Binary(t), nil
	case time.Time:
		return c.Time(t), nil
	case objectid.ObjectID:
		return c.ObjectID(t), nil
	case Timestamp:
		return c.Timestamp(t.T, t.I), nil
	case DateTime:
		return c.DateTime(int64(t)), nil
	case Regex:
		return c.Regex(t.Pattern, t.Options), nil
	case Binary:
		return c.BinaryWithSubtype(t.Data, t.Subtype), nil
	case Decimal128:
		return c.Decimal128(t), nil
	case *Document:
		return c.Document(t), nil
	case *Array:
		return c.Array(t), nil
	case *Value:
		if t == nil {
			return c.Null(), nil
		}
		return t, nil
	case []interface{}:
		arr := NewArray()
		for _, e := range t {
			ev, err := c.InterfaceErr(e)
			if err != nil {
				return nil, err
			}
			arr.Append(ev)
		}
		return c.Array(arr), nil
	case map[string]interface{}:
		// Map iteration order is random, so the keys are sorted to keep the
		// serialized form deterministic.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		doc := NewDocument()
		for _, k := range keys {
			ev, err := c.InterfaceErr(t[k])
			if err != nil {
				return nil, err
			}
			doc.Set(k, ev)
		}
		return c.Document(doc), nil
	default:
		return nil, fmt.Errorf("cannot convert %T into a *bson.Value", value)
	}
}
