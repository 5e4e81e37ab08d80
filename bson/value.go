// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/ikmak/mongokit/bson/bsontype"
	"github.com/ikmak/mongokit/bson/objectid"
)

// ElementTypeError indicates that a method to obtain a BSON value an
// incorrect type was called on a bson.Value.
type ElementTypeError struct {
	Method string
	Type   bsontype.Type
}

// Error implements the error interface.
func (ete ElementTypeError) Error() string {
	return "Call of " + ete.Method + " on " + ete.Type.String() + " type"
}

// Value represents a single BSON value. Exactly one of the storage fields is
// populated, selected by the type discriminant. A Value is immutable once
// constructed; Document and Array values share their underlying containers.
type Value struct {
	t bsontype.Type

	f64   float64
	str   string
	str2  string
	i32   int32
	i64   int64
	b     bool
	bytes []byte
	sub   byte
	oid   objectid.ObjectID
	ts    Timestamp
	dec   Decimal128
	doc   *Document
	arr   *Array
}

// Type returns the BSON type of the value.
func (v *Value) Type() bsontype.Type {
	if v == nil || v.t == 0 {
		return bsontype.Null
	}
	return v.t
}

// Double returns the float64 value. It panics with an ElementTypeError if the
// value is not a double.
func (v *Value) Double() float64 {
	f, ok := v.DoubleOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Double", v.Type()})
	}
	return f
}

// DoubleOK is the non-panicking version of Double.
func (v *Value) DoubleOK() (float64, bool) {
	if v == nil || v.t != bsontype.Double {
		return 0, false
	}
	return v.f64, true
}

// StringValue returns the string value. It panics with an ElementTypeError if
// the value is not a string.
//
// NOTE: This method is called StringValue to avoid a collision with the
// String method used for debug output.
func (v *Value) StringValue() string {
	s, ok := v.StringValueOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.StringValue", v.Type()})
	}
	return s
}

// StringValueOK is the non-panicking version of StringValue.
func (v *Value) StringValueOK() (string, bool) {
	if v == nil || v.t != bsontype.String {
		return "", false
	}
	return v.str, true
}

// Document returns the embedded document value. It panics with an
// ElementTypeError if the value is not an embedded document.
func (v *Value) Document() *Document {
	d, ok := v.DocumentOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Document", v.Type()})
	}
	return d
}

// DocumentOK is the non-panicking version of Document.
func (v *Value) DocumentOK() (*Document, bool) {
	if v == nil || v.t != bsontype.EmbeddedDocument {
		return nil, false
	}
	return v.doc, true
}

// Array returns the array value. It panics with an ElementTypeError if the
// value is not an array.
func (v *Value) Array() *Array {
	a, ok := v.ArrayOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Array", v.Type()})
	}
	return a
}

// ArrayOK is the non-panicking version of Array.
func (v *Value) ArrayOK() (*Array, bool) {
	if v == nil || v.t != bsontype.Array {
		return nil, false
	}
	return v.arr, true
}

// Binary returns the binary value. It panics with an ElementTypeError if the
// value is not binary.
func (v *Value) Binary() Binary {
	b, ok := v.BinaryOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Binary", v.Type()})
	}
	return b
}

// BinaryOK is the non-panicking version of Binary.
func (v *Value) BinaryOK() (Binary, bool) {
	if v == nil || v.t != bsontype.Binary {
		return Binary{}, false
	}
	return Binary{Subtype: v.sub, Data: v.bytes}, true
}

// ObjectID returns the ObjectID value. It panics with an ElementTypeError if
// the value is not an ObjectID.
func (v *Value) ObjectID() objectid.ObjectID {
	oid, ok := v.ObjectIDOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.ObjectID", v.Type()})
	}
	return oid
}

// ObjectIDOK is the non-panicking version of ObjectID.
func (v *Value) ObjectIDOK() (objectid.ObjectID, bool) {
	if v == nil || v.t != bsontype.ObjectID {
		return objectid.NilObjectID, false
	}
	return v.oid, true
}

// Boolean returns the boolean value. It panics with an ElementTypeError if
// the value is not a boolean.
func (v *Value) Boolean() bool {
	b, ok := v.BooleanOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Boolean", v.Type()})
	}
	return b
}

// BooleanOK is the non-panicking version of Boolean.
func (v *Value) BooleanOK() (bool, bool) {
	if v == nil || v.t != bsontype.Boolean {
		return false, false
	}
	return v.b, true
}

// DateTime returns the datetime value. It panics with an ElementTypeError if
// the value is not a datetime.
func (v *Value) DateTime() DateTime {
	dt, ok := v.DateTimeOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.DateTime", v.Type()})
	}
	return dt
}

// DateTimeOK is the non-panicking version of DateTime.
func (v *Value) DateTimeOK() (DateTime, bool) {
	if v == nil || v.t != bsontype.DateTime {
		return 0, false
	}
	return DateTime(v.i64), true
}

// Regex returns the regex value. It panics with an ElementTypeError if the
// value is not a regex.
func (v *Value) Regex() Regex {
	r, ok := v.RegexOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Regex", v.Type()})
	}
	return r
}

// RegexOK is the non-panicking version of Regex.
func (v *Value) RegexOK() (Regex, bool) {
	if v == nil || v.t != bsontype.Regex {
		return Regex{}, false
	}
	return Regex{Pattern: v.str, Options: v.str2}, true
}

// DBPointer returns the dbPointer value. It panics with an ElementTypeError
// if the value is not a dbPointer.
func (v *Value) DBPointer() DBPointer {
	dp, ok := v.DBPointerOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.DBPointer", v.Type()})
	}
	return dp
}

// DBPointerOK is the non-panicking version of DBPointer.
func (v *Value) DBPointerOK() (DBPointer, bool) {
	if v == nil || v.t != bsontype.DBPointer {
		return DBPointer{}, false
	}
	return DBPointer{DB: v.str, Pointer: v.oid}, true
}

// JavaScript returns the JavaScript code value. It panics with an
// ElementTypeError if the value is not JavaScript code.
func (v *Value) JavaScript() string {
	js, ok := v.JavaScriptOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.JavaScript", v.Type()})
	}
	return js
}

// JavaScriptOK is the non-panicking version of JavaScript.
func (v *Value) JavaScriptOK() (string, bool) {
	if v == nil || v.t != bsontype.JavaScript {
		return "", false
	}
	return v.str, true
}

// Symbol returns the symbol value. It panics with an ElementTypeError if the
// value is not a symbol.
func (v *Value) Symbol() string {
	s, ok := v.SymbolOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Symbol", v.Type()})
	}
	return s
}

// SymbolOK is the non-panicking version of Symbol.
func (v *Value) SymbolOK() (string, bool) {
	if v == nil || v.t != bsontype.Symbol {
		return "", false
	}
	return v.str, true
}

// CodeWithScope returns the code-with-scope value. It panics with an
// ElementTypeError if the value is not a code-with-scope.
func (v *Value) CodeWithScope() CodeWithScope {
	cws, ok := v.CodeWithScopeOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.CodeWithScope", v.Type()})
	}
	return cws
}

// CodeWithScopeOK is the non-panicking version of CodeWithScope.
func (v *Value) CodeWithScopeOK() (CodeWithScope, bool) {
	if v == nil || v.t != bsontype.CodeWithScope {
		return CodeWithScope{}, false
	}
	return CodeWithScope{Code: v.str, Scope: v.doc}, true
}

// Int32 returns the int32 value. It panics with an ElementTypeError if the
// value is not an int32.
func (v *Value) Int32() int32 {
	i, ok := v.Int32OK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Int32", v.Type()})
	}
	return i
}

// Int32OK is the non-panicking version of Int32.
func (v *Value) Int32OK() (int32, bool) {
	if v == nil || v.t != bsontype.Int32 {
		return 0, false
	}
	return v.i32, true
}

// Timestamp returns the timestamp value. It panics with an ElementTypeError
// if the value is not a timestamp.
func (v *Value) Timestamp() Timestamp {
	ts, ok := v.TimestampOK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Timestamp", v.Type()})
	}
	return ts
}

// TimestampOK is the non-panicking version of Timestamp.
func (v *Value) TimestampOK() (Timestamp, bool) {
	if v == nil || v.t != bsontype.Timestamp {
		return Timestamp{}, false
	}
	return v.ts, true
}

// Int64 returns the int64 value. It panics with an ElementTypeError if the
// value is not an int64.
func (v *Value) Int64() int64 {
	i, ok := v.Int64OK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Int64", v.Type()})
	}
	return i
}

// Int64OK is the non-panicking version of Int64.
func (v *Value) Int64OK() (int64, bool) {
	if v == nil || v.t != bsontype.Int64 {
		return 0, false
	}
	return v.i64, true
}

// Decimal128 returns the decimal128 value. It panics with an ElementTypeError
// if the value is not a decimal128.
func (v *Value) Decimal128() Decimal128 {
	d, ok := v.Decimal128OK()
	if !ok {
		panic(ElementTypeError{"bson.Value.Decimal128", v.Type()})
	}
	return d
}

// Decimal128OK is the non-panicking version of Decimal128.
func (v *Value) Decimal128OK() (Decimal128, bool) {
	if v == nil || v.t != bsontype.Decimal128 {
		return Decimal128{}, false
	}
	return v.dec, true
}

// Equal compares v to other for structural equality. Embedded documents
// compare field-order insensitively, arrays compare index by index.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.t != other.t {
		return false
	}

	switch v.t {
	case bsontype.Double:
		return v.f64 == other.f64 || (math.IsNaN(v.f64) && math.IsNaN(other.f64))
	case bsontype.String, bsontype.JavaScript, bsontype.Symbol:
		return v.str == other.str
	case bsontype.EmbeddedDocument:
		return v.doc.Equal(other.doc)
	case bsontype.Array:
		return v.arr.Equal(other.arr)
	case bsontype.Binary:
		return Binary{Subtype: v.sub, Data: v.bytes}.Equal(Binary{Subtype: other.sub, Data: other.bytes})
	case bsontype.Undefined, bsontype.Null, bsontype.MinKey, bsontype.MaxKey:
		return true
	case bsontype.ObjectID:
		return v.oid == other.oid
	case bsontype.Boolean:
		return v.b == other.b
	case bsontype.DateTime, bsontype.Int64:
		return v.i64 == other.i64
	case bsontype.Regex:
		return v.str == other.str && v.str2 == other.str2
	case bsontype.DBPointer:
		return v.str == other.str && v.oid == other.oid
	case bsontype.CodeWithScope:
		return v.str == other.str && v.doc.Equal(other.doc)
	case bsontype.Int32:
		return v.i32 == other.i32
	case bsontype.Timestamp:
		return v.ts == other.ts
	case bsontype.Decimal128:
		return v.dec == other.dec
	default:
		return false
	}
}

// hash computes a structural hash consistent with Equal: equal values hash
// equally regardless of internal representation.
func (v *Value) hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(v.Type())})

	switch v.Type() {
	case bsontype.Double:
		bits := math.Float64bits(v.f64)
		// Equal treats every NaN payload as the same value.
		if math.IsNaN(v.f64) {
			bits = math.Float64bits(math.NaN())
		}
		writeUint64(h, bits)
	case bsontype.String, bsontype.JavaScript, bsontype.Symbol:
		h.Write([]byte(v.str))
	case bsontype.EmbeddedDocument:
		writeUint64(h, v.doc.hash())
	case bsontype.Array:
		writeUint64(h, v.arr.hash())
	case bsontype.Binary:
		h.Write([]byte{v.sub})
		h.Write(v.bytes)
	case bsontype.ObjectID:
		h.Write(v.oid[:])
	case bsontype.Boolean:
		if v.b {
			h.Write([]byte{1})
		}
	case bsontype.DateTime, bsontype.Int64:
		writeUint64(h, uint64(v.i64))
	case bsontype.Regex, bsontype.DBPointer:
		h.Write([]byte(v.str))
		h.Write([]byte{0})
		h.Write([]byte(v.str2))
		h.Write(v.oid[:])
	case bsontype.CodeWithScope:
		h.Write([]byte(v.str))
		writeUint64(h, v.doc.hash())
	case bsontype.Int32:
		writeUint64(h, uint64(v.i32))
	case bsontype.Timestamp:
		writeUint64(h, uint64(v.ts.Raw()))
	case bsontype.Decimal128:
		writeUint64(h, v.dec.H)
		writeUint64(h, v.dec.L)
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write([]byte) (int, error) }, u uint64) {
	var b [8]byte
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}
	h.Write(b[:])
}

// Interface returns the Go value of this Value as an empty interface.
func (v *Value) Interface() interface{} {
	if v == nil {
		return nil
	}

	switch v.t {
	case bsontype.Double:
		return v.f64
	case bsontype.String:
		return v.str
	case bsontype.EmbeddedDocument:
		return v.doc
	case bsontype.Array:
		return v.arr
	case bsontype.Binary:
		return Binary{Subtype: v.sub, Data: v.bytes}
	case bsontype.ObjectID:
		return v.oid
	case bsontype.Boolean:
		return v.b
	case bsontype.DateTime:
		return DateTime(v.i64)
	case bsontype.Regex:
		return Regex{Pattern: v.str, Options: v.str2}
	case bsontype.DBPointer:
		return DBPointer{DB: v.str, Pointer: v.oid}
	case bsontype.JavaScript:
		return v.str
	case bsontype.Symbol:
		return v.str
	case bsontype.CodeWithScope:
		return CodeWithScope{Code: v.str, Scope: v.doc}
	case bsontype.Int32:
		return v.i32
	case bsontype.Timestamp:
		return v.ts
	case bsontype.Int64:
		return v.i64
	case bsontype.Decimal128:
		return v.dec
	default:
		return nil
	}
}

// String implements the fmt.Stringer interface. The output is extended JSON
// flavored and intended for debugging only.
func (v *Value) String() string {
	return string(v.appendExtJSON(nil))
}

var _ fmt.Stringer = (*Value)(nil)
