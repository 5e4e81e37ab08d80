// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"github.com/ikmak/mongokit/bson/bsontype"
	"github.com/ikmak/mongokit/bson/objectid"
)

// ValueWriter is the interface used to write a single BSON value. A
// ValueWriter accepts whatever its caller hands it without validation:
// anything able to call these methods can produce arbitrary BSON, so builder
// code must never pass unsanitized external strings as field names.
type ValueWriter interface {
	WriteDouble(float64) error
	WriteString(string) error
	WriteDocument() (DocumentWriter, error)
	WriteArray() (ArrayWriter, error)
	WriteBinary(b []byte) error
	WriteBinaryWithSubtype(b []byte, btype byte) error
	WriteUndefined() error
	WriteObjectID(objectid.ObjectID) error
	WriteBoolean(bool) error
	WriteDateTime(dt int64) error
	WriteNull() error
	WriteRegex(pattern, options string) error
	WriteDBPointer(ns string, oid objectid.ObjectID) error
	WriteJavascript(code string) error
	WriteSymbol(symbol string) error
	WriteCodeWithScope(code string) (DocumentWriter, error)
	WriteInt32(int32) error
	WriteTimestamp(t, i uint32) error
	WriteInt64(int64) error
	WriteDecimal128(Decimal128) error
	WriteMinKey() error
	WriteMaxKey() error

	// WriteValue writes a prebuilt value of any type.
	WriteValue(*Value) error
}

// DocumentWriter is the interface used to write the elements of a BSON
// document. WriteDocumentEnd must pair with the WriteDocument (or
// WriteCodeWithScope) call that produced the writer, in strict LIFO order
// with any nested documents or arrays.
type DocumentWriter interface {
	WriteDocumentElement(key string) (ValueWriter, error)
	WriteDocumentEnd() error
}

// ArrayWriter is the interface used to write the values of a BSON array.
// WriteArrayEnd must pair with the WriteArray call that produced the writer.
type ArrayWriter interface {
	WriteArrayElement() (ValueWriter, error)
	WriteArrayEnd() error
}

// writeValue lowers a prebuilt *Value into vw. It is the single exhaustive
// dispatch over the type discriminant on the write side.
func writeValue(vw ValueWriter, v *Value) error {
	switch v.Type() {
	case bsontype.Double:
		return vw.WriteDouble(v.f64)
	case bsontype.String:
		return vw.WriteString(v.str)
	case bsontype.EmbeddedDocument:
		return writeDocument(vw, v.doc)
	case bsontype.Array:
		return writeArray(vw, v.arr)
	case bsontype.Binary:
		return vw.WriteBinaryWithSubtype(v.bytes, v.sub)
	case bsontype.Undefined:
		return vw.WriteUndefined()
	case bsontype.ObjectID:
		return vw.WriteObjectID(v.oid)
	case bsontype.Boolean:
		return vw.WriteBoolean(v.b)
	case bsontype.DateTime:
		return vw.WriteDateTime(v.i64)
	case bsontype.Null:
		return vw.WriteNull()
	case bsontype.Regex:
		return vw.WriteRegex(v.str, v.str2)
	case bsontype.DBPointer:
		return vw.WriteDBPointer(v.str, v.oid)
	case bsontype.JavaScript:
		return vw.WriteJavascript(v.str)
	case bsontype.Symbol:
		return vw.WriteSymbol(v.str)
	case bsontype.CodeWithScope:
		dw, err := vw.WriteCodeWithScope(v.str)
		if err != nil {
			return err
		}
		if err := writeDocumentElements(dw, v.doc); err != nil {
			return err
		}
		return dw.WriteDocumentEnd()
	case bsontype.Int32:
		return vw.WriteInt32(v.i32)
	case bsontype.Timestamp:
		return vw.WriteTimestamp(v.ts.T, v.ts.I)
	case bsontype.Int64:
		return vw.WriteInt64(v.i64)
	case bsontype.Decimal128:
		return vw.WriteDecimal128(v.dec)
	case bsontype.MaxKey:
		return vw.WriteMaxKey()
	default: // bsontype.MinKey
		return vw.WriteMinKey()
	}
}

func writeDocument(vw ValueWriter, d *Document) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	if err := writeDocumentElements(dw, d); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

func writeDocumentElements(dw DocumentWriter, d *Document) error {
	for key, val := range d.Elements() {
		evw, err := dw.WriteDocumentElement(key)
		if err != nil {
			return err
		}
		if err := evw.WriteValue(val); err != nil {
			return err
		}
	}
	return nil
}

func writeArray(vw ValueWriter, a *Array) error {
	aw, err := vw.WriteArray()
	if err != nil {
		return err
	}
	for val := range a.Values() {
		evw, err := aw.WriteArrayElement()
		if err != nil {
			return err
		}
		if err := evw.WriteValue(val); err != nil {
			return err
		}
	}
	return aw.WriteArrayEnd()
}
