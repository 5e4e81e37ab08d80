// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"iter"

	"github.com/ikmak/mongokit/bson/bsontype"
	"github.com/ikmak/mongokit/bson/objectid"
)

// TypeError indicates that a typed read accessor was invoked on a value of a
// different type. The caller can recover by checking Type first and choosing
// a different accessor; this error is the single source of type safety at the
// BSON boundary.
type TypeError struct {
	Method    string
	Requested bsontype.Type
	Actual    bsontype.Type
}

func (te TypeError) Error() string {
	return fmt.Sprintf("%s: positioned on %s, but attempted to read %s", te.Method, te.Actual, te.Requested)
}

// ValueReader is a read cursor over a single BSON value. Type returns the
// discriminant; exactly one typed accessor applies per type and invoking any
// other returns a TypeError.
type ValueReader interface {
	Type() bsontype.Type

	ReadDouble() (float64, error)
	ReadString() (string, error)
	ReadDocument() (DocumentReader, error)
	ReadArray() (ArrayReader, error)
	ReadBinary() (Binary, error)
	ReadUndefined() error
	ReadObjectID() (objectid.ObjectID, error)
	ReadBoolean() (bool, error)
	ReadDateTime() (DateTime, error)
	ReadNull() error
	ReadRegex() (Regex, error)
	ReadDBPointer() (DBPointer, error)
	ReadJavascript() (string, error)
	ReadSymbol() (string, error)
	ReadCodeWithScope() (string, DocumentReader, error)
	ReadInt32() (int32, error)
	ReadTimestamp() (Timestamp, error)
	ReadInt64() (int64, error)
	ReadDecimal128() (Decimal128, error)
	ReadMinKey() error
	ReadMaxKey() error
}

// DocumentReader provides random access to the elements of a BSON document.
type DocumentReader interface {
	Len() int
	// Read returns a reader for the value stored under name, or
	// ErrElementNotFound.
	Read(name string) (ValueReader, error)
	// Entries iterates the document's elements in insertion order.
	Entries() iter.Seq2[string, ValueReader]
}

// ArrayReader provides random access to the values of a BSON array.
type ArrayReader interface {
	Len() int
	// Read returns a reader for the value at index, or ErrOutOfBounds.
	Read(index int) (ValueReader, error)
	// Elements iterates the array's values in order.
	Elements() iter.Seq[ValueReader]
}

// NewValueReader returns a ValueReader positioned on v. A nil v reads as null.
func NewValueReader(v *Value) ValueReader {
	return valueReader{v: v}
}

// NewDocumentReader returns a DocumentReader over d.
func NewDocumentReader(d *Document) DocumentReader {
	return documentReader{d: d}
}

type valueReader struct {
	v *Value
}

func (vr valueReader) Type() bsontype.Type {
	return vr.v.Type()
}

func (vr valueReader) typeError(method string, requested bsontype.Type) error {
	return TypeError{Method: method, Requested: requested, Actual: vr.v.Type()}
}

func (vr valueReader) ReadDouble() (float64, error) {
	f, ok := vr.v.DoubleOK()
	if !ok {
		return 0, vr.typeError("ReadDouble", bsontype.Double)
	}
	return f, nil
}

func (vr valueReader) ReadString() (string, error) {
	s, ok := vr.v.StringValueOK()
	if !ok {
		return "", vr.typeError("ReadString", bsontype.String)
	}
	return s, nil
}

func (vr valueReader) ReadDocument() (DocumentReader, error) {
	d, ok := vr.v.DocumentOK()
	if !ok {
		return nil, vr.typeError("ReadDocument", bsontype.EmbeddedDocument)
	}
	return documentReader{d: d}, nil
}

func (vr valueReader) ReadArray() (ArrayReader, error) {
	a, ok := vr.v.ArrayOK()
	if !ok {
		return nil, vr.typeError("ReadArray", bsontype.Array)
	}
	return arrayReader{a: a}, nil
}

func (vr valueReader) ReadBinary() (Binary, error) {
	b, ok := vr.v.BinaryOK()
	if !ok {
		return Binary{}, vr.typeError("ReadBinary", bsontype.Binary)
	}
	return b, nil
}

func (vr valueReader) ReadUndefined() error {
	if vr.v.Type() != bsontype.Undefined {
		return vr.typeError("ReadUndefined", bsontype.Undefined)
	}
	return nil
}

func (vr valueReader) ReadObjectID() (objectid.ObjectID, error) {
	oid, ok := vr.v.ObjectIDOK()
	if !ok {
		return objectid.NilObjectID, vr.typeError("ReadObjectID", bsontype.ObjectID)
	}
	return oid, nil
}

func (vr valueReader) ReadBoolean() (bool, error) {
	b, ok := vr.v.BooleanOK()
	if !ok {
		return false, vr.typeError("ReadBoolean", bsontype.Boolean)
	}
	return b, nil
}

func (vr valueReader) ReadDateTime() (DateTime, error) {
	dt, ok := vr.v.DateTimeOK()
	if !ok {
		return 0, vr.typeError("ReadDateTime", bsontype.DateTime)
	}
	return dt, nil
}

func (vr valueReader) ReadNull() error {
	if vr.v.Type() != bsontype.Null {
		return vr.typeError("ReadNull", bsontype.Null)
	}
	return nil
}

func (vr valueReader) ReadRegex() (Regex, error) {
	r, ok := vr.v.RegexOK()
	if !ok {
		return Regex{}, vr.typeError("ReadRegex", bsontype.Regex)
	}
	return r, nil
}

func (vr valueReader) ReadDBPointer() (DBPointer, error) {
	dp, ok := vr.v.DBPointerOK()
	if !ok {
		return DBPointer{}, vr.typeError("ReadDBPointer", bsontype.DBPointer)
	}
	return dp, nil
}

func (vr valueReader) ReadJavascript() (string, error) {
	js, ok := vr.v.JavaScriptOK()
	if !ok {
		return "", vr.typeError("ReadJavascript", bsontype.JavaScript)
	}
	return js, nil
}

func (vr valueReader) ReadSymbol() (string, error) {
	s, ok := vr.v.SymbolOK()
	if !ok {
		return "", vr.typeError("ReadSymbol", bsontype.Symbol)
	}
	return s, nil
}

func (vr valueReader) ReadCodeWithScope() (string, DocumentReader, error) {
	cws, ok := vr.v.CodeWithScopeOK()
	if !ok {
		return "", nil, vr.typeError("ReadCodeWithScope", bsontype.CodeWithScope)
	}
	return cws.Code, documentReader{d: cws.Scope}, nil
}

func (vr valueReader) ReadInt32() (int32, error) {
	i, ok := vr.v.Int32OK()
	if !ok {
		return 0, vr.typeError("ReadInt32", bsontype.Int32)
	}
	return i, nil
}

func (vr valueReader) ReadTimestamp() (Timestamp, error) {
	ts, ok := vr.v.TimestampOK()
	if !ok {
		return Timestamp{}, vr.typeError("ReadTimestamp", bsontype.Timestamp)
	}
	return ts, nil
}

func (vr valueReader) ReadInt64() (int64, error) {
	i, ok := vr.v.Int64OK()
	if !ok {
		return 0, vr.typeError("ReadInt64", bsontype.Int64)
	}
	return i, nil
}

func (vr valueReader) ReadDecimal128() (Decimal128, error) {
	d, ok := vr.v.Decimal128OK()
	if !ok {
		return Decimal128{}, vr.typeError("ReadDecimal128", bsontype.Decimal128)
	}
	return d, nil
}

func (vr valueReader) ReadMinKey() error {
	if vr.v.Type() != bsontype.MinKey {
		return vr.typeError("ReadMinKey", bsontype.MinKey)
	}
	return nil
}

func (vr valueReader) ReadMaxKey() error {
	if vr.v.Type() != bsontype.MaxKey {
		return vr.typeError("ReadMaxKey", bsontype.MaxKey)
	}
	return nil
}

type documentReader struct {
	d *Document
}

func (dr documentReader) Len() int {
	return dr.d.Len()
}

func (dr documentReader) Read(name string) (ValueReader, error) {
	v, err := dr.d.LookupErr(name)
	if err != nil {
		return nil, err
	}
	return valueReader{v: v}, nil
}

func (dr documentReader) Entries() iter.Seq2[string, ValueReader] {
	return func(yield func(string, ValueReader) bool) {
		for key, val := range dr.d.Elements() {
			if !yield(key, valueReader{v: val}) {
				return
			}
		}
	}
}

type arrayReader struct {
	a *Array
}

func (ar arrayReader) Len() int {
	return ar.a.Len()
}

func (ar arrayReader) Read(index int) (ValueReader, error) {
	v, err := ar.a.At(index)
	if err != nil {
		return nil, err
	}
	return valueReader{v: v}, nil
}

func (ar arrayReader) Elements() iter.Seq[ValueReader] {
	return func(yield func(ValueReader) bool) {
		for val := range ar.a.Values() {
			if !yield(valueReader{v: val}) {
				return
			}
		}
	}
}
