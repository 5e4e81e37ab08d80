// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"

	"github.com/ikmak/mongokit/bson/objectid"
)

var _ ValueWriter = (*documentValueWriter)(nil)
var _ DocumentWriter = (*documentValueWriter)(nil)
var _ ArrayWriter = (*documentValueWriter)(nil)

type dvwState struct {
	mode mode
	d    *Document
	a    *Array
	key  string
	code string
}

// documentValueWriter is a ValueWriter that builds a *Document tree instead
// of a byte slice. Open and close calls are tracked on a frame stack; a call
// that does not match the current frame returns a TransitionError.
type documentValueWriter struct {
	stack []dvwState
	frame int64
}

// NewDocumentValueWriter creates a ValueWriter that adds the values written
// to it to d.
func NewDocumentValueWriter(d *Document) (ValueWriter, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	return newDocumentValueWriter(d), nil
}

func newDocumentValueWriter(d *Document) *documentValueWriter {
	stack := make([]dvwState, 1, 5)
	stack[0] = dvwState{mode: mTopLevel, d: d}
	return &documentValueWriter{stack: stack}
}

func (dvw *documentValueWriter) advanceFrame() {
	dvw.frame++
	if dvw.frame >= int64(len(dvw.stack)) {
		dvw.stack = append(dvw.stack, dvwState{})
	}
}

func (dvw *documentValueWriter) push(s dvwState) {
	dvw.advanceFrame()
	dvw.stack[dvw.frame] = s
}

func (dvw *documentValueWriter) pop() {
	switch dvw.stack[dvw.frame].mode {
	case mElement, mValue:
		dvw.frame--
	case mDocument, mArray, mCodeWithScope:
		// Pop twice to jump over the mElement or mValue frame beneath.
		dvw.frame -= 2
	}
}

func (dvw *documentValueWriter) invalidTransitionError(destination mode, name string, modes []mode) error {
	te := TransitionError{
		name:        name,
		current:     dvw.stack[dvw.frame].mode,
		destination: destination,
		modes:       modes,
		action:      "write",
	}
	if dvw.frame != 0 {
		te.parent = dvw.stack[dvw.frame-1].mode
	}
	return te
}

// attach stores v in the container one frame below the current element or
// value frame. The current frame is left in place; scalar writers pop it
// afterwards, container writers push the new container on top of it.
func (dvw *documentValueWriter) attach(v *Value, callerName string) error {
	frame := &dvw.stack[dvw.frame]
	switch frame.mode {
	case mElement:
		dvw.stack[dvw.frame-1].d.Set(frame.key, v)
	case mValue:
		dvw.stack[dvw.frame-1].a.Append(v)
	default:
		return dvw.invalidTransitionError(mode(0), callerName, []mode{mElement, mValue})
	}
	return nil
}

func (dvw *documentValueWriter) setValue(v *Value, callerName string) error {
	if err := dvw.attach(v, callerName); err != nil {
		return err
	}
	dvw.pop()
	return nil
}

func (dvw *documentValueWriter) WriteDouble(f float64) error {
	return dvw.setValue(VC.Double(f), "WriteDouble")
}

func (dvw *documentValueWriter) WriteString(s string) error {
	return dvw.setValue(VC.String(s), "WriteString")
}

func (dvw *documentValueWriter) WriteDocument() (DocumentWriter, error) {
	if dvw.stack[dvw.frame].mode == mTopLevel {
		return dvw, nil
	}

	d := NewDocument()
	if err := dvw.attach(VC.Document(d), "WriteDocument"); err != nil {
		return nil, err
	}
	dvw.push(dvwState{mode: mDocument, d: d})
	return dvw, nil
}

func (dvw *documentValueWriter) WriteArray() (ArrayWriter, error) {
	a := NewArray()
	if err := dvw.attach(VC.Array(a), "WriteArray"); err != nil {
		return nil, err
	}
	dvw.push(dvwState{mode: mArray, a: a})
	return dvw, nil
}

func (dvw *documentValueWriter) WriteBinary(b []byte) error {
	return dvw.setValue(VC.Binary(b), "WriteBinary")
}

func (dvw *documentValueWriter) WriteBinaryWithSubtype(b []byte, btype byte) error {
	return dvw.setValue(VC.BinaryWithSubtype(b, btype), "WriteBinaryWithSubtype")
}

func (dvw *documentValueWriter) WriteUndefined() error {
	return dvw.setValue(VC.Undefined(), "WriteUndefined")
}

func (dvw *documentValueWriter) WriteObjectID(oid objectid.ObjectID) error {
	return dvw.setValue(VC.ObjectID(oid), "WriteObjectID")
}

func (dvw *documentValueWriter) WriteBoolean(b bool) error {
	return dvw.setValue(VC.Boolean(b), "WriteBoolean")
}

func (dvw *documentValueWriter) WriteDateTime(dt int64) error {
	return dvw.setValue(VC.DateTime(dt), "WriteDateTime")
}

func (dvw *documentValueWriter) WriteNull() error {
	return dvw.setValue(VC.Null(), "WriteNull")
}

func (dvw *documentValueWriter) WriteRegex(pattern, options string) error {
	return dvw.setValue(VC.Regex(pattern, options), "WriteRegex")
}

func (dvw *documentValueWriter) WriteDBPointer(ns string, oid objectid.ObjectID) error {
	return dvw.setValue(VC.DBPointer(ns, oid), "WriteDBPointer")
}

func (dvw *documentValueWriter) WriteJavascript(code string) error {
	return dvw.setValue(VC.JavaScript(code), "WriteJavascript")
}

func (dvw *documentValueWriter) WriteSymbol(symbol string) error {
	return dvw.setValue(VC.Symbol(symbol), "WriteSymbol")
}

func (dvw *documentValueWriter) WriteCodeWithScope(code string) (DocumentWriter, error) {
	frame := dvw.stack[dvw.frame].mode
	if frame != mElement && frame != mValue {
		return nil, dvw.invalidTransitionError(mCodeWithScope, "WriteCodeWithScope", []mode{mElement, mValue})
	}

	// The scope document is attached to the parent only once its
	// WriteDocumentEnd arrives, so the element frame must stay beneath the
	// mCodeWithScope frame until then.
	scope := NewDocument()
	dvw.push(dvwState{mode: mCodeWithScope, d: scope, code: code})
	dvw.push(dvwState{mode: mValue})
	dvw.push(dvwState{mode: mDocument, d: scope})
	return dvw, nil
}

func (dvw *documentValueWriter) WriteInt32(i int32) error {
	return dvw.setValue(VC.Int32(i), "WriteInt32")
}

func (dvw *documentValueWriter) WriteTimestamp(t, i uint32) error {
	return dvw.setValue(VC.Timestamp(t, i), "WriteTimestamp")
}

func (dvw *documentValueWriter) WriteInt64(i int64) error {
	return dvw.setValue(VC.Int64(i), "WriteInt64")
}

func (dvw *documentValueWriter) WriteDecimal128(d Decimal128) error {
	return dvw.setValue(VC.Decimal128(d), "WriteDecimal128")
}

func (dvw *documentValueWriter) WriteMinKey() error {
	return dvw.setValue(VC.MinKey(), "WriteMinKey")
}

func (dvw *documentValueWriter) WriteMaxKey() error {
	return dvw.setValue(VC.MaxKey(), "WriteMaxKey")
}

func (dvw *documentValueWriter) WriteValue(v *Value) error {
	if v == nil {
		return ErrNilValue
	}
	switch dvw.stack[dvw.frame].mode {
	case mElement, mValue:
	default:
		return dvw.invalidTransitionError(mode(0), "WriteValue", []mode{mElement, mValue})
	}
	// Lower through the typed write methods so container values are rebuilt
	// element by element instead of aliasing the caller's tree.
	return writeValue(dvw, v)
}

func (dvw *documentValueWriter) WriteDocumentElement(key string) (ValueWriter, error) {
	switch dvw.stack[dvw.frame].mode {
	case mTopLevel, mDocument:
	default:
		return nil, dvw.invalidTransitionError(mElement, "WriteDocumentElement", []mode{mTopLevel, mDocument})
	}

	dvw.push(dvwState{mode: mElement, key: key})
	return dvw, nil
}

func (dvw *documentValueWriter) WriteDocumentEnd() error {
	switch dvw.stack[dvw.frame].mode {
	case mTopLevel, mDocument:
	default:
		return fmt.Errorf("incorrect mode to end document: %s", dvw.stack[dvw.frame].mode)
	}

	dvw.pop()

	if dvw.stack[dvw.frame].mode == mCodeWithScope {
		frame := dvw.stack[dvw.frame]
		dvw.frame--
		if err := dvw.setValue(VC.CodeWithScope(frame.code, frame.d), "WriteDocumentEnd"); err != nil {
			return err
		}
	}
	return nil
}

func (dvw *documentValueWriter) WriteArrayElement() (ValueWriter, error) {
	if dvw.stack[dvw.frame].mode != mArray {
		return nil, dvw.invalidTransitionError(mValue, "WriteArrayElement", []mode{mArray})
	}

	dvw.push(dvwState{mode: mValue})
	return dvw, nil
}

func (dvw *documentValueWriter) WriteArrayEnd() error {
	if dvw.stack[dvw.frame].mode != mArray {
		return fmt.Errorf("incorrect mode to end array: %s", dvw.stack[dvw.frame].mode)
	}

	dvw.pop()
	return nil
}
