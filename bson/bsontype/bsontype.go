// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsontype contains the closed set of BSON element types as described
// in https://bsonspec.org/spec.html along with their wire codes.
package bsontype

import "fmt"

// Type represents a BSON type. The underlying byte is the wire code for the
// type; MinKey is 0xFF (-1 as a signed byte) and MaxKey is 0x7F.
type Type byte

// BSON element types.
const (
	Double           Type = 0x01
	String           Type = 0x02
	EmbeddedDocument Type = 0x03
	Array            Type = 0x04
	Binary           Type = 0x05
	Undefined        Type = 0x06
	ObjectID         Type = 0x07
	Boolean          Type = 0x08
	DateTime         Type = 0x09
	Null             Type = 0x0A
	Regex            Type = 0x0B
	DBPointer        Type = 0x0C
	JavaScript       Type = 0x0D
	Symbol           Type = 0x0E
	CodeWithScope    Type = 0x0F
	Int32            Type = 0x10
	Timestamp        Type = 0x11
	Int64            Type = 0x12
	Decimal128       Type = 0x13
	MaxKey           Type = 0x7F
	MinKey           Type = 0xFF
)

// String returns the string representation of the BSON type's name.
func (t Type) String() string {
	switch t {
	case Double:
		return "double"
	case String:
		return "string"
	case EmbeddedDocument:
		return "embedded document"
	case Array:
		return "array"
	case Binary:
		return "binary"
	case Undefined:
		return "undefined"
	case ObjectID:
		return "objectID"
	case Boolean:
		return "boolean"
	case DateTime:
		return "UTC datetime"
	case Null:
		return "null"
	case Regex:
		return "regex"
	case DBPointer:
		return "dbPointer"
	case JavaScript:
		return "javascript"
	case Symbol:
		return "symbol"
	case CodeWithScope:
		return "code with scope"
	case Int32:
		return "32-bit integer"
	case Timestamp:
		return "timestamp"
	case Int64:
		return "64-bit integer"
	case Decimal128:
		return "decimal128"
	case MinKey:
		return "min key"
	case MaxKey:
		return "max key"
	default:
		return "invalid"
	}
}

// IsValid will return true if the Type is a known BSON wire code.
func (t Type) IsValid() bool {
	switch t {
	case Double, String, EmbeddedDocument, Array, Binary, Undefined, ObjectID,
		Boolean, DateTime, Null, Regex, DBPointer, JavaScript, Symbol,
		CodeWithScope, Int32, Timestamp, Int64, Decimal128, MinKey, MaxKey:
		return true
	default:
		return false
	}
}

// FromCode converts a wire code read off the wire into a Type. Codes that do
// not correspond to a BSON type return an error; the code-to-type mapping is a
// bijection and decoding must not guess.
func FromCode(c byte) (Type, error) {
	t := Type(c)
	if !t.IsValid() {
		return 0, fmt.Errorf("invalid BSON type code 0x%02x", c)
	}
	return t, nil
}
