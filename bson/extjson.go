// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/pretty"

	"github.com/ikmak/mongokit/bson/bsontype"
)

// IndentedString returns the document rendered as indented extended JSON.
// Like String, the output is for debugging, not for interchange.
func (d *Document) IndentedString() string {
	return string(pretty.Pretty(d.appendExtJSON(nil)))
}

func (d *Document) appendExtJSON(dst []byte) []byte {
	dst = append(dst, '{')
	first := true
	for key, val := range d.Elements() {
		if !first {
			dst = append(dst, ',')
		}
		first = false
		dst = strconv.AppendQuote(dst, key)
		dst = append(dst, ':')
		dst = val.appendExtJSON(dst)
	}
	return append(dst, '}')
}

func (a *Array) appendExtJSON(dst []byte) []byte {
	dst = append(dst, '[')
	first := true
	for val := range a.Values() {
		if !first {
			dst = append(dst, ',')
		}
		first = false
		dst = val.appendExtJSON(dst)
	}
	return append(dst, ']')
}

func (v *Value) appendExtJSON(dst []byte) []byte {
	switch v.Type() {
	case bsontype.Double:
		switch {
		case math.IsNaN(v.f64):
			return append(dst, `{"$numberDouble":"NaN"}`...)
		case math.IsInf(v.f64, 1):
			return append(dst, `{"$numberDouble":"Infinity"}`...)
		case math.IsInf(v.f64, -1):
			return append(dst, `{"$numberDouble":"-Infinity"}`...)
		default:
			return strconv.AppendFloat(dst, v.f64, 'g', -1, 64)
		}
	case bsontype.String:
		return strconv.AppendQuote(dst, v.str)
	case bsontype.EmbeddedDocument:
		return v.doc.appendExtJSON(dst)
	case bsontype.Array:
		return v.arr.appendExtJSON(dst)
	case bsontype.Binary:
		dst = append(dst, `{"$binary":{"base64":`...)
		dst = strconv.AppendQuote(dst, base64.StdEncoding.EncodeToString(v.bytes))
		dst = append(dst, `,"subType":`...)
		dst = strconv.AppendQuote(dst, fmt.Sprintf("%02x", v.sub))
		return append(dst, '}', '}')
	case bsontype.Undefined:
		return append(dst, `{"$undefined":true}`...)
	case bsontype.ObjectID:
		dst = append(dst, `{"$oid":`...)
		dst = strconv.AppendQuote(dst, v.oid.Hex())
		return append(dst, '}')
	case bsontype.Boolean:
		return strconv.AppendBool(dst, v.b)
	case bsontype.DateTime:
		dst = append(dst, `{"$date":{"$numberLong":"`...)
		dst = strconv.AppendInt(dst, v.i64, 10)
		return append(dst, `"}}`...)
	case bsontype.Null:
		return append(dst, "null"...)
	case bsontype.Regex:
		dst = append(dst, `{"$regularExpression":{"pattern":`...)
		dst = strconv.AppendQuote(dst, v.str)
		dst = append(dst, `,"options":`...)
		dst = strconv.AppendQuote(dst, v.str2)
		return append(dst, '}', '}')
	case bsontype.DBPointer:
		dst = append(dst, `{"$dbPointer":{"$ref":`...)
		dst = strconv.AppendQuote(dst, v.str)
		dst = append(dst, `,"$id":{"$oid":`...)
		dst = strconv.AppendQuote(dst, v.oid.Hex())
		return append(dst, `}}}`...)
	case bsontype.JavaScript:
		dst = append(dst, `{"$code":`...)
		dst = strconv.AppendQuote(dst, v.str)
		return append(dst, '}')
	case bsontype.Symbol:
		dst = append(dst, `{"$symbol":`...)
		dst = strconv.AppendQuote(dst, v.str)
		return append(dst, '}')
	case bsontype.CodeWithScope:
		dst = append(dst, `{"$code":`...)
		dst = strconv.AppendQuote(dst, v.str)
		dst = append(dst, `,"$scope":`...)
		dst = v.doc.appendExtJSON(dst)
		return append(dst, '}')
	case bsontype.Int32:
		return strconv.AppendInt(dst, int64(v.i32), 10)
	case bsontype.Timestamp:
		dst = append(dst, `{"$timestamp":{"t":`...)
		dst = strconv.AppendUint(dst, uint64(v.ts.T), 10)
		dst = append(dst, `,"i":`...)
		dst = strconv.AppendUint(dst, uint64(v.ts.I), 10)
		return append(dst, '}', '}')
	case bsontype.Int64:
		return strconv.AppendInt(dst, v.i64, 10)
	case bsontype.Decimal128:
		// The decimal bits are carried opaquely, so the debug form shows the
		// raw halves rather than a decimal string.
		dst = append(dst, `{"$numberDecimal":"`...)
		dst = append(dst, fmt.Sprintf("0x%016x%016x", v.dec.H, v.dec.L)...)
		return append(dst, `"}`...)
	case bsontype.MinKey:
		return append(dst, `{"$minKey":1}`...)
	default: // bsontype.MaxKey
		return append(dst, `{"$maxKey":1}`...)
	}
}
