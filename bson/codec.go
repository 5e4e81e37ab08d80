// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/ikmak/mongokit/bson/bsontype"
	"github.com/ikmak/mongokit/bson/objectid"
)

// ErrTooSmall indicates that a slice of bytes is smaller than it needs to be
// to contain the BSON value it claims to hold.
var ErrTooSmall = errors.New("too small")

// ErrInvalidString indicates that a BSON string value is missing its null
// terminator.
var ErrInvalidString = errors.New("invalid string value")

// ErrInvalidKey indicates that the BSON representation of a key is missing a
// null terminator.
var ErrInvalidKey = errors.New("invalid document key")

// ErrInvalidLength indicates that a length in a binary representation of a
// BSON document is invalid.
var ErrInvalidLength = errors.New("document length is invalid")

// Marshal serializes the document to standard BSON bytes.
func Marshal(d *Document) ([]byte, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	return d.MarshalBSON()
}

// Unmarshal deserializes standard BSON bytes into a document. The round trip
// Unmarshal(Marshal(d)) yields a document structurally equal to d.
func Unmarshal(b []byte) (*Document, error) {
	d := NewDocument()
	if err := d.UnmarshalBSON(b); err != nil {
		return nil, err
	}
	return d, nil
}

// MarshalBSON implements the Marshaler interface.
func (d *Document) MarshalBSON() ([]byte, error) {
	return appendDocument(nil, d)
}

// UnmarshalBSON implements the Unmarshaler interface.
func (d *Document) UnmarshalBSON(b []byte) error {
	if len(b) < 5 {
		return ErrTooSmall
	}
	length := readi32(b)
	if int(length) != len(b) || b[length-1] != 0x00 {
		return ErrInvalidLength
	}
	return readElements(b[4:length-1], d)
}

// appendDocument appends the wire form of d to dst: a little-endian int32
// total length, the elements, and a terminating null byte.
func appendDocument(dst []byte, d *Document) ([]byte, error) {
	start := len(dst)
	dst = append(dst, 0x00, 0x00, 0x00, 0x00)
	var err error
	for key, val := range d.Elements() {
		dst, err = appendElement(dst, key, val)
		if err != nil {
			return dst, err
		}
	}
	dst = append(dst, 0x00)
	binary.LittleEndian.PutUint32(dst[start:], uint32(len(dst)-start))
	return dst, nil
}

func appendArray(dst []byte, a *Array) ([]byte, error) {
	start := len(dst)
	dst = append(dst, 0x00, 0x00, 0x00, 0x00)
	var err error
	i := 0
	for val := range a.Values() {
		dst, err = appendElement(dst, itoa(i), val)
		if err != nil {
			return dst, err
		}
		i++
	}
	dst = append(dst, 0x00)
	binary.LittleEndian.PutUint32(dst[start:], uint32(len(dst)-start))
	return dst, nil
}

func appendElement(dst []byte, key string, v *Value) ([]byte, error) {
	for i := 0; i < len(key); i++ {
		if key[i] == 0x00 {
			return dst, errors.Wrapf(ErrInvalidKey, "key %q contains a null byte", key)
		}
	}

	dst = append(dst, byte(v.Type()))
	dst = append(dst, key...)
	dst = append(dst, 0x00)

	var err error
	switch v.Type() {
	case bsontype.Double:
		dst = appendu64(dst, math.Float64bits(v.f64))
	case bsontype.String:
		dst = appendString(dst, v.str)
	case bsontype.EmbeddedDocument:
		dst, err = appendDocument(dst, v.doc)
	case bsontype.Array:
		dst, err = appendArray(dst, v.arr)
	case bsontype.Binary:
		dst = appendBinary(dst, v.sub, v.bytes)
	case bsontype.Undefined, bsontype.Null, bsontype.MinKey, bsontype.MaxKey:
	case bsontype.ObjectID:
		dst = append(dst, v.oid[:]...)
	case bsontype.Boolean:
		if v.b {
			dst = append(dst, 0x01)
		} else {
			dst = append(dst, 0x00)
		}
	case bsontype.DateTime, bsontype.Int64:
		dst = appendu64(dst, uint64(v.i64))
	case bsontype.Regex:
		dst = append(dst, v.str...)
		dst = append(dst, 0x00)
		dst = append(dst, v.str2...)
		dst = append(dst, 0x00)
	case bsontype.DBPointer:
		dst = appendString(dst, v.str)
		dst = append(dst, v.oid[:]...)
	case bsontype.JavaScript, bsontype.Symbol:
		dst = appendString(dst, v.str)
	case bsontype.CodeWithScope:
		start := len(dst)
		dst = append(dst, 0x00, 0x00, 0x00, 0x00)
		dst = appendString(dst, v.str)
		dst, err = appendDocument(dst, v.doc)
		if err == nil {
			binary.LittleEndian.PutUint32(dst[start:], uint32(len(dst)-start))
		}
	case bsontype.Int32:
		dst = appendu32(dst, uint32(v.i32))
	case bsontype.Timestamp:
		// On the wire the increment occupies the first four bytes and the
		// seconds the last four.
		dst = appendu32(dst, v.ts.I)
		dst = appendu32(dst, v.ts.T)
	case bsontype.Decimal128:
		dst = appendu64(dst, v.dec.L)
		dst = appendu64(dst, v.dec.H)
	}
	return dst, err
}

func appendString(dst []byte, s string) []byte {
	dst = appendu32(dst, uint32(len(s)+1))
	dst = append(dst, s...)
	return append(dst, 0x00)
}

func appendBinary(dst []byte, subtype byte, b []byte) []byte {
	if subtype == 0x02 {
		// The deprecated old-binary subtype carries an inner length prefix.
		dst = appendu32(dst, uint32(len(b)+4))
		dst = append(dst, subtype)
		dst = appendu32(dst, uint32(len(b)))
		return append(dst, b...)
	}
	dst = appendu32(dst, uint32(len(b)))
	dst = append(dst, subtype)
	return append(dst, b...)
}

func appendu32(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendu64(dst []byte, v uint64) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func itoa(i int) string {
	if i >= 0 && i < 10 {
		return string([]byte{byte('0' + i)})
	}
	var buf [20]byte
	n := len(buf)
	for i > 0 {
		n--
		buf[n] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[n:])
}

func readi32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// readElements parses the element list b (without the enclosing length and
// terminator) into d.
func readElements(b []byte, d *Document) error {
	pos := 0
	for pos < len(b) {
		code := b[pos]
		t, err := bsontype.FromCode(code)
		if err != nil {
			return errors.Wrapf(err, "at offset %d", pos)
		}
		pos++

		key, n, err := readCString(b[pos:])
		if err != nil {
			return errors.Wrapf(err, "at offset %d", pos)
		}
		pos += n

		v, n, err := readValue(b[pos:], t)
		if err != nil {
			return errors.Wrapf(err, "value for key %q at offset %d", key, pos)
		}
		pos += n
		d.Set(key, v)
	}
	return nil
}

func readValue(b []byte, t bsontype.Type) (*Value, int, error) {
	switch t {
	case bsontype.Double:
		if len(b) < 8 {
			return nil, 0, ErrTooSmall
		}
		return VC.Double(math.Float64frombits(binary.LittleEndian.Uint64(b))), 8, nil
	case bsontype.String:
		s, n, err := readString(b)
		if err != nil {
			return nil, 0, err
		}
		return VC.String(s), n, nil
	case bsontype.EmbeddedDocument:
		doc, n, err := readDocument(b)
		if err != nil {
			return nil, 0, err
		}
		return VC.Document(doc), n, nil
	case bsontype.Array:
		doc, n, err := readDocument(b)
		if err != nil {
			return nil, 0, err
		}
		arr := NewArray()
		for _, val := range doc.Elements() {
			arr.Append(val)
		}
		return VC.Array(arr), n, nil
	case bsontype.Binary:
		if len(b) < 5 {
			return nil, 0, ErrTooSmall
		}
		l := readi32(b)
		subtype := b[4]
		if l < 0 || len(b) < int(l)+5 {
			return nil, 0, ErrTooSmall
		}
		data := b[5 : 5+l]
		if subtype == 0x02 {
			if l < 4 || int(readi32(data)) != int(l)-4 {
				return nil, 0, ErrInvalidLength
			}
			data = data[4:]
		}
		out := make([]byte, len(data))
		copy(out, data)
		return VC.BinaryWithSubtype(out, subtype), int(l) + 5, nil
	case bsontype.Undefined:
		return VC.Undefined(), 0, nil
	case bsontype.ObjectID:
		if len(b) < 12 {
			return nil, 0, ErrTooSmall
		}
		oid, err := objectid.FromBytes(b[:12])
		if err != nil {
			return nil, 0, err
		}
		return VC.ObjectID(oid), 12, nil
	case bsontype.Boolean:
		if len(b) < 1 {
			return nil, 0, ErrTooSmall
		}
		return VC.Boolean(b[0] == 0x01), 1, nil
	case bsontype.DateTime:
		if len(b) < 8 {
			return nil, 0, ErrTooSmall
		}
		return VC.DateTime(int64(binary.LittleEndian.Uint64(b))), 8, nil
	case bsontype.Null:
		return VC.Null(), 0, nil
	case bsontype.Regex:
		pattern, n1, err := readCString(b)
		if err != nil {
			return nil, 0, err
		}
		options, n2, err := readCString(b[n1:])
		if err != nil {
			return nil, 0, err
		}
		return VC.Regex(pattern, options), n1 + n2, nil
	case bsontype.DBPointer:
		ns, n, err := readString(b)
		if err != nil {
			return nil, 0, err
		}
		if len(b) < n+12 {
			return nil, 0, ErrTooSmall
		}
		oid, err := objectid.FromBytes(b[n : n+12])
		if err != nil {
			return nil, 0, err
		}
		return VC.DBPointer(ns, oid), n + 12, nil
	case bsontype.JavaScript:
		s, n, err := readString(b)
		if err != nil {
			return nil, 0, err
		}
		return VC.JavaScript(s), n, nil
	case bsontype.Symbol:
		s, n, err := readString(b)
		if err != nil {
			return nil, 0, err
		}
		return VC.Symbol(s), n, nil
	case bsontype.CodeWithScope:
		if len(b) < 4 {
			return nil, 0, ErrTooSmall
		}
		total := readi32(b)
		if total < 4 || len(b) < int(total) {
			return nil, 0, ErrTooSmall
		}
		code, n, err := readString(b[4:total])
		if err != nil {
			return nil, 0, err
		}
		scope, _, err := readDocument(b[4+n : total])
		if err != nil {
			return nil, 0, err
		}
		return VC.CodeWithScope(code, scope), int(total), nil
	case bsontype.Int32:
		if len(b) < 4 {
			return nil, 0, ErrTooSmall
		}
		return VC.Int32(readi32(b)), 4, nil
	case bsontype.Timestamp:
		if len(b) < 8 {
			return nil, 0, ErrTooSmall
		}
		i := binary.LittleEndian.Uint32(b)
		t := binary.LittleEndian.Uint32(b[4:])
		return VC.Timestamp(t, i), 8, nil
	case bsontype.Int64:
		if len(b) < 8 {
			return nil, 0, ErrTooSmall
		}
		return VC.Int64(int64(binary.LittleEndian.Uint64(b))), 8, nil
	case bsontype.Decimal128:
		if len(b) < 16 {
			return nil, 0, ErrTooSmall
		}
		l := binary.LittleEndian.Uint64(b)
		h := binary.LittleEndian.Uint64(b[8:])
		return VC.Decimal128(Decimal128{H: h, L: l}), 16, nil
	case bsontype.MinKey:
		return VC.MinKey(), 0, nil
	default: // bsontype.MaxKey
		return VC.MaxKey(), 0, nil
	}
}

func readDocument(b []byte) (*Document, int, error) {
	if len(b) < 5 {
		return nil, 0, ErrTooSmall
	}
	length := readi32(b)
	if length < 5 || len(b) < int(length) || b[length-1] != 0x00 {
		return nil, 0, ErrInvalidLength
	}
	d := NewDocument()
	if err := readElements(b[4:length-1], d); err != nil {
		return nil, 0, err
	}
	return d, int(length), nil
}

func readString(b []byte) (string, int, error) {
	if len(b) < 4 {
		return "", 0, ErrTooSmall
	}
	l := readi32(b)
	if l < 1 || len(b) < int(l)+4 {
		return "", 0, ErrTooSmall
	}
	if b[4+l-1] != 0x00 {
		return "", 0, ErrInvalidString
	}
	return string(b[4 : 4+l-1]), int(l) + 4, nil
}

func readCString(b []byte) (string, int, error) {
	for i := 0; i < len(b); i++ {
		if b[i] == 0x00 {
			return string(b[:i]), i + 1, nil
		}
	}
	return "", 0, ErrInvalidKey
}
