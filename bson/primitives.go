// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"time"

	"github.com/ikmak/mongokit/bson/objectid"
)

// Timestamp represents a BSON timestamp value. T is the number of seconds
// since the Unix epoch and I is an incrementing ordinal for operations within
// a given second.
type Timestamp struct {
	T uint32
	I uint32
}

// NewTimestamp decodes a Timestamp from its raw 64-bit representation. The
// counter occupies the high 32 bits and the seconds the low 32 bits.
func NewTimestamp(raw int64) Timestamp {
	return Timestamp{T: uint32(raw), I: uint32(uint64(raw) >> 32)}
}

// Raw returns the 64-bit wire representation of the timestamp.
func (tp Timestamp) Raw() int64 {
	return int64(uint64(tp.I)<<32 | uint64(tp.T))
}

// Instant returns the point in time the timestamp's seconds component refers to.
func (tp Timestamp) Instant() time.Time {
	return time.Unix(int64(tp.T), 0).UTC()
}

// Compare orders timestamps by seconds first and counter second. The raw
// 64-bit value must not be compared directly because the counter occupies the
// high bits even though the seconds are the primary sort key.
func (tp Timestamp) Compare(other Timestamp) int {
	switch {
	case tp.T < other.T:
		return -1
	case tp.T > other.T:
		return 1
	case tp.I < other.I:
		return -1
	case tp.I > other.I:
		return 1
	default:
		return 0
	}
}

func (tp Timestamp) String() string {
	return fmt.Sprintf("{t: %d, i: %d}", tp.T, tp.I)
}

// DateTime represents a BSON datetime value as milliseconds since the Unix epoch.
type DateTime int64

// NewDateTime truncates t to millisecond precision.
func NewDateTime(t time.Time) DateTime {
	return DateTime(t.Unix()*1000 + int64(t.Nanosecond()/1e6))
}

// Time returns the time.Time corresponding to the datetime, in UTC.
func (d DateTime) Time() time.Time {
	return time.Unix(int64(d)/1000, int64(d)%1000*1e6).UTC()
}

// Regex represents a BSON regular expression value.
type Regex struct {
	Pattern string
	Options string
}

func (r Regex) String() string {
	return fmt.Sprintf("{\"pattern\": %q, \"options\": %q}", r.Pattern, r.Options)
}

// Binary represents a BSON binary value.
type Binary struct {
	Subtype byte
	Data    []byte
}

// Equal compares Binary values by subtype and data bytes.
func (b Binary) Equal(other Binary) bool {
	if b.Subtype != other.Subtype || len(b.Data) != len(other.Data) {
		return false
	}
	for i := range b.Data {
		if b.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// Decimal128 is an opaque IEEE 754-2008 128-bit decimal value, stored as its
// two 64-bit halves. This library carries the bits through unchanged; it does
// no decimal arithmetic.
type Decimal128 struct {
	H, L uint64
}

// CodeWithScope represents a deprecated BSON JavaScript-with-scope value.
type CodeWithScope struct {
	Code  string
	Scope *Document
}

// DBPointer represents a deprecated BSON dbPointer value.
type DBPointer struct {
	DB      string
	Pointer objectid.ObjectID
}
