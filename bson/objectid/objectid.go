// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package objectid implements MongoDB's 12-byte ObjectID type: a 4-byte
// big-endian Unix timestamp in seconds, a 5-byte process-unique value and a
// 3-byte incrementing counter.
package objectid

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// ErrInvalidHex indicates that a hex string is not a valid ObjectID.
var ErrInvalidHex = errors.New("the provided hex string is not a valid ObjectID")

// ObjectID is the BSON ObjectID type.
type ObjectID [12]byte

// NilObjectID is the zero value for ObjectID.
var NilObjectID ObjectID

var objectIDCounter = readRandomUint32()
var processUnique = processUniqueBytes()

// New generates a new ObjectID stamped with the current time.
func New() ObjectID {
	return FromTime(time.Now())
}

// FromTime generates a new ObjectID whose timestamp component is derived from
// the provided time. The remaining bytes come from the process-unique value
// and the incrementing counter.
func FromTime(t time.Time) ObjectID {
	var oid ObjectID
	binary.BigEndian.PutUint32(oid[0:4], uint32(t.Unix()))
	copy(oid[4:9], processUnique[:])
	putUint24(oid[9:12], atomic.AddUint32(&objectIDCounter, 1))
	return oid
}

// FromHex creates a new ObjectID from a 24-character hex string. It returns
// ErrInvalidHex if the string is not a valid ObjectID.
func FromHex(s string) (ObjectID, error) {
	if len(s) != 24 {
		return NilObjectID, ErrInvalidHex
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return NilObjectID, ErrInvalidHex
	}

	var oid ObjectID
	copy(oid[:], b)
	return oid, nil
}

// FromBytes creates a new ObjectID from the provided slice, which must be
// exactly 12 bytes long.
func FromBytes(b []byte) (ObjectID, error) {
	if len(b) != 12 {
		return NilObjectID, fmt.Errorf("invalid ObjectID length %d, must be 12 bytes", len(b))
	}

	var oid ObjectID
	copy(oid[:], b)
	return oid, nil
}

// MinAt returns the smallest possible ObjectID stamped at the given time: the
// timestamp bytes of t followed by all-zero process and counter bytes. For
// every ObjectID o generated at t, MinAt(t) <= o.
func MinAt(t time.Time) ObjectID {
	var oid ObjectID
	binary.BigEndian.PutUint32(oid[0:4], uint32(t.Unix()))
	return oid
}

// MaxAt returns the largest possible ObjectID stamped at the given time: the
// timestamp bytes of t followed by all-one process and counter bytes. For
// every ObjectID o generated at t, o <= MaxAt(t).
func MaxAt(t time.Time) ObjectID {
	var oid ObjectID
	binary.BigEndian.PutUint32(oid[0:4], uint32(t.Unix()))
	for i := 4; i < 12; i++ {
		oid[i] = 0xFF
	}
	return oid
}

// Timestamp extracts the time part of the ObjectID.
func (id ObjectID) Timestamp() time.Time {
	unixSecs := binary.BigEndian.Uint32(id[0:4])
	return time.Unix(int64(unixSecs), 0).UTC()
}

// Counter extracts the 3-byte incrementing counter.
func (id ObjectID) Counter() uint32 {
	return uint32(id[9])<<16 | uint32(id[10])<<8 | uint32(id[11])
}

// Hex returns the hex encoding of the ObjectID as a 24-character string.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns a copy of the raw 12 bytes.
func (id ObjectID) Bytes() []byte {
	b := make([]byte, 12)
	copy(b, id[:])
	return b
}

func (id ObjectID) String() string {
	return fmt.Sprintf("ObjectID(%q)", id.Hex())
}

// IsZero returns true if id is the empty ObjectID.
func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

// Compare orders ObjectIDs by (timestamp, process, counter). Because every
// component is stored big-endian in declaration order, this coincides with
// byte-lexicographic order over the raw 12 bytes.
func (id ObjectID) Compare(other ObjectID) int {
	return bytes.Compare(id[:], other[:])
}

func processUniqueBytes() [5]byte {
	var b [5]byte
	_, err := io.ReadFull(rand.Reader, b[:])
	if err != nil {
		panic(fmt.Errorf("cannot initialize objectid package with crypto.rand.Reader: %v", err))
	}
	return b
}

func readRandomUint32() uint32 {
	var b [4]byte
	_, err := io.ReadFull(rand.Reader, b[:])
	if err != nil {
		panic(fmt.Errorf("cannot initialize objectid package with crypto.rand.Reader: %v", err))
	}
	return binary.BigEndian.Uint32(b[:])
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
