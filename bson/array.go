// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"hash/fnv"
	"iter"
)

// Array represents an ordered, 0-indexed sequence of BSON values. Unlike
// documents, arrays compare order-sensitively.
type Array struct {
	values []*Value
}

// NewArray creates an Array with the given values.
func NewArray(values ...*Value) *Array {
	a := &Array{values: make([]*Value, 0, len(values))}
	return a.Append(values...)
}

// Len returns the number of values in the array.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// Append adds the values to the end of the array. It panics with ErrNilValue
// if any value is nil.
func (a *Array) Append(values ...*Value) *Array {
	for _, v := range values {
		if v == nil {
			panic(ErrNilValue)
		}
		a.values = append(a.values, v)
	}
	return a
}

// At returns the value at the given index. It returns ErrOutOfBounds if the
// index is negative or past the end of the array.
func (a *Array) At(index int) (*Value, error) {
	if a == nil || index < 0 || index >= len(a.values) {
		return nil, ErrOutOfBounds
	}
	return a.values[index], nil
}

// Values iterates the array's values in order.
func (a *Array) Values() iter.Seq[*Value] {
	return func(yield func(*Value) bool) {
		if a == nil {
			return
		}
		for _, v := range a.values {
			if !yield(v) {
				return
			}
		}
	}
}

// Equal compares two arrays index by index. A size difference or the first
// mismatched index breaks equality.
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a.Len() == other.Len()
	}
	if len(a.values) != len(other.values) {
		return false
	}
	for i, v := range a.values {
		if !v.Equal(other.values[i]) {
			return false
		}
	}
	return true
}

// hash computes an order-sensitive structural hash consistent with Equal.
func (a *Array) hash() uint64 {
	h := fnv.New64a()
	for _, v := range a.values {
		writeUint64(h, v.hash())
	}
	return h.Sum64()
}

// Hash returns a structural hash of the array. Arrays that compare Equal hash
// to the same value.
func (a *Array) Hash() uint64 {
	if a == nil {
		return 0
	}
	return a.hash()
}

// String implements the fmt.Stringer interface. The output is extended JSON
// flavored and intended for debugging only.
func (a *Array) String() string {
	return string(a.appendExtJSON(nil))
}
