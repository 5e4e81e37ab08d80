// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"hash/fnv"
	"iter"
)

// ErrNilValue indicates that a nil *Value was provided when none was expected.
var ErrNilValue = errors.New("value is nil")

// ErrNilDocument indicates that an operation was attempted on a nil *bson.Document.
var ErrNilDocument = errors.New("document is nil")

// ErrElementNotFound indicates that an element matching a certain condition
// does not exist.
var ErrElementNotFound = errors.New("element not found")

// ErrOutOfBounds indicates that an index provided to access something was
// invalid.
var ErrOutOfBounds = errors.New("out of bounds")

type element struct {
	key   string
	value *Value
}

// Document is a mutable, insertion-ordered mapping from field name to BSON
// value. Keys are unique within a document: setting an existing key replaces
// its value in place without changing its position.
type Document struct {
	elems []element
	index map[string]int
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return &Document{index: make(map[string]int)}
}

// Len returns the number of elements in the document.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.elems)
}

// Set stores value under key. If the key already exists its value is replaced
// in place, preserving the key's original position; otherwise the element is
// appended. Set panics with ErrNilValue if value is nil.
func (d *Document) Set(key string, value *Value) *Document {
	if value == nil {
		panic(ErrNilValue)
	}
	if i, ok := d.index[key]; ok {
		d.elems[i].value = value
		return d
	}
	d.elems = append(d.elems, element{key: key, value: value})
	d.index[key] = len(d.elems) - 1
	return d
}

// Append is an alias for Set kept for symmetry with Array.Append. Because
// document keys are unique, appending an existing key replaces it.
func (d *Document) Append(key string, value *Value) *Document {
	return d.Set(key, value)
}

// Lookup returns the value stored under key, reporting whether the key exists.
func (d *Document) Lookup(key string) (*Value, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.elems[i].value, true
}

// LookupErr behaves like Lookup but returns ErrElementNotFound for a missing
// key.
func (d *Document) LookupErr(key string) (*Value, error) {
	v, ok := d.Lookup(key)
	if !ok {
		return nil, ErrElementNotFound
	}
	return v, nil
}

// Delete removes key from the document and returns its value. If the key does
// not exist, nil is returned and the delete is a no-op.
func (d *Document) Delete(key string) *Value {
	i, ok := d.index[key]
	if !ok {
		return nil
	}
	v := d.elems[i].value
	d.elems = append(d.elems[:i], d.elems[i+1:]...)
	delete(d.index, key)
	for j := i; j < len(d.elems); j++ {
		d.index[d.elems[j].key] = j
	}
	return v
}

// ElementAt returns the key and value at the given insertion position.
func (d *Document) ElementAt(index int) (string, *Value, error) {
	if index < 0 || index >= len(d.elems) {
		return "", nil, ErrOutOfBounds
	}
	e := d.elems[index]
	return e.key, e.value, nil
}

// Keys returns the document's keys in insertion order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.elems))
	for _, e := range d.elems {
		keys = append(keys, e.key)
	}
	return keys
}

// Elements iterates the document's elements in insertion order.
func (d *Document) Elements() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if d == nil {
			return
		}
		for _, e := range d.elems {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Concat appends every element of the given documents to d, replacing
// duplicate keys.
func (d *Document) Concat(docs ...*Document) *Document {
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, e := range doc.elems {
			d.Set(e.key, e.value)
		}
	}
	return d
}

// Copy returns a shallow copy of the document: the element list is fresh but
// the values are shared.
func (d *Document) Copy() *Document {
	if d == nil {
		return nil
	}
	out := NewDocument()
	for _, e := range d.elems {
		out.Set(e.key, e.value)
	}
	return out
}

// Reset clears the document so it can be reused.
func (d *Document) Reset() {
	for i := range d.elems {
		d.elems[i] = element{}
	}
	d.elems = d.elems[:0]
	d.index = make(map[string]int)
}

// Equal compares two documents structurally. Field order is deliberately not
// part of the comparison: each side's fields are looked up in the other by
// key, so {a:1, b:2} equals {b:2, a:1}. Array values nested inside still
// compare order-sensitively.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d.Len() == other.Len()
	}
	if len(d.elems) != len(other.elems) {
		return false
	}
	for _, e := range d.elems {
		ov, ok := other.Lookup(e.key)
		if !ok || !e.value.Equal(ov) {
			return false
		}
	}
	return true
}

// hash computes an order-insensitive structural hash consistent with Equal.
// Per-element hashes are combined commutatively so that two documents with
// the same fields in different order hash equally.
func (d *Document) hash() uint64 {
	var sum uint64
	for _, e := range d.elems {
		h := fnv.New64a()
		h.Write([]byte(e.key))
		h.Write([]byte{0})
		writeUint64(h, e.value.hash())
		sum += h.Sum64()
	}
	return sum
}

// Hash returns a structural hash of the document. Documents that compare
// Equal hash to the same value.
func (d *Document) Hash() uint64 {
	if d == nil {
		return 0
	}
	return d.hash()
}

// String implements the fmt.Stringer interface. The output is extended JSON
// flavored and intended for debugging only.
func (d *Document) String() string {
	return string(d.appendExtJSON(nil))
}
