// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// docDiff renders a readable diff between documents, comparing with the
// order-insensitive Equal instead of field-by-field reflection.
var docDiff = cmp.Options{
	cmp.Comparer(func(a, b *Document) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b *Array) bool { return a.Equal(b) }),
}

func TestDocument(t *testing.T) {
	t.Run("Set", func(t *testing.T) {
		t.Run("appends new keys in order", func(t *testing.T) {
			d := NewDocument()
			d.Set("a", VC.Int32(1))
			d.Set("b", VC.Int32(2))
			d.Set("c", VC.Int32(3))
			require.Equal(t, []string{"a", "b", "c"}, d.Keys())
		})
		t.Run("replaces in place", func(t *testing.T) {
			d := NewDocument()
			d.Set("a", VC.Int32(1))
			d.Set("b", VC.Int32(2))
			d.Set("a", VC.String("replaced"))
			require.Equal(t, []string{"a", "b"}, d.Keys())
			got, ok := d.Lookup("a")
			require.True(t, ok)
			require.Equal(t, "replaced", got.StringValue())
		})
		t.Run("panics on nil value", func(t *testing.T) {
			d := NewDocument()
			require.PanicsWithValue(t, ErrNilValue, func() { d.Set("a", nil) })
		})
	})

	t.Run("Append", func(t *testing.T) {
		d := NewDocument()
		d.Append("a", VC.Int32(1))
		d.Append("b", VC.Int32(2))
		d.Append("a", VC.Int32(3))
		require.Equal(t, []string{"a", "b"}, d.Keys())
		got, ok := d.Lookup("a")
		require.True(t, ok)
		require.Equal(t, int32(3), got.Int32())
	})

	t.Run("Lookup", func(t *testing.T) {
		d := NewDocument()
		d.Set("x", VC.Boolean(true))

		got, ok := d.Lookup("x")
		require.True(t, ok)
		require.True(t, got.Boolean())

		_, ok = d.Lookup("y")
		require.False(t, ok)

		_, err := d.LookupErr("y")
		require.Equal(t, ErrElementNotFound, err)
	})

	t.Run("Delete", func(t *testing.T) {
		d := NewDocument()
		d.Set("a", VC.Int32(1))
		d.Set("b", VC.Int32(2))
		d.Set("c", VC.Int32(3))

		removed := d.Delete("b")
		require.NotNil(t, removed)
		require.Equal(t, int32(2), removed.Int32())
		require.Equal(t, []string{"a", "c"}, d.Keys())

		require.Nil(t, d.Delete("missing"))

		// Delete must keep the index valid for later lookups.
		got, ok := d.Lookup("c")
		require.True(t, ok)
		require.Equal(t, int32(3), got.Int32())
	})

	t.Run("ElementAt", func(t *testing.T) {
		d := NewDocument()
		d.Set("a", VC.Int32(1))
		d.Set("b", VC.Int32(2))

		key, val, err := d.ElementAt(1)
		require.NoError(t, err)
		require.Equal(t, "b", key)
		require.Equal(t, int32(2), val.Int32())

		_, _, err = d.ElementAt(2)
		require.Equal(t, ErrOutOfBounds, err)
	})

	t.Run("Concat", func(t *testing.T) {
		d := NewDocument()
		d.Set("a", VC.Int32(1))
		other := NewDocument()
		other.Set("b", VC.Int32(2))
		other.Set("a", VC.Int32(10))

		d.Concat(other)
		require.Equal(t, []string{"a", "b"}, d.Keys())
		got, _ := d.Lookup("a")
		require.Equal(t, int32(10), got.Int32())
	})

	t.Run("Copy is independent", func(t *testing.T) {
		d := NewDocument()
		d.Set("a", VC.Int32(1))
		c := d.Copy()
		c.Set("a", VC.Int32(2))
		got, _ := d.Lookup("a")
		require.Equal(t, int32(1), got.Int32())
	})
}

func TestDocumentEqual(t *testing.T) {
	t.Run("insertion order is irrelevant", func(t *testing.T) {
		a := NewDocument()
		a.Set("x", VC.Int32(1))
		a.Set("y", VC.String("s"))

		b := NewDocument()
		b.Set("y", VC.String("s"))
		b.Set("x", VC.Int32(1))

		require.True(t, a.Equal(b))
		require.True(t, b.Equal(a))
		require.Equal(t, a.Hash(), b.Hash())
	})

	t.Run("differing values are unequal", func(t *testing.T) {
		a := NewDocument()
		a.Set("x", VC.Int32(1))
		b := NewDocument()
		b.Set("x", VC.Int32(2))
		require.False(t, a.Equal(b))
	})

	t.Run("missing key is unequal", func(t *testing.T) {
		a := NewDocument()
		a.Set("x", VC.Int32(1))
		b := NewDocument()
		b.Set("x", VC.Int32(1))
		b.Set("y", VC.Int32(2))
		require.False(t, a.Equal(b))
		require.False(t, b.Equal(a))
	})

	t.Run("nested arrays stay order sensitive", func(t *testing.T) {
		a := NewDocument()
		a.Set("v", VC.Array(NewArray(VC.Int32(1), VC.Int32(2))))
		b := NewDocument()
		b.Set("v", VC.Array(NewArray(VC.Int32(2), VC.Int32(1))))
		require.False(t, a.Equal(b))
	})
}

func TestDocumentDiff(t *testing.T) {
	build := func(keys ...string) *Document {
		d := NewDocument()
		for i, k := range keys {
			d.Set(k, VC.Int32(int32(i)))
		}
		return d
	}

	require.Empty(t, cmp.Diff(build("a", "b"), build("a", "b"), docDiff))
	require.NotEmpty(t, cmp.Diff(build("a", "b"), build("a", "c"), docDiff))
}

func TestDocumentString(t *testing.T) {
	d := NewDocument()
	d.Set("name", VC.String("Bob"))
	d.Set("age", VC.Int32(18))
	d.Set("tags", VC.Array(NewArray(VC.String("a"), VC.String("b"))))
	require.Equal(t, `{"name":"Bob","age":18,"tags":["a","b"]}`, d.String())

	indented := d.IndentedString()
	require.Contains(t, indented, "\n")
	require.Equal(t, d.String(), strings.Join(strings.Fields(indented), ""))
}

func TestArray(t *testing.T) {
	t.Run("Append and At", func(t *testing.T) {
		a := NewArray()
		a.Append(VC.Int32(1), VC.Int32(2))
		require.Equal(t, 2, a.Len())

		v, err := a.At(1)
		require.NoError(t, err)
		require.Equal(t, int32(2), v.Int32())

		_, err = a.At(2)
		require.Equal(t, ErrOutOfBounds, err)
	})

	t.Run("Append panics on nil value", func(t *testing.T) {
		a := NewArray()
		require.PanicsWithValue(t, ErrNilValue, func() { a.Append(nil) })
	})

	t.Run("Equal is order sensitive", func(t *testing.T) {
		a := NewArray(VC.Int32(1), VC.Int32(2))
		b := NewArray(VC.Int32(2), VC.Int32(1))
		c := NewArray(VC.Int32(1), VC.Int32(2))
		require.False(t, a.Equal(b))
		require.True(t, a.Equal(c))
		require.Equal(t, a.Hash(), c.Hash())
		require.NotEqual(t, a.Hash(), b.Hash())
	})
}
