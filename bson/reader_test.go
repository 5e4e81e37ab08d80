// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikmak/mongokit/bson/bsontype"
)

func TestValueReader(t *testing.T) {
	t.Run("matching reads", func(t *testing.T) {
		vr := NewValueReader(VC.Int32(7))
		require.Equal(t, bsontype.Int32, vr.Type())
		got, err := vr.ReadInt32()
		require.NoError(t, err)
		require.Equal(t, int32(7), got)

		s, err := NewValueReader(VC.String("hi")).ReadString()
		require.NoError(t, err)
		require.Equal(t, "hi", s)

		require.NoError(t, NewValueReader(VC.Null()).ReadNull())
	})

	t.Run("mismatched read returns TypeError", func(t *testing.T) {
		vr := NewValueReader(VC.String("nope"))
		_, err := vr.ReadInt32()
		require.IsType(t, TypeError{}, err)
		te := err.(TypeError)
		require.Equal(t, "ReadInt32", te.Method)
		require.Equal(t, bsontype.Int32, te.Requested)
		require.Equal(t, bsontype.String, te.Actual)
	})

	t.Run("nil value reads as null", func(t *testing.T) {
		vr := NewValueReader(nil)
		require.Equal(t, bsontype.Null, vr.Type())
		require.NoError(t, vr.ReadNull())
	})

	t.Run("code with scope", func(t *testing.T) {
		scope := NewDocument()
		scope.Set("x", VC.Int32(1))
		vr := NewValueReader(VC.CodeWithScope("f()", scope))

		code, sr, err := vr.ReadCodeWithScope()
		require.NoError(t, err)
		require.Equal(t, "f()", code)
		require.Equal(t, 1, sr.Len())
	})
}

func TestDocumentReader(t *testing.T) {
	d := NewDocument()
	d.Set("a", VC.Int32(1))
	d.Set("b", VC.String("two"))
	dr := NewDocumentReader(d)

	t.Run("Len", func(t *testing.T) {
		require.Equal(t, 2, dr.Len())
	})

	t.Run("Read by name", func(t *testing.T) {
		vr, err := dr.Read("b")
		require.NoError(t, err)
		s, err := vr.ReadString()
		require.NoError(t, err)
		require.Equal(t, "two", s)

		_, err = dr.Read("missing")
		require.Equal(t, ErrElementNotFound, err)
	})

	t.Run("Entries in insertion order", func(t *testing.T) {
		var keys []string
		for key, vr := range dr.Entries() {
			keys = append(keys, key)
			require.NotNil(t, vr)
		}
		require.Equal(t, []string{"a", "b"}, keys)
	})
}

func TestArrayReader(t *testing.T) {
	a := NewArray(VC.Int32(10), VC.Int32(20))
	vr := NewValueReader(VC.Array(a))
	ar, err := vr.ReadArray()
	require.NoError(t, err)

	t.Run("Len and Read", func(t *testing.T) {
		require.Equal(t, 2, ar.Len())

		evr, err := ar.Read(1)
		require.NoError(t, err)
		n, err := evr.ReadInt32()
		require.NoError(t, err)
		require.Equal(t, int32(20), n)

		_, err = ar.Read(2)
		require.Equal(t, ErrOutOfBounds, err)
	})

	t.Run("Elements in order", func(t *testing.T) {
		var got []int32
		for evr := range ar.Elements() {
			n, err := evr.ReadInt32()
			require.NoError(t, err)
			got = append(got, n)
		}
		require.Equal(t, []int32{10, 20}, got)
	})
}
