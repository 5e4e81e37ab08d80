// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ikmak/mongokit/bson/objectid"
)

func TestMarshalGolden(t *testing.T) {
	t.Run("hello world", func(t *testing.T) {
		d := NewDocument()
		d.Set("hello", VC.String("world"))

		got, err := Marshal(d)
		require.NoError(t, err)
		want := []byte{
			0x16, 0x00, 0x00, 0x00,
			0x02, 'h', 'e', 'l', 'l', 'o', 0x00,
			0x06, 0x00, 0x00, 0x00, 'w', 'o', 'r', 'l', 'd', 0x00,
			0x00,
		}
		require.Equal(t, want, got)
	})

	t.Run("mixed array", func(t *testing.T) {
		d := NewDocument()
		d.Set("BSON", VC.Array(NewArray(
			VC.String("awesome"),
			VC.Double(5.05),
			VC.Int32(1986),
		)))

		got, err := Marshal(d)
		require.NoError(t, err)
		want := []byte{
			0x31, 0x00, 0x00, 0x00,
			0x04, 'B', 'S', 'O', 'N', 0x00,
			0x26, 0x00, 0x00, 0x00,
			0x02, '0', 0x00, 0x08, 0x00, 0x00, 0x00, 'a', 'w', 'e', 's', 'o', 'm', 'e', 0x00,
			0x01, '1', 0x00, 0x33, 0x33, 0x33, 0x33, 0x33, 0x33, 0x14, 0x40,
			0x10, '2', 0x00, 0xc2, 0x07, 0x00, 0x00,
			0x00,
			0x00,
		}
		require.Equal(t, want, got)
	})

	t.Run("empty document", func(t *testing.T) {
		got, err := Marshal(NewDocument())
		require.NoError(t, err)
		require.Equal(t, []byte{0x05, 0x00, 0x00, 0x00, 0x00}, got)
	})

	t.Run("timestamp writes increment before seconds", func(t *testing.T) {
		d := NewDocument()
		d.Set("ts", VC.Timestamp(1, 2))

		got, err := Marshal(d)
		require.NoError(t, err)
		want := []byte{
			0x11, 0x00, 0x00, 0x00,
			0x11, 't', 's', 0x00,
			0x02, 0x00, 0x00, 0x00, // increment
			0x01, 0x00, 0x00, 0x00, // seconds
			0x00,
		}
		require.Equal(t, want, got)
	})

	t.Run("key with null byte is rejected", func(t *testing.T) {
		d := NewDocument()
		d.Set("a\x00b", VC.Int32(1))
		_, err := Marshal(d)
		require.Equal(t, ErrInvalidKey, errors.Cause(err))
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := Marshal(nil)
		require.Equal(t, ErrNilDocument, err)
	})
}

func TestUnmarshalErrors(t *testing.T) {
	testCases := []struct {
		name string
		b    []byte
		want error
	}{
		{"too small", []byte{0x05, 0x00, 0x00}, ErrTooSmall},
		{"length mismatch", []byte{0x0A, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"missing terminator", []byte{0x05, 0x00, 0x00, 0x00, 0x01}, ErrInvalidLength},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal(tc.b)
			require.Equal(t, tc.want, errors.Cause(err))
		})
	}

	t.Run("unknown type code", func(t *testing.T) {
		b := []byte{
			0x08, 0x00, 0x00, 0x00,
			0x42, 'a', 0x00,
			0x00,
		}
		_, err := Unmarshal(b)
		require.Error(t, err)
		require.Contains(t, err.Error(), "0x42")
	})

	t.Run("key without terminator", func(t *testing.T) {
		b := []byte{
			0x07, 0x00, 0x00, 0x00,
			0x0A, 'a', // null element, key never terminated
			0x00,
		}
		_, err := Unmarshal(b)
		require.Error(t, err)
	})

	t.Run("truncated string value", func(t *testing.T) {
		b := []byte{
			0x0C, 0x00, 0x00, 0x00,
			0x02, 'a', 0x00,
			0xFF, 0x00, 0x00, 0x00, // claims 255 bytes
			0x00,
		}
		_, err := Unmarshal(b)
		require.Equal(t, ErrTooSmall, errors.Cause(err))
	})
}

func TestRoundTrip(t *testing.T) {
	oid, err := objectid.FromHex("5ef7fdd91c19e3222b41b839")
	require.NoError(t, err)

	scope := NewDocument()
	scope.Set("x", VC.Int32(1))

	d := NewDocument()
	d.Set("double", VC.Double(3.14159))
	d.Set("string", VC.String("value"))
	d.Set("doc", VC.Document(scope.Copy()))
	d.Set("arr", VC.Array(NewArray(VC.Int32(1), VC.String("two"), VC.Null())))
	d.Set("binary", VC.Binary([]byte{0xDE, 0xAD}))
	d.Set("oldBinary", VC.BinaryWithSubtype([]byte{0xBE, 0xEF}, 0x02))
	d.Set("undefined", VC.Undefined())
	d.Set("oid", VC.ObjectID(oid))
	d.Set("bool", VC.Boolean(true))
	d.Set("datetime", VC.DateTime(1580493584398))
	d.Set("null", VC.Null())
	d.Set("regex", VC.Regex("^ab", "im"))
	d.Set("dbPointer", VC.DBPointer("db.coll", oid))
	d.Set("js", VC.JavaScript("return 1;"))
	d.Set("symbol", VC.Symbol("sym"))
	d.Set("cws", VC.CodeWithScope("return x;", scope))
	d.Set("int32", VC.Int32(-100))
	d.Set("timestamp", VC.Timestamp(1700000000, 17))
	d.Set("int64", VC.Int64(1<<40))
	d.Set("decimal", VC.Decimal128(Decimal128{H: 0x3040000000000000, L: 42}))
	d.Set("minKey", VC.MinKey())
	d.Set("maxKey", VC.MaxKey())

	b, err := Marshal(d)
	require.NoError(t, err)

	got, err := Unmarshal(b)
	require.NoError(t, err)
	require.True(t, d.Equal(got), "round trip changed the document:\nwant %s\ngot  %s", d, got)

	// A second trip through the codec must be byte stable.
	b2, err := Marshal(got)
	require.NoError(t, err)
	require.Equal(t, b, b2)
}

func TestRoundTripRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDocument(t, 0)

		b, err := Marshal(d)
		require.NoError(t, err)

		got, err := Unmarshal(b)
		require.NoError(t, err)
		require.True(t, d.Equal(got), "want %s got %s", d, got)
	})
}

// drawDocument generates a random document of bounded depth. Doubles are
// drawn from integral floats to keep NaN out of Equal-based comparisons.
func drawDocument(t *rapid.T, depth int) *Document {
	d := NewDocument()
	n := rapid.IntRange(0, 6).Draw(t, "len")
	for i := 0; i < n; i++ {
		key := rapid.StringMatching(`[a-z][a-z0-9]{0,8}`).Draw(t, "key")
		d.Set(key, drawValue(t, depth))
	}
	return d
}

func drawValue(t *rapid.T, depth int) *Value {
	max := 8
	if depth >= 3 {
		max = 5 // leaf kinds only
	}
	switch rapid.IntRange(0, max).Draw(t, "kind") {
	case 0:
		return VC.Int32(rapid.Int32().Draw(t, "i32"))
	case 1:
		return VC.Int64(rapid.Int64().Draw(t, "i64"))
	case 2:
		return VC.Double(float64(rapid.Int32().Draw(t, "f")))
	case 3:
		return VC.String(rapid.StringMatching(`[ -~]{0,12}`).Draw(t, "s"))
	case 4:
		return VC.Boolean(rapid.Bool().Draw(t, "b"))
	case 5:
		return VC.Null()
	case 6:
		return VC.Timestamp(rapid.Uint32().Draw(t, "ts"), rapid.Uint32().Draw(t, "inc"))
	case 7:
		return VC.Document(drawDocument(t, depth+1))
	default:
		a := NewArray()
		n := rapid.IntRange(0, 4).Draw(t, "alen")
		for i := 0; i < n; i++ {
			a.Append(drawValue(t, depth+1))
		}
		return VC.Array(a)
	}
}
