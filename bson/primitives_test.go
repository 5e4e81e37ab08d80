// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimestamp(t *testing.T) {
	t.Run("raw packing", func(t *testing.T) {
		testCases := []struct {
			name string
			raw  int64
			T, I uint32
		}{
			{"zero", 0, 0, 0},
			{"seconds only", 42, 42, 0},
			{"counter only", int64(7) << 32, 0, 7},
			{"both", int64(3)<<32 | 1234, 1234, 3},
			{"all bits", -1, math.MaxUint32, math.MaxUint32},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ts := NewTimestamp(tc.raw)
				require.Equal(t, tc.T, ts.T)
				require.Equal(t, tc.I, ts.I)
				require.Equal(t, tc.raw, ts.Raw())
			})
		}
	})

	t.Run("Instant", func(t *testing.T) {
		ts := Timestamp{T: 1700000000, I: 99}
		require.Equal(t, time.Unix(1700000000, 0).UTC(), ts.Instant())
	})

	t.Run("Compare orders by seconds then counter", func(t *testing.T) {
		testCases := []struct {
			name string
			a, b Timestamp
			want int
		}{
			{"equal", Timestamp{T: 5, I: 5}, Timestamp{T: 5, I: 5}, 0},
			{"earlier seconds", Timestamp{T: 4, I: 9}, Timestamp{T: 5, I: 0}, -1},
			{"same second lower counter", Timestamp{T: 5, I: 1}, Timestamp{T: 5, I: 2}, -1},
			{"later seconds", Timestamp{T: 6, I: 0}, Timestamp{T: 5, I: 9}, 1},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				require.Equal(t, tc.want, tc.a.Compare(tc.b))
				require.Equal(t, -tc.want, tc.b.Compare(tc.a))
			})
		}
	})
}

func TestDateTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 45, 987654321, time.UTC)
	dt := NewDateTime(at)
	require.Equal(t, at.UnixMilli(), int64(dt))
	require.True(t, dt.Time().Equal(at.Truncate(time.Millisecond)))
}

func TestBinaryEqual(t *testing.T) {
	a := Binary{Subtype: 0x00, Data: []byte{1, 2, 3}}
	require.True(t, a.Equal(Binary{Subtype: 0x00, Data: []byte{1, 2, 3}}))
	require.False(t, a.Equal(Binary{Subtype: 0x80, Data: []byte{1, 2, 3}}))
	require.False(t, a.Equal(Binary{Subtype: 0x00, Data: []byte{1, 2}}))
}
