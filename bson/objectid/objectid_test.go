// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package objectid

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("uniqueness", func(t *testing.T) {
		seen := make(map[ObjectID]bool)
		for i := 0; i < 1000; i++ {
			id := New()
			require.False(t, seen[id])
			seen[id] = true
		}
	})

	t.Run("counter increments", func(t *testing.T) {
		a := New()
		b := New()
		require.Equal(t, (a.Counter()+1)&0xFFFFFF, b.Counter())
	})

	t.Run("timestamp is current", func(t *testing.T) {
		before := time.Now().Add(-time.Second).Unix()
		id := New()
		after := time.Now().Add(time.Second).Unix()
		ts := id.Timestamp().Unix()
		require.GreaterOrEqual(t, ts, before)
		require.LessOrEqual(t, ts, after)
	})
}

func TestFromTime(t *testing.T) {
	at := time.Date(2023, 3, 15, 8, 0, 0, 0, time.UTC)
	id := FromTime(at)
	require.Equal(t, at, id.Timestamp())
	require.Equal(t, uint32(at.Unix()), binary.BigEndian.Uint32(id[0:4]))
}

func TestFromHex(t *testing.T) {
	testCases := []struct {
		name    string
		hex     string
		wantErr error
	}{
		{"valid", "5ef7fdd91c19e3222b41b839", nil},
		{"too short", "5ef7fdd91c19e3222b41b8", ErrInvalidHex},
		{"too long", "5ef7fdd91c19e3222b41b83900", ErrInvalidHex},
		{"not hex", "zzf7fdd91c19e3222b41b839", ErrInvalidHex},
		{"empty", "", ErrInvalidHex},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := FromHex(tc.hex)
			if tc.wantErr != nil {
				require.Equal(t, tc.wantErr, err)
				require.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.hex, id.Hex())
		})
	}
}

func TestFromBytes(t *testing.T) {
	id := New()
	got, err := FromBytes(id.Bytes())
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = FromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestBounds(t *testing.T) {
	at := time.Date(2023, 3, 15, 8, 0, 0, 0, time.UTC)
	lo := MinAt(at)
	hi := MaxAt(at)

	require.Equal(t, at, lo.Timestamp())
	require.Equal(t, at, hi.Timestamp())
	require.Equal(t, -1, lo.Compare(hi))

	for i := 0; i < 100; i++ {
		id := FromTime(at)
		require.LessOrEqual(t, lo.Compare(id), 0)
		require.LessOrEqual(t, id.Compare(hi), 0)
	}
}

func TestCompare(t *testing.T) {
	early := FromTime(time.Unix(1000, 0))
	late := FromTime(time.Unix(2000, 0))
	require.Equal(t, -1, early.Compare(late))
	require.Equal(t, 1, late.Compare(early))
	require.Equal(t, 0, early.Compare(early))
}

func TestSource(t *testing.T) {
	t.Run("default generates fresh IDs", func(t *testing.T) {
		src := DefaultSource()
		a, err := src.NewID()
		require.NoError(t, err)
		b, err := src.NewID()
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("fixed replays and exhausts", func(t *testing.T) {
		first, second := New(), New()
		src := FixedSource(first, second)

		got, err := src.NewID()
		require.NoError(t, err)
		require.Equal(t, first, got)

		got, err = src.NewID()
		require.NoError(t, err)
		require.Equal(t, second, got)

		_, err = src.NewID()
		require.Equal(t, ErrSourceExhausted, err)
		_, err = src.NewID()
		require.Equal(t, ErrSourceExhausted, err)
	})

	t.Run("fixed with no IDs is immediately exhausted", func(t *testing.T) {
		_, err := FixedSource().NewID()
		require.Equal(t, ErrSourceExhausted, err)
	})
}
