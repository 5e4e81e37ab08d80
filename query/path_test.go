// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathString(t *testing.T) {
	testCases := []struct {
		name string
		path *Path
		want string
	}{
		{"root field", Field("a"), "a"},
		{"nested fields", Field("a").Field("b").Field("c"), "a.b.c"},
		{"indexed", Field("a").Field("b").At(0), "a.b.$0"},
		{"larger index", Field("xs").At(12), "xs.$12"},
		{"positional", Field("grades").Positional(), "grades.$"},
		{"all positional", Field("grades").AllPositional(), "grades.$[]"},
		{"field after index", Field("a").At(1).Field("b"), "a.$1.b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.path.String())
		})
	}
}

func TestPathConstructors(t *testing.T) {
	t.Run("apostrophe panics", func(t *testing.T) {
		require.Panics(t, func() { Field("it's") })
		require.Panics(t, func() { Field("a").Field("it's") })
	})

	t.Run("negative index panics", func(t *testing.T) {
		require.Panics(t, func() { Field("a").At(-1) })
	})

	t.Run("shared prefix", func(t *testing.T) {
		base := Field("a").Field("b")
		require.Equal(t, "a.b.c", base.Field("c").String())
		require.Equal(t, "a.b.d", base.Field("d").String())
	})
}

func TestPathIsRootField(t *testing.T) {
	require.True(t, Field("total").IsRootField())
	require.False(t, Field("a").Field("b").IsRootField())
	require.False(t, Field("a").At(0).IsRootField())
	require.False(t, Field("a").Positional().IsRootField())
}

func TestPathEqual(t *testing.T) {
	require.True(t, Field("a").Field("b").Equal(Field("a").Field("b")))
	require.True(t, Field("a").At(3).Equal(Field("a").At(3)))
	require.False(t, Field("a").Equal(Field("b")))
	require.False(t, Field("a").At(1).Equal(Field("a").At(2)))
	require.False(t, Field("a").Equal(Field("a").Field("b")))
	require.False(t, Field("a").Positional().Equal(Field("a").AllPositional()))
}

func TestPathName(t *testing.T) {
	require.Equal(t, "b", Field("a").Field("b").Name())
	require.Equal(t, "", Field("a").At(0).Name())
}
