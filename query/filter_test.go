// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ikmak/mongokit/bson/bsontype"
)

func TestFilterSerialization(t *testing.T) {
	testCases := []struct {
		name string
		node Node
		want string
	}{
		{
			"two predicates",
			Filter(
				Gt(Field("age"), 18),
				Eq(Field("name"), "Bob"),
			),
			`{"$and":[{"age":{"$gt":18}},{"name":{"$eq":"Bob"}}]}`,
		},
		{
			"single predicate loses the wrapper",
			Filter(Gt(Field("age"), 18)),
			`{"age":{"$gt":18}}`,
		},
		{
			"empty filter",
			Filter(),
			`{}`,
		},
		{
			"or",
			Or(Eq(Field("a"), 1), Eq(Field("b"), 2)),
			`{"$or":[{"a":{"$eq":1}},{"b":{"$eq":2}}]}`,
		},
		{
			"nor",
			Nor(Eq(Field("a"), 1), Eq(Field("b"), 2)),
			`{"$nor":[{"a":{"$eq":1}},{"b":{"$eq":2}}]}`,
		},
		{
			"nested different combinators stay nested",
			And(Or(Eq(Field("a"), 1), Eq(Field("b"), 2)), Eq(Field("c"), 3)),
			`{"$and":[{"$or":[{"a":{"$eq":1}},{"b":{"$eq":2}}]},{"c":{"$eq":3}}]}`,
		},
		{
			"in",
			In(Field("status"), "A", "B"),
			`{"status":{"$in":["A","B"]}}`,
		},
		{
			"nin",
			Nin(Field("status"), "A"),
			`{"status":{"$nin":["A"]}}`,
		},
		{
			"exists",
			Exists(Field("age"), false),
			`{"age":{"$exists":false}}`,
		},
		{
			"type uses the signed wire code",
			TypeOf(Field("x"), bsontype.MinKey),
			`{"x":{"$type":-1}}`,
		},
		{
			"regex",
			Regex(Field("name"), "^B", "i"),
			`{"name":{"$regex":{"$regularExpression":{"pattern":"^B","options":"i"}}}}`,
		},
		{
			"mod",
			Mod(Field("qty"), 4, 0),
			`{"qty":{"$mod":[4,0]}}`,
		},
		{
			"size",
			Size(Field("tags"), 3),
			`{"tags":{"$size":3}}`,
		},
		{
			"all",
			All(Field("tags"), "ssl", "security"),
			`{"tags":{"$all":["ssl","security"]}}`,
		},
		{
			"not",
			Not(Gt(Field("age"), 18)),
			`{"age":{"$not":{"$gt":18}}}`,
		},
		{
			"nested path",
			Eq(Field("a").Field("b"), 1),
			`{"a.b":{"$eq":1}}`,
		},
		{
			"text",
			Text("coffee shop"),
			`{"$text":{"$search":"coffee shop"}}`,
		},
		{
			"where",
			Where("this.a > this.b"),
			`{"$where":{"$code":"this.a > this.b"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, String(tc.node))
		})
	}
}

func TestCompoundSimplify(t *testing.T) {
	t.Run("same-kind child is spliced one level", func(t *testing.T) {
		f := And(
			And(Eq(Field("a"), 1), Eq(Field("b"), 2)),
			Eq(Field("c"), 3),
		)
		require.Equal(t,
			`{"$and":[{"a":{"$eq":1}},{"b":{"$eq":2}},{"c":{"$eq":3}}]}`,
			String(f))
	})

	t.Run("empty child disappears", func(t *testing.T) {
		f := And(Or(), Eq(Field("a"), 1))
		require.Equal(t, `{"a":{"$eq":1}}`, String(f))
	})

	t.Run("deeply nested single children collapse", func(t *testing.T) {
		f := And(And(And(Eq(Field("a"), 1))))
		require.Equal(t, `{"a":{"$eq":1}}`, String(f))
	})

	t.Run("only empty children simplify to nothing", func(t *testing.T) {
		f := And(Or(), Nor())
		require.Equal(t, `{}`, String(f))
	})

	t.Run("simplify is idempotent", func(t *testing.T) {
		f := And(
			And(Eq(Field("a"), 1), Or()),
			Or(Eq(Field("b"), 2)),
		)
		f.Freeze()
		once := f.Simplify()
		twice := once.Simplify()
		require.Equal(t, String(once), String(twice))
	})
}

func TestNodeFreeze(t *testing.T) {
	t.Run("accepting into a frozen compound panics", func(t *testing.T) {
		c := And(Eq(Field("a"), 1))
		c.Freeze()
		require.PanicsWithValue(t, ErrFrozen, func() { c.Accept(Eq(Field("b"), 2)) })
	})

	t.Run("accepted child is frozen", func(t *testing.T) {
		inner := Or(Eq(Field("a"), 1))
		And(inner)
		require.PanicsWithValue(t, ErrFrozen, func() { inner.Accept(Eq(Field("b"), 2)) })
	})

	t.Run("serialization freezes the root", func(t *testing.T) {
		c := And(Eq(Field("a"), 1))
		_ = String(c)
		require.PanicsWithValue(t, ErrFrozen, func() { c.Accept(Eq(Field("b"), 2)) })
	})
}

func TestElemMatch(t *testing.T) {
	t.Run("single predicate block", func(t *testing.T) {
		f := ElemMatch(Field("results"), Gte(Field("score"), 80))
		require.Equal(t,
			`{"results":{"$elemMatch":{"score":{"$gte":80}}}}`,
			String(f))
	})

	t.Run("multiple predicates form an or block", func(t *testing.T) {
		f := ElemMatch(Field("results"),
			Gte(Field("score"), 80),
			Lt(Field("score"), 85),
		)
		require.Equal(t,
			`{"results":{"$elemMatch":{"$or":[{"score":{"$gte":80}},{"score":{"$lt":85}}]}}}`,
			String(f))
	})

	t.Run("empty block stays visible", func(t *testing.T) {
		f := ElemMatch(Field("results"))
		require.Equal(t, `{"results":{"$elemMatch":{"$or":[]}}}`, String(f))
	})

	t.Run("Accept after freeze panics", func(t *testing.T) {
		f := ElemMatch(Field("r"))
		f.Freeze()
		require.PanicsWithValue(t, ErrFrozen, func() { f.Accept(Eq(Field("x"), 1)) })
	})
}

func TestPredicateValueConversion(t *testing.T) {
	t.Run("unconvertible value panics", func(t *testing.T) {
		require.Panics(t, func() { Eq(Field("a"), make(chan int)) })
	})
}

func TestSimplifyIdempotentRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := drawFilter(t, 0)
		n.Freeze()
		once := n.Simplify()
		if once == nil {
			return
		}
		twice := once.Simplify()
		require.NotNil(t, twice)
		require.Equal(t, String(once), String(twice))
	})
}

func drawFilter(t *rapid.T, depth int) Node {
	if depth >= 3 || rapid.Bool().Draw(t, "leaf") {
		name := rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "field")
		switch rapid.IntRange(0, 2).Draw(t, "pred") {
		case 0:
			return Eq(Field(name), rapid.Int32().Draw(t, "v"))
		case 1:
			return Gt(Field(name), rapid.Int32().Draw(t, "v"))
		default:
			return Exists(Field(name), rapid.Bool().Draw(t, "e"))
		}
	}

	n := rapid.IntRange(0, 3).Draw(t, "children")
	children := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		children = append(children, drawFilter(t, depth+1))
	}
	switch rapid.IntRange(0, 2).Draw(t, "kind") {
	case 0:
		return And(children...)
	case 1:
		return Or(children...)
	default:
		return Nor(children...)
	}
}
