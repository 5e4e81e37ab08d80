// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikmak/mongokit/query"
)

func TestPipelineStages(t *testing.T) {
	testCases := []struct {
		name string
		p    Pipeline
		want string
	}{
		{
			"empty",
			NewPipeline(),
			`[]`,
		},
		{
			"match and limit in order",
			NewPipeline().
				Match(query.Filter(query.Gt(query.Field("age"), 18))).
				Limit(10),
			`[{"$match":{"age":{"$gt":18}}},{"$limit":10}]`,
		},
		{
			"empty match",
			NewPipeline().Match(query.Filter()),
			`[{"$match":{}}]`,
		},
		{
			"skip",
			NewPipeline().Skip(5),
			`[{"$skip":5}]`,
		},
		{
			"sample",
			NewPipeline().Sample(3),
			`[{"$sample":{"size":3}}]`,
		},
		{
			"count",
			NewPipeline().Count(query.Field("total")),
			`[{"$count":"total"}]`,
		},
		{
			"sort",
			NewPipeline().Sort(query.NewSort().Ascending(query.Field("age")).Descending(query.Field("name"))),
			`[{"$sort":{"age":1,"name":-1}}]`,
		},
		{
			"set",
			NewPipeline().Set(
				Assign(query.Field("total"), Multiply(
					FieldAs[order, float64](query.Field("price")),
					FieldAs[order, float64](query.Field("qty")),
				)),
			),
			`[{"$set":{"total":{"$multiply":["$price","$qty"]}}}]`,
		},
		{
			"addFields",
			NewPipeline().AddFields(Assign(query.Field("flag"), Literal[order](true))),
			`[{"$addFields":{"flag":true}}]`,
		},
		{
			"unset one field",
			NewPipeline().Unset(query.Field("tmp")),
			`[{"$unset":"tmp"}]`,
		},
		{
			"unset several fields",
			NewPipeline().Unset(query.Field("a"), query.Field("b").Field("c")),
			`[{"$unset":["a","b.c"]}]`,
		},
		{
			"project",
			NewPipeline().Project(NewProjection().
				Include(query.Field("name")).
				Exclude(query.Field("_id")).
				Computed(query.Field("year"), ToInt(FieldAs[order, string](query.Field("y"))))),
			`[{"$project":{"name":1,"_id":0,"year":{"$toInt":"$y"}}}]`,
		},
		{
			"group",
			NewPipeline().Group(
				FieldAs[order, string](query.Field("cust")),
				Accumulate("total", Sum(FieldAs[order, int32](query.Field("amount")))),
				Accumulate("n", CountAll[order]()),
			),
			`[{"$group":{"_id":"$cust","total":{"$sum":"$amount"},"n":{"$count":{}}}}]`,
		},
		{
			"lookup",
			NewPipeline().Lookup("orders", query.Field("_id"), query.Field("custId"), query.Field("orders")),
			`[{"$lookup":{"from":"orders","localField":"_id","foreignField":"custId","as":"orders"}}]`,
		},
		{
			"unionWith without pipeline",
			NewPipeline().UnionWith("archive", NewPipeline()),
			`[{"$unionWith":{"coll":"archive"}}]`,
		},
		{
			"unionWith with pipeline",
			NewPipeline().UnionWith("archive", NewPipeline().Limit(1)),
			`[{"$unionWith":{"coll":"archive","pipeline":[{"$limit":1}]}}]`,
		},
		{
			"sortByCount",
			NewPipeline().SortByCount(FieldAs[order, string](query.Field("tag"))),
			`[{"$sortByCount":"$tag"}]`,
		},
		{
			"replaceRoot",
			NewPipeline().ReplaceRoot(FieldAs[order, any](query.Field("sub"))),
			`[{"$replaceRoot":{"newRoot":"$sub"}}]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.p.String())
		})
	}
}

func TestPipelineImmutability(t *testing.T) {
	t.Run("a shared prefix can branch", func(t *testing.T) {
		base := NewPipeline().Match(query.Filter(query.Eq(query.Field("ok"), true)))
		limited := base.Limit(1)
		skipped := base.Skip(2)

		require.Equal(t, `[{"$match":{"ok":{"$eq":true}}},{"$limit":1}]`, limited.String())
		require.Equal(t, `[{"$match":{"ok":{"$eq":true}}},{"$skip":2}]`, skipped.String())
		require.Equal(t, `[{"$match":{"ok":{"$eq":true}}}]`, base.String())
	})

	t.Run("Len", func(t *testing.T) {
		require.Equal(t, 0, NewPipeline().Len())
		require.Equal(t, 2, NewPipeline().Limit(1).Skip(2).Len())
	})

	t.Run("match freezes the filter", func(t *testing.T) {
		f := query.Filter(query.Eq(query.Field("a"), 1))
		NewPipeline().Match(f)
		require.PanicsWithValue(t, query.ErrFrozen, func() { f.Accept(query.Eq(query.Field("b"), 2)) })
	})
}

func TestPipelineCountValidation(t *testing.T) {
	t.Run("nested path panics at construction", func(t *testing.T) {
		require.Panics(t, func() {
			NewPipeline().Count(query.Field("a").Field("b"))
		})
	})

	t.Run("indexed path panics at construction", func(t *testing.T) {
		require.Panics(t, func() {
			NewPipeline().Count(query.Field("a").At(0))
		})
	})

	t.Run("root field is accepted", func(t *testing.T) {
		require.NotPanics(t, func() {
			NewPipeline().Count(query.Field("total"))
		})
	})
}

func TestPipelineArray(t *testing.T) {
	p := NewPipeline().Limit(2).Skip(1)
	arr, err := p.Array()
	require.NoError(t, err)
	require.Equal(t, 2, arr.Len())
	require.Equal(t, `[{"$limit":2},{"$skip":1}]`, arr.String())
}
