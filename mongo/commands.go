// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongo assembles database command documents from the expression
// builders in the query and aggregate packages. The result of every builder
// is a plain bson Document ready to be marshaled into an OP_MSG section;
// this package does not dial servers or manage topology.
package mongo

import (
	"github.com/ikmak/mongokit/aggregate"
	"github.com/ikmak/mongokit/bson"
	"github.com/ikmak/mongokit/query"
)

// Find builds a find command over the collection.
func Find(collection string, filter query.Node, opts ...Option) (*bson.Document, error) {
	cmd := bson.NewDocument()
	cmd.Set("find", bson.VC.String(collection))
	fdoc, err := query.MarshalDocument(filter)
	if err != nil {
		return nil, err
	}
	cmd.Set("filter", bson.VC.Document(fdoc))
	if err := applyOptions(&target{cmd: cmd}, opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Count builds a count command over the collection.
func Count(collection string, filter query.Node, opts ...Option) (*bson.Document, error) {
	cmd := bson.NewDocument()
	cmd.Set("count", bson.VC.String(collection))
	fdoc, err := query.MarshalDocument(filter)
	if err != nil {
		return nil, err
	}
	cmd.Set("query", bson.VC.Document(fdoc))
	if err := applyOptions(&target{cmd: cmd}, opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Distinct builds a distinct command returning the unique values of the key
// field among documents matching the filter.
func Distinct(collection string, key *query.Path, filter query.Node, opts ...Option) (*bson.Document, error) {
	cmd := bson.NewDocument()
	cmd.Set("distinct", bson.VC.String(collection))
	cmd.Set("key", bson.VC.String(key.String()))
	fdoc, err := query.MarshalDocument(filter)
	if err != nil {
		return nil, err
	}
	cmd.Set("query", bson.VC.Document(fdoc))
	if err := applyOptions(&target{cmd: cmd}, opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Insert builds an insert command carrying the given documents.
func Insert(collection string, docs []*bson.Document, opts ...Option) (*bson.Document, error) {
	cmd := bson.NewDocument()
	cmd.Set("insert", bson.VC.String(collection))
	arr := bson.NewArray()
	for _, d := range docs {
		arr.Append(bson.VC.Document(d))
	}
	cmd.Set("documents", bson.VC.Array(arr))
	if err := applyOptions(&target{cmd: cmd}, opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

// UpdateOne builds an update command modifying at most one matching
// document.
func UpdateOne(collection string, filter query.Node, update *query.UpdateNode, opts ...Option) (*bson.Document, error) {
	return buildUpdate(collection, filter, update, false, opts)
}

// UpdateMany builds an update command modifying every matching document.
func UpdateMany(collection string, filter query.Node, update *query.UpdateNode, opts ...Option) (*bson.Document, error) {
	return buildUpdate(collection, filter, update, true, opts)
}

func buildUpdate(collection string, filter query.Node, update *query.UpdateNode, multi bool, opts []Option) (*bson.Document, error) {
	fdoc, err := query.MarshalDocument(filter)
	if err != nil {
		return nil, err
	}
	udoc, err := query.MarshalDocument(update)
	if err != nil {
		return nil, err
	}

	stmt := bson.NewDocument()
	stmt.Set("q", bson.VC.Document(fdoc))
	stmt.Set("u", bson.VC.Document(udoc))
	if multi {
		stmt.Set("multi", bson.VC.Boolean(true))
	}

	cmd := bson.NewDocument()
	cmd.Set("update", bson.VC.String(collection))
	if err := applyOptions(&target{cmd: cmd, stmt: stmt}, opts); err != nil {
		return nil, err
	}
	updates := bson.NewArray()
	updates.Append(bson.VC.Document(stmt))
	cmd.Set("updates", bson.VC.Array(updates))
	return cmd, nil
}

// DeleteOne builds a delete command removing at most one matching document.
func DeleteOne(collection string, filter query.Node, opts ...Option) (*bson.Document, error) {
	return buildDelete(collection, filter, 1, opts)
}

// DeleteMany builds a delete command removing every matching document.
func DeleteMany(collection string, filter query.Node, opts ...Option) (*bson.Document, error) {
	return buildDelete(collection, filter, 0, opts)
}

func buildDelete(collection string, filter query.Node, limit int32, opts []Option) (*bson.Document, error) {
	fdoc, err := query.MarshalDocument(filter)
	if err != nil {
		return nil, err
	}

	stmt := bson.NewDocument()
	stmt.Set("q", bson.VC.Document(fdoc))
	stmt.Set("limit", bson.VC.Int32(limit))

	cmd := bson.NewDocument()
	cmd.Set("delete", bson.VC.String(collection))
	if err := applyOptions(&target{cmd: cmd, stmt: stmt}, opts); err != nil {
		return nil, err
	}
	deletes := bson.NewArray()
	deletes.Append(bson.VC.Document(stmt))
	cmd.Set("deletes", bson.VC.Array(deletes))
	return cmd, nil
}

// Drop builds a drop command removing the collection.
func Drop(collection string) (*bson.Document, error) {
	cmd := bson.NewDocument()
	cmd.Set("drop", bson.VC.String(collection))
	return cmd, nil
}

// Aggregate builds an aggregate command running the pipeline over the
// collection. The command always carries a cursor sub-document, as the
// server requires one.
func Aggregate(collection string, p aggregate.Pipeline, opts ...Option) (*bson.Document, error) {
	arr, err := p.Array()
	if err != nil {
		return nil, err
	}
	cmd := bson.NewDocument()
	cmd.Set("aggregate", bson.VC.String(collection))
	cmd.Set("pipeline", bson.VC.Array(arr))
	cmd.Set("cursor", bson.VC.Document(bson.NewDocument()))
	if err := applyOptions(&target{cmd: cmd}, opts); err != nil {
		return nil, err
	}
	return cmd, nil
}

// WriteModel is a single operation of a bulk write.
type WriteModel interface {
	// kind selects which wire command the model belongs to.
	kind() string
	appendTo(t *target) error
}

// InsertModel inserts one document.
func InsertModel(doc *bson.Document) WriteModel {
	return insertModel{doc: doc}
}

type insertModel struct {
	doc *bson.Document
}

func (m insertModel) kind() string { return "insert" }

func (m insertModel) appendTo(t *target) error {
	t.stmt.Reset()
	t.stmt.Concat(m.doc)
	return nil
}

// UpdateModel updates the documents matching the filter; multi selects
// between one and many.
func UpdateModel(filter query.Node, update *query.UpdateNode, multi bool) WriteModel {
	return updateModel{filter: filter, update: update, multi: multi}
}

type updateModel struct {
	filter query.Node
	update *query.UpdateNode
	multi  bool
}

func (m updateModel) kind() string { return "update" }

func (m updateModel) appendTo(t *target) error {
	fdoc, err := query.MarshalDocument(m.filter)
	if err != nil {
		return err
	}
	udoc, err := query.MarshalDocument(m.update)
	if err != nil {
		return err
	}
	t.stmt.Set("q", bson.VC.Document(fdoc))
	t.stmt.Set("u", bson.VC.Document(udoc))
	if m.multi {
		t.stmt.Set("multi", bson.VC.Boolean(true))
	}
	return nil
}

// DeleteModel deletes the documents matching the filter; many selects
// between one and all.
func DeleteModel(filter query.Node, many bool) WriteModel {
	return deleteModel{filter: filter, many: many}
}

type deleteModel struct {
	filter query.Node
	many   bool
}

func (m deleteModel) kind() string { return "delete" }

func (m deleteModel) appendTo(t *target) error {
	fdoc, err := query.MarshalDocument(m.filter)
	if err != nil {
		return err
	}
	t.stmt.Set("q", bson.VC.Document(fdoc))
	limit := int32(1)
	if m.many {
		limit = 0
	}
	t.stmt.Set("limit", bson.VC.Int32(limit))
	return nil
}

// statementsKey maps a write command name to its statement array field.
var statementsKey = map[string]string{
	"insert": "documents",
	"update": "updates",
	"delete": "deletes",
}

// BulkWrite batches the models into the fewest commands that preserve their
// order: each maximal run of models of the same kind becomes one command.
func BulkWrite(collection string, models []WriteModel, opts ...Option) ([]*bson.Document, error) {
	var cmds []*bson.Document
	for i := 0; i < len(models); {
		kind := models[i].kind()
		j := i
		for j < len(models) && models[j].kind() == kind {
			j++
		}

		cmd := bson.NewDocument()
		cmd.Set(kind, bson.VC.String(collection))
		if err := applyOptions(&target{cmd: cmd}, opts); err != nil {
			return nil, err
		}
		stmts := bson.NewArray()
		for _, m := range models[i:j] {
			stmt := bson.NewDocument()
			if err := m.appendTo(&target{cmd: cmd, stmt: stmt}); err != nil {
				return nil, err
			}
			stmts.Append(bson.VC.Document(stmt))
		}
		cmd.Set(statementsKey[kind], bson.VC.Array(stmts))
		cmds = append(cmds, cmd)
		i = j
	}
	return cmds, nil
}
