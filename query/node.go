// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package query builds MongoDB filter and update expressions as trees of
// nodes that serialize themselves to BSON.
//
// A node is mutable while a DSL block assembles it and is frozen the moment
// it is accepted into a parent, so a sub-expression can never change after
// its structural position is fixed. Serialization always simplifies first:
// adjacent combinators collapse, single-child wrappers disappear, and update
// operators of the same kind merge into one document.
//
//	f := query.Filter(
//		query.Gt(query.Field("age"), 18),
//		query.Eq(query.Field("name"), "Bob"),
//	)
//	doc, err := query.MarshalDocument(f)
//	// {"$and":[{"age":{"$gt":18}},{"name":{"$eq":"Bob"}}]}
package query

import (
	"errors"

	"github.com/ikmak/mongokit/bson"
)

// ErrFrozen is the panic value raised when a frozen node is mutated. A node
// freezes permanently when it is accepted into a parent or serialized;
// mutating it afterwards is an implementer bug, not a recoverable condition.
var ErrFrozen = errors.New("query: node is frozen and can no longer be modified")

// Node is one element of a query expression tree.
//
// The lifecycle is construct, accept children, freeze, simplify, write.
// Simplify returns an equivalent node in its simplest form, or nil when the
// node contributes nothing to its parent; it is idempotent and never changes
// the meaning of the expression. Writing happens through WriteTo, which
// enforces the simplify-before-write ordering; node implementations must
// never restructure themselves during the write pass.
type Node interface {
	// Freeze permanently seals the node and its children.
	Freeze()
	// Simplify returns the node in its simplest equivalent form, or nil
	// when the node contributes nothing.
	Simplify() Node

	write(vw bson.ValueWriter) error
}

// nodeState carries the one-way frozen flag shared by all node kinds.
type nodeState struct {
	frozen bool
}

func (s *nodeState) Freeze() {
	s.frozen = true
}

func (s *nodeState) mustBeMutable() {
	if s.frozen {
		panic(ErrFrozen)
	}
}

// WriteTo freezes and simplifies n, then writes it to vw. A node that
// simplifies to nothing is written as an empty document, so that a filter
// with no predicates still produces "{}".
func WriteTo(n Node, vw bson.ValueWriter) error {
	n.Freeze()
	if s := n.Simplify(); s != nil {
		return s.write(vw)
	}
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// MarshalDocument serializes n into a new bson Document.
func MarshalDocument(n Node) (*bson.Document, error) {
	doc := bson.NewDocument()
	vw, err := bson.NewDocumentValueWriter(doc)
	if err != nil {
		return nil, err
	}
	if err := WriteTo(n, vw); err != nil {
		return nil, err
	}
	return doc, nil
}

// Marshal serializes n to BSON bytes.
func Marshal(n Node) ([]byte, error) {
	doc, err := MarshalDocument(n)
	if err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}

// String renders n as extended JSON for debugging.
func String(n Node) string {
	doc, err := MarshalDocument(n)
	if err != nil {
		return "query: <" + err.Error() + ">"
	}
	return doc.String()
}
