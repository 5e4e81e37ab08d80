// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import (
	"github.com/ikmak/mongokit/bson"
	"github.com/ikmak/mongokit/bson/bsontype"
)

// Filter constructs the root of a filter expression: an implicit $and over
// the given predicates. A root with a single predicate serializes as that
// predicate alone, and an empty root as "{}".
func Filter(children ...Node) *Compound {
	return And(children...)
}

// And constructs a $and combinator over the given nodes.
func And(children ...Node) *Compound {
	return newCompound("$and", children)
}

// Or constructs a $or combinator over the given nodes.
func Or(children ...Node) *Compound {
	return newCompound("$or", children)
}

// Nor constructs a $nor combinator over the given nodes.
func Nor(children ...Node) *Compound {
	return newCompound("$nor", children)
}

// Compound is a combinator node that owns an ordered list of children. The
// order in which children are accepted is preserved in the serialized
// operand array.
type Compound struct {
	nodeState
	op       string
	children []Node
}

func newCompound(op string, children []Node) *Compound {
	c := &Compound{op: op, children: make([]Node, 0, len(children))}
	for _, n := range children {
		c.Accept(n)
	}
	return c
}

// Accept appends a child and freezes it; the child's structural position is
// now fixed. Accept panics with ErrFrozen if c itself has been frozen.
func (c *Compound) Accept(n Node) *Compound {
	c.mustBeMutable()
	n.Freeze()
	c.children = append(c.children, n)
	return c
}

// Freeze seals the compound and all of its children.
func (c *Compound) Freeze() {
	c.nodeState.Freeze()
	for _, n := range c.children {
		n.Freeze()
	}
}

// Simplify applies the combinator algorithm: children that simplify to
// nothing are dropped, a child combinator of the same kind is spliced into
// the parent's list, zero remaining children simplify to nothing, and a
// single remaining child replaces the wrapper entirely.
func (c *Compound) Simplify() Node {
	out := make([]Node, 0, len(c.children))
	for _, n := range c.children {
		s := n.Simplify()
		if s == nil {
			continue
		}
		if cc, ok := s.(*Compound); ok && cc.op == c.op {
			out = append(out, cc.children...)
			continue
		}
		out = append(out, s)
	}

	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		flat := &Compound{op: c.op, children: out}
		flat.nodeState.Freeze()
		return flat
	}
}

func (c *Compound) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement(c.op)
	if err != nil {
		return err
	}
	aw, err := evw.WriteArray()
	if err != nil {
		return err
	}
	for _, n := range c.children {
		cvw, err := aw.WriteArrayElement()
		if err != nil {
			return err
		}
		if err := n.write(cvw); err != nil {
			return err
		}
	}
	if err := aw.WriteArrayEnd(); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// Predicate is a single field comparison, serialized as
// {"path": {"$op": value}}.
type Predicate struct {
	nodeState
	path  *Path
	op    string
	value *bson.Value
}

func newPredicate(path *Path, op string, value interface{}) *Predicate {
	v, err := bson.VC.InterfaceErr(value)
	if err != nil {
		panic(err)
	}
	return &Predicate{path: path, op: op, value: v}
}

// Eq constructs an equality predicate.
func Eq(path *Path, value interface{}) *Predicate {
	return newPredicate(path, "$eq", value)
}

// Ne constructs a non-equality predicate.
func Ne(path *Path, value interface{}) *Predicate {
	return newPredicate(path, "$ne", value)
}

// Gt constructs a greater-than predicate.
func Gt(path *Path, value interface{}) *Predicate {
	return newPredicate(path, "$gt", value)
}

// Gte constructs a greater-than-or-equal predicate.
func Gte(path *Path, value interface{}) *Predicate {
	return newPredicate(path, "$gte", value)
}

// Lt constructs a less-than predicate.
func Lt(path *Path, value interface{}) *Predicate {
	return newPredicate(path, "$lt", value)
}

// Lte constructs a less-than-or-equal predicate.
func Lte(path *Path, value interface{}) *Predicate {
	return newPredicate(path, "$lte", value)
}

// In matches documents whose field equals any of the given values.
func In(path *Path, values ...interface{}) *Predicate {
	return newPredicate(path, "$in", values)
}

// Nin matches documents whose field equals none of the given values.
func Nin(path *Path, values ...interface{}) *Predicate {
	return newPredicate(path, "$nin", values)
}

// Exists matches documents by field presence.
func Exists(path *Path, exists bool) *Predicate {
	return newPredicate(path, "$exists", exists)
}

// TypeOf matches documents whose field has the given BSON type. The type is
// serialized as its signed wire code.
func TypeOf(path *Path, t bsontype.Type) *Predicate {
	return newPredicate(path, "$type", int32(int8(t)))
}

// Regex matches a string field against a regular expression.
func Regex(path *Path, pattern, options string) *Predicate {
	return newPredicate(path, "$regex", bson.Regex{Pattern: pattern, Options: options})
}

// Mod matches documents where field % divisor == remainder.
func Mod(path *Path, divisor, remainder int64) *Predicate {
	return newPredicate(path, "$mod", []interface{}{divisor, remainder})
}

// Size matches arrays of exactly n elements.
func Size(path *Path, n int) *Predicate {
	return newPredicate(path, "$size", int32(n))
}

// All matches arrays containing every one of the given values.
func All(path *Path, values ...interface{}) *Predicate {
	return newPredicate(path, "$all", values)
}

// Simplify returns the predicate unchanged; a single comparison is already
// in simplest form.
func (p *Predicate) Simplify() Node {
	return p
}

func (p *Predicate) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	if err := p.writeOperator(dw); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// writeOperator writes the {"path": {"$op": value}} element pair into an
// open document, so that $not can nest the operator document one level down.
func (p *Predicate) writeOperator(dw bson.DocumentWriter) error {
	evw, err := dw.WriteDocumentElement(p.path.String())
	if err != nil {
		return err
	}
	odw, err := evw.WriteDocument()
	if err != nil {
		return err
	}
	ovw, err := odw.WriteDocumentElement(p.op)
	if err != nil {
		return err
	}
	if err := ovw.WriteValue(p.value); err != nil {
		return err
	}
	return odw.WriteDocumentEnd()
}

// Not negates a predicate, serialized as {"path": {"$not": {"$op": value}}}.
func Not(pred *Predicate) Node {
	pred.Freeze()
	return &notNode{pred: pred}
}

type notNode struct {
	nodeState
	pred *Predicate
}

func (n *notNode) Simplify() Node {
	return n
}

func (n *notNode) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement(n.pred.path.String())
	if err != nil {
		return err
	}
	ndw, err := evw.WriteDocument()
	if err != nil {
		return err
	}
	nvw, err := ndw.WriteDocumentElement("$not")
	if err != nil {
		return err
	}
	odw, err := nvw.WriteDocument()
	if err != nil {
		return err
	}
	ovw, err := odw.WriteDocumentElement(n.pred.op)
	if err != nil {
		return err
	}
	if err := ovw.WriteValue(n.pred.value); err != nil {
		return err
	}
	if err := odw.WriteDocumentEnd(); err != nil {
		return err
	}
	if err := ndw.WriteDocumentEnd(); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// ElemMatch matches array fields where at least one element satisfies the
// given predicate block. The block is a $or combinator; unlike a bare $or,
// an empty block is not elided but serialized as {"$or": []}, so an element
// match over an empty block is still visible in the output.
func ElemMatch(path *Path, children ...Node) *ElemMatchNode {
	return &ElemMatchNode{path: path, body: Or(children...)}
}

// ElemMatchNode is the node form of $elemMatch.
type ElemMatchNode struct {
	nodeState
	path *Path
	body *Compound

	simplified     bool
	simplifiedBody Node
}

// Accept adds a predicate to the element-match block.
func (e *ElemMatchNode) Accept(n Node) *ElemMatchNode {
	e.mustBeMutable()
	e.body.Accept(n)
	return e
}

// Freeze seals the node and its predicate block.
func (e *ElemMatchNode) Freeze() {
	e.nodeState.Freeze()
	e.body.Freeze()
}

// Simplify simplifies the predicate block. The $elemMatch wrapper itself
// never disappears.
func (e *ElemMatchNode) Simplify() Node {
	if e.simplified {
		return e
	}
	out := &ElemMatchNode{path: e.path, body: e.body, simplified: true, simplifiedBody: e.body.Simplify()}
	out.Freeze()
	return out
}

func (e *ElemMatchNode) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement(e.path.String())
	if err != nil {
		return err
	}
	mdw, err := evw.WriteDocument()
	if err != nil {
		return err
	}
	mvw, err := mdw.WriteDocumentElement("$elemMatch")
	if err != nil {
		return err
	}
	if e.simplifiedBody != nil {
		if err := e.simplifiedBody.write(mvw); err != nil {
			return err
		}
	} else {
		// An empty block still serializes, as {"$or": []}.
		empty := &Compound{op: "$or"}
		empty.nodeState.Freeze()
		if err := empty.write(mvw); err != nil {
			return err
		}
	}
	if err := mdw.WriteDocumentEnd(); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// Text constructs a top-level $text search predicate.
func Text(search string) Node {
	return &textNode{search: search}
}

type textNode struct {
	nodeState
	search string
}

func (t *textNode) Simplify() Node {
	return t
}

func (t *textNode) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement("$text")
	if err != nil {
		return err
	}
	tdw, err := evw.WriteDocument()
	if err != nil {
		return err
	}
	svw, err := tdw.WriteDocumentElement("$search")
	if err != nil {
		return err
	}
	if err := svw.WriteString(t.search); err != nil {
		return err
	}
	if err := tdw.WriteDocumentEnd(); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// Where constructs a $where predicate from a JavaScript expression.
func Where(js string) Node {
	return &whereNode{js: js}
}

type whereNode struct {
	nodeState
	js string
}

func (w *whereNode) Simplify() Node {
	return w
}

func (w *whereNode) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement("$where")
	if err != nil {
		return err
	}
	if err := evw.WriteJavascript(w.js); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}
