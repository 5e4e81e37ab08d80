// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package aggregate builds aggregation pipelines and the expression values
// that appear inside their stages.
//
// Value[Root, Type] is an expression over documents of type Root producing a
// value of type Type. Both parameters exist only at compile time, to catch
// mismatched operands at the call site; they have no runtime representation
// and are never serialized. Unlike query nodes, values are immutable from
// construction, so the freeze discipline is enforced by the type rather than
// by a runtime check.
//
//	price := aggregate.FieldAs[Order, float64](query.Field("price"))
//	total := aggregate.Multiply(price, aggregate.Literal[Order](1.19))
package aggregate

import (
	"github.com/ikmak/mongokit/bson"
	"github.com/ikmak/mongokit/query"
)

// Value is a phantom-typed aggregation expression. The zero Value is not
// meaningful; construct values with FieldAs, Literal, Variable, or the
// operator functions.
type Value[Root, Type any] struct {
	node exprNode
}

// Expression is the erased view of a Value of any parameterization; stage
// and operator constructors accept it where the static types do not matter.
type Expression interface {
	tree() exprNode
}

func (v Value[Root, Type]) tree() exprNode {
	return v.node
}

// String renders the expression as extended JSON for debugging.
func (v Value[Root, Type]) String() string {
	doc := bson.NewDocument()
	vw, err := bson.NewDocumentValueWriter(doc)
	if err != nil {
		return "aggregate: <" + err.Error() + ">"
	}
	dw, err := vw.WriteDocument()
	if err != nil {
		return "aggregate: <" + err.Error() + ">"
	}
	evw, err := dw.WriteDocumentElement("v")
	if err == nil {
		err = writeExpr(evw, v.node)
	}
	if err == nil {
		err = dw.WriteDocumentEnd()
	}
	if err != nil {
		return "aggregate: <" + err.Error() + ">"
	}
	out, _ := doc.Lookup("v")
	return out.String()
}

// exprNode is the untyped expression tree behind every Value. Expressions
// serialize as BSON values, not field documents.
type exprNode interface {
	simplify() exprNode
	write(vw bson.ValueWriter) error
}

// writeExpr simplifies and writes an expression node.
func writeExpr(vw bson.ValueWriter, n exprNode) error {
	return n.simplify().write(vw)
}

func wrap[Root, Type any](n exprNode) Value[Root, Type] {
	return Value[Root, Type]{node: n}
}

// FieldAs references a document field as an expression of the given type,
// serialized as "$path".
func FieldAs[Root, Type any](path *query.Path) Value[Root, Type] {
	return wrap[Root, Type](fieldRef{path: path.String()})
}

// Literal embeds a constant into the expression tree.
func Literal[Root any, Type any](value Type) Value[Root, Type] {
	v, err := bson.VC.InterfaceErr(value)
	if err != nil {
		panic(err)
	}
	return wrap[Root, Type](literal{value: v})
}

// Variable references an aggregation variable such as "this" or "value",
// serialized as "$$name".
func Variable[Root, Type any](name string) Value[Root, Type] {
	return wrap[Root, Type](fieldRef{path: "$" + name})
}

type fieldRef struct {
	path string
}

func (f fieldRef) simplify() exprNode { return f }

func (f fieldRef) write(vw bson.ValueWriter) error {
	return vw.WriteString("$" + f.path)
}

type literal struct {
	value *bson.Value
}

func (l literal) simplify() exprNode { return l }

func (l literal) write(vw bson.ValueWriter) error {
	return vw.WriteValue(l.value)
}

// operator is an expression of the form {"$op": [args...]}. An operator with
// exactly one argument simplifies to the shorthand {"$op": arg}.
type operator struct {
	name      string
	args      []exprNode
	shorthand bool
}

func newOperator(name string, args ...Expression) operator {
	nodes := make([]exprNode, 0, len(args))
	for _, a := range args {
		nodes = append(nodes, a.tree())
	}
	return operator{name: name, args: nodes}
}

func (o operator) simplify() exprNode {
	args := make([]exprNode, 0, len(o.args))
	for _, a := range o.args {
		args = append(args, a.simplify())
	}
	return operator{name: o.name, args: args, shorthand: len(args) == 1}
}

func (o operator) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement(o.name)
	if err != nil {
		return err
	}
	if o.shorthand {
		if err := o.args[0].write(evw); err != nil {
			return err
		}
		return dw.WriteDocumentEnd()
	}
	aw, err := evw.WriteArray()
	if err != nil {
		return err
	}
	for _, a := range o.args {
		avw, err := aw.WriteArrayElement()
		if err != nil {
			return err
		}
		if err := a.write(avw); err != nil {
			return err
		}
	}
	if err := aw.WriteArrayEnd(); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// docOperator is an expression of the form {"$op": {field: expr, ...}} with
// a fixed field layout, used by $cond, $switch, $filter and $convert.
type docOperator struct {
	name   string
	fields []docField
}

type docField struct {
	key  string
	expr exprNode
}

func (d docOperator) simplify() exprNode {
	fields := make([]docField, 0, len(d.fields))
	for _, f := range d.fields {
		fields = append(fields, docField{key: f.key, expr: f.expr.simplify()})
	}
	return docOperator{name: d.name, fields: fields}
}

func (d docOperator) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement(d.name)
	if err != nil {
		return err
	}
	bdw, err := evw.WriteDocument()
	if err != nil {
		return err
	}
	for _, f := range d.fields {
		fvw, err := bdw.WriteDocumentElement(f.key)
		if err != nil {
			return err
		}
		if err := f.expr.write(fvw); err != nil {
			return err
		}
	}
	if err := bdw.WriteDocumentEnd(); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// arrayExpr is a literal array of expressions, as in $switch branch lists.
type arrayExpr struct {
	elems []exprNode
}

func (a arrayExpr) simplify() exprNode {
	elems := make([]exprNode, 0, len(a.elems))
	for _, e := range a.elems {
		elems = append(elems, e.simplify())
	}
	return arrayExpr{elems: elems}
}

func (a arrayExpr) write(vw bson.ValueWriter) error {
	aw, err := vw.WriteArray()
	if err != nil {
		return err
	}
	for _, e := range a.elems {
		evw, err := aw.WriteArrayElement()
		if err != nil {
			return err
		}
		if err := e.write(evw); err != nil {
			return err
		}
	}
	return aw.WriteArrayEnd()
}
