// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import "github.com/ikmak/mongokit/bson"

// Update constructs the root of an update expression from individual
// operator nodes. Simplification merges all nodes of the same operator kind
// into a single operator document: the update command requires top-level
// operator keys to be unique, so
//
//	query.Update(query.Set(a, 1), query.Set(b, 2))
//
// serializes as one {"$set": {"a": 1, "b": 2}}, never as two $set documents.
func Update(children ...*UpdateOperator) *UpdateNode {
	u := &UpdateNode{children: make([]*UpdateOperator, 0, len(children))}
	for _, n := range children {
		u.Accept(n)
	}
	return u
}

// UpdateNode is the root of an update expression.
type UpdateNode struct {
	nodeState
	children []*UpdateOperator
}

// Accept appends an operator node and freezes it. Accept panics with
// ErrFrozen if u itself has been frozen.
func (u *UpdateNode) Accept(n *UpdateOperator) *UpdateNode {
	u.mustBeMutable()
	n.Freeze()
	u.children = append(u.children, n)
	return u
}

// Freeze seals the update and all of its operator nodes.
func (u *UpdateNode) Freeze() {
	u.nodeState.Freeze()
	for _, n := range u.children {
		n.Freeze()
	}
}

// Simplify merges same-operator children into one node per operator kind,
// in first-encounter order. Within a merged node a path assigned twice keeps
// the later value. An update with no operators simplifies to nothing.
func (u *UpdateNode) Simplify() Node {
	if len(u.children) == 0 {
		return nil
	}

	order := make([]string, 0, len(u.children))
	merged := make(map[string]*UpdateOperator, len(u.children))
	for _, n := range u.children {
		m, ok := merged[n.op]
		if !ok {
			m = &UpdateOperator{op: n.op}
			m.nodeState.Freeze()
			merged[n.op] = m
			order = append(order, n.op)
		}
		m.assignments = append(m.assignments, n.assignments...)
	}

	out := &UpdateNode{children: make([]*UpdateOperator, 0, len(order))}
	for _, op := range order {
		out.children = append(out.children, merged[op])
	}
	out.Freeze()
	return out
}

func (u *UpdateNode) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	for _, n := range u.children {
		if err := n.writeOperator(dw); err != nil {
			return err
		}
	}
	return dw.WriteDocumentEnd()
}

type assignment struct {
	path  *Path
	value *bson.Value
}

// UpdateOperator is a single update operator ($set, $inc, ...) holding the
// field assignments it applies.
type UpdateOperator struct {
	nodeState
	op          string
	assignments []assignment
}

func newUpdateOperator(op string, path *Path, value interface{}) *UpdateOperator {
	v, err := bson.VC.InterfaceErr(value)
	if err != nil {
		panic(err)
	}
	return &UpdateOperator{op: op, assignments: []assignment{{path: path, value: v}}}
}

// Set assigns a value to a field.
func Set(path *Path, value interface{}) *UpdateOperator {
	return newUpdateOperator("$set", path, value)
}

// SetOnInsert assigns a value to a field only when the update inserts.
func SetOnInsert(path *Path, value interface{}) *UpdateOperator {
	return newUpdateOperator("$setOnInsert", path, value)
}

// Inc increments a numeric field.
func Inc(path *Path, delta interface{}) *UpdateOperator {
	return newUpdateOperator("$inc", path, delta)
}

// Mul multiplies a numeric field.
func Mul(path *Path, factor interface{}) *UpdateOperator {
	return newUpdateOperator("$mul", path, factor)
}

// Unset removes a field.
func Unset(path *Path) *UpdateOperator {
	return newUpdateOperator("$unset", path, "")
}

// Rename renames a field.
func Rename(path *Path, newName string) *UpdateOperator {
	return newUpdateOperator("$rename", path, newName)
}

// Min assigns a value only if it is less than the field's current value.
func Min(path *Path, value interface{}) *UpdateOperator {
	return newUpdateOperator("$min", path, value)
}

// Max assigns a value only if it is greater than the field's current value.
func Max(path *Path, value interface{}) *UpdateOperator {
	return newUpdateOperator("$max", path, value)
}

// CurrentDate assigns the server's current datetime to a field.
func CurrentDate(path *Path) *UpdateOperator {
	return newUpdateOperator("$currentDate", path, true)
}

// Push appends a value to an array field.
func Push(path *Path, value interface{}) *UpdateOperator {
	return newUpdateOperator("$push", path, value)
}

// Pull removes all array elements equal to the value.
func Pull(path *Path, value interface{}) *UpdateOperator {
	return newUpdateOperator("$pull", path, value)
}

// AddToSet appends a value to an array field unless it is already present.
func AddToSet(path *Path, value interface{}) *UpdateOperator {
	return newUpdateOperator("$addToSet", path, value)
}

// PopFirst removes the first element of an array field.
func PopFirst(path *Path) *UpdateOperator {
	return newUpdateOperator("$pop", path, int32(-1))
}

// PopLast removes the last element of an array field.
func PopLast(path *Path) *UpdateOperator {
	return newUpdateOperator("$pop", path, int32(1))
}

// Freeze seals the operator node.
func (o *UpdateOperator) Freeze() {
	o.nodeState.Freeze()
}

// Simplify returns the operator unchanged; merging happens at the update
// root, which sees all operators of a kind at once.
func (o *UpdateOperator) Simplify() Node {
	return o
}

func (o *UpdateOperator) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	if err := o.writeOperator(dw); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

// writeOperator writes {"$op": {"path": value, ...}} into an open document,
// so the update root can lay all operator kinds side by side.
func (o *UpdateOperator) writeOperator(dw bson.DocumentWriter) error {
	evw, err := dw.WriteDocumentElement(o.op)
	if err != nil {
		return err
	}
	odw, err := evw.WriteDocument()
	if err != nil {
		return err
	}
	for _, a := range o.assignments {
		avw, err := odw.WriteDocumentElement(a.path.String())
		if err != nil {
			return err
		}
		if err := avw.WriteValue(a.value); err != nil {
			return err
		}
	}
	return odw.WriteDocumentEnd()
}
