// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsonpath addresses values inside a BSON document with a small,
// RFC 9535-flavored path language. A Path is built by chaining Field and
// Index segments from Root, or parsed from its string form:
//
//	p := bsonpath.Root().Field("store").Field("book").Index(0).Field("title")
//	p, err := bsonpath.Parse("$.store.book[0].title")
//
// Selection walks a reader lazily: elements whose runtime shape does not
// match a segment are dropped rather than reported as errors, so a path can
// be applied to heterogeneous arrays.
package bsonpath

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode"

	"github.com/ikmak/mongokit/bson"
	"github.com/ikmak/mongokit/bson/bsontype"
)

// ErrNoElement indicates that SelectFirst matched nothing.
var ErrNoElement = errors.New("bsonpath: no element matches the path")

type segmentKind int

const (
	segmentRoot segmentKind = iota
	segmentField
	segmentItem
)

// Path is one segment of a selection path, linked to its parent. Paths are
// immutable: Field and Index return a new Path sharing the receiver as a
// prefix, so several paths can extend the same chain.
type Path struct {
	parent *Path
	kind   segmentKind
	name   string
	index  int
}

var root = &Path{kind: segmentRoot}

// Root returns the path addressing the document itself, rendered as "$".
func Root() *Path {
	return root
}

// Field returns the path addressing the named field of the documents p
// selects. The name must not contain an apostrophe; the bracketed rendering
// quotes with apostrophes and does not escape.
func (p *Path) Field(name string) *Path {
	if strings.ContainsRune(name, '\'') {
		panic(fmt.Sprintf("bsonpath: field name %q must not contain an apostrophe", name))
	}
	return &Path{parent: p, kind: segmentField, name: name}
}

// Index returns the path addressing the i-th element of the arrays p selects.
// The index must not be negative.
func (p *Path) Index(i int) *Path {
	if i < 0 {
		panic(fmt.Sprintf("bsonpath: index %d must not be negative", i))
	}
	return &Path{parent: p, kind: segmentItem, index: i}
}

// Equal reports whether two paths have the same segment chain.
func (p *Path) Equal(other *Path) bool {
	for p != nil && other != nil {
		if p.kind != other.kind || p.name != other.name || p.index != other.index {
			return false
		}
		p, other = p.parent, other.parent
	}
	return p == nil && other == nil
}

// String renders the path in its parseable form, root first. Fields whose
// names fit the shorthand grammar render as ".name", all others as
// "['name']"; Parse accepts both, so Parse(p.String()) reproduces p.
func (p *Path) String() string {
	var sb strings.Builder
	p.render(&sb)
	return sb.String()
}

func (p *Path) render(sb *strings.Builder) {
	switch p.kind {
	case segmentRoot:
		sb.WriteByte('$')
	case segmentField:
		p.parent.render(sb)
		if isShorthandName(p.name) {
			sb.WriteByte('.')
			sb.WriteString(p.name)
		} else {
			sb.WriteString("['")
			sb.WriteString(p.name)
			sb.WriteString("']")
		}
	case segmentItem:
		p.parent.render(sb)
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(p.index))
		sb.WriteByte(']')
	}
}

func isShorthandName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if !isNameChar(r, i == 0) {
			return false
		}
	}
	return true
}

func isNameChar(r rune, first bool) bool {
	if unicode.IsLetter(r) || r == '_' || r >= 0x80 {
		return true
	}
	return !first && r >= '0' && r <= '9'
}

// Select returns the lazy sequence of readers the path addresses within r.
// Each segment filters its parent's results by runtime type and descends;
// shape mismatches and missing fields are dropped, not errors. The sequence
// is restartable: every iteration walks the reader from scratch.
func (p *Path) Select(r bson.ValueReader) iter.Seq[bson.ValueReader] {
	switch p.kind {
	case segmentRoot:
		return func(yield func(bson.ValueReader) bool) {
			yield(r)
		}
	case segmentField:
		return func(yield func(bson.ValueReader) bool) {
			for parent := range p.parent.Select(r) {
				if parent.Type() != bsontype.EmbeddedDocument {
					continue
				}
				dr, err := parent.ReadDocument()
				if err != nil {
					continue
				}
				vr, err := dr.Read(p.name)
				if err != nil {
					continue
				}
				if !yield(vr) {
					return
				}
			}
		}
	default: // segmentItem
		return func(yield func(bson.ValueReader) bool) {
			for parent := range p.parent.Select(r) {
				if parent.Type() != bsontype.Array {
					continue
				}
				ar, err := parent.ReadArray()
				if err != nil {
					continue
				}
				vr, err := ar.Read(p.index)
				if err != nil {
					continue
				}
				if !yield(vr) {
					return
				}
			}
		}
	}
}

// SelectFirst returns the first reader the path addresses within r, or
// ErrNoElement when the path matches nothing.
func (p *Path) SelectFirst(r bson.ValueReader) (bson.ValueReader, error) {
	for vr := range p.Select(r) {
		return vr, nil
	}
	return nil, ErrNoElement
}

// SelectDocument is a convenience for selecting within a document rather
// than a value.
func (p *Path) SelectDocument(d *bson.Document) iter.Seq[bson.ValueReader] {
	return p.Select(bson.NewValueReader(bson.VC.Document(d)))
}
