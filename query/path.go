// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import (
	"fmt"
	"strconv"
	"strings"
)

type pathKind int

const (
	pathField pathKind = iota
	pathIndexed
	pathPositional
	pathAllPositional
)

// Path locates a field inside a document, possibly nested, as a chain of
// segments linked root-first. Paths are immutable: every method returns a new
// Path that shares the receiver as its prefix, so multiple paths can extend
// the same chain safely.
//
// The rendered form joins the segment forms with dots: a field renders as
// its name, an index as "$3", the positional operator as "$" and the
// all-positional operator as "$[]", e.g. "a.b.$0".
type Path struct {
	parent *Path
	kind   pathKind
	name   string
	index  int
}

// Field creates a root-level field path. The name must not contain an
// apostrophe.
func Field(name string) *Path {
	checkFieldName(name)
	return &Path{kind: pathField, name: name}
}

// Field appends a nested field segment.
func (p *Path) Field(name string) *Path {
	checkFieldName(name)
	return &Path{parent: p, kind: pathField, name: name}
}

// At appends an index segment. The index must not be negative.
func (p *Path) At(index int) *Path {
	if index < 0 {
		panic(fmt.Sprintf("query: path index %d must not be negative", index))
	}
	return &Path{parent: p, kind: pathIndexed, index: index}
}

// Positional appends the "$" positional operator segment.
func (p *Path) Positional() *Path {
	return &Path{parent: p, kind: pathPositional}
}

// AllPositional appends the "$[]" all-positional operator segment.
func (p *Path) AllPositional() *Path {
	return &Path{parent: p, kind: pathAllPositional}
}

// IsRootField reports whether the path is a single root-level field segment
// with no nesting or indexing.
func (p *Path) IsRootField() bool {
	return p.parent == nil && p.kind == pathField
}

// Name returns the field name of the path's last segment. It is empty for
// non-field segments.
func (p *Path) Name() string {
	return p.name
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

// String renders the path in dotted form, root segment first.
func (p *Path) String() string {
	var sb strings.Builder
	p.render(&sb)
	return sb.String()
}

func (p *Path) render(sb *strings.Builder) {
	if p.parent != nil {
		p.parent.render(sb)
		sb.WriteByte('.')
	}
	switch p.kind {
	case pathField:
		sb.WriteString(p.name)
	case pathIndexed:
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(p.index))
	case pathPositional:
		sb.WriteByte('$')
	case pathAllPositional:
		sb.WriteString("$[]")
	}
}

func checkFieldName(name string) {
	if strings.ContainsRune(name, '\'') {
		panic(fmt.Sprintf("query: field name %q must not contain an apostrophe", name))
	}
}
