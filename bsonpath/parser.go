// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonpath

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError describes a syntax error in a path expression, annotated with
// the byte offset at which scanning failed.
type ParseError struct {
	Offset  int
	Message string
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("bsonpath: %s at position %d", pe.Message, pe.Offset)
}

// Parse scans a path expression into a Path. The grammar is a single pass
// over four segment forms after the leading "$":
//
//	.name        shorthand field; name starts with a letter, underscore or
//	             non-ASCII character and continues with those or digits
//	['literal']  bracketed field, apostrophe quoted
//	["literal"]  bracketed field, double-quote quoted
//	[digits]     array index
//
// Any other input fails with a position-annotated ParseError.
func Parse(s string) (*Path, error) {
	p := &parser{input: s}
	return p.parse()
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parse() (*Path, error) {
	if p.input == "" || p.input[0] != '$' {
		return nil, &ParseError{Offset: 0, Message: "path must start with '$'"}
	}
	p.pos = 1

	path := Root()
	for p.pos < len(p.input) {
		var err error
		switch p.input[p.pos] {
		case '.':
			path, err = p.shorthandField(path)
		case '[':
			path, err = p.bracketSegment(path)
		default:
			err = &ParseError{Offset: p.pos, Message: fmt.Sprintf("unexpected character %q, want '.' or '['", p.input[p.pos])}
		}
		if err != nil {
			return nil, err
		}
	}
	return path, nil
}

func (p *parser) shorthandField(parent *Path) (*Path, error) {
	p.pos++ // consume '.'
	start := p.pos
	first := true
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !isNameChar(r, first) {
			break
		}
		first = false
		p.pos += size
	}
	if p.pos == start {
		return nil, &ParseError{Offset: start, Message: "expected a field name after '.'"}
	}
	return parent.Field(p.input[start:p.pos]), nil
}

func (p *parser) bracketSegment(parent *Path) (*Path, error) {
	p.pos++ // consume '['
	if p.pos >= len(p.input) {
		return nil, &ParseError{Offset: p.pos, Message: "unterminated '[' segment"}
	}

	switch c := p.input[p.pos]; {
	case c == '\'' || c == '"':
		return p.quotedField(parent, c)
	case c >= '0' && c <= '9':
		return p.indexSegment(parent)
	default:
		return nil, &ParseError{Offset: p.pos, Message: fmt.Sprintf("unexpected character %q, want a quote or a digit", c)}
	}
}

func (p *parser) quotedField(parent *Path, quote byte) (*Path, error) {
	p.pos++ // consume the opening quote
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.input) {
		return nil, &ParseError{Offset: start, Message: fmt.Sprintf("unterminated %c-quoted field name", quote)}
	}
	name := p.input[start:p.pos]
	p.pos++ // consume the closing quote
	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return nil, &ParseError{Offset: p.pos, Message: "expected ']' after quoted field name"}
	}
	p.pos++
	// A double-quoted name can carry an apostrophe, which Field rejects.
	if i := strings.IndexByte(name, '\''); i >= 0 {
		return nil, &ParseError{Offset: start + i, Message: "field name must not contain an apostrophe"}
	}
	return parent.Field(name), nil
}

func (p *parser) indexSegment(parent *Path) (*Path, error) {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return nil, &ParseError{Offset: p.pos, Message: "expected ']' after index"}
	}
	index, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return nil, &ParseError{Offset: start, Message: fmt.Sprintf("invalid index %q", p.input[start:p.pos])}
	}
	p.pos++
	return parent.Index(index), nil
}
