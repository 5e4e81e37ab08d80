// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import "github.com/ikmak/mongokit/bson"

// Sort is a sort specification: an ordered list of (path, direction) pairs
// serialized as {"path": 1, "other": -1}. It is shared by find options and
// the $sort aggregation stage.
type Sort struct {
	nodeState
	keys []sortKey
}

type sortKey struct {
	path      *Path
	direction int32
}

// NewSort creates an empty sort specification.
func NewSort() *Sort {
	return &Sort{}
}

// Ascending adds an ascending sort key.
func (s *Sort) Ascending(path *Path) *Sort {
	return s.key(path, 1)
}

// Descending adds a descending sort key.
func (s *Sort) Descending(path *Path) *Sort {
	return s.key(path, -1)
}

func (s *Sort) key(path *Path, direction int32) *Sort {
	s.mustBeMutable()
	s.keys = append(s.keys, sortKey{path: path, direction: direction})
	return s
}

// Simplify returns nil for an empty specification, otherwise the
// specification itself.
func (s *Sort) Simplify() Node {
	if len(s.keys) == 0 {
		return nil
	}
	return s
}

func (s *Sort) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	for _, k := range s.keys {
		evw, err := dw.WriteDocumentElement(k.path.String())
		if err != nil {
			return err
		}
		if err := evw.WriteInt32(k.direction); err != nil {
			return err
		}
	}
	return dw.WriteDocumentEnd()
}
