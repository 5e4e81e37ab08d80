// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package objectid

import "errors"

// ErrSourceExhausted is returned by a Source that has no more ObjectIDs to
// hand out. The process-wide generator never returns it.
var ErrSourceExhausted = errors.New("objectid: source exhausted")

// Source produces ObjectIDs. The default implementation generates fresh IDs;
// deterministic implementations replay a fixed sequence for tests.
type Source interface {
	NewID() (ObjectID, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (ObjectID, error)

// NewID calls f.
func (f SourceFunc) NewID() (ObjectID, error) { return f() }

// DefaultSource returns a Source backed by the process-wide generator.
func DefaultSource() Source {
	return SourceFunc(func() (ObjectID, error) { return New(), nil })
}

// FixedSource returns a Source that hands out the given IDs in order and then
// fails every subsequent call with ErrSourceExhausted.
func FixedSource(ids ...ObjectID) Source {
	remaining := append([]ObjectID(nil), ids...)
	return SourceFunc(func() (ObjectID, error) {
		if len(remaining) == 0 {
			return NilObjectID, ErrSourceExhausted
		}
		id := remaining[0]
		remaining = remaining[1:]
		return id, nil
	})
}
