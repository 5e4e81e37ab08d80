// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongo

import (
	"time"

	"github.com/ikmak/mongokit/aggregate"
	"github.com/ikmak/mongokit/bson"
	"github.com/ikmak/mongokit/query"
)

// Option adjusts a command document before it is returned to the caller.
// Options are applied in the order given; an option repeated with a new
// value overwrites the earlier one, so the last write wins.
type Option interface {
	apply(t *target) error
}

// target separates the command document from the statement document of
// multi-statement commands (update, delete), so per-statement options land
// in the right place. stmt is nil for single-document commands.
type target struct {
	cmd  *bson.Document
	stmt *bson.Document
}

func applyOptions(t *target, opts []Option) error {
	for _, o := range opts {
		if err := o.apply(t); err != nil {
			return err
		}
	}
	return nil
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(t *target) error

func (f optionFunc) apply(t *target) error {
	return f(t)
}

func cmdValue(key string, v *bson.Value) Option {
	return optionFunc(func(t *target) error {
		t.cmd.Set(key, v)
		return nil
	})
}

// Limit caps the number of documents returned.
func Limit(n int64) Option {
	return cmdValue("limit", bson.VC.Int64(n))
}

// Skip skips the first n matching documents.
func Skip(n int64) Option {
	return cmdValue("skip", bson.VC.Int64(n))
}

// BatchSize sets the number of documents per cursor batch.
func BatchSize(n int32) Option {
	return cmdValue("batchSize", bson.VC.Int32(n))
}

// MaxTime bounds the server-side execution time. Sub-millisecond durations
// round down.
func MaxTime(d time.Duration) Option {
	return cmdValue("maxTimeMS", bson.VC.Int64(int64(d/time.Millisecond)))
}

// Comment attaches a comment to the command for the profiler.
func Comment(c string) Option {
	return cmdValue("comment", bson.VC.String(c))
}

// SortBy orders the result set. The specification is frozen.
func SortBy(s *query.Sort) Option {
	return optionFunc(func(t *target) error {
		doc, err := query.MarshalDocument(s)
		if err != nil {
			return err
		}
		t.cmd.Set("sort", bson.VC.Document(doc))
		return nil
	})
}

// Project limits the fields returned for each document.
func Project(p *aggregate.Projection) Option {
	return optionFunc(func(t *target) error {
		doc := bson.NewDocument()
		vw, err := bson.NewDocumentValueWriter(doc)
		if err != nil {
			return err
		}
		if err := p.WriteTo(vw); err != nil {
			return err
		}
		t.cmd.Set("projection", bson.VC.Document(doc))
		return nil
	})
}

// Hint forces the query planner to use the named index.
func Hint(index string) Option {
	return cmdValue("hint", bson.VC.String(index))
}

// Collation sets the locale-aware string comparison rules. A strength of
// zero leaves the server default in place.
func Collation(locale string, strength int32) Option {
	return optionFunc(func(t *target) error {
		doc := bson.NewDocument()
		doc.Append("locale", bson.VC.String(locale))
		if strength != 0 {
			doc.Append("strength", bson.VC.Int32(strength))
		}
		t.cmd.Set("collation", bson.VC.Document(doc))
		return nil
	})
}

// Upsert inserts the document when no document matches the update filter.
// It applies to the update statement, not the command.
func Upsert() Option {
	return optionFunc(func(t *target) error {
		if t.stmt == nil {
			return nil
		}
		t.stmt.Set("upsert", bson.VC.Boolean(true))
		return nil
	})
}

// Ordered stops a multi-statement command at the first error when true, the
// server default, or continues past errors when false.
func Ordered(ordered bool) Option {
	return cmdValue("ordered", bson.VC.Boolean(ordered))
}

// WriteConcernW requires acknowledgement from n replica set members.
func WriteConcernW(n int32) Option {
	return writeConcern(bson.VC.Int32(n))
}

// WriteConcernMajority requires acknowledgement from a majority of replica
// set members.
func WriteConcernMajority() Option {
	return writeConcern(bson.VC.String("majority"))
}

func writeConcern(w *bson.Value) Option {
	return optionFunc(func(t *target) error {
		doc := bson.NewDocument()
		doc.Append("w", w)
		t.cmd.Set("writeConcern", bson.VC.Document(doc))
		return nil
	})
}

// ReadConcern sets the read isolation level, such as "local", "majority" or
// "linearizable".
func ReadConcern(level string) Option {
	return optionFunc(func(t *target) error {
		doc := bson.NewDocument()
		doc.Append("level", bson.VC.String(level))
		t.cmd.Set("readConcern", bson.VC.Document(doc))
		return nil
	})
}

// ReadPreference routes the command to members in the given mode, such as
// "primary", "secondaryPreferred" or "nearest".
func ReadPreference(mode string) Option {
	return optionFunc(func(t *target) error {
		doc := bson.NewDocument()
		doc.Append("mode", bson.VC.String(mode))
		t.cmd.Set("$readPreference", bson.VC.Document(doc))
		return nil
	})
}
