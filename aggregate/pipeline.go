// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package aggregate

import (
	"fmt"

	"github.com/ikmak/mongokit/bson"
	"github.com/ikmak/mongokit/query"
)

// Pipeline is an ordered list of aggregation stages. A Pipeline value is
// immutable: every stage method returns a new Pipeline extending the
// receiver, so a common prefix can be branched into several pipelines
// without copying. The zero Pipeline is empty and ready to use.
//
//	p := aggregate.NewPipeline().
//		Match(query.Filter(query.Gt(query.Field("age"), 18))).
//		Limit(10)
type Pipeline struct {
	tail *chainLink
}

// chainLink links a stage to the stages before it. Serialization walks the
// chain tail to head and reverses.
type chainLink struct {
	prev  *chainLink
	stage stageNode
}

type stageNode interface {
	writeStage(vw bson.ValueWriter) error
}

// NewPipeline creates an empty pipeline.
func NewPipeline() Pipeline {
	return Pipeline{}
}

func (p Pipeline) append(s stageNode) Pipeline {
	return Pipeline{tail: &chainLink{prev: p.tail, stage: s}}
}

// Len counts the pipeline's stages.
func (p Pipeline) Len() int {
	n := 0
	for l := p.tail; l != nil; l = l.prev {
		n++
	}
	return n
}

// Match appends a $match stage. The filter is frozen.
func (p Pipeline) Match(filter query.Node) Pipeline {
	filter.Freeze()
	return p.append(matchStage{filter: filter})
}

// Project appends a $project stage.
func (p Pipeline) Project(projection *Projection) Pipeline {
	return p.append(projectStage{projection: projection})
}

// Set appends a $set stage computing the given fields.
func (p Pipeline) Set(fields ...FieldValue) Pipeline {
	return p.append(fieldsStage{name: "$set", fields: fields})
}

// AddFields appends an $addFields stage. It is the older spelling of $set.
func (p Pipeline) AddFields(fields ...FieldValue) Pipeline {
	return p.append(fieldsStage{name: "$addFields", fields: fields})
}

// Unset appends an $unset stage removing the given fields.
func (p Pipeline) Unset(paths ...*query.Path) Pipeline {
	return p.append(unsetStage{paths: paths})
}

// Sort appends a $sort stage. The specification is frozen.
func (p Pipeline) Sort(s *query.Sort) Pipeline {
	s.Freeze()
	return p.append(sortStage{sort: s})
}

// Limit appends a $limit stage.
func (p Pipeline) Limit(n int64) Pipeline {
	return p.append(int64Stage{name: "$limit", n: n})
}

// Skip appends a $skip stage.
func (p Pipeline) Skip(n int64) Pipeline {
	return p.append(int64Stage{name: "$skip", n: n})
}

// Sample appends a $sample stage selecting n documents at random.
func (p Pipeline) Sample(n int64) Pipeline {
	return p.append(sampleStage{n: n})
}

// Count appends a $count stage storing the document count in the given
// field. The field must be a root-level name; $count cannot write into a
// nested or indexed path, and Count panics when given one.
func (p Pipeline) Count(path *query.Path) Pipeline {
	if !path.IsRootField() {
		panic(fmt.Sprintf("aggregate: $count output field %q must be a root-level field name", path.String()))
	}
	return p.append(countStage{field: path.Name()})
}

// UnionWith appends a $unionWith stage merging in documents of another
// collection, optionally transformed by a nested pipeline.
func (p Pipeline) UnionWith(coll string, pipeline Pipeline) Pipeline {
	return p.append(unionWithStage{coll: coll, pipeline: pipeline})
}

// Lookup appends a $lookup stage performing an equality join against
// another collection, storing the matches as an array in the as field.
func (p Pipeline) Lookup(from string, localField, foreignField *query.Path, as *query.Path) Pipeline {
	return p.append(lookupStage{
		from:         from,
		localField:   localField,
		foreignField: foreignField,
		as:           as,
	})
}

// Group appends a $group stage keyed by id. Pass a Literal null id to fold
// the whole input into one group.
func (p Pipeline) Group(id Expression, fields ...GroupField) Pipeline {
	return p.append(groupStage{id: id.tree(), fields: fields})
}

// SortByCount appends a $sortByCount stage grouping by the expression and
// sorting the groups by descending count.
func (p Pipeline) SortByCount(expr Expression) Pipeline {
	return p.append(exprStage{name: "$sortByCount", expr: expr.tree()})
}

// ReplaceRoot appends a $replaceRoot stage promoting the expression to the
// document root.
func (p Pipeline) ReplaceRoot(expr Expression) Pipeline {
	return p.append(replaceRootStage{expr: expr.tree()})
}

// WriteTo serializes the pipeline as an array of stage documents.
func (p Pipeline) WriteTo(vw bson.ValueWriter) error {
	stages := make([]stageNode, 0, p.Len())
	for l := p.tail; l != nil; l = l.prev {
		stages = append(stages, l.stage)
	}
	for i, j := 0, len(stages)-1; i < j; i, j = i+1, j-1 {
		stages[i], stages[j] = stages[j], stages[i]
	}

	aw, err := vw.WriteArray()
	if err != nil {
		return err
	}
	for _, s := range stages {
		svw, err := aw.WriteArrayElement()
		if err != nil {
			return err
		}
		if err := s.writeStage(svw); err != nil {
			return err
		}
	}
	return aw.WriteArrayEnd()
}

// Array materializes the pipeline as a BSON array.
func (p Pipeline) Array() (*bson.Array, error) {
	doc := bson.NewDocument()
	vw, err := bson.NewDocumentValueWriter(doc)
	if err != nil {
		return nil, err
	}
	dw, err := vw.WriteDocument()
	if err != nil {
		return nil, err
	}
	evw, err := dw.WriteDocumentElement("pipeline")
	if err != nil {
		return nil, err
	}
	if err := p.WriteTo(evw); err != nil {
		return nil, err
	}
	if err := dw.WriteDocumentEnd(); err != nil {
		return nil, err
	}
	v, err := doc.LookupErr("pipeline")
	if err != nil {
		return nil, err
	}
	return v.Array(), nil
}

// String renders the pipeline as extended JSON for debugging.
func (p Pipeline) String() string {
	arr, err := p.Array()
	if err != nil {
		return "aggregate: <" + err.Error() + ">"
	}
	return arr.String()
}

// FieldValue is a single computed field of a $set, $addFields or $project
// stage.
type FieldValue struct {
	path *query.Path
	expr exprNode
}

// Assign pairs a field path with the expression computing it.
func Assign[R, T any](path *query.Path, value Value[R, T]) FieldValue {
	return FieldValue{path: path, expr: value.node}
}

// GroupField is a single accumulated field of a $group stage.
type GroupField struct {
	name string
	expr exprNode
}

// Accumulate pairs an output field name with its accumulator expression.
func Accumulate(name string, acc Expression) GroupField {
	return GroupField{name: name, expr: acc.tree()}
}

// Projection is an ordered $project specification mixing inclusions,
// exclusions and computed fields.
type Projection struct {
	entries []projectionEntry
}

type projectionEntry struct {
	path *query.Path
	// expr is nil for include/exclude entries.
	expr    exprNode
	include bool
}

// NewProjection creates an empty projection.
func NewProjection() *Projection {
	return &Projection{}
}

// Include adds a field to the projection.
func (pr *Projection) Include(path *query.Path) *Projection {
	pr.entries = append(pr.entries, projectionEntry{path: path, include: true})
	return pr
}

// Exclude removes a field from the projection. Mixing exclusions with
// inclusions is only valid for the _id field.
func (pr *Projection) Exclude(path *query.Path) *Projection {
	pr.entries = append(pr.entries, projectionEntry{path: path, include: false})
	return pr
}

// Computed adds a field computed from an expression.
func (pr *Projection) Computed(path *query.Path, expr Expression) *Projection {
	pr.entries = append(pr.entries, projectionEntry{path: path, expr: expr.tree()})
	return pr
}

// WriteTo serializes the projection as a specification document, for use
// outside a pipeline such as in a find command.
func (pr *Projection) WriteTo(vw bson.ValueWriter) error {
	return pr.write(vw)
}

func (pr *Projection) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	for _, e := range pr.entries {
		evw, err := dw.WriteDocumentElement(e.path.String())
		if err != nil {
			return err
		}
		switch {
		case e.expr != nil:
			if err := writeExpr(evw, e.expr); err != nil {
				return err
			}
		case e.include:
			if err := evw.WriteInt32(1); err != nil {
				return err
			}
		default:
			if err := evw.WriteInt32(0); err != nil {
				return err
			}
		}
	}
	return dw.WriteDocumentEnd()
}

// writeStageDoc opens {"$name": and hands the element writer to fn.
func writeStageDoc(vw bson.ValueWriter, name string, fn func(bson.ValueWriter) error) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	evw, err := dw.WriteDocumentElement(name)
	if err != nil {
		return err
	}
	if err := fn(evw); err != nil {
		return err
	}
	return dw.WriteDocumentEnd()
}

type matchStage struct {
	filter query.Node
}

func (s matchStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$match", func(evw bson.ValueWriter) error {
		return query.WriteTo(s.filter, evw)
	})
}

type projectStage struct {
	projection *Projection
}

func (s projectStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$project", s.projection.write)
}

type fieldsStage struct {
	name   string
	fields []FieldValue
}

func (s fieldsStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, s.name, func(evw bson.ValueWriter) error {
		dw, err := evw.WriteDocument()
		if err != nil {
			return err
		}
		for _, f := range s.fields {
			fvw, err := dw.WriteDocumentElement(f.path.String())
			if err != nil {
				return err
			}
			if err := writeExpr(fvw, f.expr); err != nil {
				return err
			}
		}
		return dw.WriteDocumentEnd()
	})
}

type unsetStage struct {
	paths []*query.Path
}

func (s unsetStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$unset", func(evw bson.ValueWriter) error {
		if len(s.paths) == 1 {
			return evw.WriteString(s.paths[0].String())
		}
		aw, err := evw.WriteArray()
		if err != nil {
			return err
		}
		for _, p := range s.paths {
			pvw, err := aw.WriteArrayElement()
			if err != nil {
				return err
			}
			if err := pvw.WriteString(p.String()); err != nil {
				return err
			}
		}
		return aw.WriteArrayEnd()
	})
}

type sortStage struct {
	sort *query.Sort
}

func (s sortStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$sort", func(evw bson.ValueWriter) error {
		return query.WriteTo(s.sort, evw)
	})
}

type int64Stage struct {
	name string
	n    int64
}

func (s int64Stage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, s.name, func(evw bson.ValueWriter) error {
		return evw.WriteInt64(s.n)
	})
}

type sampleStage struct {
	n int64
}

func (s sampleStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$sample", func(evw bson.ValueWriter) error {
		dw, err := evw.WriteDocument()
		if err != nil {
			return err
		}
		svw, err := dw.WriteDocumentElement("size")
		if err != nil {
			return err
		}
		if err := svw.WriteInt64(s.n); err != nil {
			return err
		}
		return dw.WriteDocumentEnd()
	})
}

type countStage struct {
	field string
}

func (s countStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$count", func(evw bson.ValueWriter) error {
		return evw.WriteString(s.field)
	})
}

type unionWithStage struct {
	coll     string
	pipeline Pipeline
}

func (s unionWithStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$unionWith", func(evw bson.ValueWriter) error {
		dw, err := evw.WriteDocument()
		if err != nil {
			return err
		}
		cvw, err := dw.WriteDocumentElement("coll")
		if err != nil {
			return err
		}
		if err := cvw.WriteString(s.coll); err != nil {
			return err
		}
		if s.pipeline.tail != nil {
			pvw, err := dw.WriteDocumentElement("pipeline")
			if err != nil {
				return err
			}
			if err := s.pipeline.WriteTo(pvw); err != nil {
				return err
			}
		}
		return dw.WriteDocumentEnd()
	})
}

type lookupStage struct {
	from         string
	localField   *query.Path
	foreignField *query.Path
	as           *query.Path
}

func (s lookupStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$lookup", func(evw bson.ValueWriter) error {
		dw, err := evw.WriteDocument()
		if err != nil {
			return err
		}
		for _, f := range []struct {
			key, value string
		}{
			{"from", s.from},
			{"localField", s.localField.String()},
			{"foreignField", s.foreignField.String()},
			{"as", s.as.String()},
		} {
			fvw, err := dw.WriteDocumentElement(f.key)
			if err != nil {
				return err
			}
			if err := fvw.WriteString(f.value); err != nil {
				return err
			}
		}
		return dw.WriteDocumentEnd()
	})
}

type groupStage struct {
	id     exprNode
	fields []GroupField
}

func (s groupStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$group", func(evw bson.ValueWriter) error {
		dw, err := evw.WriteDocument()
		if err != nil {
			return err
		}
		ivw, err := dw.WriteDocumentElement("_id")
		if err != nil {
			return err
		}
		if err := writeExpr(ivw, s.id); err != nil {
			return err
		}
		for _, f := range s.fields {
			fvw, err := dw.WriteDocumentElement(f.name)
			if err != nil {
				return err
			}
			if err := writeExpr(fvw, f.expr); err != nil {
				return err
			}
		}
		return dw.WriteDocumentEnd()
	})
}

type exprStage struct {
	name string
	expr exprNode
}

func (s exprStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, s.name, func(evw bson.ValueWriter) error {
		return writeExpr(evw, s.expr)
	})
}

type replaceRootStage struct {
	expr exprNode
}

func (s replaceRootStage) writeStage(vw bson.ValueWriter) error {
	return writeStageDoc(vw, "$replaceRoot", func(evw bson.ValueWriter) error {
		dw, err := evw.WriteDocument()
		if err != nil {
			return err
		}
		nvw, err := dw.WriteDocumentElement("newRoot")
		if err != nil {
			return err
		}
		if err := writeExpr(nvw, s.expr); err != nil {
			return err
		}
		return dw.WriteDocumentEnd()
	})
}
