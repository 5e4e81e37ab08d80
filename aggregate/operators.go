// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package aggregate

import (
	"github.com/ikmak/mongokit/bson"
	"github.com/ikmak/mongokit/bson/objectid"
)

// Arithmetic operators. The numeric element type flows through unchanged;
// mixing int32 and float64 operands requires an explicit conversion first.

// Add sums the operands.
func Add[R, T any](vs ...Value[R, T]) Value[R, T] {
	return wrap[R, T](variadic("$add", vs))
}

// Subtract computes a - b.
func Subtract[R, T any](a, b Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$subtract", a, b))
}

// Multiply multiplies the operands.
func Multiply[R, T any](vs ...Value[R, T]) Value[R, T] {
	return wrap[R, T](variadic("$multiply", vs))
}

// Divide computes a / b as a double.
func Divide[R, T any](a, b Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$divide", a, b))
}

// Mod computes a % b.
func Mod[R, T any](a, b Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$mod", a, b))
}

// Abs computes the absolute value.
func Abs[R, T any](v Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$abs", v))
}

// Ceil rounds up to the nearest integer.
func Ceil[R, T any](v Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$ceil", v))
}

// Floor rounds down to the nearest integer.
func Floor[R, T any](v Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$floor", v))
}

// Round rounds to the given number of decimal places.
func Round[R, T any](v Value[R, T], place Value[R, int32]) Value[R, T] {
	return wrap[R, T](newOperator("$round", v, place))
}

// Trunc truncates to the given number of decimal places.
func Trunc[R, T any](v Value[R, T], place Value[R, int32]) Value[R, T] {
	return wrap[R, T](newOperator("$trunc", v, place))
}

// Pow raises base to the given exponent.
func Pow[R, T any](base, exponent Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$pow", base, exponent))
}

// Sqrt computes the square root.
func Sqrt[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$sqrt", v))
}

// Exp raises e to the operand.
func Exp[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$exp", v))
}

// Ln computes the natural logarithm.
func Ln[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$ln", v))
}

// Log computes the logarithm in the given base.
func Log[R, T any](v, base Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$log", v, base))
}

// Log10 computes the base-10 logarithm.
func Log10[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$log10", v))
}

// Trigonometric operators, all producing doubles in radians unless converted.

// Sin computes the sine of an angle in radians.
func Sin[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$sin", v))
}

// Cos computes the cosine of an angle in radians.
func Cos[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$cos", v))
}

// Tan computes the tangent of an angle in radians.
func Tan[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$tan", v))
}

// Asin computes the inverse sine.
func Asin[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$asin", v))
}

// Acos computes the inverse cosine.
func Acos[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$acos", v))
}

// Atan computes the inverse tangent.
func Atan[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$atan", v))
}

// Atan2 computes the inverse tangent of y / x, honoring the quadrant.
func Atan2[R, T any](y, x Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$atan2", y, x))
}

// Sinh computes the hyperbolic sine.
func Sinh[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$sinh", v))
}

// Cosh computes the hyperbolic cosine.
func Cosh[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$cosh", v))
}

// Tanh computes the hyperbolic tangent.
func Tanh[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$tanh", v))
}

// DegreesToRadians converts degrees to radians.
func DegreesToRadians[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$degreesToRadians", v))
}

// RadiansToDegrees converts radians to degrees.
func RadiansToDegrees[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$radiansToDegrees", v))
}

// Comparison operators. Operands must share an element type.

// Eq reports whether the operands are equal.
func Eq[R, T any](a, b Value[R, T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$eq", a, b))
}

// Ne reports whether the operands differ.
func Ne[R, T any](a, b Value[R, T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$ne", a, b))
}

// Gt reports whether a sorts after b.
func Gt[R, T any](a, b Value[R, T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$gt", a, b))
}

// Gte reports whether a sorts after or equal to b.
func Gte[R, T any](a, b Value[R, T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$gte", a, b))
}

// Lt reports whether a sorts before b.
func Lt[R, T any](a, b Value[R, T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$lt", a, b))
}

// Lte reports whether a sorts before or equal to b.
func Lte[R, T any](a, b Value[R, T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$lte", a, b))
}

// Cmp compares the operands in BSON sort order, producing -1, 0 or 1.
func Cmp[R, T any](a, b Value[R, T]) Value[R, int32] {
	return wrap[R, int32](newOperator("$cmp", a, b))
}

// Boolean operators.

// And reports whether all operands are true.
func And[R any](vs ...Value[R, bool]) Value[R, bool] {
	return wrap[R, bool](variadic("$and", vs))
}

// Or reports whether any operand is true.
func Or[R any](vs ...Value[R, bool]) Value[R, bool] {
	return wrap[R, bool](variadic("$or", vs))
}

// Not negates the operand.
func Not[R any](v Value[R, bool]) Value[R, bool] {
	return wrap[R, bool](newOperator("$not", v))
}

// Conditional operators.

// Cond evaluates then or els depending on the condition. Both branches must
// produce the same element type.
func Cond[R, T any](cond Value[R, bool], then, els Value[R, T]) Value[R, T] {
	return wrap[R, T](docOperator{name: "$cond", fields: []docField{
		{key: "if", expr: cond.node},
		{key: "then", expr: then.node},
		{key: "else", expr: els.node},
	}})
}

// IfNull substitutes the fallback when the operand is null or missing.
func IfNull[R, T any](v, fallback Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$ifNull", v, fallback))
}

// Branch is a single case of a Switch expression.
type Branch[R, T any] struct {
	Case Value[R, bool]
	Then Value[R, T]
}

// When constructs a Switch branch.
func When[R, T any](cond Value[R, bool], then Value[R, T]) Branch[R, T] {
	return Branch[R, T]{Case: cond, Then: then}
}

// Switch evaluates the first branch whose case holds, falling back to the
// default when none does.
func Switch[R, T any](def Value[R, T], branches ...Branch[R, T]) Value[R, T] {
	elems := make([]exprNode, 0, len(branches))
	for _, b := range branches {
		elems = append(elems, docOperatorBody([]docField{
			{key: "case", expr: b.Case.node},
			{key: "then", expr: b.Then.node},
		}))
	}
	return wrap[R, T](docOperator{name: "$switch", fields: []docField{
		{key: "branches", expr: arrayExpr{elems: elems}},
		{key: "default", expr: def.node},
	}})
}

// Array operators. The []T phantom marks array-valued expressions.

// ElementAt picks the array element at the given index; negative indexes
// count from the end.
func ElementAt[R, T any](arr Value[R, []T], index Value[R, int32]) Value[R, T] {
	return wrap[R, T](newOperator("$arrayElemAt", arr, index))
}

// First picks the first array element.
func First[R, T any](arr Value[R, []T]) Value[R, T] {
	return wrap[R, T](newOperator("$first", arr))
}

// Last picks the last array element.
func Last[R, T any](arr Value[R, []T]) Value[R, T] {
	return wrap[R, T](newOperator("$last", arr))
}

// Size counts the array's elements.
func Size[R, T any](arr Value[R, []T]) Value[R, int32] {
	return wrap[R, int32](newOperator("$size", arr))
}

// ConcatArrays concatenates the operand arrays in order.
func ConcatArrays[R, T any](arrs ...Value[R, []T]) Value[R, []T] {
	return wrap[R, []T](variadic("$concatArrays", arrs))
}

// Reverse reverses the array.
func Reverse[R, T any](arr Value[R, []T]) Value[R, []T] {
	return wrap[R, []T](newOperator("$reverseArray", arr))
}

// Slice takes the first n elements, or the last -n when n is negative.
func Slice[R, T any](arr Value[R, []T], n Value[R, int32]) Value[R, []T] {
	return wrap[R, []T](newOperator("$slice", arr, n))
}

// In reports whether the value occurs in the array.
func In[R, T any](v Value[R, T], arr Value[R, []T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$in", v, arr))
}

// Filter keeps the array elements for which cond holds. Inside cond the
// current element is available as the "this" variable:
//
//	aggregate.Filter(items, aggregate.Gt(aggregate.Variable[R, int32]("this"), limit))
func Filter[R, T any](arr Value[R, []T], cond Value[R, bool]) Value[R, []T] {
	return wrap[R, []T](docOperator{name: "$filter", fields: []docField{
		{key: "input", expr: arr.node},
		{key: "cond", expr: cond.node},
	}})
}

// Map transforms each array element. Inside the transform the current
// element is available as the "this" variable.
func Map[R, T, U any](arr Value[R, []T], in Value[R, U]) Value[R, []U] {
	return wrap[R, []U](docOperator{name: "$map", fields: []docField{
		{key: "input", expr: arr.node},
		{key: "in", expr: in.node},
	}})
}

// String operators.

// Concat concatenates the operand strings.
func Concat[R any](vs ...Value[R, string]) Value[R, string] {
	return wrap[R, string](variadic("$concat", vs))
}

// ToLower lowercases the string.
func ToLower[R any](v Value[R, string]) Value[R, string] {
	return wrap[R, string](newOperator("$toLower", v))
}

// ToUpper uppercases the string.
func ToUpper[R any](v Value[R, string]) Value[R, string] {
	return wrap[R, string](newOperator("$toUpper", v))
}

// StrLen counts the string's code points.
func StrLen[R any](v Value[R, string]) Value[R, int32] {
	return wrap[R, int32](newOperator("$strLenCP", v))
}

// Substr takes count code points starting at start.
func Substr[R any](v Value[R, string], start, count Value[R, int32]) Value[R, string] {
	return wrap[R, string](newOperator("$substrCP", v, start, count))
}

// Split splits the string on the delimiter.
func Split[R any](v, delimiter Value[R, string]) Value[R, []string] {
	return wrap[R, []string](newOperator("$split", v, delimiter))
}

// Trim strips whitespace from both ends of the string.
func Trim[R any](v Value[R, string]) Value[R, string] {
	return wrap[R, string](docOperator{name: "$trim", fields: []docField{
		{key: "input", expr: v.node},
	}})
}

// LTrim strips whitespace from the start of the string.
func LTrim[R any](v Value[R, string]) Value[R, string] {
	return wrap[R, string](docOperator{name: "$ltrim", fields: []docField{
		{key: "input", expr: v.node},
	}})
}

// RTrim strips whitespace from the end of the string.
func RTrim[R any](v Value[R, string]) Value[R, string] {
	return wrap[R, string](docOperator{name: "$rtrim", fields: []docField{
		{key: "input", expr: v.node},
	}})
}

// IndexOf locates the first occurrence of the substring, -1 when absent.
func IndexOf[R any](v, sub Value[R, string]) Value[R, int32] {
	return wrap[R, int32](newOperator("$indexOfCP", v, sub))
}

// Type conversion operators.

// ToBool converts the operand to a boolean.
func ToBool[R, T any](v Value[R, T]) Value[R, bool] {
	return wrap[R, bool](newOperator("$toBool", v))
}

// ToInt converts the operand to a 32-bit integer.
func ToInt[R, T any](v Value[R, T]) Value[R, int32] {
	return wrap[R, int32](newOperator("$toInt", v))
}

// ToLong converts the operand to a 64-bit integer.
func ToLong[R, T any](v Value[R, T]) Value[R, int64] {
	return wrap[R, int64](newOperator("$toLong", v))
}

// ToDouble converts the operand to a double.
func ToDouble[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$toDouble", v))
}

// ToDecimal converts the operand to a Decimal128.
func ToDecimal[R, T any](v Value[R, T]) Value[R, bson.Decimal128] {
	return wrap[R, bson.Decimal128](newOperator("$toDecimal", v))
}

// ToStr converts the operand to a string.
func ToStr[R, T any](v Value[R, T]) Value[R, string] {
	return wrap[R, string](newOperator("$toString", v))
}

// ToDate converts the operand to a datetime.
func ToDate[R, T any](v Value[R, T]) Value[R, bson.DateTime] {
	return wrap[R, bson.DateTime](newOperator("$toDate", v))
}

// ToObjectID converts the operand to an ObjectID.
func ToObjectID[R, T any](v Value[R, T]) Value[R, objectid.ObjectID] {
	return wrap[R, objectid.ObjectID](newOperator("$toObjectId", v))
}

// Convert converts the operand to the named BSON type, substituting the
// fallback when the conversion fails or the operand is null. The shorthand
// ToX functions cover the common cases without a fallback.
func Convert[R, T, U any](v Value[R, T], to string, onError, onNull Value[R, U]) Value[R, U] {
	return wrap[R, U](docOperator{name: "$convert", fields: []docField{
		{key: "input", expr: v.node},
		{key: "to", expr: literal{value: bson.VC.String(to)}},
		{key: "onError", expr: onError.node},
		{key: "onNull", expr: onNull.node},
	}})
}

// TypeName produces the BSON type name of the operand.
func TypeName[R, T any](v Value[R, T]) Value[R, string] {
	return wrap[R, string](newOperator("$type", v))
}

// Accumulators, valid only inside $group fields.

// Sum accumulates the sum of the expression over the group.
func Sum[R, T any](v Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$sum", v))
}

// Avg accumulates the average of the expression over the group.
func Avg[R, T any](v Value[R, T]) Value[R, float64] {
	return wrap[R, float64](newOperator("$avg", v))
}

// MinOf accumulates the minimum of the expression over the group.
func MinOf[R, T any](v Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$min", v))
}

// MaxOf accumulates the maximum of the expression over the group.
func MaxOf[R, T any](v Value[R, T]) Value[R, T] {
	return wrap[R, T](newOperator("$max", v))
}

// Push accumulates every value of the expression into an array.
func Push[R, T any](v Value[R, T]) Value[R, []T] {
	return wrap[R, []T](newOperator("$push", v))
}

// AddToSet accumulates distinct values of the expression into an array.
func AddToSet[R, T any](v Value[R, T]) Value[R, []T] {
	return wrap[R, []T](newOperator("$addToSet", v))
}

// CountAll accumulates the number of documents in the group, serialized as
// {"$count": {}}.
func CountAll[R any]() Value[R, int64] {
	return wrap[R, int64](docOperator{name: "$count"})
}

func variadic[R, T any](name string, vs []Value[R, T]) operator {
	args := make([]exprNode, 0, len(vs))
	for _, v := range vs {
		args = append(args, v.node)
	}
	return operator{name: name, args: args}
}

// docOperatorBody is a bare {field: expr, ...} document without an operator
// wrapper, used for $switch branch entries.
type bareDoc struct {
	fields []docField
}

func docOperatorBody(fields []docField) bareDoc {
	return bareDoc{fields: fields}
}

func (b bareDoc) simplify() exprNode {
	fields := make([]docField, 0, len(b.fields))
	for _, f := range b.fields {
		fields = append(fields, docField{key: f.key, expr: f.expr.simplify()})
	}
	return bareDoc{fields: fields}
}

func (b bareDoc) write(vw bson.ValueWriter) error {
	dw, err := vw.WriteDocument()
	if err != nil {
		return err
	}
	for _, f := range b.fields {
		fvw, err := dw.WriteDocumentElement(f.key)
		if err != nil {
			return err
		}
		if err := f.expr.write(fvw); err != nil {
			return err
		}
	}
	return dw.WriteDocumentEnd()
}
