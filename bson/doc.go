// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a library for reading, writing, and manipulating BSON. The
// central types are Document, Array, and Value, an in-memory tree
// representation of a BSON document that is independent of the wire format.
//
// Values are constructed through the VC namespace, e.g. bson.VC.Int32(5), and
// assembled into documents and arrays:
//
//	doc := bson.NewDocument().
//		Set("foo", bson.VC.String("bar")).
//		Set("baz", bson.VC.Int64(204))
//
// Marshal and Unmarshal convert between the tree and standard BSON bytes.
// The ValueWriter, DocumentWriter and ArrayWriter interfaces provide a
// streaming push API over the same model, and ValueReader, DocumentReader
// and ArrayReader the corresponding pull API. Two documents compare Equal
// when they hold equal values under the same keys; field order is not part
// of document equality, while array equality is order-sensitive.
package bson
