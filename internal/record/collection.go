// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package record

// Collection is the append-only list of records produced while evaluating a
// single build file. It belongs to one evaluation and is not safe for
// concurrent use.
type Collection struct {
	records []*Record
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Append freezes r and adds it at the end.
func (c *Collection) Append(r *Record) {
	r.frozen = true
	c.records = append(c.records, r)
}

// Records returns the records in append order. The slice is a copy; the
// records themselves are frozen.
func (c *Collection) Records() []*Record {
	out := make([]*Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.records)
}
