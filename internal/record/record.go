// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package record holds the output of a build file evaluation: one ordered
// attribute map per rule invocation, collected in execution order.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Keys every record carries ahead of the rule's own attributes.
const (
	BasePathKey = "buck.base_path"
	TypeKey     = "buck.type"
)

// Record is an insertion-ordered attribute map produced by one rule
// invocation. It becomes immutable once appended to a Collection.
type Record struct {
	keys   []string
	values map[string]any
	frozen bool
}

// New returns a record seeded with the two implicit keys.
func New(basePath, ruleType string) *Record {
	r := &Record{values: make(map[string]any, 8)}
	r.Set(BasePathKey, basePath)
	r.Set(TypeKey, ruleType)
	return r
}

// Set stores value under key. Overwriting keeps the key's original position.
// Setting on a frozen record panics.
func (r *Record) Set(key string, value any) {
	if r.frozen {
		panic(fmt.Sprintf("record: Set(%q) on a frozen record", key))
	}
	if r.values == nil {
		r.values = make(map[string]any, 8)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return len(r.keys)
}

// RuleType returns the value of the buck.type key.
func (r *Record) RuleType() string {
	s, _ := r.values[TypeKey].(string)
	return s
}

// BasePath returns the value of the buck.base_path key.
func (r *Record) BasePath() string {
	s, _ := r.values[BasePathKey].(string)
	return s
}

// Map returns an unordered shallow copy of the attributes.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Frozen reports whether the record has been committed to a collection.
func (r *Record) Frozen() bool {
	return r.frozen
}

// MarshalJSON writes the record as a JSON object preserving key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the record as a YAML mapping preserving key order.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		var valNode yaml.Node
		if err := valNode.Encode(r.values[k]); err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&valNode,
		)
	}
	return node, nil
}
