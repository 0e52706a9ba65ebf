// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Param describes a single declared attribute of a rule type.
type Param struct {
	// Name is the normalized identifier, e.g. "exportedDeps".
	Name string

	// PythonName is the spelling used in build files, e.g. "exported_deps".
	PythonName string

	// Required is true when the attribute must be supplied.
	Required bool

	// Type is the value type the attribute is expected to hold.
	// cty.DynamicPseudoType means any.
	Type cty.Type

	Description string
}

// Schema is the immutable attribute contract of one rule type.
type Schema struct {
	ruleType string
	params   map[string]Param
	order    []string
}

// NewSchema builds a schema for ruleType. Params without a PythonName get one
// derived from Name, params without a Type accept any value. Declaring the
// same normalized name twice is an error.
func NewSchema(ruleType string, params ...Param) (*Schema, error) {
	if ruleType == "" {
		return nil, fmt.Errorf("rule type name must not be empty")
	}

	s := &Schema{
		ruleType: ruleType,
		params:   make(map[string]Param, len(params)),
		order:    make([]string, 0, len(params)),
	}
	for _, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("rule '%s': attribute with empty name", ruleType)
		}
		if _, exists := s.params[p.Name]; exists {
			return nil, fmt.Errorf("rule '%s': attribute '%s' declared more than once", ruleType, p.Name)
		}
		if p.PythonName == "" {
			p.PythonName = ToLowerUnderscore(p.Name)
		}
		if p.Type == cty.NilType {
			p.Type = cty.DynamicPseudoType
		}
		s.params[p.Name] = p
		s.order = append(s.order, p.Name)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for tests and
// statically known schemas.
func MustSchema(ruleType string, params ...Param) *Schema {
	s, err := NewSchema(ruleType, params...)
	if err != nil {
		panic(err)
	}
	return s
}

// RuleType returns the name of the rule type this schema belongs to.
func (s *Schema) RuleType() string {
	return s.ruleType
}

// Lookup returns the param declared under the normalized name.
func (s *Schema) Lookup(name string) (Param, bool) {
	p, ok := s.params[name]
	return p, ok
}

// Params returns all declared params in declaration order.
func (s *Schema) Params() []Param {
	out := make([]Param, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.params[name])
	}
	return out
}

// Required returns the required params in declaration order.
func (s *Schema) Required() []Param {
	var out []Param
	for _, name := range s.order {
		if p := s.params[name]; p.Required {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of declared params.
func (s *Schema) Len() int {
	return len(s.order)
}
