// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

// Validate checks that every required param of s is present according to
// has, which is asked with normalized names. All missing attributes are
// reported in declaration order, using their build-file spelling. Optional
// params impose nothing. Validate has no side effects.
func Validate(s *Schema, has func(name string) bool) error {
	var missing []string
	for _, name := range s.order {
		p := s.params[name]
		if p.Required && !has(p.Name) {
			missing = append(missing, p.PythonName)
		}
	}
	if len(missing) > 0 {
		return &AttributeError{
			Kind:       ErrMissingRequiredAttribute,
			RuleType:   s.ruleType,
			Attributes: missing,
		}
	}
	return nil
}
