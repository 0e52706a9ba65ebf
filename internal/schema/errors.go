// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnrecognizedAttribute matches errors for attributes that are neither
	// declared by the schema nor implicit.
	ErrUnrecognizedAttribute = errors.New("unrecognized attribute")

	// ErrMissingRequiredAttribute matches errors for required attributes
	// that were not supplied.
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
)

// AttributeError reports a rule invocation whose attributes do not satisfy
// the rule's schema. Kind is one of the sentinel errors above.
type AttributeError struct {
	Kind       error
	RuleType   string
	Attributes []string
}

// Error implements the error interface.
func (e *AttributeError) Error() string {
	names := strings.Join(e.Attributes, ", ")
	switch e.Kind {
	case ErrUnrecognizedAttribute:
		return fmt.Sprintf("%s: %s is not a recognized attribute", e.RuleType, names)
	case ErrMissingRequiredAttribute:
		return fmt.Sprintf("%s: %s is expected but not provided", e.RuleType, names)
	default:
		return fmt.Sprintf("%s: invalid attributes %s", e.RuleType, names)
	}
}

// Is lets errors.Is match the error against its Kind.
func (e *AttributeError) Is(target error) bool {
	return target == e.Kind
}
