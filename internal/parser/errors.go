// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package parser

import (
	"errors"
	"fmt"

	"github.com/vk/buildparse/internal/interp"
	"github.com/vk/buildparse/internal/schema"
)

// ErrorKind classifies why a build file could not be turned into records.
type ErrorKind int

const (
	// SyntaxError: the file could not be parsed into a program.
	SyntaxError ErrorKind = iota + 1
	// UnrecognizedAttribute: a rule was called with an undeclared attribute.
	UnrecognizedAttribute
	// MissingRequiredAttribute: a rule was called without a required attribute.
	MissingRequiredAttribute
	// UnknownParseError: execution failed for any other reason.
	UnknownParseError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case UnrecognizedAttribute:
		return "UnrecognizedAttribute"
	case MissingRequiredAttribute:
		return "MissingRequiredAttribute"
	case UnknownParseError:
		return "UnknownParseError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ErrUnknownParse is wrapped by every UnknownParseError.
var ErrUnknownParse = errors.New("cannot parse build file")

// ParseError is returned for every build file that fails to evaluate.
type ParseError struct {
	File string
	Kind ErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// newParseError classifies err, which came out of parsing or executing file.
func newParseError(file string, err error) *ParseError {
	var synErr *interp.SyntaxError
	switch {
	case errors.As(err, &synErr):
		return &ParseError{File: file, Kind: SyntaxError, Err: synErr}
	case errors.Is(err, schema.ErrUnrecognizedAttribute):
		return &ParseError{File: file, Kind: UnrecognizedAttribute, Err: err}
	case errors.Is(err, schema.ErrMissingRequiredAttribute):
		return &ParseError{File: file, Kind: MissingRequiredAttribute, Err: err}
	default:
		return &ParseError{File: file, Kind: UnknownParseError, Err: fmt.Errorf("%w: %w", ErrUnknownParse, err)}
	}
}

// KindOf returns the kind of a *ParseError anywhere in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
