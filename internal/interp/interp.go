// Package interp defines what the build file parser needs from a
// configuration-language evaluator: turn source into a program, then run that
// program against a namespace of rule functions inside a scoped session.
package interp

import (
	"context"
	"fmt"

	"github.com/vk/buildparse/internal/capture"
)

// Program is an opaque, parsed build file.
type Program interface {
	Filename() string
}

// Evaluator parses build files and opens execution sessions.
type Evaluator interface {
	// Parse turns src into a program. Failures are *SyntaxError.
	Parse(filename string, src []byte) (Program, error)

	// NewSession acquires a fresh evaluation context. The caller must Close
	// it on every path.
	NewSession(ctx context.Context) (Session, error)
}

// Session is a scoped evaluation context for exactly one build file.
type Session interface {
	// Execute runs prog with ns bound as rule functions.
	Execute(prog Program, ns capture.Namespace) error

	// Close releases the session. It is safe to call more than once.
	Close() error
}

// SyntaxError is returned when a build file cannot be parsed into a program.
type SyntaxError struct {
	File string
	Line int32
	Col  int32
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}
