package starlark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vk/buildparse/internal/capture"
	"github.com/vk/buildparse/internal/ctxlog"
	"github.com/vk/buildparse/internal/interp"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// fileOptions is the Starlark dialect accepted in build files.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Evaluator is a Starlark-backed interp.Evaluator. The zero value is ready
// to use and safe for concurrent use; all state lives in sessions.
type Evaluator struct{}

var _ interp.Evaluator = (*Evaluator)(nil)

// New returns a Starlark evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

type program struct {
	filename string
	src      []byte

	mu       sync.Mutex
	file     *syntax.File
	resolved bool
}

func (p *program) Filename() string {
	return p.filename
}

// Parse parses src into a program without resolving names; names are
// resolved against the namespace when the program is executed.
func (e *Evaluator) Parse(filename string, src []byte) (interp.Program, error) {
	f, err := fileOptions.Parse(filename, src, 0)
	if err != nil {
		return nil, toSyntaxError(filename, err)
	}
	return &program{filename: filename, src: src, file: f}, nil
}

// NewSession opens a session bound to ctx. Cancelling ctx interrupts a
// running Execute at the next Starlark step.
func (e *Evaluator) NewSession(ctx context.Context) (interp.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	thread := &starlark.Thread{
		Name: "buildfile",
		Print: func(thread *starlark.Thread, msg string) {
			logger.Info("Build file printed a message.", "thread", thread.Name, "message", msg)
		},
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load(%q): load statements are not supported in build files", module)
		},
	}

	s := &session{thread: thread, logger: logger}
	s.stop = context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	return s, nil
}

type session struct {
	thread *starlark.Thread
	logger *slog.Logger
	stop   func() bool

	mu     sync.Mutex
	closed bool
}

var errSessionClosed = errors.New("evaluation session is closed")

// Execute resolves prog against ns and runs it. Errors raised by rule
// functions keep their identity through errors.Is and errors.As.
func (s *session) Execute(prog interp.Program, ns capture.Namespace) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errSessionClosed
	}

	p, ok := prog.(*program)
	if !ok {
		return fmt.Errorf("program of type %T was not produced by the starlark evaluator", prog)
	}

	f, err := p.takeFile()
	if err != nil {
		return err
	}

	predeclared := make(starlark.StringDict, len(ns))
	for name, rule := range ns {
		predeclared[name] = newRuleBuiltin(name, rule)
	}

	// Unresolved names are execution failures; the file already parsed.
	compiled, err := starlark.FileProgram(f, predeclared.Has)
	if err != nil {
		return fmt.Errorf("failed to resolve names: %w", err)
	}

	s.thread.Name = p.filename
	if _, err := compiled.Init(s.thread, predeclared); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			s.logger.Debug("Build file evaluation failed.", "file", p.filename, "backtrace", evalErr.Backtrace())
		}
		return err
	}
	return nil
}

// Close releases the session. Further Execute calls fail.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stop()
	s.thread.Cancel("session closed")
	return nil
}

// takeFile returns a syntax tree that has not been resolved yet. The
// resolver annotates the tree in place, so a program executed a second time
// is parsed again.
func (p *program) takeFile() (*syntax.File, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.resolved {
		p.resolved = true
		return p.file, nil
	}
	f, err := fileOptions.Parse(p.filename, p.src, 0)
	if err != nil {
		return nil, toSyntaxError(p.filename, err)
	}
	return f, nil
}

func toSyntaxError(filename string, err error) error {
	var synErr syntax.Error
	if errors.As(err, &synErr) {
		return &interp.SyntaxError{File: filename, Line: synErr.Pos.Line, Col: synErr.Pos.Col, Msg: synErr.Msg}
	}
	return &interp.SyntaxError{File: filename, Msg: err.Error()}
}
