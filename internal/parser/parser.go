// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/vk/buildparse/internal/capture"
	"github.com/vk/buildparse/internal/ctxlog"
	"github.com/vk/buildparse/internal/events"
	"github.com/vk/buildparse/internal/interp"
	"github.com/vk/buildparse/internal/record"
	"github.com/vk/buildparse/internal/registry"
)

// Options configures a Parser.
type Options struct {
	// ProjectRoot is the directory base paths are computed against.
	ProjectRoot string

	// Registry supplies the rule types bound into every build file.
	Registry *registry.Registry

	// Evaluator parses and runs build files.
	Evaluator interp.Evaluator

	// Bus receives lifecycle events. Nil discards them.
	Bus events.Bus
}

// Parser evaluates build files into rule records.
type Parser struct {
	projectRoot string
	registry    *registry.Registry
	evaluator   interp.Evaluator
	bus         events.Bus
}

// New creates a Parser.
func New(opts Options) (*Parser, error) {
	if opts.ProjectRoot == "" {
		return nil, errors.New("project root is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("rule type registry is required")
	}
	if opts.Evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.Discard
	}
	return &Parser{
		projectRoot: opts.ProjectRoot,
		registry:    opts.Registry,
		evaluator:   opts.Evaluator,
		bus:         bus,
	}, nil
}

// GetAll returns the rule records declared in buildFile, in invocation
// order. processedBytes is reserved for profiling and is not updated.
func (p *Parser) GetAll(ctx context.Context, buildFile string, processedBytes *atomic.Int64) ([]*record.Record, error) {
	return p.GetAllRulesAndMetaRules(ctx, buildFile, processedBytes)
}

// GetAllRulesAndMetaRules is GetAll. Build files evaluated by this parser
// declare no meta rules, so both return the same records.
func (p *Parser) GetAllRulesAndMetaRules(ctx context.Context, buildFile string, _ *atomic.Int64) (rules []*record.Record, err error) {
	logger := ctxlog.FromContext(ctx)

	started := events.NewStarted(buildFile)
	p.bus.Post(started)

	var partial []*record.Record
	defer func() {
		reported := rules
		if err != nil {
			reported = partial
		}
		// TODO: report processed bytes and a profile once the evaluator exposes them.
		p.bus.Post(events.NewFinished(started, reported, 0, nil, err))
	}()

	rules, partial, err = p.parseBuildRules(ctx, buildFile)
	if err != nil {
		return nil, err
	}

	logger.Debug("Got rules.", "file", buildFile, "rules", len(rules))
	return rules, nil
}

// parseBuildRules parses and runs buildFile. On failure it also returns the
// records captured before the failure.
func (p *Parser) parseBuildRules(ctx context.Context, buildFile string) ([]*record.Record, []*record.Record, error) {
	logger := ctxlog.FromContext(ctx).With("file", buildFile)

	basePath, err := capture.BasePath(p.projectRoot, buildFile)
	if err != nil {
		return nil, nil, err
	}

	src, err := os.ReadFile(buildFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read build file: %w", err)
	}

	prog, err := p.evaluator.Parse(buildFile, src)
	if err != nil {
		return nil, nil, newParseError(buildFile, err)
	}

	sess, err := p.evaluator.NewSession(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open evaluation session for %s: %w", buildFile, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("Failed to close evaluation session.", "error", cerr)
		}
	}()

	sink := record.NewCollection()
	ns := capture.Bind(p.registry, basePath, sink, logger)
	logger.Debug("Namespace bound.", "base_path", basePath, "rule_functions", len(ns))

	if err := sess.Execute(prog, ns); err != nil {
		return nil, sink.Records(), newParseError(buildFile, err)
	}
	return sink.Records(), nil, nil
}

// ReportProfile is a no-op; the parser does not collect profiles.
func (p *Parser) ReportProfile() error {
	return nil
}

// Close is a no-op; sessions are released after every file.
func (p *Parser) Close() error {
	return nil
}
