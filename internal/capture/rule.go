// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package capture

import (
	"fmt"
	"log/slog"

	"github.com/vk/buildparse/internal/record"
	"github.com/vk/buildparse/internal/schema"
)

// Rule is a rule function bound into a build file's namespace.
type Rule struct {
	RuleType string
	Schema   *schema.Schema
	BasePath string
	Sink     *record.Collection

	// Logger receives collision warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// PositionalArgumentsError is returned when a rule function is called with
// positional arguments. Rule functions take keywords only.
type PositionalArgumentsError struct {
	RuleType string
	Count    int
}

func (e *PositionalArgumentsError) Error() string {
	return fmt.Sprintf("%s: got %d positional argument(s), rule functions accept keyword arguments only", e.RuleType, e.Count)
}

// Invoke captures one invocation of the rule. positional is the number of
// positional arguments the call site passed. On success exactly one record is
// appended to the sink; on error nothing is.
func (r *Rule) Invoke(positional int, args []Argument) error {
	if positional > 0 {
		return &PositionalArgumentsError{RuleType: r.RuleType, Count: positional}
	}

	names := make([]string, len(args))
	provided := make(map[string]bool, len(args))
	for i, arg := range args {
		name := schema.ToLowerCamel(arg.Name)
		if _, declared := r.Schema.Lookup(name); !declared && !schema.IsImplicit(arg.Name) {
			return &schema.AttributeError{
				Kind:       schema.ErrUnrecognizedAttribute,
				RuleType:   r.RuleType,
				Attributes: []string{arg.Name},
			}
		}
		names[i] = name
		if !arg.Absent {
			provided[name] = true
		}
	}

	if err := schema.Validate(r.Schema, func(name string) bool { return provided[name] }); err != nil {
		return err
	}

	rec := record.New(r.BasePath, r.RuleType)
	sources := make(map[string]string, len(args))
	for i, arg := range args {
		if arg.Absent {
			continue
		}
		name := names[i]
		value, err := arg.value()
		if err != nil {
			return fmt.Errorf("%s: attribute '%s': %w", r.RuleType, arg.Name, err)
		}
		if prev, collides := sources[name]; collides && prev != arg.Name {
			r.logger().Warn("Attributes collide after normalization, last one wins.",
				"rule_type", r.RuleType, "attribute", name, "first", prev, "second", arg.Name)
		}
		sources[name] = arg.Name
		rec.Set(name, value)
	}

	r.Sink.Append(rec)
	return nil
}

func (r *Rule) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
