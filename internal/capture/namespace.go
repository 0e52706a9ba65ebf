// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package capture

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vk/buildparse/internal/record"
	"github.com/vk/buildparse/internal/registry"
)

// Namespace maps rule function names to their bound capture routine.
type Namespace map[string]*Rule

// Names returns the bound names in no particular order.
func (ns Namespace) Names() []string {
	names := make([]string, 0, len(ns))
	for name := range ns {
		names = append(names, name)
	}
	return names
}

// Bind creates a namespace with one rule function per registered rule type,
// each writing into sink and stamping records with basePath.
func Bind(reg *registry.Registry, basePath string, sink *record.Collection, logger *slog.Logger) Namespace {
	ns := make(Namespace, reg.Len())
	for _, rt := range reg.RuleTypes() {
		ns[rt.Name] = &Rule{
			RuleType: rt.Name,
			Schema:   rt.Schema,
			BasePath: basePath,
			Sink:     sink,
			Logger:   logger,
		}
	}
	return ns
}

// BasePath returns the directory of buildFile relative to projectRoot, with
// forward slashes. A build file directly in the root has an empty base path.
func BasePath(projectRoot, buildFile string) (string, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", err
	}
	file, err := filepath.Abs(buildFile)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil {
		return "", fmt.Errorf("build file %s is not under project root %s: %w", buildFile, projectRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("build file %s is not under project root %s", buildFile, projectRoot)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
