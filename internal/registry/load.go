package registry

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/buildparse/internal/ctxlog"
	"github.com/vk/buildparse/internal/fsutil"
)

// ManifestPattern selects rule manifest files inside a manifests directory.
const ManifestPattern = "**/*.rules.hcl"

//go:embed defaults.rules.hcl
var defaultManifest []byte

// LoadManifests registers every rule type declared in the manifests found
// under the given paths. A path may be a single manifest file or a directory
// searched recursively. Files are processed in sorted order.
func (reg *Registry) LoadManifests(ctx context.Context, paths ...string) error {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()

	for _, root := range paths {
		logger.Debug("Registry loading rule manifests...", "path", root)

		filePaths, err := fsutil.FindFiles(root, ManifestPattern)
		if err != nil {
			logger.Error("Failed to walk manifests path", "path", root, "error", err)
			return err
		}
		if len(filePaths) == 0 {
			logger.Warn("No rule manifest files found in path", "path", root)
			continue
		}

		for _, filePath := range filePaths {
			hclFile, diags := parser.ParseHCLFile(filePath)
			if diags.HasErrors() {
				return fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
			}
			if err := reg.addFromFile(ctx, hclFile, filePath); err != nil {
				return err
			}
		}
	}

	logger.Info("Registry loaded successfully.", "rule_types_loaded", reg.Len())
	return nil
}

// LoadManifestSource registers the rule types declared in src. filename is
// used for diagnostics only.
func (reg *Registry) LoadManifestSource(ctx context.Context, filename string, src []byte) error {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return reg.addFromFile(ctx, hclFile, filename)
}

// LoadDefaults registers the built-in rule types.
func (reg *Registry) LoadDefaults(ctx context.Context) error {
	return reg.LoadManifestSource(ctx, "defaults.rules.hcl", defaultManifest)
}

func (reg *Registry) addFromFile(ctx context.Context, hclFile *hcl.File, filePath string) error {
	ruleTypes, diags := ParseManifest(ctx, hclFile, filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to process rule definitions in %s: %w", filePath, diags)
	}

	for _, rt := range ruleTypes {
		if existing, ok := reg.Lookup(rt.Name); ok {
			return fmt.Errorf("rule type '%s' in %s is already defined in %s", rt.Name, filePath, existing.Source)
		}
		reg.Register(rt)
	}
	ctxlog.FromContext(ctx).Debug("Successfully loaded definitions from HCL file", "file", filePath, "rule_types", len(ruleTypes))
	return nil
}
