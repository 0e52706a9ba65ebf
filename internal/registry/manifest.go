package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/buildparse/internal/ctxlog"
	"github.com/vk/buildparse/internal/schema"
)

// manifestRootSchema defines the top-level structure of a manifest file,
// expecting one or more 'rule' blocks.
type manifestRootSchema struct {
	Rules []*hclRule `hcl:"rule,block"`
}

// hclRule represents a single 'rule' block for decoding purposes.
type hclRule struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

var ruleBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "attribute", LabelNames: []string{"name"}},
	},
}

// attributeBodySchema is the HCL schema for the body of an `attribute` block.
var attributeBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but we check for its existence manually
		// to provide a better error message.
		{Name: "type"},
		{Name: "optional"},
		{Name: "description"},
	},
}

// ParseManifest decodes the rule types declared in an HCL manifest file.
func ParseManifest(ctx context.Context, hclFile *hcl.File, filePath string) ([]*RuleType, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing rule definitions from manifest", "file_path", filePath)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		allDiags = append(allDiags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		})
		return nil, allDiags
	}

	root := &manifestRootSchema{}
	diags := gohcl.DecodeBody(hclFile.Body, nil, root)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	ruleTypes := make([]*RuleType, 0, len(root.Rules))
	seen := make(map[string]bool, len(root.Rules))
	for _, parsed := range root.Rules {
		if seen[parsed.Name] {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate rule definition",
				Detail:   fmt.Sprintf("A rule named '%s' has already been defined in this file.", parsed.Name),
				Subject:  parsed.Body.MissingItemRange().Ptr(),
			})
			continue
		}
		seen[parsed.Name] = true

		bodyContent, contentDiags := parsed.Body.Content(ruleBodySchema)
		allDiags = append(allDiags, contentDiags...)
		if contentDiags.HasErrors() {
			continue // Skip this rule but continue parsing others
		}

		var description string
		if attr, exists := bodyContent.Attributes["description"]; exists {
			allDiags = append(allDiags, gohcl.DecodeExpression(attr.Expr, nil, &description)...)
		}

		params, paramDiags := parseAttributes(bodyContent.Blocks)
		allDiags = append(allDiags, paramDiags...)
		if paramDiags.HasErrors() {
			continue
		}

		s, err := schema.NewSchema(parsed.Name, params...)
		if err != nil {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid rule definition",
				Detail:   err.Error(),
				Subject:  parsed.Body.MissingItemRange().Ptr(),
			})
			continue
		}

		ruleTypes = append(ruleTypes, &RuleType{
			Name:        parsed.Name,
			Description: description,
			Schema:      s,
			Source:      filePath,
		})
	}

	if allDiags.HasErrors() {
		return nil, allDiags
	}

	logger.Debug("Successfully parsed rule definitions", "count", len(ruleTypes))
	return ruleTypes, allDiags
}

// parseAttributes decodes all 'attribute' blocks of a rule body into params.
// Attribute labels use build-file spelling and are normalized here.
func parseAttributes(blocks hcl.Blocks) ([]schema.Param, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var params []schema.Param
	seen := make(map[string]bool)

	for _, block := range blocks.OfType("attribute") {
		// The schema guarantees us one label.
		pythonName := block.Labels[0]
		name := schema.ToLowerCamel(pythonName)

		if seen[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate attribute definition",
				Detail:   fmt.Sprintf("An attribute named '%s' has already been defined.", pythonName),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = true

		bodyContent, contentDiags := block.Body.Content(attributeBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := bodyContent.Attributes["type"]
		if !exists {
			missingItemRange := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   "The 'type' attribute is required for all attribute blocks.",
				Subject:  &missingItemRange,
			})
			continue
		}

		ctyType, typeDiags := typeexpr.TypeConstraint(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		var optional bool
		if attr, exists := bodyContent.Attributes["optional"]; exists {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &optional)...)
		}

		var description string
		if attr, exists := bodyContent.Attributes["description"]; exists {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &description)...)
		}

		params = append(params, schema.Param{
			Name:        name,
			PythonName:  pythonName,
			Required:    !optional,
			Type:        ctyType,
			Description: description,
		})
	}

	return params, diags
}
