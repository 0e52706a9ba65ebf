package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/spf13/cobra"
	"github.com/vk/buildparse/internal/app"
	"github.com/vk/buildparse/internal/registry"
	"gopkg.in/yaml.v3"
)

func newParseCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [BUILD_FILE...]",
		Short: "Parse build files and print their rules",
		Long: `Parse the given build files, or every build file under the project root
when none are given, and print the rule records of each file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.StartMetricsServer(); err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}

			var results []app.FileResult
			if len(args) == 0 {
				results, err = a.ParseAll(cmd.Context())
			} else {
				files := make([]string, 0, len(args))
				for _, f := range args {
					abs, absErr := filepath.Abs(f)
					if absErr != nil {
						return usageError(absErr)
					}
					files = append(files, abs)
				}
				results, err = a.ParseFiles(cmd.Context(), files)
			}
			if err != nil {
				return &ExitError{Code: ExitParseFailure, Message: err.Error()}
			}

			if err := a.WriteResults(cmd.OutOrStdout(), results, opts.format); err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					return &ExitError{Code: ExitParseFailure, Message: fmt.Sprintf("%d build file(s) failed, first: %v", countFailed(results), r.Err)}
				}
			}
			return nil
		},
	}
}

func countFailed(results []app.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func newWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Parse all build files, then re-parse them as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.StartMetricsServer(); err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Watch(ctx, cmd.OutOrStdout(), opts.format)
		},
	}
}

type ruleAttributeOutput struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type ruleTypeOutput struct {
	Name        string                `json:"name" yaml:"name"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string                `json:"source,omitempty" yaml:"source,omitempty"`
	Attributes  []ruleAttributeOutput `json:"attributes" yaml:"attributes"`
}

func describeRuleTypes(reg *registry.Registry) []ruleTypeOutput {
	out := make([]ruleTypeOutput, 0, reg.Len())
	for _, rt := range reg.RuleTypes() {
		rto := ruleTypeOutput{Name: rt.Name, Description: rt.Description, Source: rt.Source}
		for _, p := range rt.Schema.Params() {
			rto.Attributes = append(rto.Attributes, ruleAttributeOutput{
				Name:        p.PythonName,
				Type:        typeexpr.TypeString(p.Type),
				Required:    p.Required,
				Description: p.Description,
			})
		}
		out = append(out, rto)
	}
	return out
}

func newRulesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the registered rule types and their attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			described := describeRuleTypes(a.Registry())
			w := cmd.OutOrStdout()
			if opts.format == app.FormatYAML {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(described); err != nil {
					return err
				}
				return enc.Close()
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(described)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "buildparse version %s\n", Version)
		},
	}
}
