package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vk/buildparse/internal/app"
)

// Version is stamped at build time.
var Version = "dev"

// options holds raw flag values. Only flags the user actually set override
// the config file.
type options struct {
	root           string
	configPath     string
	manifests      []string
	noDefaultRules bool
	buildFileName  string
	include        []string
	workers        int
	keepGoing      bool
	format         string
	logLevel       string
	logFormat      string
	metricsAddr    string
}

// Execute runs the command line in args. Output goes to out, logs and
// diagnostics to errW. Every failure is returned as an *ExitError.
func Execute(ctx context.Context, args []string, out, errW io.Writer) error {
	root := NewRootCommand(out, errW)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		// Anything cobra reports itself is a usage problem.
		return usageError(err)
	}
	return nil
}

// NewRootCommand builds the buildparse command tree.
func NewRootCommand(out, errW io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "buildparse",
		Short: "Extract validated rule records from Buck build files",
		Long: `buildparse evaluates Skylark build files (BUCK) and prints the rules they
declare as ordered records, checked against the declared rule types.

Rule types come from a built-in set and from *.rules.hcl manifests.
Settings are read from buildparse.yaml in the project root; flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errW)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.root, "root", "r", "", "Project root (default: config file's project_root or the current directory)")
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: <root>/"+app.DefaultConfigFile+" if present)")
	pf.StringSliceVarP(&opts.manifests, "manifests", "m", nil, "Rule manifest files or directories (*.rules.hcl)")
	pf.BoolVar(&opts.noDefaultRules, "no-default-rules", false, "Do not register the built-in rule types")
	pf.StringVar(&opts.buildFileName, "build-file-name", "", "Name of build files (default \"BUCK\")")
	pf.StringSliceVar(&opts.include, "include", nil, "Doublestar patterns selecting build files, relative to the root")
	pf.IntVarP(&opts.workers, "workers", "w", 0, "Number of build files parsed concurrently (default 4)")
	pf.BoolVarP(&opts.keepGoing, "keep-going", "k", false, "Report failures per file instead of stopping at the first one")
	pf.StringVarP(&opts.format, "format", "f", app.FormatJSON, "Output format: 'json' or 'yaml'")
	pf.StringVar(&opts.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error' (default \"info\")")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log output format: 'text' or 'json' (default \"text\")")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address")

	cmd.AddCommand(
		newParseCommand(opts),
		newWatchCommand(opts),
		newRulesCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// loadConfig merges the config file and the flags the user set, then
// validates the result.
func loadConfig(cmd *cobra.Command, opts *options) (*app.Config, error) {
	var cfg app.Config

	configPath := opts.configPath
	if configPath == "" {
		dir := opts.root
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, app.DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	if configPath != "" {
		fileCfg, err := app.LoadConfigFile(configPath)
		if err != nil {
			return nil, usageError(err)
		}
		cfg = fileCfg
		slog.Debug("Config file loaded.", "path", configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("root") || cfg.ProjectRoot == "" {
		cfg.ProjectRoot = opts.root
		if cfg.ProjectRoot == "" {
			cfg.ProjectRoot = "."
		}
	}
	if flags.Changed("manifests") {
		cfg.Manifests = cfg.Manifests[:0:0]
		for _, m := range opts.manifests {
			abs, err := filepath.Abs(m)
			if err != nil {
				return nil, usageError(err)
			}
			cfg.Manifests = append(cfg.Manifests, abs)
		}
	}
	if flags.Changed("no-default-rules") {
		cfg.NoDefaultRules = opts.noDefaultRules
	}
	if flags.Changed("build-file-name") {
		cfg.BuildFileName = opts.buildFileName
	}
	if flags.Changed("include") {
		cfg.Include = opts.include
	}
	if flags.Changed("workers") {
		if opts.workers <= 0 {
			return nil, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("invalid workers: must be positive, got %d", opts.workers)}
		}
		cfg.Workers = opts.workers
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing = opts.keepGoing
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}

	switch opts.format {
	case app.FormatJSON, app.FormatYAML:
	default:
		return nil, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("invalid format %q: must be '%s' or '%s'", opts.format, app.FormatJSON, app.FormatYAML)}
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return config, nil
}

// newApp loads the configuration and builds the application with its logs
// going to the command's error stream.
func newApp(cmd *cobra.Command, opts *options) (*app.App, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(cmd.Context(), cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return a, nil
}
