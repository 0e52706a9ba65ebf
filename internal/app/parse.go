package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/vk/buildparse/internal/ctxlog"
	"github.com/vk/buildparse/internal/fsutil"
	"github.com/vk/buildparse/internal/record"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of parsing one build file.
type FileResult struct {
	File  string
	Rules []*record.Record
	Err   error
}

// DiscoverBuildFiles returns the build files under the project root that
// match the configured include patterns, sorted.
func (app *App) DiscoverBuildFiles() ([]string, error) {
	files, err := fsutil.FindFiles(app.config.ProjectRoot, app.config.Include...)
	if err != nil {
		return nil, fmt.Errorf("failed to discover build files: %w", err)
	}
	return files, nil
}

// ParseAll discovers and parses every build file in the project.
func (app *App) ParseAll(ctx context.Context) ([]FileResult, error) {
	files, err := app.DiscoverBuildFiles()
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(app.ctx).Info("Build files discovered.", "count", len(files), "root", app.config.ProjectRoot)
	return app.ParseFiles(ctx, files)
}

// ParseFiles parses files concurrently, each in its own evaluation session.
// Results are returned in the order of files. Unless KeepGoing is set the
// first failure cancels the remaining files and is returned; with KeepGoing
// failures are reported per file and the returned error is nil.
func (app *App) ParseFiles(ctx context.Context, files []string) ([]FileResult, error) {
	return app.parseFiles(ctx, files, app.config.KeepGoing)
}

func (app *App) parseFiles(ctx context.Context, files []string, keepGoing bool) ([]FileResult, error) {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(app.config.Workers)

	var processed atomic.Int64
	for i, file := range files {
		if !filepath.IsAbs(file) {
			file = filepath.Join(app.config.ProjectRoot, file)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{File: file, Err: err}
				return nil
			}

			rules, err := app.parser.GetAll(gctx, file, &processed)
			results[i] = FileResult{File: file, Rules: rules, Err: err}
			if err != nil && !keepGoing {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// ParseFile parses a single build file.
func (app *App) ParseFile(ctx context.Context, file string) FileResult {
	results, _ := app.parseFiles(ctx, []string{file}, true)
	return results[0]
}
