package app

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/buildparse/internal/fsutil"
)

// skipDirs are never watched.
var skipDirs = map[string]bool{
	".git":     true,
	".hg":      true,
	"buck-out": true,
}

// Watch parses every build file once, then re-parses build files as they
// change until ctx is done. Each batch of results is written to w. Changes
// are debounced by WatchDebounce.
func (app *App) Watch(ctx context.Context, w io.Writer, format string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := app.addWatchesRecursive(fsw, app.config.ProjectRoot); err != nil {
		return err
	}

	results, _ := app.ParseAll(ctx)
	if err := app.WriteResults(w, results, format); err != nil {
		return err
	}

	app.logger.Info("Watching for build file changes.", "root", app.config.ProjectRoot, "debounce", app.config.WatchDebounce)
	if app.watchReady != nil {
		app.watchReady()
	}

	pending := make(map[string]struct{})
	var flush <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			app.logger.Info("File watcher stopped.")
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := app.addWatchesRecursive(fsw, ev.Name); err != nil {
						app.logger.Warn("Failed to watch new directory.", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			if !app.isBuildFile(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				pending[ev.Name] = struct{}{}
				flush = time.After(app.config.WatchDebounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			app.logger.Warn("File watcher error.", "error", err)

		case <-flush:
			flush = nil
			files := make([]string, 0, len(pending))
			for f := range pending {
				if _, err := os.Stat(f); err != nil {
					app.logger.Info("Build file removed.", "file", app.relative(f))
					continue
				}
				files = append(files, f)
			}
			clear(pending)
			if len(files) == 0 {
				continue
			}

			sort.Strings(files)
			results, _ := app.parseFiles(ctx, files, true)
			if err := app.WriteResults(w, results, format); err != nil {
				return err
			}
		}
	}
}

func (app *App) isBuildFile(path string) bool {
	return fsutil.MatchAny(app.relative(path), app.config.Include...)
}

func (app *App) addWatchesRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
