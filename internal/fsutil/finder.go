// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FindFiles searches rootPath for files matching any of the doublestar
// patterns (e.g. "**/BUCK"). Patterns are relative to rootPath and use
// forward slashes. Matches are returned as full paths, sorted and
// de-duplicated. If rootPath is itself a regular file it is returned as is.
func FindFiles(rootPath string, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		panic("at least one pattern is required")
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{rootPath}, nil
	}

	fsys := os.DirFS(rootPath)
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q under %s: %w", pattern, rootPath, err)
		}
		for _, m := range matches {
			full := filepath.Join(rootPath, filepath.FromSlash(m))
			if _, dup := seen[full]; dup {
				continue
			}
			seen[full] = struct{}{}
			files = append(files, full)
		}
	}

	sort.Strings(files)
	return files, nil
}

// MatchAny reports whether the slash-separated relative path matches any of
// the patterns.
func MatchAny(relPath string, patterns ...string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
