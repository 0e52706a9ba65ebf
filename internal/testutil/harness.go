// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/buildparse/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteProject creates a temporary project root containing files, keyed by
// slash-separated relative path, and returns the root.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// HarnessResult holds the outcomes of an app-level test run.
type HarnessResult struct {
	Root      string
	App       *app.App
	Results   []app.FileResult
	Err       error
	LogOutput string
}

// RunProjectTest writes files into a fresh project, builds an App over it
// with cfg (ProjectRoot is filled in) and parses every build file.
func RunProjectTest(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	root := WriteProject(t, files)
	cfg.ProjectRoot = root
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp, err := app.NewApp(context.Background(), logBuffer, config)
	if err != nil {
		return &HarnessResult{Root: root, Err: err, LogOutput: logBuffer.String()}
	}
	t.Cleanup(func() { _ = testApp.Close() })

	results, runErr := testApp.ParseAll(context.Background())

	if os.Getenv("BUILDPARSE_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Root:      root,
		App:       testApp,
		Results:   results,
		Err:       runErr,
		LogOutput: logBuffer.String(),
	}
}
