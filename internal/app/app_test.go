package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/buildparse/internal/app"
	"github.com/vk/buildparse/internal/events"
	"github.com/vk/buildparse/internal/parser"
	"github.com/vk/buildparse/internal/testutil"
	"gopkg.in/yaml.v3"
)

const exampleManifest = `
rule "example_library" {
	attribute "name" { type = string }
	attribute "deps" {
		type     = list(string)
		optional = true
	}
}`

func TestApp_ParseAll(t *testing.T) {
	t.Parallel()

	t.Run("Success: parses every build file in path order", func(t *testing.T) {
		t.Parallel()
		res := testutil.RunProjectTest(t, map[string]string{
			"rules/example.rules.hcl": exampleManifest,
			"BUCK":                    `example_library(name = "root")`,
			"lib/BUCK":                `example_library(name = "lib", deps = ["//:root"])`,
			"lib/nested/BUCK":         `java_library(name = "j", srcs = ["A.java"])`,
			"lib/README.md":           "not a build file",
		}, app.Config{Manifests: []string{"rules"}})
		require.NoError(t, res.Err)
		require.Len(t, res.Results, 3)

		assert.Equal(t, filepath.Join(res.Root, "BUCK"), res.Results[0].File)
		assert.Equal(t, "", res.Results[0].Rules[0].BasePath())
		assert.Equal(t, "lib", res.Results[1].Rules[0].BasePath())
		assert.Equal(t, "lib/nested", res.Results[2].Rules[0].BasePath())
		assert.Equal(t, "java_library", res.Results[2].Rules[0].RuleType(), "built-in rules are available next to manifests")
		assert.Contains(t, res.LogOutput, "Build file parsed.")
	})

	t.Run("Failure: first error aborts the run", func(t *testing.T) {
		t.Parallel()
		res := testutil.RunProjectTest(t, map[string]string{
			"rules/example.rules.hcl": exampleManifest,
			"BUCK":                    `example_library(deps = [])`,
		}, app.Config{Manifests: []string{"rules"}})
		require.Error(t, res.Err)
		assert.Equal(t, parser.MissingRequiredAttribute, parser.KindOf(res.Err))
	})

	t.Run("Success: keep going reports failures per file", func(t *testing.T) {
		t.Parallel()
		res := testutil.RunProjectTest(t, map[string]string{
			"rules/example.rules.hcl": exampleManifest,
			"a/BUCK":                  `example_library(name = "a", bogus = 1)`,
			"b/BUCK":                  `example_library(name = "b")`,
			"c/BUCK":                  `example_library(name = `,
		}, app.Config{Manifests: []string{"rules"}, KeepGoing: true})
		require.NoError(t, res.Err)
		require.Len(t, res.Results, 3)

		assert.Equal(t, parser.UnrecognizedAttribute, parser.KindOf(res.Results[0].Err))
		assert.NoError(t, res.Results[1].Err)
		assert.Len(t, res.Results[1].Rules, 1)
		assert.Equal(t, parser.SyntaxError, parser.KindOf(res.Results[2].Err))
	})

	t.Run("Failure: broken manifest stops startup", func(t *testing.T) {
		t.Parallel()
		res := testutil.RunProjectTest(t, map[string]string{
			"rules/bad.rules.hcl": `rule "x" { attribute "a" {} }`,
		}, app.Config{Manifests: []string{"rules"}})
		require.ErrorContains(t, res.Err, "Missing 'type' attribute")
		assert.Nil(t, res.App)
	})

	t.Run("Success: custom include patterns", func(t *testing.T) {
		t.Parallel()
		res := testutil.RunProjectTest(t, map[string]string{
			"apps/TARGETS":   `genrule(name = "g", out = "o.txt", cmd = "touch $OUT")`,
			"vendor/TARGETS": `genrule(name = "v")`,
		}, app.Config{BuildFileName: "TARGETS", Include: []string{"apps/**/TARGETS"}})
		require.NoError(t, res.Err)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "genrule", res.Results[0].Rules[0].RuleType())
	})
}

func TestApp_Events(t *testing.T) {
	t.Parallel()

	root := testutil.WriteProject(t, map[string]string{
		"BUCK":     `genrule(name = "g", out = "x")`,
		"bad/BUCK": `genrule(out = "x")`,
	})
	cfg, err := app.NewConfig(app.Config{ProjectRoot: root, KeepGoing: true, Workers: 1})
	require.NoError(t, err)
	a, err := app.NewApp(context.Background(), io.Discard, cfg)
	require.NoError(t, err)

	rec := &events.Recorder{}
	a.Bus().Subscribe(rec.Subscriber())

	_, err = a.ParseAll(context.Background())
	require.NoError(t, err)

	var started, finished int
	for _, e := range rec.Events() {
		switch e.(type) {
		case *events.Started:
			started++
		case *events.Finished:
			finished++
		}
	}
	assert.Equal(t, 2, started)
	assert.Equal(t, 2, finished, "finished is posted for failed files too")
}

func TestApp_WriteResults(t *testing.T) {
	t.Parallel()

	res := testutil.RunProjectTest(t, map[string]string{
		"BUCK":     `export_file(name = "f", src = "f.txt")`,
		"bad/BUCK": `export_file(src = "f.txt")`,
	}, app.Config{KeepGoing: true})
	require.NoError(t, res.Err)

	t.Run("JSON keeps record key order", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, res.App.WriteResults(&buf, res.Results, app.FormatJSON))

		out := buf.String()
		assert.Less(t, strings.Index(out, `"buck.base_path"`), strings.Index(out, `"buck.type"`))
		assert.Less(t, strings.Index(out, `"buck.type"`), strings.Index(out, `"name"`))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "BUCK", decoded[0]["file"])
		assert.Equal(t, "bad/BUCK", decoded[1]["file"])
		assert.Equal(t, "MissingRequiredAttribute", decoded[1]["error_kind"])
		assert.Empty(t, decoded[1]["rules"])
	})

	t.Run("YAML", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, res.App.WriteResults(&buf, res.Results, app.FormatYAML))

		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		rules := decoded[0]["rules"].([]any)
		require.Len(t, rules, 1)
		assert.Equal(t, "export_file", rules[0].(map[string]any)["buck.type"])
	})

	t.Run("Unknown format", func(t *testing.T) {
		t.Parallel()
		require.Error(t, res.App.WriteResults(io.Discard, res.Results, "xml"))
	})
}

func TestApp_MetricsServer(t *testing.T) {
	t.Parallel()

	root := testutil.WriteProject(t, map[string]string{"BUCK": `genrule(name = "g", out = "x")`})
	cfg, err := app.NewConfig(app.Config{ProjectRoot: root, MetricsAddr: "127.0.0.1:0"})
	require.NoError(t, err)
	a, err := app.NewApp(context.Background(), io.Discard, cfg)
	require.NoError(t, err)

	addr, err := a.StartMetricsServer()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	_, err = a.ParseAll(context.Background())
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `buildparse_rules_total{rule_type="genrule"} 1`)
	assert.Contains(t, string(body), `buildparse_files_finished_total{result="success"} 1`)
}

func TestApp_Watch(t *testing.T) {
	t.Parallel()

	root := testutil.WriteProject(t, map[string]string{"lib/BUCK": `genrule(name = "first", out = "x")`})
	cfg, err := app.NewConfig(app.Config{ProjectRoot: root, WatchDebounce: 20 * time.Millisecond})
	require.NoError(t, err)
	a, err := app.NewApp(context.Background(), io.Discard, cfg)
	require.NoError(t, err)

	ready := make(chan struct{})
	a.SetWatchReady(func() { close(ready) })

	ctx, cancel := context.WithCancel(context.Background())
	out := &testutil.SafeBuffer{}
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, out, app.FormatJSON) }()

	select {
	case <-ready:
	case <-time.After(10 * time.Second):
		t.Fatal("watcher did not become ready")
	}
	assert.Contains(t, out.String(), `"first"`)

	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "BUCK"), []byte(`genrule(name = "second", out = "x")`), 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"second"`)
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
