package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/buildparse/internal/testutil"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errW := &bytes.Buffer{}, &bytes.Buffer{}
	err := Execute(context.Background(), args, out, errW)
	return out.String(), errW.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok, "expected *ExitError, got %T: %v", err, err)
	require.Equal(t, code, exitErr.Code, exitErr.Message)
	return exitErr
}

func TestExecute_Parse(t *testing.T) {
	t.Parallel()

	t.Run("Success: whole project as JSON", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{
			"BUCK":     `genrule(name = "g", out = "o")`,
			"lib/BUCK": `java_library(name = "l", srcs = ["A.java"], visibility = ["PUBLIC"])`,
		})

		out, _, err := execute(t, "parse", "--root", root)
		require.NoError(t, err)

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "lib/BUCK", decoded[1]["file"])
		rule := decoded[1]["rules"].([]any)[0].(map[string]any)
		assert.Equal(t, "lib", rule["buck.base_path"])
		assert.Equal(t, []any{"PUBLIC"}, rule["visibility"])
	})

	t.Run("Success: explicit file as YAML", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{
			"a/BUCK": `sh_binary(name = "s", main = "run.sh")`,
			"b/BUCK": `this is not starlark`,
		})

		out, _, err := execute(t, "parse", "-r", root, "-f", "yaml", filepath.Join(root, "a", "BUCK"))
		require.NoError(t, err)

		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "a/BUCK", decoded[0]["file"])
	})

	t.Run("Failure: parse error exits with 1", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{"BUCK": `genrule(name = "g")`})

		_, _, err := execute(t, "parse", "--root", root)
		exitErr := requireExitCode(t, err, ExitParseFailure)
		assert.Contains(t, exitErr.Message, "out is expected but not provided")
	})

	t.Run("Failure: keep going prints results then exits with 1", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{
			"a/BUCK": `genrule(name = "g", out = "o", colour = "red")`,
			"b/BUCK": `genrule(name = "g", out = "o")`,
		})

		out, _, err := execute(t, "parse", "--root", root, "--keep-going")
		exitErr := requireExitCode(t, err, ExitParseFailure)
		assert.Contains(t, exitErr.Message, "1 build file(s) failed")
		assert.Contains(t, out, `"error_kind": "UnrecognizedAttribute"`)
	})

	t.Run("Success: custom manifests only", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{
			"defs/my.rules.hcl": `rule "my_rule" { attribute "name" { type = string } }`,
			"BUCK":              `my_rule(name = "x")`,
		})

		out, _, err := execute(t, "parse", "--root", root, "--no-default-rules", "--manifests", filepath.Join(root, "defs"))
		require.NoError(t, err)
		assert.Contains(t, out, `"buck.type": "my_rule"`)
	})
}

func TestExecute_ConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("Success: file in root is picked up", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{
			"buildparse.yaml": "build_file_name: TARGETS\nkeep_going: true\n",
			"TARGETS":         `genrule(name = "g", out = "o")`,
			"BUCK":            `genrule(name = "ignored", out = "o")`,
		})

		out, _, err := execute(t, "parse", "--root", root)
		require.NoError(t, err)
		assert.Contains(t, out, `"file": "TARGETS"`)
		assert.NotContains(t, out, "ignored")
	})

	t.Run("Success: flags override the file", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{
			"conf.yaml": "build_file_name: TARGETS\n",
			"BUCK":      `genrule(name = "g", out = "o")`,
		})

		out, _, err := execute(t, "parse", "--config", filepath.Join(root, "conf.yaml"), "--build-file-name", "BUCK")
		require.NoError(t, err)
		assert.Contains(t, out, `"file": "BUCK"`)
	})

	t.Run("Failure: unknown key is a usage error", func(t *testing.T) {
		t.Parallel()
		root := testutil.WriteProject(t, map[string]string{"buildparse.yaml": "colour: red\n"})

		_, _, err := execute(t, "parse", "--root", root)
		requireExitCode(t, err, ExitUsage)
	})
}

func TestExecute_UsageErrors(t *testing.T) {
	t.Parallel()

	root := testutil.WriteProject(t, map[string]string{"BUCK": ""})

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"parse", "--nope"}, wantMsg: "unknown flag: --nope"},
		{name: "unknown command", args: []string{"frobnicate"}, wantMsg: "unknown command"},
		{name: "bad format", args: []string{"parse", "--root", root, "--format", "xml"}, wantMsg: "invalid format"},
		{name: "bad log level", args: []string{"parse", "--root", root, "--log-level", "loud"}, wantMsg: "invalid log level"},
		{name: "bad workers", args: []string{"parse", "--root", root, "--workers", "0"}, wantMsg: "invalid workers"},
		{name: "no rule types", args: []string{"rules", "--root", root, "--no-default-rules"}, wantMsg: "no rule types available"},
		{name: "missing manifest", args: []string{"rules", "--root", root, "--manifests", filepath.Join(root, "missing")}, wantMsg: "failed to load rule manifests"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tc.args...)
			exitErr := requireExitCode(t, err, ExitUsage)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestExecute_Rules(t *testing.T) {
	t.Parallel()

	root := testutil.WriteProject(t, map[string]string{})
	out, _, err := execute(t, "rules", "--root", root)
	require.NoError(t, err)

	var decoded []ruleTypeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.NotEmpty(t, decoded)
	assert.Equal(t, "genrule", decoded[0].Name)

	var out0 ruleAttributeOutput
	for _, a := range decoded[0].Attributes {
		if a.Name == "out" {
			out0 = a
		}
	}
	assert.Equal(t, ruleAttributeOutput{Name: "out", Type: "string", Required: true}, out0)
}

func TestExecute_VersionAndHelp(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "buildparse version "+Version+"\n", out)

	out, _, err = execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "parse")
}
