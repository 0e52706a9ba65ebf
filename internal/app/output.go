package app

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/vk/buildparse/internal/parser"
	"github.com/vk/buildparse/internal/record"
	"gopkg.in/yaml.v3"
)

// Output formats understood by WriteResults.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type fileOutput struct {
	File      string           `json:"file" yaml:"file"`
	Rules     []*record.Record `json:"rules" yaml:"rules"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string           `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// WriteResults renders results in the given format. File names are written
// relative to the project root with forward slashes.
func (app *App) WriteResults(w io.Writer, results []FileResult, format string) error {
	out := make([]fileOutput, 0, len(results))
	for _, r := range results {
		fo := fileOutput{File: app.relative(r.File), Rules: r.Rules}
		if fo.Rules == nil {
			fo.Rules = []*record.Record{}
		}
		if r.Err != nil {
			fo.Error = r.Err.Error()
			if kind := parser.KindOf(r.Err); kind != 0 {
				fo.ErrorKind = kind.String()
			}
		}
		out = append(out, fo)
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q: must be '%s' or '%s'", format, FormatJSON, FormatYAML)
	}
}

func (app *App) relative(file string) string {
	rel, err := filepath.Rel(app.config.ProjectRoot, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
