package io

import (
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
)

// Write encodes c to w. JSON output is indented with two spaces.
func Write(c *chart.Chart, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", format)
	}
	return nil
}

// WriteJSON encodes c as JSON.
func WriteJSON(c *chart.Chart, w io.Writer) error { return Write(c, w, FormatJSON) }

// WriteYAML encodes c as YAML.
func WriteYAML(c *chart.Chart, w io.Writer) error { return Write(c, w, FormatYAML) }

// Export writes c to path, choosing the format by extension.
func Export(c *chart.Chart, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := Write(c, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
