package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
)

// Decode parses a document held in memory.
//
// Decode returns an INVALID_FORMAT error for malformed input and an
// INVALID_DOCUMENT error when the document violates the schema or the
// semantic rules of [chart.Validate].
func Decode(data []byte, format Format) (*chart.Chart, error) {
	var raw []byte
	switch format {
	case FormatJSON:
		raw = data
	case FormatYAML:
		var err error
		if raw, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", format)
	}

	if err := chart.ValidateSchema(raw); err != nil {
		return nil, err
	}

	var c chart.Chart
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart")
	}
	c.Normalize(chart.NewIDGen())
	if err := chart.Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// yamlToJSON re-encodes YAML as JSON so both formats go through one schema.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	if v == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "empty document")
	}
	out, err := json.Marshal(v)
	if err != nil {
		// Non-string map keys end up here.
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "convert yaml")
	}
	return out, nil
}

// Read decodes a document from r. Read does not close r.
func Read(r io.Reader, format Format) (*chart.Chart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read chart")
	}
	return Decode(data, format)
}

// ReadJSON decodes a JSON document from r.
func ReadJSON(r io.Reader) (*chart.Chart, error) { return Read(r, FormatJSON) }

// ReadYAML decodes a YAML document from r.
func ReadYAML(r io.Reader) (*chart.Chart, error) { return Read(r, FormatYAML) }

// Import reads the chart file at path, choosing the format by extension.
func Import(path string) (*chart.Chart, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	c, err := Read(f, format)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return c, nil
}
