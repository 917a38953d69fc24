package chart

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/matzehuels/lanechart/pkg/errors"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://lanechart.dev/schema/chart.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func loadSchema() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		schemaErr = err
		return
	}
	schema, schemaErr = c.Compile(schemaURL)
}

// Schema returns the embedded JSON Schema document for charts.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidateSchema checks a raw JSON document against the chart schema.
func ValidateSchema(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart json")
	}
	return ValidateValue(v)
}

// ValidateValue checks an already decoded document (maps, slices, strings,
// float64s and bools, as produced by encoding/json) against the chart schema.
func ValidateValue(v any) error {
	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return errors.Wrap(errors.ErrCodeInternal, schemaErr, "compile chart schema")
	}
	if err := schema.Validate(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "chart does not match schema")
	}
	return nil
}
