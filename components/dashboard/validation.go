package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const layoutSchemaDocument = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "uniqueItems": true,
  "items": {"type": "string", "minLength": 1}
}`

// LayoutDecoder turns a persisted payload into a widget sequence.
type LayoutDecoder interface {
	Decode(data []byte) ([]string, error)
}

// JSONSchemaLayoutDecoder validates persisted layouts against a JSON schema
// (array of unique, non-empty strings) before decoding them.
type JSONSchemaLayoutDecoder struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewJSONSchemaLayoutDecoder builds a decoder backed by jsonschema v5.
func NewJSONSchemaLayoutDecoder() *JSONSchemaLayoutDecoder {
	return &JSONSchemaLayoutDecoder{}
}

// Decode validates and decodes data.
func (d *JSONSchemaLayoutDecoder) Decode(data []byte) ([]string, error) {
	schema, err := d.compiled()
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("dashboard: parse layout: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("dashboard: layout failed validation: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("dashboard: decode layout: %w", err)
	}
	return ids, nil
}

func (d *JSONSchemaLayoutDecoder) compiled() (*jsonschema.Schema, error) {
	d.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		const name = "layout.json"
		if err := compiler.AddResource(name, bytes.NewReader([]byte(layoutSchemaDocument))); err != nil {
			d.err = fmt.Errorf("dashboard: load layout schema: %w", err)
			return
		}
		d.schema, d.err = compiler.Compile(name)
		if d.err != nil {
			d.err = fmt.Errorf("dashboard: compile layout schema: %w", d.err)
		}
	})
	return d.schema, d.err
}
