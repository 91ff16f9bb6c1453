package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// wireSchema is the structural contract for incoming documents. This is
// deliberately not a full JSON-Schema of the format, only the type and
// presence checks needed for safe rendering.
const wireSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "root"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "root": {"$ref": "#/$defs/component"},
    "data": {"type": "object"},
    "meta": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "description": {"type": "string"}
      }
    }
  },
  "$defs": {
    "component": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "type": {"type": "string", "minLength": 1},
        "props": {"type": "object"},
        "children": {"type": "array", "items": {"$ref": "#/$defs/component"}},
        "events": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["event", "action"],
            "properties": {
              "event": {"type": "string", "minLength": 1},
              "action": {"type": "string", "minLength": 1}
            }
          }
        },
        "style": {"type": "object"},
        "text": {"type": "string"},
        "binding": {"type": "string"},
        "condition": {"type": "string"},
        "loop": {
          "type": "object",
          "required": ["source"],
          "properties": {
            "source": {"type": "string", "minLength": 1},
            "itemName": {"type": "string"},
            "indexName": {"type": "string"}
          }
        }
      }
    }
  }
}`

var compiledWireSchema = mustCompileWireSchema()

func mustCompileWireSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	const schemaURL = "https://llm2ui.schemas.local/uischema.schema.json"
	if err := c.AddResource(schemaURL, strings.NewReader(wireSchema)); err != nil {
		panic(fmt.Sprintf("schema: load wire schema: %v", err))
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("schema: compile wire schema: %v", err))
	}
	return s
}

// Parse decodes and structurally validates a UI Schema document.
func Parse(data []byte) (*UISchema, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	if err := compiledWireSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("schema: wire validation: %w", err)
	}

	var s UISchema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
