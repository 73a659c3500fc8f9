package document

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema is the JSON Schema a document export must satisfy. It is
// the contract external consumers of `stepwise export` can rely on.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "steps"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "tagline": {"type": "string"},
    "summary_bullets": {"type": "array", "items": {"type": "string"}},
    "testing_items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text"],
        "properties": {"text": {"type": "string", "minLength": 1}}
      }
    },
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["index", "title"],
        "properties": {
          "index": {"type": "integer", "minimum": 1},
          "declared": {"type": "integer", "minimum": 1},
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "actions": {"$ref": "#/definitions/actions"},
          "sub_steps": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["label", "ordinal", "title"],
              "properties": {
                "label": {"type": "string", "pattern": "^[0-9]+\\.[0-9]+$"},
                "ordinal": {"type": "integer", "minimum": 1},
                "title": {"type": "string", "minLength": 1},
                "actions": {"$ref": "#/definitions/actions"}
              }
            }
          }
        }
      }
    }
  },
  "definitions": {
    "actions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text"],
        "properties": {
          "text": {"type": "string", "minLength": 1},
          "references": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["raw", "kind"],
              "properties": {
                "raw": {"type": "string", "minLength": 1},
                "kind": {"enum": ["file", "directory", "command", "unknown"]}
              }
            }
          }
        }
      }
    }
  }
}`

// MarshalJSONExport serializes the document for external consumption.
func MarshalJSONExport(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// CheckJSONExport validates a JSON export against the document schema and
// returns the schema violations, if any.
func CheckJSONExport(data []byte) ([]string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return violations, nil
}
