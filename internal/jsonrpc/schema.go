package jsonrpc

import (
	"fmt"

	"github.com/juju/gojsonschema"
)

// requestSchema is the only request shape the endpoint accepts. Every params
// element is an array, an object or a scalar, and no other top-level
// properties are allowed.
const requestSchema = `{
  "type": "object",
  "required": ["jsonrpc", "method", "params", "id"],
  "additionalProperties": false,
  "properties": {
    "jsonrpc": {"type": "string", "enum": ["2.0"]},
    "method": {"type": "string", "minLength": 1},
    "params": {
      "type": "array",
      "items": {
        "anyOf": [
          {"type": "array"},
          {"type": "object"},
          {"type": ["string", "number", "boolean", "null"]}
        ]
      }
    },
    "id": {"type": ["integer", "string", "null"]}
  }
}`

var compiledSchema = mustCompileSchema(requestSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("jsonrpc: compiling request schema: %v", err))
	}
	return schema
}

// validate checks doc against the request schema and returns the
// individual violations, if any.
func validate(doc string) ([]string, error) {
	result, err := compiledSchema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s", e))
	}
	return violations, nil
}
