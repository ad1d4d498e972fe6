package preset

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	egvis "github.com/zontasticality/egraph-vis"
)

// schemaDoc checks what a JSON Schema can check cheaply: required fields,
// the default_impl enum, and iteration_cap's positivity. Arity consistency,
// duplicate rule names, and illegal "?"-names can't be expressed this way
// and are checked procedurally in validate.go instead.
const schemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "label", "root", "rewrites"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "label": {"type": "string"},
    "description": {"type": "string"},
    "schema_version": {"type": "string"},
    "root": {"type": ["object", "string"]},
    "initial_leaf_ids": {
      "type": "array",
      "items": {"type": "string"}
    },
    "rewrites": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "lhs", "rhs"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "enabled": {"type": "boolean"}
        }
      }
    },
    "options": {
      "type": "object",
      "properties": {
        "default_impl": {"type": "string", "enum": ["naive", "deferred"]},
        "iteration_cap": {"type": "integer", "exclusiveMinimum": 0}
      }
    }
  }
}`

var schema = compileSchema()

func compileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("preset.schema.json", strings.NewReader(schemaDoc)); err != nil {
		panic(err)
	}
	s, err := c.Compile("preset.schema.json")
	if err != nil {
		panic(err)
	}
	return s
}

// validateSchema runs the raw decoded JSON document against schemaDoc.
func validateSchema(doc any) error {
	if err := schema.Validate(doc); err != nil {
		return egvis.Wrap(egvis.ErrSchema, "preset failed schema validation", err)
	}
	return nil
}
