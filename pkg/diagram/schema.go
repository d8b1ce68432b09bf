package diagram

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/matzehuels/lifeline/pkg/errors"
)

const schemaURL = "https://lifeline.dev/schemas/document.json"

// documentSchemaJSON describes the input document. Each event variant is
// selected by its "type" field and rejects properties it does not use.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://lifeline.dev/schemas/document.json",
  "type": "object",
  "required": ["events"],
  "properties": {
    "title": { "type": "string" },
    "actors": {
      "type": "array",
      "items": { "$ref": "#/$defs/actor" }
    },
    "events": {
      "type": "array",
      "items": { "$ref": "#/$defs/event" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "id": { "type": "string", "minLength": 1, "maxLength": 256 },
    "link": { "type": "string", "format": "uri-reference" },
    "actor": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "$ref": "#/$defs/id" },
        "name": { "type": "string" },
        "link": { "$ref": "#/$defs/link" }
      },
      "additionalProperties": false
    },
    "event": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {
          "enum": ["add_actor", "message", "activate_start", "activate_end", "note",
                   "section_start", "section_divider", "section_end", "set_title"]
        }
      },
      "allOf": [
        { "if": { "properties": { "type": { "const": "add_actor" } } }, "then": { "$ref": "#/$defs/add_actor" } },
        { "if": { "properties": { "type": { "const": "message" } } }, "then": { "$ref": "#/$defs/message" } },
        { "if": { "properties": { "type": { "const": "activate_start" } } }, "then": { "$ref": "#/$defs/activation" } },
        { "if": { "properties": { "type": { "const": "activate_end" } } }, "then": { "$ref": "#/$defs/activation" } },
        { "if": { "properties": { "type": { "const": "note" } } }, "then": { "$ref": "#/$defs/note" } },
        { "if": { "properties": { "type": { "const": "section_start" } } }, "then": { "$ref": "#/$defs/section_start" } },
        { "if": { "properties": { "type": { "const": "section_divider" } } }, "then": { "$ref": "#/$defs/section_divider" } },
        { "if": { "properties": { "type": { "const": "section_end" } } }, "then": { "$ref": "#/$defs/section_end" } },
        { "if": { "properties": { "type": { "const": "set_title" } } }, "then": { "$ref": "#/$defs/set_title" } }
      ]
    },
    "add_actor": {
      "required": ["id"],
      "properties": {
        "type": {},
        "id": { "$ref": "#/$defs/id" },
        "name": { "type": "string" },
        "link": { "$ref": "#/$defs/link" }
      },
      "additionalProperties": false
    },
    "message": {
      "required": ["from", "to"],
      "properties": {
        "type": {},
        "from": { "$ref": "#/$defs/id" },
        "to": { "$ref": "#/$defs/id" },
        "text": { "type": "string" },
        "arrow": {
          "enum": ["solid", "dotted", "solid-open", "dotted-open", "solid-cross", "dotted-cross"]
        },
        "sequence": { "type": "integer", "minimum": 0 }
      },
      "additionalProperties": false
    },
    "activation": {
      "required": ["actor"],
      "properties": {
        "type": {},
        "actor": { "$ref": "#/$defs/id" }
      },
      "additionalProperties": false
    },
    "note": {
      "required": ["actors", "placement"],
      "properties": {
        "type": {},
        "actors": {
          "type": "array",
          "minItems": 1,
          "maxItems": 2,
          "items": { "$ref": "#/$defs/id" }
        },
        "placement": { "enum": ["left_of", "right_of", "over"] },
        "text": { "type": "string" }
      },
      "additionalProperties": false
    },
    "section_start": {
      "required": ["kind"],
      "properties": {
        "type": {},
        "kind": { "enum": ["loop", "opt", "alt", "par", "rect"] },
        "label": { "type": "string" }
      },
      "additionalProperties": false
    },
    "section_divider": {
      "required": ["kind"],
      "properties": {
        "type": {},
        "kind": { "enum": ["else", "and"] },
        "label": { "type": "string" }
      },
      "additionalProperties": false
    },
    "section_end": {
      "properties": {
        "type": {},
        "kind": { "enum": ["loop", "opt", "alt", "par", "rect"] }
      },
      "additionalProperties": false
    },
    "set_title": {
      "required": ["text"],
      "properties": {
        "type": {},
        "text": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

var (
	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat()

		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal document schema: %w", err)
			return
		}
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add document schema resource: %w", err)
			return
		}
		documentSchema, schemaErr = c.Compile(schemaURL)
	})
	return documentSchema, schemaErr
}

// Schema returns the JSON Schema that input documents are validated
// against.
func Schema() []byte { return []byte(documentSchemaJSON) }

// Validate checks raw document bytes against the document schema. Syntax
// errors are INVALID_FORMAT; schema violations are INVALID_INPUT with the
// offending JSON pointer in the message.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "document schema")
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "document is not valid JSON")
	}
	if err := s.Validate(inst); err != nil {
		return violationError(err)
	}
	return nil
}

// validateValue round-trips v through encoding/json so numbers reach the
// validator as json.Number.
func validateValue(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return Validate(b)
}

func violationError(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "document does not match schema")
	}

	violations := collectViolations(verr)
	switch len(violations) {
	case 0:
		return errors.New(errors.ErrCodeInvalidInput, "%s", verr.Error())
	case 1:
		return errors.New(errors.ErrCodeInvalidInput, "%s", violations[0])
	}
	return errors.New(errors.ErrCodeInvalidInput, "%d schema violations: %s",
		len(violations), strings.Join(violations, "; "))
}

// collectViolations flattens a ValidationError tree into leaf messages
// prefixed with their instance location.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var out []string
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}
