package check

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "https://flowtower.dev/schemas/pipeline-tree.json"

const pipelineTreeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$ref": "#/$defs/tree",
  "$defs": {
    "ids": {
      "oneOf": [
        {"type": "null"},
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "event": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "type": {"type": "string"},
        "incoming": {"$ref": "#/$defs/ids"},
        "outgoing": {"$ref": "#/$defs/ids"}
      }
    },
    "activity": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "type": {"enum": ["ServiceActivity", "SubProcess"]},
        "incoming": {"$ref": "#/$defs/ids"},
        "outgoing": {"$ref": "#/$defs/ids"},
        "component": {"type": ["object", "null"]},
        "pipeline": {"$ref": "#/$defs/tree"}
      }
    },
    "condition": {
      "type": "object",
      "properties": {
        "flow_id": {"type": "string"},
        "name": {"type": "string"},
        "evaluate": {"type": "string"},
        "tag": {"type": "string"}
      }
    },
    "gateway": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "type": {"enum": ["ParallelGateway", "ExclusiveGateway", "ConditionalParallelGateway", "ConvergeGateway"]},
        "incoming": {"$ref": "#/$defs/ids"},
        "outgoing": {"$ref": "#/$defs/ids"},
        "conditions": {
          "type": ["object", "null"],
          "additionalProperties": {"$ref": "#/$defs/condition"}
        },
        "default_condition": {
          "oneOf": [{"type": "null"}, {"$ref": "#/$defs/condition"}]
        },
        "converge_gateway_id": {"type": "string"}
      }
    },
    "flow": {
      "type": "object",
      "required": ["source", "target"],
      "properties": {
        "id": {"type": "string"},
        "source": {"type": "string", "minLength": 1},
        "target": {"type": "string", "minLength": 1},
        "is_default": {"type": "boolean"}
      }
    },
    "tree": {
      "type": "object",
      "required": ["start_event", "end_event"],
      "properties": {
        "start_event": {"$ref": "#/$defs/event"},
        "end_event": {"$ref": "#/$defs/event"},
        "activities": {
          "type": ["object", "null"],
          "additionalProperties": {"$ref": "#/$defs/activity"}
        },
        "gateways": {
          "type": ["object", "null"],
          "additionalProperties": {"$ref": "#/$defs/gateway"}
        },
        "flows": {
          "type": ["object", "null"],
          "additionalProperties": {"$ref": "#/$defs/flow"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// compiledSchema compiles the payload schema once.
func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(pipelineTreeSchema))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal pipeline tree schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add pipeline tree schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Shape validates a decoded payload against the pipeline tree schema. The
// value is normalized through JSON first, so YAML documents check the same
// way.
func Shape(v any) ([]Finding, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil, nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	return violations(verr), nil
}

var printer = message.NewPrinter(language.English)

// violations flattens a validation error tree into one finding per leaf.
func violations(verr *jsonschema.ValidationError) []Finding {
	if len(verr.Causes) == 0 {
		return []Finding{{
			Severity: SeverityError,
			Pass:     PassSchema,
			Path:     "/" + strings.Join(verr.InstanceLocation, "/"),
			Message:  verr.ErrorKind.LocalizedString(printer),
		}}
	}
	var out []Finding
	for _, cause := range verr.Causes {
		out = append(out, violations(cause)...)
	}
	return out
}
