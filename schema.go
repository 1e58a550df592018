package deepresearch

import (
	"encoding/json"
	"fmt"
)

// FieldKind is the JSON-schema-ish primitive kind of one Field (§9
// "Dynamic per-call schemas": schema descriptors are per-call data, not
// compile-time types).
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	KindObject  FieldKind = "object"
	KindArray   FieldKind = "array"
)

// Field describes one property of an object Schema, mirroring the
// `jsonschema:"required,description=..."` struct-tag convention used on
// the Go structs the gateway unmarshals model output into (see
// PreFilterDecision, SourceEvaluationEntry, ExtractionResult).
type Field struct {
	Name        string
	Kind        FieldKind
	Required    bool
	Description string
	Enum        []string
	Items       *Schema // set when Kind == KindArray
}

// Schema is either an object (a set of Fields) or an array of a nested
// Schema. The Gateway validates a model's parsed JSON output against a
// Schema before handing it to the caller (§4.1).
type Schema struct {
	Kind   FieldKind // KindObject or KindArray
	Fields []Field   // when Kind == KindObject
	Items  *Schema   // when Kind == KindArray
}

// ValidateSchema checks that raw JSON satisfies schema: every required
// object field is present, and array elements recursively validate. It
// does not enforce types strictly — models routinely emit "0.9" style
// numbers as strings — it only enforces presence, which is what the
// pipeline actually depends on.
func ValidateSchema(raw json.RawMessage, schema Schema) error {
	switch schema.Kind {
	case KindArray:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("expected array: %w", err)
		}
		if schema.Items == nil {
			return nil
		}
		for i, item := range items {
			if err := ValidateSchema(item, *schema.Items); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	case KindObject, "":
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("expected object: %w", err)
		}
		for _, f := range schema.Fields {
			value, ok := obj[f.Name]
			if !ok {
				if f.Required {
					return fmt.Errorf("missing required field %q", f.Name)
				}
				continue
			}
			if f.Kind == KindArray && f.Items != nil {
				if err := ValidateSchema(value, Schema{Kind: KindArray, Items: f.Items}); err != nil {
					return fmt.Errorf("field %q: %w", f.Name, err)
				}
			}
		}
		return nil
	default:
		return nil
	}
}
