package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildRecordSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the serialized record shape. Every field is
// optional and nullable since total extraction failure is a valid record.
func buildRecordSchema() map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}
	props := map[string]any{
		"filename":       map[string]any{"type": "string"},
		"invoice_number": nullableString,
		"date":           nullableString,
		"vendor":         nullableString,
		"title":          nullableString,
		"summary":        nullableString,
		"total_amount": map[string]any{
			"type":    []string{"string", "null"},
			"pattern": `^-?\d+(\.\d{1,2})?$`,
		},
		"line_items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
		"key_metrics": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type": []string{"number", "string"},
			},
		},
		"tables": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"filename"},
	}
}

var recordSchema = mustCompileSchema(buildRecordSchema())

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal record schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add record schema: %v", err))
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		panic(fmt.Sprintf("compile record schema: %v", err))
	}
	return schema
}

// validateRecordMap checks one serialized record against the schema. The
// map is round-tripped through JSON so typed values validate the same way
// they will serialize.
func validateRecordMap(m map[string]any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := recordSchema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
