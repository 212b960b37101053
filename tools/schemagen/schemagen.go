// Package main generates the JSON schema that patch spec documents must satisfy.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/Sumatoshi-tech/graft/pkg/patch"
)

// schemaFile is the generated file name.
const schemaFile = "patch-spec.json"

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	MinLength            int                `json:"minLength,omitempty"`
	MinItems             int                `json:"minItems,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

func main() {
	outputDir := flag.String("o", "pkg/catalog/schema", "Output directory for the schema")
	flag.Parse()

	mkdirErr := os.MkdirAll(*outputDir, 0o755)
	if mkdirErr != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", mkdirErr)
		os.Exit(1)
	}

	writeErr := writeSchema(filepath.Join(*outputDir, schemaFile), generateSchema())
	if writeErr != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", writeErr)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", schemaFile)
}

// generateSchema derives the spec document schema from patch.Spec. Fields
// without omitempty are required and must be non-empty.
func generateSchema() *Schema {
	props, required := structToProperties(reflect.TypeOf(patch.Spec{}))
	closed := false

	return &Schema{
		Schema:               "https://json-schema.org/draft-07/schema#",
		Title:                "Graft Patch Spec",
		Description:          "JSON schema for one graft patch spec document",
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: &closed,
	}
}

func structToProperties(t reflect.Type) (map[string]*Schema, []string) {
	props := make(map[string]*Schema)

	var required []string

	for i := range t.NumField() {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")

		if jsonTag == "-" || jsonTag == "" {
			continue
		}

		parts := strings.Split(jsonTag, ",")
		jsonName := parts[0]
		isOmitempty := len(parts) > 1 && parts[1] == "omitempty"

		fieldSchema := typeToSchema(field.Type, !isOmitempty)
		props[jsonName] = fieldSchema

		if !isOmitempty {
			required = append(required, jsonName)
		}
	}

	return props, required
}

func typeToSchema(t reflect.Type, nonEmpty bool) *Schema {
	switch t.Kind() {
	case reflect.String:
		s := &Schema{Type: "string"}
		if nonEmpty {
			s.MinLength = 1
		}

		return s

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Slice:
		s := &Schema{
			Type:  "array",
			Items: typeToSchema(t.Elem(), nonEmpty),
		}
		if nonEmpty {
			s.MinItems = 1
		}

		return s

	case reflect.Ptr:
		return typeToSchema(t.Elem(), nonEmpty)

	default:
		return &Schema{Type: "object"}
	}
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
