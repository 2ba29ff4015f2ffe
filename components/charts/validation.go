package charts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// pageManifestSchema is the structural contract for raw manifest documents.
// Strict YAML decoding catches unknown fields; the schema catches wrong
// shapes before they reach typed decoding.
var pageManifestSchema = map[string]any{
	"type":     "object",
	"required": []any{"dataset"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"title":   map[string]any{"type": "string"},
		"dataset": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url":  map[string]any{"type": "string"},
				"path": map[string]any{"type": "string"},
			},
		},
		"mode": map[string]any{
			"type": "string",
			"enum": []any{"raw", "yoy", "pct", "pct_ex", "spread", "pop", "pop3", "share"},
		},
		"horizon":       map[string]any{"type": "integer", "minimum": 0},
		"total_id":      map[string]any{"type": "string"},
		"excluded_id":   map[string]any{"type": "string"},
		"exclude":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"filter_groups": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"filters": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"key"},
				"properties": map[string]any{
					"key":      map[string]any{"type": "string"},
					"label":    map[string]any{"type": "string"},
					"group":    map[string]any{"type": "string"},
					"suffixes": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
		"cities": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"key"},
				"properties": map[string]any{
					"key":   map[string]any{"type": "string"},
					"label": map[string]any{"type": "string"},
				},
			},
		},
		"categories": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"key", "range"},
				"properties": map[string]any{
					"key":      map[string]any{"type": "string"},
					"label":    map[string]any{"type": "string"},
					"total_id": map[string]any{"type": "string"},
					"range": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string"},
						"minItems": 2,
						"maxItems": 2,
					},
				},
			},
		},
		"computed": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "sources"},
				"properties": map[string]any{
					"id":   map[string]any{"type": "string"},
					"name": map[string]any{"type": "string"},
					"sources": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "integer"},
						"minItems": 2,
						"maxItems": 2,
					},
				},
			},
		},
		"charts": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"kind":   map[string]any{"type": "string", "enum": []any{"line", "bar"}},
					"height": map[string]any{"type": "string"},
				},
			},
		},
	},
}

// ManifestValidator validates raw page manifest documents against the page
// schema. Compilation happens once and is reused.
type ManifestValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewManifestValidator builds a validator backed by jsonschema v5.
func NewManifestValidator() *ManifestValidator {
	return &ManifestValidator{}
}

// Validate ensures the decoded document satisfies the manifest schema.
func (v *ManifestValidator) Validate(doc map[string]any) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	normalized, err := normalizeDocument(doc)
	if err != nil {
		return err
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("charts: manifest failed validation: %w", err)
	}
	return nil
}

func (v *ManifestValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(pageManifestSchema)
		if err != nil {
			v.err = fmt.Errorf("charts: marshal manifest schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const name = "page_manifest.json"
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("charts: load manifest schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(name)
	})
	return v.compiled, v.err
}

// normalizeDocument round-trips the document through JSON so YAML-decoded
// values take the types the schema validator expects.
func normalizeDocument(doc map[string]any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("charts: normalize manifest document: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, fmt.Errorf("charts: normalize manifest document: %w", err)
	}
	return normalized, nil
}
