package fieldconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

// ErrInvalidConfig marks a malformed registry document. The active
// configuration is never replaced by a partial one.
var ErrInvalidConfig = errors.New("invalid field configuration")

type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeList   FieldType = "list"
	FieldTypeDict   FieldType = "dict"
)

// FieldDefinition describes one attribute field within a category.
type FieldDefinition struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	// Options, when set, closes the allowed value set for string fields.
	Options []string `json:"options,omitempty"`
}

// CategorySchema groups the field definitions of one attribute category.
type CategorySchema struct {
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []FieldDefinition `json:"fields"`
}

var requiredCategories = []string{"psychographic", "behavioral", "contextual"}

// Registry is the process-wide field configuration. Lookups read an
// immutable snapshot; Load swaps the whole snapshot atomically.
type Registry struct {
	schemas atomic.Pointer[map[string]CategorySchema]
}

// Default returns a registry populated with the built-in field configuration.
func Default() *Registry {
	r := &Registry{}
	cfg := defaultConfig()
	r.schemas.Store(&cfg)
	return r
}

// All returns the full category → schema mapping.
func (r *Registry) All() map[string]CategorySchema {
	return *r.schemas.Load()
}

// Category returns the schema for the given category name.
// Unknown categories yield ok=false, never an error.
func (r *Registry) Category(name string) (CategorySchema, bool) {
	schema, ok := (*r.schemas.Load())[name]
	return schema, ok
}

// Field returns a single field definition within a category, if declared.
func (r *Registry) Field(category, field string) (FieldDefinition, bool) {
	schema, ok := r.Category(category)
	if !ok {
		return FieldDefinition{}, false
	}
	for _, f := range schema.Fields {
		if f.Name == field {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// LoadFile reads a JSON registry document and swaps it in atomically.
// On any error the previously active configuration stays in effect.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read field config: %w", err)
	}

	var doc map[string]CategorySchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return r.Load(doc)
}

// Load validates a registry document and atomically replaces the active one.
func (r *Registry) Load(doc map[string]CategorySchema) error {
	if err := validate(doc); err != nil {
		return err
	}
	r.schemas.Store(&doc)
	return nil
}

func validate(doc map[string]CategorySchema) error {
	for _, cat := range requiredCategories {
		schema, ok := doc[cat]
		if !ok {
			return fmt.Errorf("%w: missing required category %q", ErrInvalidConfig, cat)
		}
		if len(schema.Fields) == 0 {
			return fmt.Errorf("%w: category %q has no fields", ErrInvalidConfig, cat)
		}
		for _, f := range schema.Fields {
			if f.Name == "" {
				return fmt.Errorf("%w: category %q has a field without a name", ErrInvalidConfig, cat)
			}
			switch f.Type {
			case FieldTypeString, FieldTypeList, FieldTypeDict:
			default:
				return fmt.Errorf("%w: field %q in category %q has unknown type %q", ErrInvalidConfig, f.Name, cat, f.Type)
			}
		}
	}
	return nil
}
