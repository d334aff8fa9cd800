package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/your-org/persona/internal/fieldconfig"
	"github.com/your-org/persona/internal/models"
)

// Validator checks attribute payloads against the field configuration
// registry for a category.
type Validator struct {
	registry *fieldconfig.Registry
}

func New(registry *fieldconfig.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks data against the declared fields of a category. Every
// violation is collected; validation never stops at the first error.
// Fields absent from the payload and fields not declared in the schema are
// never errors. Values are expected in their JSON-decoded shapes
// ([]any for lists, map[string]any for dicts).
func (v *Validator) Validate(category string, data map[string]any) (bool, []string) {
	if _, err := models.ParseCategory(category); err != nil {
		return false, []string{fmt.Sprintf("invalid category: %s", category)}
	}
	if data == nil {
		return false, []string{"data must be a mapping"}
	}

	schema, ok := v.registry.Category(category)
	if !ok {
		return false, []string{fmt.Sprintf("no configuration found for category: %s", category)}
	}

	var errs []string
	for _, field := range schema.Fields {
		value, present := data[field.Name]
		if !present {
			continue
		}

		typeOK := true
		switch field.Type {
		case fieldconfig.FieldTypeList:
			if _, isList := value.([]any); !isList {
				errs = append(errs, fmt.Sprintf("field %q must be a list", field.Name))
				typeOK = false
			}
		case fieldconfig.FieldTypeDict:
			if _, isMap := value.(map[string]any); !isMap {
				errs = append(errs, fmt.Sprintf("field %q must be a mapping", field.Name))
				typeOK = false
			}
		case fieldconfig.FieldTypeString:
			if value != nil {
				if _, isString := value.(string); !isString {
					errs = append(errs, fmt.Sprintf("field %q must be a string", field.Name))
					typeOK = false
				}
			}
		}

		// A field that already failed its type check reports that one
		// violation; the options check applies to well-typed values only.
		if typeOK && len(field.Options) > 0 && value != nil {
			s, isString := value.(string)
			if !isString || !slices.Contains(field.Options, s) {
				errs = append(errs, fmt.Sprintf("field %q must be one of: %s",
					field.Name, strings.Join(field.Options, ", ")))
			}
		}
	}

	return len(errs) == 0, errs
}
