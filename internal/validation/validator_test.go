package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/persona/internal/fieldconfig"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	return New(fieldconfig.Default())
}

func TestValidatePassesForWellTypedPayloads(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		category string
		data     map[string]any
	}{
		{"psychographic", map[string]any{
			"interests": []any{"reading", "chess"},
			"lifestyle": "urban",
		}},
		{"behavioral", map[string]any{
			"browsing_habits": []any{"news"},
			"device_usage":    map[string]any{"mobile": "heavy"},
		}},
		{"contextual", map[string]any{
			"time_of_day": "morning",
			"device_type": "mobile",
			"screen_size": "1920x1080",
		}},
		// empty payloads are valid: partial updates underpin merge semantics
		{"psychographic", map[string]any{}},
		// nil string values are allowed
		{"contextual", map[string]any{"weather": nil}},
		// undeclared fields are accepted: the schema constrains known fields only
		{"contextual", map[string]any{"undeclared_field": 42}},
	}

	for _, tt := range tests {
		ok, errs := v.Validate(tt.category, tt.data)
		assert.True(t, ok, "category %s data %v: %v", tt.category, tt.data, errs)
		assert.Empty(t, errs)
	}
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	v := newValidator(t)
	ok, errs := v.Validate("invalid_cat", map[string]any{})
	assert.False(t, ok)
	require.Len(t, errs, 1)
}

func TestValidateRejectsNilData(t *testing.T) {
	v := newValidator(t)
	ok, _ := v.Validate("psychographic", nil)
	assert.False(t, ok)
}

func TestValidateTypeViolations(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name     string
		category string
		data     map[string]any
		field    string
	}{
		{"list field given string", "psychographic", map[string]any{"interests": "reading"}, "interests"},
		{"dict field given list", "behavioral", map[string]any{"device_usage": []any{"mobile"}}, "device_usage"},
		{"string field given number", "psychographic", map[string]any{"lifestyle": 3.14}, "lifestyle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, errs := v.Validate(tt.category, tt.data)
			assert.False(t, ok)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.field)
		})
	}
}

func TestValidateOptionsViolationNamesAllowedSet(t *testing.T) {
	v := newValidator(t)

	ok, errs := v.Validate("contextual", map[string]any{"device_type": "phone"})
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "device_type")
	assert.Contains(t, errs[0], "desktop, laptop, tablet, mobile")
}

func TestValidateCollectsAllViolations(t *testing.T) {
	v := newValidator(t)

	// one type violation and one options violation, both reported in one pass
	ok, errs := v.Validate("contextual", map[string]any{
		"time_of_day": 123,
		"device_type": "phone",
	})
	assert.False(t, ok)
	require.Len(t, errs, 2)

	var typeErr, optionsErr bool
	for _, e := range errs {
		if e == `field "time_of_day" must be a string` {
			typeErr = true
		}
		if e == `field "device_type" must be one of: desktop, laptop, tablet, mobile` {
			optionsErr = true
		}
	}
	assert.True(t, typeErr, "missing type violation: %v", errs)
	assert.True(t, optionsErr, "missing options violation: %v", errs)
}

func TestValidateAgainstReloadedRegistry(t *testing.T) {
	registry := fieldconfig.Default()
	require.NoError(t, registry.Load(map[string]fieldconfig.CategorySchema{
		"psychographic": {Fields: []fieldconfig.FieldDefinition{{Name: "mood", Type: fieldconfig.FieldTypeString, Options: []string{"calm", "tense"}}}},
		"behavioral":    {Fields: []fieldconfig.FieldDefinition{{Name: "clicks", Type: fieldconfig.FieldTypeList}}},
		"contextual":    {Fields: []fieldconfig.FieldDefinition{{Name: "locale", Type: fieldconfig.FieldTypeString}}},
	}))

	v := New(registry)

	ok, _ := v.Validate("psychographic", map[string]any{"mood": "calm"})
	assert.True(t, ok)

	ok, errs := v.Validate("psychographic", map[string]any{"mood": "angry"})
	assert.False(t, ok)
	require.Len(t, errs, 1)

	// fields from the replaced default config are now undeclared, so accepted
	ok, _ = v.Validate("psychographic", map[string]any{"interests": "not-a-list"})
	assert.True(t, ok)
}
