package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/your-org/persona/internal/observability"
)

var (
	// ErrInvalidCategory is returned when a category is outside the closed
	// psychographic/behavioral/contextual set.
	ErrInvalidCategory = errors.New("invalid attribute category")

	// ErrInvalidPayload is returned when payload input is not a well-formed
	// JSON object. Bad input is rejected, never coerced to an empty object.
	ErrInvalidPayload = errors.New("invalid attribute payload")
)

type Category string

const (
	CategoryPsychographic Category = "psychographic"
	CategoryBehavioral    Category = "behavioral"
	CategoryContextual    Category = "contextual"
)

// Categories returns the closed category set in canonical order.
func Categories() []Category {
	return []Category{CategoryPsychographic, CategoryBehavioral, CategoryContextual}
}

// ParseCategory normalizes external string input to a Category.
// Internal code only ever sees the enum after this boundary.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPsychographic, CategoryBehavioral, CategoryContextual:
		return true
	}
	return false
}

// AttributeContainer holds the schema-less payload of one category for one
// persona. Data is always a serialized JSON object.
type AttributeContainer struct {
	ID        int64    `json:"id" db:"id"`
	PersonaID int64    `json:"persona_id" db:"persona_id"`
	Category  Category `json:"category" db:"category"`
	Data      string   `json:"data" db:"data"`
}

// NewAttributeContainer builds a container for the given persona and
// category. payload may be nil (empty object), a map[string]any, or JSON
// text as string or []byte.
func NewAttributeContainer(personaID int64, category Category, payload any) (*AttributeContainer, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	ac := &AttributeContainer{
		PersonaID: personaID,
		Category:  category,
		Data:      "{}",
	}
	if payload != nil {
		if err := ac.SetPayload(payload); err != nil {
			return nil, err
		}
	}
	return ac, nil
}

// Payload deserializes the stored data. Reads are fail-open: corrupt stored
// text yields an empty mapping, counted and logged rather than propagated.
func (ac *AttributeContainer) Payload() map[string]any {
	if ac.Data == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(ac.Data), &m); err != nil {
		observability.CorruptPayloads.WithLabelValues(string(ac.Category)).Inc()
		slog.Warn("corrupt attribute payload, serving empty",
			"persona_id", ac.PersonaID, "category", ac.Category, "error", err)
		return map[string]any{}
	}
	if m == nil {
		return map[string]any{}
	}
	return m
}

// SetPayload replaces the stored data. Writes are fail-closed: anything that
// is not a well-formed JSON object is rejected with ErrInvalidPayload.
func (ac *AttributeContainer) SetPayload(payload any) error {
	encoded, err := encodePayload(payload)
	if err != nil {
		return err
	}
	ac.Data = encoded
	return nil
}

// Field returns the value of a single payload key, or nil when absent.
func (ac *AttributeContainer) Field(name string) any {
	return ac.Payload()[name]
}

// SetField writes one payload key without disturbing sibling keys.
func (ac *AttributeContainer) SetField(name string, value any) error {
	m := ac.Payload()
	m[name] = value
	return ac.SetPayload(m)
}

// Merge overwrites only the keys present in incoming and keeps all other
// stored keys. Applying the same merge twice is idempotent.
func (ac *AttributeContainer) Merge(incoming map[string]any) error {
	if len(incoming) == 0 {
		return nil
	}
	m := ac.Payload()
	for k, v := range incoming {
		m[k] = v
	}
	return ac.SetPayload(m)
}

func encodePayload(payload any) (string, error) {
	switch v := payload.(type) {
	case nil:
		return "{}", nil
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return string(data), nil
	case string:
		return validateJSONObject([]byte(v))
	case []byte:
		return validateJSONObject(v)
	default:
		return "", fmt.Errorf("%w: payload must be a mapping or JSON text, got %T", ErrInvalidPayload, payload)
	}
}

func validateJSONObject(data []byte) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if m == nil {
		return "{}", nil
	}
	return string(data), nil
}
