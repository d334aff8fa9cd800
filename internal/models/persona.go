package models

import (
	"time"
)

// Demographic is the fixed-shape sub-record of a persona. Pointer fields
// distinguish "never set" from a zero value so partial patches can leave
// omitted fields untouched.
type Demographic struct {
	ID         int64    `json:"id" db:"id"`
	PersonaID  int64    `json:"persona_id" db:"persona_id"`
	Latitude   *float64 `json:"latitude" db:"latitude"`
	Longitude  *float64 `json:"longitude" db:"longitude"`
	Language   *string  `json:"language" db:"language"`
	Country    *string  `json:"country" db:"country"`
	City       *string  `json:"city" db:"city"`
	Region     *string  `json:"region" db:"region"`
	Age        *int     `json:"age" db:"age"`
	Gender     *string  `json:"gender" db:"gender"`
	Education  *string  `json:"education" db:"education"`
	Income     *string  `json:"income" db:"income"`
	Occupation *string  `json:"occupation" db:"occupation"`
}

func (d *Demographic) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"persona_id": d.PersonaID,
	}
	putOpt(m, "latitude", d.Latitude)
	putOpt(m, "longitude", d.Longitude)
	putOpt(m, "language", d.Language)
	putOpt(m, "country", d.Country)
	putOpt(m, "city", d.City)
	putOpt(m, "region", d.Region)
	putOpt(m, "age", d.Age)
	putOpt(m, "gender", d.Gender)
	putOpt(m, "education", d.Education)
	putOpt(m, "income", d.Income)
	putOpt(m, "occupation", d.Occupation)
	return m
}

// putOpt emits every key so the wire shape is stable; unset fields are null.
func putOpt[T any](m map[string]any, key string, v *T) {
	if v == nil {
		m[key] = nil
		return
	}
	m[key] = *v
}

// Persona is the aggregate root: one optional Demographic and at most one
// AttributeContainer per category.
type Persona struct {
	ID          int64                `json:"id" db:"id"`
	Name        string               `json:"name" db:"name"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" db:"updated_at"`
	Demographic *Demographic         `json:"demographic,omitempty"`
	Attributes  []AttributeContainer `json:"attributes,omitempty"`
}

// AttributeByCategory returns the container for the category, or nil when
// that category has never been written.
func (p *Persona) AttributeByCategory(category Category) *AttributeContainer {
	for i := range p.Attributes {
		if p.Attributes[i].Category == category {
			return &p.Attributes[i]
		}
	}
	return nil
}

// AttributeByName looks up a container by raw category name.
func (p *Persona) AttributeByName(name string) *AttributeContainer {
	category, err := ParseCategory(name)
	if err != nil {
		return nil
	}
	return p.AttributeByCategory(category)
}

// ToMap builds the canonical wire representation: identity and timestamps,
// the demographic sub-object when present, and each present category's
// payload flattened under its category name. Absent categories are omitted
// entirely, never emitted as empty objects.
func (p *Persona) ToMap() map[string]any {
	m := map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.Demographic != nil {
		m["demographic"] = p.Demographic.ToMap()
	}
	for _, category := range Categories() {
		if attr := p.AttributeByCategory(category); attr != nil {
			m[string(category)] = attr.Payload()
		}
	}
	return m
}
