package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/your-org/persona/internal/fieldconfig"
	"github.com/your-org/persona/internal/models"
	"github.com/your-org/persona/internal/observability"
	"github.com/your-org/persona/internal/storage"
	"github.com/your-org/persona/internal/validation"
	"github.com/your-org/persona/pkg/dto"
)

const (
	defaultPageSize = 20
	maxNameLength   = 100
)

// Publisher emits persona change events. A nil publisher disables events;
// publish failures are logged, never surfaced to the caller.
type Publisher interface {
	PublishPersona(ctx context.Context, event dto.PersonaEvent) error
}

type ListResult struct {
	Personas []models.Persona
	Total    int
	Page     int
	PageSize int
}

// PersonaService orchestrates create/read/update/delete across the persona
// aggregate. Validation always runs before the corresponding write; merges
// are read-modify-write inside one store operation (last-writer-wins under
// concurrent overlapping writers, see DESIGN.md).
type PersonaService struct {
	store     storage.Store
	registry  *fieldconfig.Registry
	validator *validation.Validator

	// Events is optional; set after construction when a queue is available.
	Events Publisher
}

func NewPersonaService(store storage.Store, registry *fieldconfig.Registry) *PersonaService {
	return &PersonaService{
		store:     store,
		registry:  registry,
		validator: validation.New(registry),
	}
}

// List returns personas ordered by most-recently-updated first. A page past
// the available data yields an empty list, not an error.
func (s *PersonaService) List(ctx context.Context, page, pageSize int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	personas, total, err := s.store.ListPersonas(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	return &ListResult{
		Personas: personas,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *PersonaService) Get(ctx context.Context, id int64) (*models.Persona, error) {
	p, err := s.store.GetPersona(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get persona %d: %w", id, err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *PersonaService) Create(ctx context.Context, req dto.CreatePersonaRequest) (*models.Persona, error) {
	var violations []string
	violations = append(violations, validateName(req.Name)...)
	violations = append(violations, validateDemographic(req.Demographic)...)
	payloads := categoryPayloads(req.Psychographic, req.Behavioral, req.Contextual)
	violations = append(violations, s.validatePayloads(payloads)...)
	if len(violations) > 0 {
		return nil, &ValidationError{Messages: violations}
	}

	now := time.Now().UTC()
	p := &models.Persona{
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Demographic != nil {
		p.Demographic = &models.Demographic{}
		applyDemographic(p.Demographic, req.Demographic)
	}
	for _, category := range models.Categories() {
		payload, ok := payloads[category]
		if !ok {
			continue
		}
		attr, err := models.NewAttributeContainer(0, category, payload)
		if err != nil {
			return nil, err
		}
		p.Attributes = append(p.Attributes, *attr)
	}

	if err := s.store.CreatePersona(ctx, p); err != nil {
		observability.PersonaOperations.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("create persona: %w", err)
	}
	observability.PersonaOperations.WithLabelValues("create", "ok").Inc()

	s.publish(ctx, dto.PersonaEvent{
		Type:      dto.EventPersonaCreated,
		PersonaID: p.ID,
		Persona:   p.ToMap(),
	})
	return p, nil
}

// Update applies partial-update semantics: name only when supplied,
// demographic patched field-by-field, categories merged key-by-key.
// updated_at is refreshed on every successful update.
func (s *PersonaService) Update(ctx context.Context, id int64, req dto.UpdatePersonaRequest) (*models.Persona, error) {
	var violations []string
	if req.Name != nil {
		violations = append(violations, validateName(*req.Name)...)
	}
	violations = append(violations, validateDemographic(req.Demographic)...)
	payloads := categoryPayloads(req.Psychographic, req.Behavioral, req.Contextual)
	violations = append(violations, s.validatePayloads(payloads)...)
	if len(violations) > 0 {
		return nil, &ValidationError{Messages: violations}
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Demographic != nil {
		if p.Demographic == nil {
			p.Demographic = &models.Demographic{PersonaID: p.ID}
		}
		applyDemographic(p.Demographic, req.Demographic)
	}
	for _, category := range models.Categories() {
		payload, ok := payloads[category]
		if !ok {
			continue
		}
		if err := s.mergeCategory(p, category, payload); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdatePersona(ctx, p); err != nil {
		observability.PersonaOperations.WithLabelValues("update", "error").Inc()
		return nil, fmt.Errorf("update persona %d: %w", id, err)
	}
	observability.PersonaOperations.WithLabelValues("update", "ok").Inc()

	s.publish(ctx, dto.PersonaEvent{
		Type:      dto.EventPersonaUpdated,
		PersonaID: p.ID,
		Persona:   p.ToMap(),
	})
	return p, nil
}

// Delete removes a persona and cascades to its demographic record and all
// attribute containers. Returns false, not an error, for an unknown id.
func (s *PersonaService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeletePersona(ctx, id)
	if err != nil {
		observability.PersonaOperations.WithLabelValues("delete", "error").Inc()
		return false, fmt.Errorf("delete persona %d: %w", id, err)
	}
	if deleted {
		observability.PersonaOperations.WithLabelValues("delete", "ok").Inc()
		s.publish(ctx, dto.PersonaEvent{
			Type:      dto.EventPersonaDeleted,
			PersonaID: id,
		})
	}
	return deleted, nil
}

// AttributeData returns the payload for one category. A persona that exists
// but has never written the category yields an empty mapping, not not-found.
func (s *PersonaService) AttributeData(ctx context.Context, id int64, category string) (map[string]any, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	attr := p.AttributeByCategory(cat)
	if attr == nil {
		return map[string]any{}, nil
	}
	return attr.Payload(), nil
}

// UpdateAttributeData merge-updates one category, lazily creating the
// container on first write.
func (s *PersonaService) UpdateAttributeData(ctx context.Context, id int64, category string, data map[string]any) (*models.AttributeContainer, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if ok, errs := s.validator.Validate(string(cat), data); !ok {
		observability.ValidationFailures.WithLabelValues(string(cat)).Inc()
		return nil, &ValidationError{Messages: errs}
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.mergeCategory(p, cat, data); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdatePersona(ctx, p); err != nil {
		observability.PersonaOperations.WithLabelValues("update_attributes", "error").Inc()
		return nil, fmt.Errorf("update %s data for persona %d: %w", cat, id, err)
	}
	observability.PersonaOperations.WithLabelValues("update_attributes", "ok").Inc()

	s.publish(ctx, dto.PersonaEvent{
		Type:      dto.EventPersonaUpdated,
		PersonaID: p.ID,
		Persona:   p.ToMap(),
	})

	attr := *p.AttributeByCategory(cat)
	return &attr, nil
}

// ValidateCategory checks a payload against the field configuration without
// touching any persona.
func (s *PersonaService) ValidateCategory(category string, data map[string]any) (bool, []string) {
	ok, errs := s.validator.Validate(category, data)
	if !ok {
		observability.ValidationFailures.WithLabelValues(category).Inc()
	}
	return ok, errs
}

// FieldConfig returns the registry scope addressed by the arguments: the
// whole registry, one category schema, or one field definition. Unknown
// names yield an empty object, never an error.
func (s *PersonaService) FieldConfig(category, field string) any {
	if category == "" {
		return s.registry.All()
	}
	if field == "" {
		schema, ok := s.registry.Category(category)
		if !ok {
			return map[string]any{}
		}
		return schema
	}
	def, ok := s.registry.Field(category, field)
	if !ok {
		return map[string]any{}
	}
	return def
}

func (s *PersonaService) mergeCategory(p *models.Persona, category models.Category, data map[string]any) error {
	attr := p.AttributeByCategory(category)
	if attr == nil {
		created, err := models.NewAttributeContainer(p.ID, category, nil)
		if err != nil {
			return err
		}
		p.Attributes = append(p.Attributes, *created)
		attr = &p.Attributes[len(p.Attributes)-1]
	}
	return attr.Merge(data)
}

func (s *PersonaService) validatePayloads(payloads map[models.Category]map[string]any) []string {
	var violations []string
	for _, category := range models.Categories() {
		data, ok := payloads[category]
		if !ok {
			continue
		}
		if valid, errs := s.validator.Validate(string(category), data); !valid {
			observability.ValidationFailures.WithLabelValues(string(category)).Inc()
			for _, e := range errs {
				violations = append(violations, fmt.Sprintf("%s: %s", category, e))
			}
		}
	}
	return violations
}

func (s *PersonaService) publish(ctx context.Context, event dto.PersonaEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishPersona(ctx, event); err != nil {
		slog.Warn("publish persona event", "type", event.Type, "persona_id", event.PersonaID, "error", err)
	}
}

func validateName(name string) []string {
	if name == "" {
		return []string{"name is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return []string{fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}
	return nil
}

func validateDemographic(in *dto.DemographicInput) []string {
	if in == nil || in.Age == nil {
		return nil
	}
	if *in.Age < 0 || *in.Age > 120 {
		return []string{"age must be between 0 and 120"}
	}
	return nil
}

func categoryPayloads(psychographic, behavioral, contextual map[string]any) map[models.Category]map[string]any {
	out := make(map[models.Category]map[string]any, 3)
	if psychographic != nil {
		out[models.CategoryPsychographic] = psychographic
	}
	if behavioral != nil {
		out[models.CategoryBehavioral] = behavioral
	}
	if contextual != nil {
		out[models.CategoryContextual] = contextual
	}
	return out
}

func applyDemographic(d *models.Demographic, in *dto.DemographicInput) {
	if in.Latitude != nil {
		d.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		d.Longitude = in.Longitude
	}
	if in.Language != nil {
		d.Language = in.Language
	}
	if in.Country != nil {
		d.Country = in.Country
	}
	if in.City != nil {
		d.City = in.City
	}
	if in.Region != nil {
		d.Region = in.Region
	}
	if in.Age != nil {
		d.Age = in.Age
	}
	if in.Gender != nil {
		d.Gender = in.Gender
	}
	if in.Education != nil {
		d.Education = in.Education
	}
	if in.Income != nil {
		d.Income = in.Income
	}
	if in.Occupation != nil {
		d.Occupation = in.Occupation
	}
}
