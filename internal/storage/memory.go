package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/your-org/persona/internal/models"
)

// MemoryStore is an in-memory Store used in tests and local development.
// It mirrors the transactional semantics of the Postgres store: an update
// replaces the whole aggregate under one lock.
type MemoryStore struct {
	mu          sync.RWMutex
	personas    map[int64]*models.Persona
	nextID      int64
	nextChildID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{personas: make(map[int64]*models.Persona)}
}

func (s *MemoryStore) ListPersonas(_ context.Context, page, pageSize int) ([]models.Persona, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Persona, 0, len(s.personas))
	for _, p := range s.personas {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.After(all[j].UpdatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	out := make([]models.Persona, 0, end-start)
	for _, p := range all[start:end] {
		out = append(out, *clonePersona(p))
	}
	return out, total, nil
}

func (s *MemoryStore) GetPersona(_ context.Context, id int64) (*models.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.personas[id]
	if !ok {
		return nil, nil
	}
	return clonePersona(p), nil
}

func (s *MemoryStore) CreatePersona(_ context.Context, p *models.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p.ID = s.nextID
	if p.Demographic != nil {
		p.Demographic.PersonaID = p.ID
		s.nextChildID++
		p.Demographic.ID = s.nextChildID
	}
	for i := range p.Attributes {
		p.Attributes[i].PersonaID = p.ID
		s.nextChildID++
		p.Attributes[i].ID = s.nextChildID
	}

	s.personas[p.ID] = clonePersona(p)
	return nil
}

func (s *MemoryStore) UpdatePersona(_ context.Context, p *models.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.personas[p.ID]; !ok {
		return fmt.Errorf("update persona %d: no such row", p.ID)
	}
	if p.Demographic != nil {
		p.Demographic.PersonaID = p.ID
		if p.Demographic.ID == 0 {
			s.nextChildID++
			p.Demographic.ID = s.nextChildID
		}
	}
	for i := range p.Attributes {
		p.Attributes[i].PersonaID = p.ID
		if p.Attributes[i].ID == 0 {
			s.nextChildID++
			p.Attributes[i].ID = s.nextChildID
		}
	}

	s.personas[p.ID] = clonePersona(p)
	return nil
}

func (s *MemoryStore) DeletePersona(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.personas[id]; !ok {
		return false, nil
	}
	delete(s.personas, id)
	return true, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}

func clonePersona(p *models.Persona) *models.Persona {
	out := *p
	if p.Demographic != nil {
		d := *p.Demographic
		out.Demographic = &d
	}
	if p.Attributes != nil {
		out.Attributes = make([]models.AttributeContainer, len(p.Attributes))
		copy(out.Attributes, p.Attributes)
	}
	return &out
}
