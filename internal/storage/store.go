package storage

import (
	"context"

	"github.com/your-org/persona/internal/models"
)

// Store is the transactional persistence boundary for the persona aggregate.
// Create and Update touch the persona row, its demographic record, and its
// attribute containers as one unit of work. Get returns nil (not an error)
// for an unknown id; Delete reports absence through its bool.
type Store interface {
	ListPersonas(ctx context.Context, page, pageSize int) ([]models.Persona, int, error)
	GetPersona(ctx context.Context, id int64) (*models.Persona, error)
	CreatePersona(ctx context.Context, p *models.Persona) error
	UpdatePersona(ctx context.Context, p *models.Persona) error
	DeletePersona(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
	Close()
}
