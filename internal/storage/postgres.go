package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/persona/internal/config"
	"github.com/your-org/persona/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the persona tables if they don't exist.
// Children cascade-delete with their persona at the database level.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS personas (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS demographic_data (
			id BIGSERIAL PRIMARY KEY,
			persona_id BIGINT NOT NULL UNIQUE REFERENCES personas(id) ON DELETE CASCADE,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			language TEXT,
			country TEXT,
			city TEXT,
			region TEXT,
			age INTEGER,
			gender TEXT,
			education TEXT,
			income TEXT,
			occupation TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS persona_attributes (
			id BIGSERIAL PRIMARY KEY,
			persona_id BIGINT NOT NULL REFERENCES personas(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			data TEXT NOT NULL DEFAULT '{}',
			UNIQUE (persona_id, category)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_personas_updated_at ON personas (updated_at DESC)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ListPersonas(ctx context.Context, page, pageSize int) ([]models.Persona, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM personas`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count personas: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM personas
		 ORDER BY updated_at DESC OFFSET $1 LIMIT $2`,
		(page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	personas := make([]models.Persona, 0, pageSize)
	var ids []int64
	for rows.Next() {
		var p models.Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan persona: %w", err)
		}
		personas = append(personas, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list personas: %w", err)
	}
	if len(personas) == 0 {
		return personas, total, nil
	}

	if err := s.attachChildren(ctx, personas, ids); err != nil {
		return nil, 0, err
	}
	return personas, total, nil
}

func (s *PostgresStore) attachChildren(ctx context.Context, personas []models.Persona, ids []int64) error {
	byID := make(map[int64]*models.Persona, len(personas))
	for i := range personas {
		byID[personas[i].ID] = &personas[i]
	}

	demoRows, err := s.pool.Query(ctx,
		`SELECT id, persona_id, latitude, longitude, language, country, city, region,
		        age, gender, education, income, occupation
		 FROM demographic_data WHERE persona_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("load demographics: %w", err)
	}
	defer demoRows.Close()
	for demoRows.Next() {
		var d models.Demographic
		if err := demoRows.Scan(&d.ID, &d.PersonaID, &d.Latitude, &d.Longitude,
			&d.Language, &d.Country, &d.City, &d.Region, &d.Age, &d.Gender,
			&d.Education, &d.Income, &d.Occupation); err != nil {
			return fmt.Errorf("scan demographic: %w", err)
		}
		if p, ok := byID[d.PersonaID]; ok {
			p.Demographic = &d
		}
	}
	if err := demoRows.Err(); err != nil {
		return fmt.Errorf("load demographics: %w", err)
	}

	attrRows, err := s.pool.Query(ctx,
		`SELECT id, persona_id, category, data FROM persona_attributes
		 WHERE persona_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("load attributes: %w", err)
	}
	defer attrRows.Close()
	for attrRows.Next() {
		var a models.AttributeContainer
		if err := attrRows.Scan(&a.ID, &a.PersonaID, &a.Category, &a.Data); err != nil {
			return fmt.Errorf("scan attribute: %w", err)
		}
		if p, ok := byID[a.PersonaID]; ok {
			p.Attributes = append(p.Attributes, a)
		}
	}
	if err := attrRows.Err(); err != nil {
		return fmt.Errorf("load attributes: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPersona(ctx context.Context, id int64) (*models.Persona, error) {
	var p models.Persona
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM personas WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get persona: %w", err)
	}

	personas := []models.Persona{p}
	if err := s.attachChildren(ctx, personas, []int64{id}); err != nil {
		return nil, err
	}
	return &personas[0], nil
}

func (s *PostgresStore) CreatePersona(ctx context.Context, p *models.Persona) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create persona: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO personas (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert persona: %w", err)
	}

	if p.Demographic != nil {
		p.Demographic.PersonaID = p.ID
		if err := upsertDemographic(ctx, tx, p.Demographic); err != nil {
			return err
		}
	}

	for i := range p.Attributes {
		p.Attributes[i].PersonaID = p.ID
		if err := upsertAttribute(ctx, tx, &p.Attributes[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create persona: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdatePersona(ctx context.Context, p *models.Persona) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update persona: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE personas SET name = $1, updated_at = $2 WHERE id = $3`,
		p.Name, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update persona: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update persona %d: no such row", p.ID)
	}

	if p.Demographic != nil {
		p.Demographic.PersonaID = p.ID
		if err := upsertDemographic(ctx, tx, p.Demographic); err != nil {
			return err
		}
	}

	for i := range p.Attributes {
		p.Attributes[i].PersonaID = p.ID
		if err := upsertAttribute(ctx, tx, &p.Attributes[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update persona: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePersona(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM personas WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete persona: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func upsertDemographic(ctx context.Context, tx pgx.Tx, d *models.Demographic) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO demographic_data
			(persona_id, latitude, longitude, language, country, city, region,
			 age, gender, education, income, occupation)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (persona_id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			language = EXCLUDED.language,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			region = EXCLUDED.region,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			education = EXCLUDED.education,
			income = EXCLUDED.income,
			occupation = EXCLUDED.occupation
		 RETURNING id`,
		d.PersonaID, d.Latitude, d.Longitude, d.Language, d.Country, d.City,
		d.Region, d.Age, d.Gender, d.Education, d.Income, d.Occupation,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("upsert demographic: %w", err)
	}
	return nil
}

func upsertAttribute(ctx context.Context, tx pgx.Tx, a *models.AttributeContainer) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO persona_attributes (persona_id, category, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (persona_id, category) DO UPDATE SET data = EXCLUDED.data
		 RETURNING id`,
		a.PersonaID, a.Category, a.Data,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("upsert attribute %s: %w", a.Category, err)
	}
	return nil
}
