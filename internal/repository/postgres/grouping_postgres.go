package postgres

import (
	"context"
	"database/sql"

	"assetcat/internal/model"
	"assetcat/internal/repository"
)

// ProjectPostgres is a PostgreSQL implementation of repository.ProjectRepository.
type ProjectPostgres struct {
	db *sql.DB
}

// NewProjectPostgres creates a new ProjectPostgres repository.
func NewProjectPostgres(db *sql.DB) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

var _ repository.ProjectRepository = (*ProjectPostgres)(nil)

// FindByIDs returns the projects for the given ids, ordered by name. Unknown ids are
// silently skipped.
func (r *ProjectPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Project, error) {
	const q = `SELECT id, name FROM projects WHERE id = ANY($1) ORDER BY name`
	return queryNamed[model.Project](ctx, r.db, q, ids, func(p *model.Project) []any {
		return []any{&p.ID, &p.Name}
	})
}

// SpherePostgres is a PostgreSQL implementation of repository.SphereRepository.
type SpherePostgres struct {
	db *sql.DB
}

// NewSpherePostgres creates a new SpherePostgres repository.
func NewSpherePostgres(db *sql.DB) *SpherePostgres {
	return &SpherePostgres{db: db}
}

var _ repository.SphereRepository = (*SpherePostgres)(nil)

// FindByIDs returns the spheres for the given ids, ordered by name.
func (r *SpherePostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Sphere, error) {
	const q = `SELECT id, name FROM spheres WHERE id = ANY($1) ORDER BY name`
	return queryNamed[model.Sphere](ctx, r.db, q, ids, func(s *model.Sphere) []any {
		return []any{&s.ID, &s.Name}
	})
}

// FindByName fetches a sphere by its exact name.
func (r *SpherePostgres) FindByName(ctx context.Context, name string) (*model.Sphere, error) {
	var s model.Sphere
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM spheres WHERE name = $1`, name).Scan(&s.ID, &s.Name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new sphere.
func (r *SpherePostgres) Create(ctx context.Context, s *model.Sphere) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO spheres (id, name) VALUES ($1, $2)`, s.ID, s.Name)
	return err
}

// List returns every sphere ordered by name.
func (r *SpherePostgres) List(ctx context.Context) ([]model.Sphere, error) {
	const q = `SELECT id, name FROM spheres ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Sphere, 0)
	for rows.Next() {
		var s model.Sphere
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func queryNamed[T any](ctx context.Context, db *sql.DB, q string, ids []string, fields func(*T) []any) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	rows, err := db.QueryContext(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0, len(ids))
	for rows.Next() {
		var item T
		if err := rows.Scan(fields(&item)...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
