package repository

import (
	"context"

	"assetcat/internal/model"
)

// ProjectRepository reads project groupings. Used to resolve project names for audit
// text and folder tags.
type ProjectRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]model.Project, error)
}

// SphereRepository reads and creates sphere groupings.
type SphereRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]model.Sphere, error)
	FindByName(ctx context.Context, name string) (*model.Sphere, error)
	Create(ctx context.Context, s *model.Sphere) error
	List(ctx context.Context) ([]model.Sphere, error)
}
