package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"assetcat/internal/model"
	"assetcat/internal/permission"
	"assetcat/internal/repository"
)

// SphereService manages the sphere groupings assets are filed under.
type SphereService interface {
	// Create adds a sphere. The default category name "Other" is reserved and
	// cannot be created by users.
	Create(ctx context.Context, actor *model.User, name string) (*model.Sphere, error)

	// List returns every sphere.
	List(ctx context.Context) ([]model.Sphere, error)
}

type sphereService struct {
	spheres repository.SphereRepository
	audit   repository.AuditRepository
}

// NewSphereService constructs a new SphereService.
func NewSphereService(spheres repository.SphereRepository, audit repository.AuditRepository) SphereService {
	return &sphereService{spheres: spheres, audit: audit}
}

func (s *sphereService) Create(ctx context.Context, actor *model.User, name string) (*model.Sphere, error) {
	if !permission.Can(actor, permission.EditSphere) {
		return nil, &ForbiddenError{Field: "sphere", Capability: permission.EditSphere}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("sphere name must not be empty")
	}
	if strings.EqualFold(name, model.SphereOther) {
		return nil, invalidf("sphere name %q is reserved", model.SphereOther)
	}
	if _, err := s.spheres.FindByName(ctx, name); err == nil {
		return nil, conflictf("a sphere named %q already exists", name)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	sphere := &model.Sphere{ID: uuid.New().String(), Name: name}
	if err := s.spheres.Create(ctx, sphere); err != nil {
		return nil, err
	}
	if err := s.audit.Append(ctx, "created sphere "+name, actor.ID, nil); err != nil {
		return nil, err
	}
	return sphere, nil
}

func (s *sphereService) List(ctx context.Context) ([]model.Sphere, error) {
	return s.spheres.List(ctx)
}
