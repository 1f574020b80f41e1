package service

import (
	"context"
	"database/sql"
	"testing"

	"assetcat/internal/model"
	repoMocks "assetcat/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSphereSvc() (*repoMocks.MockSphereRepository, *repoMocks.MockAuditRepository, SphereService) {
	spheres := new(repoMocks.MockSphereRepository)
	audit := new(repoMocks.MockAuditRepository)
	return spheres, audit, NewSphereService(spheres, audit)
}

func TestSphereService_Create(t *testing.T) {
	ctx := context.Background()
	actor := &model.User{ID: "user-1", Role: model.RoleViewer, Capabilities: []string{"EDIT_SPHERE"}}

	t.Run("creates and audits", func(t *testing.T) {
		spheres, audit, svc := newSphereSvc()
		spheres.On("FindByName", ctx, "Pneumatics").Return(nil, sql.ErrNoRows)
		spheres.On("Create", ctx, mock.MatchedBy(func(s *model.Sphere) bool {
			return s.Name == "Pneumatics" && s.ID != ""
		})).Return(nil)
		audit.On("Append", ctx, "created sphere Pneumatics", "user-1", (*string)(nil)).Return(nil)

		sphere, err := svc.Create(ctx, actor, "  Pneumatics  ")

		require.NoError(t, err)
		assert.Equal(t, "Pneumatics", sphere.Name)
		spheres.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("reserved name is rejected in any casing", func(t *testing.T) {
		_, _, svc := newSphereSvc()

		for _, name := range []string{"Other", "other", "OTHER"} {
			_, err := svc.Create(ctx, actor, name)
			assert.ErrorIs(t, err, ErrInvalidInput, name)
		}
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		spheres, _, svc := newSphereSvc()
		spheres.On("FindByName", ctx, "Hydraulics").Return(&model.Sphere{ID: "sphere-1", Name: "Hydraulics"}, nil)

		_, err := svc.Create(ctx, actor, "Hydraulics")

		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("empty name is invalid", func(t *testing.T) {
		_, _, svc := newSphereSvc()

		_, err := svc.Create(ctx, actor, "   ")

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("requires the sphere capability", func(t *testing.T) {
		_, _, svc := newSphereSvc()
		viewer := &model.User{ID: "user-2", Role: model.RoleViewer}

		_, err := svc.Create(ctx, viewer, "Pneumatics")

		assert.ErrorIs(t, err, ErrForbidden)
	})
}
