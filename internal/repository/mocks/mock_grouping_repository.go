package mocks

import (
	"context"

	"assetcat/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Project, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

type MockSphereRepository struct {
	mock.Mock
}

func (m *MockSphereRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Sphere, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sphere), args.Error(1)
}

func (m *MockSphereRepository) FindByName(ctx context.Context, name string) (*model.Sphere, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sphere), args.Error(1)
}

func (m *MockSphereRepository) Create(ctx context.Context, s *model.Sphere) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSphereRepository) List(ctx context.Context) ([]model.Sphere, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sphere), args.Error(1)
}
