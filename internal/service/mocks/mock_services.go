package mocks

import (
	"context"

	"assetcat/internal/model"
	"assetcat/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) Create(ctx context.Context, actor *model.User, req service.CreateRequest) (*model.Asset, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetService) Update(ctx context.Context, actor *model.User, assetID string, req service.UpdateRequest) (*service.UpdateResult, error) {
	args := m.Called(ctx, actor, assetID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpdateResult), args.Error(1)
}

func (m *MockAssetService) Versions(ctx context.Context, assetID string) ([]model.AssetVersion, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AssetVersion), args.Error(1)
}

func (m *MockAssetService) AuditTrail(ctx context.Context, assetID string) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

type MockDeletionService struct {
	mock.Mock
}

func (m *MockDeletionService) Request(ctx context.Context, actor *model.User, assetID, comment string) error {
	args := m.Called(ctx, actor, assetID, comment)
	return args.Error(0)
}

func (m *MockDeletionService) Decide(ctx context.Context, actor *model.User, assetID string, approve bool) error {
	args := m.Called(ctx, actor, assetID, approve)
	return args.Error(0)
}

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) List(ctx context.Context, limit, offset int) (*service.ArchiveListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArchiveListResult), args.Error(1)
}

func (m *MockArchiveService) Purge(ctx context.Context, actor *model.User, ids []string) error {
	args := m.Called(ctx, actor, ids)
	return args.Error(0)
}

type MockSphereService struct {
	mock.Mock
}

func (m *MockSphereService) Create(ctx context.Context, actor *model.User, name string) (*model.Sphere, error) {
	args := m.Called(ctx, actor, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sphere), args.Error(1)
}

func (m *MockSphereService) List(ctx context.Context) ([]model.Sphere, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sphere), args.Error(1)
}
