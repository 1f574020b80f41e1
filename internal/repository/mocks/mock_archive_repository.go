package mocks

import (
	"context"

	"assetcat/internal/model"
	"assetcat/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Create(ctx context.Context, a *model.ArchivedAsset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockArchiveRepository) FindByID(ctx context.Context, id string) (*model.ArchivedAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ArchivedAsset), args.Error(1)
}

func (m *MockArchiveRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ArchivedAsset], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ArchivedAsset]), args.Error(1)
}

func (m *MockArchiveRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
