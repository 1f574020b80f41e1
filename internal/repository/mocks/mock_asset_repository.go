package mocks

import (
	"context"

	"assetcat/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) Create(ctx context.Context, a *model.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepository) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByTitle(ctx context.Context, title string) (*model.Asset, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetRepository) Update(ctx context.Context, a *model.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
