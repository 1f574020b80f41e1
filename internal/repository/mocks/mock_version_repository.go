package mocks

import (
	"context"

	"assetcat/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Append(ctx context.Context, v *model.AssetVersion) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVersionRepository) ListByAsset(ctx context.Context, assetID string) ([]model.AssetVersion, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AssetVersion), args.Error(1)
}

func (m *MockVersionRepository) DeleteByAsset(ctx context.Context, assetID string) error {
	args := m.Called(ctx, assetID)
	return args.Error(0)
}
