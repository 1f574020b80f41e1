package mocks

import (
	"context"

	"assetcat/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, action, actorID string, assetID *string) error {
	args := m.Called(ctx, action, actorID, assetID)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByAsset(ctx context.Context, assetID string) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) DetachAsset(ctx context.Context, assetID string) error {
	args := m.Called(ctx, assetID)
	return args.Error(0)
}
