package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) EnsureFolder(ctx context.Context, folder string) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *MockGateway) RenameFolder(ctx context.Context, oldFolder, newFolder string) error {
	args := m.Called(ctx, oldFolder, newFolder)
	return args.Error(0)
}

func (m *MockGateway) SyncTags(ctx context.Context, folder string, names []string) error {
	args := m.Called(ctx, folder, names)
	return args.Error(0)
}

func (m *MockGateway) WriteFile(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, path, r, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) DeleteFile(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockGateway) DeleteFolderRecursive(ctx context.Context, folder string) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}
