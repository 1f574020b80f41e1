package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"assetcat/internal/model"
	repoMocks "assetcat/internal/repository/mocks"
	"assetcat/internal/repository"
	storeMocks "assetcat/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newArchiveSvc() (*repoMocks.MockArchiveRepository, *storeMocks.MockGateway, ArchiveService) {
	archive := new(repoMocks.MockArchiveRepository)
	store := new(storeMocks.MockGateway)
	return archive, store, NewArchiveService(archive, store)
}

func TestArchiveService_List(t *testing.T) {
	ctx := context.Background()
	archive, _, svc := newArchiveSvc()

	items := []model.ArchivedAsset{{ID: "arch-1", Title: "Old Pump", DeletedAt: time.Now().UTC()}}
	archive.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.ArchivedAsset]{Items: items, Total: 1}, nil)

	// Zero limit falls back to the default page size.
	res, err := svc.List(ctx, 0, -5)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	archive.AssertExpectations(t)
}

func TestArchiveService_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("removes files, folder and record", func(t *testing.T) {
		archive, store, svc := newArchiveSvc()

		archive.On("FindByID", ctx, "arch-1").Return(&model.ArchivedAsset{
			ID:          "arch-1",
			Title:       "Old Pump",
			Screenshots: []string{"models/Old_Pump/v1.0/screenshots/a.png"},
		}, nil)
		store.On("DeleteFile", ctx, "models/Old_Pump/v1.0/screenshots/a.png").Return(nil)
		store.On("DeleteFolderRecursive", ctx, "models/Old_Pump").Return(nil)
		archive.On("Delete", ctx, "arch-1").Return(nil)

		err := svc.Purge(ctx, adminUser(), []string{"arch-1"})

		require.NoError(t, err)
		archive.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		archive, _, svc := newArchiveSvc()
		archive.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)

		err := svc.Purge(ctx, adminUser(), []string{"nope"})

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("requires approve capability", func(t *testing.T) {
		archive, _, svc := newArchiveSvc()
		actor := &model.User{ID: "user-1", Role: model.RoleEditor}

		err := svc.Purge(ctx, actor, []string{"arch-1"})

		assert.ErrorIs(t, err, ErrForbidden)
		archive.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("empty id list is invalid", func(t *testing.T) {
		_, _, svc := newArchiveSvc()

		err := svc.Purge(ctx, adminUser(), nil)

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
