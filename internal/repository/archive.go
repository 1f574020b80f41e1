package repository

import (
	"context"

	"assetcat/internal/model"
)

// ArchiveRepository stores detached copies of purged assets.
type ArchiveRepository interface {
	Create(ctx context.Context, a *model.ArchivedAsset) error
	FindByID(ctx context.Context, id string) (*model.ArchivedAsset, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.ArchivedAsset], error)
	Delete(ctx context.Context, id string) error
}
