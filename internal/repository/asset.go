package repository

import (
	"context"

	"assetcat/internal/model"
)

// AssetRepository defines data access for asset records, including their sphere and
// project links.
type AssetRepository interface {
	// Create inserts a new asset with its link rows.
	Create(ctx context.Context, a *model.Asset) error

	// FindByID returns an asset with link ids populated. sql.ErrNoRows when absent.
	FindByID(ctx context.Context, id string) (*model.Asset, error)

	// FindByTitle returns an asset by its exact title. sql.ErrNoRows when absent.
	FindByTitle(ctx context.Context, title string) (*model.Asset, error)

	// Update persists the full record and replaces its link rows in one transaction.
	Update(ctx context.Context, a *model.Asset) error

	// Delete removes an asset row and its link rows. Nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// VersionRepository stores immutable asset version snapshots. Rows are append-only.
type VersionRepository interface {
	Append(ctx context.Context, v *model.AssetVersion) error
	ListByAsset(ctx context.Context, assetID string) ([]model.AssetVersion, error)
	DeleteByAsset(ctx context.Context, assetID string) error
}
