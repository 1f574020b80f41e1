package repository

import (
	"context"

	"assetcat/internal/model"
)

// AuditRepository appends immutable action records. Entries are never updated or
// deleted; when an asset is purged its entries are detached, not removed.
type AuditRepository interface {
	// Append writes one action record. assetID may be nil for actions that no longer
	// (or never did) concern a live asset.
	Append(ctx context.Context, action, actorID string, assetID *string) error

	// ListByAsset returns the entries still referencing assetID, newest first.
	ListByAsset(ctx context.Context, assetID string) ([]model.AuditLogEntry, error)

	// DetachAsset nulls the asset reference on every entry pointing at assetID so
	// audit history outlives the asset.
	DetachAsset(ctx context.Context, assetID string) error
}
