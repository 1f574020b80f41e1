package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"assetcat/internal/model"
	"assetcat/internal/repository"
)

// VersionPostgres is a PostgreSQL implementation of repository.VersionRepository.
// Rows are append-only; there is no update path.
type VersionPostgres struct {
	db *sql.DB
}

// NewVersionPostgres creates a new VersionPostgres repository.
func NewVersionPostgres(db *sql.DB) *VersionPostgres {
	return &VersionPostgres{db: db}
}

var _ repository.VersionRepository = (*VersionPostgres)(nil)

// Append inserts a new version snapshot.
func (r *VersionPostgres) Append(ctx context.Context, v *model.AssetVersion) error {
	screenshots, err := json.Marshal(nonNil(v.Screenshots))
	if err != nil {
		return fmt.Errorf("encode screenshots: %w", err)
	}
	const q = `
		INSERT INTO asset_versions (id, asset_id, label, archive_path, screenshots, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, q, v.ID, v.AssetID, v.Label, v.ArchivePath, screenshots, v.CreatedAt)
	return err
}

// ListByAsset returns the asset's snapshots in creation order.
func (r *VersionPostgres) ListByAsset(ctx context.Context, assetID string) ([]model.AssetVersion, error) {
	const q = `
		SELECT id, asset_id, label, archive_path, screenshots, created_at
		FROM asset_versions
		WHERE asset_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AssetVersion, 0)
	for rows.Next() {
		var (
			v           model.AssetVersion
			screenshots []byte
		)
		if err := rows.Scan(&v.ID, &v.AssetID, &v.Label, &v.ArchivePath, &screenshots, &v.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(screenshots, &v.Screenshots); err != nil {
			return nil, fmt.Errorf("decode screenshots: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// DeleteByAsset removes all snapshots for an asset. Used only by the purge flow.
func (r *VersionPostgres) DeleteByAsset(ctx context.Context, assetID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM asset_versions WHERE asset_id = $1`, assetID)
	return err
}
