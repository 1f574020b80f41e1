package postgres

import (
	"context"
	"database/sql"
	"time"

	"assetcat/internal/model"
	"assetcat/internal/repository"

	"github.com/google/uuid"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Append writes one immutable action record.
func (r *AuditPostgres) Append(ctx context.Context, action, actorID string, assetID *string) error {
	const q = `
		INSERT INTO audit_log (id, action, actor_id, asset_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, q, uuid.New().String(), action, actorID, nullString(assetID), time.Now().UTC())
	return err
}

// ListByAsset returns the entries still referencing assetID, newest first.
func (r *AuditPostgres) ListByAsset(ctx context.Context, assetID string) ([]model.AuditLogEntry, error) {
	const q = `
		SELECT id, action, actor_id, asset_id, created_at
		FROM audit_log
		WHERE asset_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditLogEntry, 0)
	for rows.Next() {
		var (
			e   model.AuditLogEntry
			aid sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorID, &aid, &e.CreatedAt); err != nil {
			return nil, err
		}
		if aid.Valid {
			e.AssetID = &aid.String
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// DetachAsset nulls the asset reference on every entry pointing at assetID.
// Rows themselves are preserved: audit history outlives the asset.
func (r *AuditPostgres) DetachAsset(ctx context.Context, assetID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE audit_log SET asset_id = NULL WHERE asset_id = $1`, assetID)
	return err
}
