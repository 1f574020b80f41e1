package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"assetcat/internal/model"
	"assetcat/internal/repository"
)

// ArchivePostgres is a PostgreSQL implementation of repository.ArchiveRepository.
type ArchivePostgres struct {
	db *sql.DB
}

// NewArchivePostgres creates a new ArchivePostgres repository.
func NewArchivePostgres(db *sql.DB) *ArchivePostgres {
	return &ArchivePostgres{db: db}
}

var _ repository.ArchiveRepository = (*ArchivePostgres)(nil)

// Create inserts a detached copy of a purged asset.
func (r *ArchivePostgres) Create(ctx context.Context, a *model.ArchivedAsset) error {
	screenshots, err := json.Marshal(nonNil(a.Screenshots))
	if err != nil {
		return fmt.Errorf("encode screenshots: %w", err)
	}
	const q = `
		INSERT INTO archived_assets (id, title, description, author_name, screenshots, deleted_by, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, q, a.ID, a.Title, a.Description, a.AuthorName, screenshots, a.DeletedBy, a.DeletedAt)
	return err
}

// FindByID fetches a single archived asset.
func (r *ArchivePostgres) FindByID(ctx context.Context, id string) (*model.ArchivedAsset, error) {
	const q = `
		SELECT id, title, description, author_name, screenshots, deleted_by, deleted_at
		FROM archived_assets
		WHERE id = $1
	`
	return scanArchived(r.db.QueryRowContext(ctx, q, id))
}

// List returns archived assets using LIMIT/OFFSET pagination and a total count.
func (r *ArchivePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ArchivedAsset], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM archived_assets`).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, title, description, author_name, screenshots, deleted_by, deleted_at
		FROM archived_assets
		ORDER BY deleted_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ArchivedAsset, 0)
	for rows.Next() {
		a, err := scanArchived(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.ArchivedAsset]{Items: items, Total: total}, nil
}

// Delete removes an archived asset row. Nil if the row did not exist.
func (r *ArchivePostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM archived_assets WHERE id = $1`, id)
	return err
}

func scanArchived(row rowScanner) (*model.ArchivedAsset, error) {
	var (
		a           model.ArchivedAsset
		screenshots []byte
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.AuthorName, &screenshots, &a.DeletedBy, &a.DeletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(screenshots, &a.Screenshots); err != nil {
		return nil, fmt.Errorf("decode screenshots: %w", err)
	}
	return &a, nil
}
