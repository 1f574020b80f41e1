package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"assetcat/internal/model"
	"assetcat/internal/repository"
)

// AssetPostgres is a PostgreSQL implementation of repository.AssetRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type AssetPostgres struct {
	db *sql.DB
}

// NewAssetPostgres creates a new AssetPostgres repository.
func NewAssetPostgres(db *sql.DB) *AssetPostgres {
	return &AssetPostgres{db: db}
}

var _ repository.AssetRepository = (*AssetPostgres)(nil)

const assetColumns = `id, title, description, author_id, archive_path, archive_version,
	screenshots, marked_for_deletion, marked_by, marked_at, deletion_comment,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*model.Asset, error) {
	var (
		a           model.Asset
		authorID    sql.NullString
		screenshots []byte
		markedBy    sql.NullString
		markedAt    sql.NullTime
		comment     sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&authorID,
		&a.ArchivePath,
		&a.ArchiveVersion,
		&screenshots,
		&a.DeletionMark.Marked,
		&markedBy,
		&markedAt,
		&comment,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if authorID.Valid {
		a.AuthorID = &authorID.String
	}
	if err := json.Unmarshal(screenshots, &a.Screenshots); err != nil {
		return nil, fmt.Errorf("decode screenshots: %w", err)
	}
	a.DeletionMark.MarkedBy = markedBy.String
	if markedAt.Valid {
		t := markedAt.Time
		a.DeletionMark.MarkedAt = &t
	}
	a.DeletionMark.Comment = comment.String
	return &a, nil
}

func (r *AssetPostgres) loadLinks(ctx context.Context, a *model.Asset) error {
	const qSpheres = `SELECT sphere_id FROM asset_spheres WHERE asset_id = $1 ORDER BY sphere_id`
	const qProjects = `SELECT project_id FROM asset_projects WHERE asset_id = $1 ORDER BY project_id`

	for _, q := range []struct {
		sql  string
		dest *[]string
	}{
		{qSpheres, &a.SphereIDs},
		{qProjects, &a.ProjectIDs},
	} {
		rows, err := r.db.QueryContext(ctx, q.sql, a.ID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			*q.dest = append(*q.dest, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}

// Create inserts a new asset row and its link rows in one transaction.
func (r *AssetPostgres) Create(ctx context.Context, a *model.Asset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	screenshots, err := json.Marshal(nonNil(a.Screenshots))
	if err != nil {
		return fmt.Errorf("encode screenshots: %w", err)
	}

	const q = `
		INSERT INTO assets (id, title, description, author_id, archive_path, archive_version,
			screenshots, marked_for_deletion, marked_by, marked_at, deletion_comment,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if _, err := tx.ExecContext(ctx, q,
		a.ID, a.Title, a.Description, nullString(a.AuthorID), a.ArchivePath, a.ArchiveVersion,
		screenshots, a.DeletionMark.Marked, emptyNull(a.DeletionMark.MarkedBy),
		a.DeletionMark.MarkedAt, emptyNull(a.DeletionMark.Comment),
		a.CreatedAt, a.UpdatedAt,
	); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

// FindByID fetches a single asset with its sphere/project links.
func (r *AssetPostgres) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	a, err := scanAsset(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// FindByTitle fetches a single asset by its exact title.
func (r *AssetPostgres) FindByTitle(ctx context.Context, title string) (*model.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE title = $1`
	a, err := scanAsset(r.db.QueryRowContext(ctx, q, title))
	if err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update persists the full record and replaces the link rows in one transaction.
func (r *AssetPostgres) Update(ctx context.Context, a *model.Asset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	screenshots, err := json.Marshal(nonNil(a.Screenshots))
	if err != nil {
		return fmt.Errorf("encode screenshots: %w", err)
	}

	const q = `
		UPDATE assets
		SET title = $2, description = $3, author_id = $4, archive_path = $5,
			archive_version = $6, screenshots = $7, marked_for_deletion = $8,
			marked_by = $9, marked_at = $10, deletion_comment = $11, updated_at = $12
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, q,
		a.ID, a.Title, a.Description, nullString(a.AuthorID), a.ArchivePath,
		a.ArchiveVersion, screenshots, a.DeletionMark.Marked,
		emptyNull(a.DeletionMark.MarkedBy), a.DeletionMark.MarkedAt,
		emptyNull(a.DeletionMark.Comment), a.UpdatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_spheres WHERE asset_id = $1`, a.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_projects WHERE asset_id = $1`, a.ID); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes an asset row; link rows go with it via ON DELETE CASCADE.
// It does not return an error if the row does not exist.
func (r *AssetPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	return err
}

func insertLinks(ctx context.Context, tx *sql.Tx, a *model.Asset) error {
	for _, sid := range a.SphereIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO asset_spheres (asset_id, sphere_id) VALUES ($1, $2)`, a.ID, sid); err != nil {
			return err
		}
	}
	for _, pid := range a.ProjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO asset_projects (asset_id, project_id) VALUES ($1, $2)`, a.ID, pid); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func emptyNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
