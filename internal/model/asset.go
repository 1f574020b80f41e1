package model

import "time"

// Asset is a cataloged 3D-model record.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Asset struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	AuthorID       *string   `json:"author_id"` // nil when the author row was removed
	ArchivePath    string    `json:"archive_path"`
	ArchiveVersion string    `json:"archive_version"`
	Screenshots    []string  `json:"screenshots"` // ordered storage paths
	SphereIDs      []string  `json:"sphere_ids"`
	ProjectIDs     []string  `json:"project_ids"`
	DeletionMark   Mark      `json:"deletion_mark"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Mark holds the pending-deletion sub-state of an asset.
type Mark struct {
	Marked   bool       `json:"marked"`
	MarkedBy string     `json:"marked_by,omitempty"`
	MarkedAt *time.Time `json:"marked_at,omitempty"`
	Comment  string     `json:"comment,omitempty"`
}

// AssetVersion is an immutable snapshot of an asset's files, appended whenever an
// update carries an explicit version label. Never mutated or reordered after creation.
type AssetVersion struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"asset_id"`
	Label       string    `json:"label"`
	ArchivePath string    `json:"archive_path"`
	Screenshots []string  `json:"screenshots"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArchivedAsset is a detached copy of a purged asset's public fields, retained for
// historical browsing and independently deletable.
type ArchivedAsset struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AuthorName  string    `json:"author_name"`
	Screenshots []string  `json:"screenshots"`
	DeletedBy   string    `json:"deleted_by"`
	DeletedAt   time.Time `json:"deleted_at"`
}
