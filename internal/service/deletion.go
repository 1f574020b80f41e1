package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assetcat/internal/logging"
	"assetcat/internal/model"
	"assetcat/internal/naming"
	"assetcat/internal/permission"
	"assetcat/internal/repository"
	"assetcat/internal/storage"
)

// DeletionService runs the two-phase deletion workflow:
//
//	Active --request--> PendingDeletion --approve--> Purged
//	                                    --reject--> Active
type DeletionService interface {
	// Request marks an asset for deletion. Requires DELETE. Re-requesting while
	// already pending overwrites the mark: last request wins.
	Request(ctx context.Context, actor *model.User, assetID, comment string) error

	// Decide approves or rejects a pending deletion. Requires APPROVE_DELETE.
	// Approval purges the asset: files, versions and the record are removed, audit
	// entries are detached, and a detached archived copy is kept.
	Decide(ctx context.Context, actor *model.User, assetID string, approve bool) error
}

type deletionService struct {
	assets   repository.AssetRepository
	versions repository.VersionRepository
	archive  repository.ArchiveRepository
	audit    repository.AuditRepository
	users    repository.UserRepository
	store    storage.Gateway
}

// NewDeletionService constructs a new DeletionService.
func NewDeletionService(
	assets repository.AssetRepository,
	versions repository.VersionRepository,
	archive repository.ArchiveRepository,
	audit repository.AuditRepository,
	users repository.UserRepository,
	store storage.Gateway,
) DeletionService {
	return &deletionService{
		assets:   assets,
		versions: versions,
		archive:  archive,
		audit:    audit,
		users:    users,
		store:    store,
	}
}

func (s *deletionService) Request(ctx context.Context, actor *model.User, assetID, comment string) error {
	if !permission.Can(actor, permission.Delete) {
		return &ForbiddenError{Field: "deletion request", Capability: permission.Delete}
	}

	asset, err := s.assets.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
		}
		return err
	}

	now := time.Now().UTC()
	asset.DeletionMark = model.Mark{
		Marked:   true,
		MarkedBy: actor.ID,
		MarkedAt: &now,
		Comment:  comment,
	}
	asset.UpdatedAt = now
	if err := s.assets.Update(ctx, asset); err != nil {
		return err
	}

	action := fmt.Sprintf("requested deletion of %s", asset.Title)
	if comment != "" {
		action += fmt.Sprintf(" (comment: %s)", comment)
	}
	return s.audit.Append(ctx, action, actor.ID, &asset.ID)
}

func (s *deletionService) Decide(ctx context.Context, actor *model.User, assetID string, approve bool) error {
	if !permission.Can(actor, permission.ApproveDelete) {
		return &ForbiddenError{Field: "deletion decision", Capability: permission.ApproveDelete}
	}

	asset, err := s.assets.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
		}
		return err
	}
	if !asset.DeletionMark.Marked {
		return invalidf("asset %s is not pending deletion", asset.Title)
	}

	if !approve {
		return s.reject(ctx, actor, asset)
	}
	return s.purge(ctx, actor, asset)
}

// reject clears the mark fields; everything else on the record is left untouched.
func (s *deletionService) reject(ctx context.Context, actor *model.User, asset *model.Asset) error {
	asset.DeletionMark = model.Mark{}
	asset.UpdatedAt = time.Now().UTC()
	if err := s.assets.Update(ctx, asset); err != nil {
		return err
	}
	return s.audit.Append(ctx, fmt.Sprintf("rejected deletion of %s", asset.Title), actor.ID, &asset.ID)
}

// purge permanently removes the asset. Storage cleanup runs before the record is
// destroyed; individual file deletions are fault-tolerant so one missing file never
// blocks purging the rest. The record delete only happens once the audit entries are
// detached, to avoid orphaned references.
func (s *deletionService) purge(ctx context.Context, actor *model.User, asset *model.Asset) error {
	archived := &model.ArchivedAsset{
		ID:          uuid.New().String(),
		Title:       asset.Title,
		Description: asset.Description,
		AuthorName:  s.authorName(ctx, asset.AuthorID),
		Screenshots: append([]string(nil), asset.Screenshots...),
		DeletedBy:   actor.ID,
		DeletedAt:   time.Now().UTC(),
	}
	if err := s.archive.Create(ctx, archived); err != nil {
		return fmt.Errorf("create archived copy: %w", err)
	}

	if asset.ArchivePath != "" {
		s.deleteFileQuiet(ctx, asset.ArchivePath)
	}
	for _, p := range asset.Screenshots {
		s.deleteFileQuiet(ctx, p)
	}

	if err := s.versions.DeleteByAsset(ctx, asset.ID); err != nil {
		return fmt.Errorf("delete version rows: %w", err)
	}
	if err := s.audit.DetachAsset(ctx, asset.ID); err != nil {
		return fmt.Errorf("detach audit entries: %w", err)
	}
	if err := s.assets.Delete(ctx, asset.ID); err != nil {
		return fmt.Errorf("delete asset row: %w", err)
	}

	if err := s.store.DeleteFolderRecursive(ctx, naming.ModelFolder(asset.Title)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Error("storage folder cleanup failed", map[string]any{
			"asset_title": asset.Title,
			"error":       err.Error(),
		})
	}

	// The asset row is gone, so the final entry carries no asset reference.
	return s.audit.Append(ctx, fmt.Sprintf("purged asset %s", asset.Title), actor.ID, nil)
}

func (s *deletionService) deleteFileQuiet(ctx context.Context, p string) {
	if err := s.store.DeleteFile(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Error("file cleanup failed", map[string]any{"path": p, "error": err.Error()})
	}
}

func (s *deletionService) authorName(ctx context.Context, authorID *string) string {
	if authorID == nil {
		return model.AuthorUnknown
	}
	author, err := s.users.FindByID(ctx, *authorID)
	if err != nil {
		return model.AuthorUnknown
	}
	return author.Name
}
