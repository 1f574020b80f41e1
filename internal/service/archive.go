package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"assetcat/internal/logging"
	"assetcat/internal/model"
	"assetcat/internal/naming"
	"assetcat/internal/permission"
	"assetcat/internal/repository"
	"assetcat/internal/storage"
)

// ArchiveListResult is the service-level DTO for paginated archived assets.
type ArchiveListResult struct {
	Items []model.ArchivedAsset `json:"data"`
	Total int                   `json:"total"`
}

// ArchiveService is the browsing/purge surface over records of already-purged assets.
type ArchiveService interface {
	// List returns archived assets using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ArchiveListResult, error)

	// Purge permanently removes archived records, along with any still-referenced
	// screenshot files and the title-derived storage folder. Admin-only.
	Purge(ctx context.Context, actor *model.User, ids []string) error
}

type archiveService struct {
	archive repository.ArchiveRepository
	store   storage.Gateway
}

// NewArchiveService constructs a new ArchiveService.
func NewArchiveService(archive repository.ArchiveRepository, store storage.Gateway) ArchiveService {
	return &archiveService{archive: archive, store: store}
}

func (s *archiveService) List(ctx context.Context, limit, offset int) (*ArchiveListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.archive.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ArchiveListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *archiveService) Purge(ctx context.Context, actor *model.User, ids []string) error {
	if !permission.Can(actor, permission.ApproveDelete) {
		return &ForbiddenError{Field: "archive purge", Capability: permission.ApproveDelete}
	}
	if len(ids) == 0 {
		return invalidf("no archive ids given")
	}

	for _, id := range ids {
		a, err := s.archive.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: archived asset %s", ErrNotFound, id)
			}
			return err
		}

		for _, p := range a.Screenshots {
			if err := s.store.DeleteFile(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
				logging.Error("file cleanup failed", map[string]any{"path": p, "error": err.Error()})
			}
		}
		if err := s.store.DeleteFolderRecursive(ctx, naming.ModelFolder(a.Title)); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logging.Error("storage folder cleanup failed", map[string]any{
				"asset_title": a.Title,
				"error":       err.Error(),
			})
		}

		if err := s.archive.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
