package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"assetcat/internal/logging"
	"assetcat/internal/model"
	"assetcat/internal/naming"
	"assetcat/internal/permission"
	"assetcat/internal/repository"
	"assetcat/internal/storage"
)

// FileUpload carries one inbound file. Content is streamed, never buffered to disk.
type FileUpload struct {
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string
}

// UpdateRequest is a sparse field-change-set: only non-nil fields are candidates for
// change. Slice fields use nil for "unchanged"; an empty non-nil slice is an explicit
// value.
type UpdateRequest struct {
	Title             *string
	Description       *string
	AuthorID          *string
	VersionLabel      *string
	SphereIDs         []string
	ProjectIDs        []string
	Archive           *FileUpload
	AddScreenshots    []FileUpload
	RemoveScreenshots []string
}

// CreateRequest carries a new asset upload. Title, at least one sphere, the archive
// and at least two preview images are mandatory.
type CreateRequest struct {
	Title        string
	Description  string
	AuthorID     *string
	VersionLabel string
	SphereIDs    []string
	ProjectIDs   []string
	Archive      FileUpload
	Screenshots  []FileUpload
}

// UpdateResult is the outcome of a successful update. Warnings report storage steps
// that failed after the metadata write committed; the record change itself stands.
type UpdateResult struct {
	Asset    *model.Asset `json:"asset"`
	Warnings []string     `json:"warnings,omitempty"`
}

// AssetService defines the asset lifecycle use cases.
type AssetService interface {
	// Create uploads a new asset: archive and screenshots go to storage first, the
	// record second; storage is rolled back if the record insert fails.
	Create(ctx context.Context, actor *model.User, req CreateRequest) (*model.Asset, error)

	// Update applies a permission-gated partial update. Any requested field the
	// actor cannot touch rejects the whole request; partial success is not allowed.
	Update(ctx context.Context, actor *model.User, assetID string, req UpdateRequest) (*UpdateResult, error)

	// Versions returns the asset's snapshots in creation order.
	Versions(ctx context.Context, assetID string) ([]model.AssetVersion, error)

	// AuditTrail returns the audit entries still referencing the asset, newest first.
	AuditTrail(ctx context.Context, assetID string) ([]model.AuditLogEntry, error)
}

type assetService struct {
	assets   repository.AssetRepository
	versions repository.VersionRepository
	audit    repository.AuditRepository
	projects repository.ProjectRepository
	spheres  repository.SphereRepository
	users    repository.UserRepository
	store    storage.Gateway
}

// NewAssetService constructs a new AssetService.
func NewAssetService(
	assets repository.AssetRepository,
	versions repository.VersionRepository,
	audit repository.AuditRepository,
	projects repository.ProjectRepository,
	spheres repository.SphereRepository,
	users repository.UserRepository,
	store storage.Gateway,
) AssetService {
	return &assetService{
		assets:   assets,
		versions: versions,
		audit:    audit,
		projects: projects,
		spheres:  spheres,
		users:    users,
		store:    store,
	}
}

func (s *assetService) Update(ctx context.Context, actor *model.User, assetID string, req UpdateRequest) (*UpdateResult, error) {
	asset, err := s.assets.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
		}
		return nil, err
	}

	if err := checkFieldAccess(actor, req); err != nil {
		return nil, err
	}
	if err := s.validateUpdate(ctx, asset, req); err != nil {
		return nil, err
	}

	var changes []string
	oldTitle := asset.Title
	newTitle := oldTitle
	if req.Title != nil {
		newTitle = *req.Title
	}
	version := asset.ArchiveVersion
	if req.VersionLabel != nil {
		version = *req.VersionLabel
	}

	// Removed screenshots: delete only the files explicitly named in this request,
	// never a diff against a possibly-stale snapshot. A failed delete is logged and
	// the update continues; the file may already be gone.
	if len(req.RemoveScreenshots) > 0 {
		removed := make(map[string]bool, len(req.RemoveScreenshots))
		for _, p := range req.RemoveScreenshots {
			removed[p] = true
			s.deleteFileQuiet(ctx, p)
		}
		kept := asset.Screenshots[:0]
		for _, p := range asset.Screenshots {
			if !removed[p] {
				kept = append(kept, p)
			}
		}
		asset.Screenshots = kept
		changes = append(changes, fmt.Sprintf("removed %d screenshot(s)", len(req.RemoveScreenshots)))
	}

	// New archive: the old file is deleted best-effort, but a failure to write the
	// replacement aborts before the record is touched.
	if req.Archive != nil {
		if asset.ArchivePath != "" {
			s.deleteFileQuiet(ctx, asset.ArchivePath)
		}
		stored, err := s.writeUpload(ctx, naming.VersionFolder(newTitle, version), *req.Archive)
		if err != nil {
			return nil, fmt.Errorf("write archive: %w", err)
		}
		asset.ArchivePath = stored
		changes = append(changes, "archive replaced")
	}

	if len(req.AddScreenshots) > 0 {
		folder := naming.ScreenshotsFolder(newTitle, version)
		for _, f := range req.AddScreenshots {
			stored, err := s.writeUpload(ctx, folder, f)
			if err != nil {
				return nil, fmt.Errorf("write screenshot: %w", err)
			}
			asset.Screenshots = append(asset.Screenshots, stored)
		}
		changes = append(changes, fmt.Sprintf("added %d screenshot(s)", len(req.AddScreenshots)))
	}

	titleChanged := req.Title != nil && *req.Title != oldTitle
	if titleChanged {
		asset.Title = newTitle
		// Rewrite stored path prefixes so references stay valid after the folder
		// rename below. String rewrite only; nothing is re-uploaded.
		asset.ArchivePath = naming.RewriteFolderPrefix(asset.ArchivePath, oldTitle, newTitle)
		for i, p := range asset.Screenshots {
			asset.Screenshots[i] = naming.RewriteFolderPrefix(p, oldTitle, newTitle)
		}
		changes = append(changes, fmt.Sprintf("title: %s → %s", oldTitle, newTitle))
	}

	if req.Description != nil && *req.Description != asset.Description {
		asset.Description = *req.Description
		changes = append(changes, "description updated")
	}

	if req.AuthorID != nil && !sameAuthor(req.AuthorID, asset.AuthorID) {
		author, err := s.users.FindByID(ctx, *req.AuthorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, invalidf("author %s does not exist", *req.AuthorID)
			}
			return nil, err
		}
		asset.AuthorID = req.AuthorID
		changes = append(changes, fmt.Sprintf("author: %s", author.Name))
	}

	if req.SphereIDs != nil && !sameIDSet(req.SphereIDs, asset.SphereIDs) {
		names, err := s.resolveSphereNames(ctx, req.SphereIDs)
		if err != nil {
			return nil, err
		}
		asset.SphereIDs = req.SphereIDs
		changes = append(changes, "spheres: "+strings.Join(names, ", "))
	}

	if req.ProjectIDs != nil && !sameIDSet(req.ProjectIDs, asset.ProjectIDs) {
		names, err := s.resolveProjectNames(ctx, req.ProjectIDs)
		if err != nil {
			return nil, err
		}
		asset.ProjectIDs = req.ProjectIDs
		changes = append(changes, "projects: "+strings.Join(names, ", "))
	}

	if req.VersionLabel != nil && *req.VersionLabel != asset.ArchiveVersion {
		changes = append(changes, fmt.Sprintf("version: %s → %s", asset.ArchiveVersion, *req.VersionLabel))
		asset.ArchiveVersion = *req.VersionLabel
	}

	res := &UpdateResult{Asset: asset}
	changed := len(changes) > 0
	if !changed && req.VersionLabel == nil {
		return res, nil
	}

	if changed {
		asset.UpdatedAt = time.Now().UTC()
		if err := s.assets.Update(ctx, asset); err != nil {
			return nil, err
		}

		// Post-commit storage sync. These are compensating actions: each failure is
		// logged and reported as a warning, never rolled back into the committed write.
		s.syncStorage(ctx, res, oldTitle, titleChanged)
	}

	// The label's presence requests a snapshot, not a field diff: re-supplying the
	// current label still appends one.
	if req.VersionLabel != nil {
		snapshot := &model.AssetVersion{
			ID:          uuid.New().String(),
			AssetID:     asset.ID,
			Label:       *req.VersionLabel,
			ArchivePath: asset.ArchivePath,
			Screenshots: append([]string(nil), asset.Screenshots...),
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.versions.Append(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("append version snapshot: %w", err)
		}
	}

	if changed {
		if err := s.audit.Append(ctx, strings.Join(changes, "; "), actor.ID, &asset.ID); err != nil {
			return nil, fmt.Errorf("append audit entry: %w", err)
		}
	}

	return res, nil
}

func (s *assetService) Versions(ctx context.Context, assetID string) ([]model.AssetVersion, error) {
	if err := s.mustExist(ctx, assetID); err != nil {
		return nil, err
	}
	return s.versions.ListByAsset(ctx, assetID)
}

func (s *assetService) AuditTrail(ctx context.Context, assetID string) ([]model.AuditLogEntry, error) {
	if err := s.mustExist(ctx, assetID); err != nil {
		return nil, err
	}
	return s.audit.ListByAsset(ctx, assetID)
}

func (s *assetService) mustExist(ctx context.Context, assetID string) error {
	if _, err := s.assets.FindByID(ctx, assetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: asset %s", ErrNotFound, assetID)
		}
		return err
	}
	return nil
}

// checkFieldAccess partitions the requested fields by required capability. The first
// uncovered field rejects the whole request; nothing has been applied at this point.
func checkFieldAccess(actor *model.User, req UpdateRequest) error {
	eff := permission.Effective(actor)

	full := []struct {
		present bool
		field   string
	}{
		{req.Title != nil, "title"},
		{req.AuthorID != nil, "author"},
		{req.ProjectIDs != nil, "projects"},
		{req.Archive != nil, "archive"},
		{req.VersionLabel != nil, "version"},
	}
	for _, f := range full {
		if f.present && !eff[permission.EditAllFields] {
			return &ForbiddenError{Field: f.field, Capability: permission.EditAllFields}
		}
	}
	if req.SphereIDs != nil && !eff[permission.EditSphere] && !eff[permission.EditAllFields] {
		return &ForbiddenError{Field: "spheres", Capability: permission.EditSphere}
	}
	if req.Description != nil && !eff[permission.EditDescription] {
		return &ForbiddenError{Field: "description", Capability: permission.EditDescription}
	}
	if (len(req.AddScreenshots) > 0 || len(req.RemoveScreenshots) > 0) && !eff[permission.EditScreenshots] {
		return &ForbiddenError{Field: "screenshots", Capability: permission.EditScreenshots}
	}
	return nil
}

// validateUpdate rejects bad input before any destructive action is taken.
func (s *assetService) validateUpdate(ctx context.Context, asset *model.Asset, req UpdateRequest) error {
	if req.Archive != nil && !naming.IsArchiveFilename(req.Archive.Name) {
		return invalidf("%s is not an accepted archive file", req.Archive.Name)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return invalidf("title must not be empty")
		}
		if title != asset.Title {
			existing, err := s.assets.FindByTitle(ctx, title)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			if existing != nil && existing.ID != asset.ID {
				return conflictf("an asset titled %q already exists", title)
			}
		}
	}
	if req.SphereIDs != nil && len(req.SphereIDs) == 0 {
		return invalidf("an asset needs at least one sphere")
	}
	if req.VersionLabel != nil && strings.TrimSpace(*req.VersionLabel) == "" {
		return invalidf("version label must not be empty")
	}
	return nil
}

// syncStorage runs the post-commit folder rename/ensure and tag reconciliation.
func (s *assetService) syncStorage(ctx context.Context, res *UpdateResult, oldTitle string, titleChanged bool) {
	asset := res.Asset
	folder := naming.ModelFolder(asset.Title)

	if titleChanged && naming.Sanitize(oldTitle) != naming.Sanitize(asset.Title) {
		// A real rename, not a fresh create: existing files must move with the
		// folder. Identical sanitized names never reach this branch.
		if err := s.store.RenameFolder(ctx, naming.ModelFolder(oldTitle), folder); err != nil {
			res.warn(fmt.Sprintf("storage folder rename failed: %v", err))
		}
	} else if err := s.store.EnsureFolder(ctx, folder); err != nil {
		res.warn(fmt.Sprintf("storage folder check failed: %v", err))
	}

	names, err := s.resolveProjectNames(ctx, asset.ProjectIDs)
	if err != nil {
		res.warn(fmt.Sprintf("project tag resolution failed: %v", err))
		return
	}
	tagNames := make([]string, len(names))
	for i, n := range names {
		tagNames[i] = naming.Sanitize(n)
	}
	if err := s.store.SyncTags(ctx, folder, tagNames); err != nil {
		res.warn(fmt.Sprintf("storage tag sync failed: %v", err))
	}
}

func (r *UpdateResult) warn(msg string) {
	logging.Error(msg, map[string]any{"asset_id": r.Asset.ID, "component": "asset_update"})
	r.Warnings = append(r.Warnings, msg)
}

func (s *assetService) writeUpload(ctx context.Context, folder string, f FileUpload) (string, error) {
	if err := s.store.EnsureFolder(ctx, folder); err != nil {
		return "", err
	}
	return s.store.WriteFile(ctx, path.Join(folder, naming.FileName(f.Name)), f.Content, f.Size, f.ContentType)
}

func (s *assetService) deleteFileQuiet(ctx context.Context, p string) {
	if err := s.store.DeleteFile(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Error("file cleanup failed", map[string]any{"path": p, "error": err.Error()})
	}
}

func (s *assetService) resolveProjectNames(ctx context.Context, ids []string) ([]string, error) {
	projects, err := s.projects.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(projects) != len(ids) {
		return nil, invalidf("one or more projects do not exist")
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return names, nil
}

func (s *assetService) resolveSphereNames(ctx context.Context, ids []string) ([]string, error) {
	spheres, err := s.spheres.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(spheres) != len(ids) {
		return nil, invalidf("one or more spheres do not exist")
	}
	names := make([]string, len(spheres))
	for i, sp := range spheres {
		names[i] = sp.Name
	}
	return names, nil
}

func sameAuthor(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
