package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assetcat/internal/model"
	"assetcat/internal/naming"
	"assetcat/internal/permission"
)

// Create uploads a new asset. Files go to storage first and the record second; if the
// record insert fails the uploaded files are deleted again.
func (s *assetService) Create(ctx context.Context, actor *model.User, req CreateRequest) (*model.Asset, error) {
	if !permission.Can(actor, permission.EditAllFields) {
		return nil, &ForbiddenError{Field: "asset", Capability: permission.EditAllFields}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidf("title must not be empty")
	}
	if len(req.SphereIDs) == 0 {
		return nil, invalidf("an asset needs at least one sphere")
	}
	if !naming.IsArchiveFilename(req.Archive.Name) {
		return nil, invalidf("%s is not an accepted archive file", req.Archive.Name)
	}
	if len(req.Screenshots) < 2 {
		return nil, invalidf("at least two preview images are required")
	}
	if _, err := s.assets.FindByTitle(ctx, title); err == nil {
		return nil, conflictf("an asset titled %q already exists", title)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := s.resolveSphereNames(ctx, req.SphereIDs); err != nil {
		return nil, err
	}
	projectNames, err := s.resolveProjectNames(ctx, req.ProjectIDs)
	if err != nil {
		return nil, err
	}

	version := req.VersionLabel
	if version == "" {
		version = "1.0"
	}

	var written []string
	rollback := func() {
		for _, p := range written {
			s.deleteFileQuiet(ctx, p)
		}
	}

	archivePath, err := s.writeUpload(ctx, naming.VersionFolder(title, version), req.Archive)
	if err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	written = append(written, archivePath)

	screenshots := make([]string, 0, len(req.Screenshots))
	for _, f := range req.Screenshots {
		stored, err := s.writeUpload(ctx, naming.ScreenshotsFolder(title, version), f)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("write screenshot: %w", err)
		}
		written = append(written, stored)
		screenshots = append(screenshots, stored)
	}

	now := time.Now().UTC()
	asset := &model.Asset{
		ID:             uuid.New().String(),
		Title:          title,
		Description:    req.Description,
		AuthorID:       req.AuthorID,
		ArchivePath:    archivePath,
		ArchiveVersion: version,
		Screenshots:    screenshots,
		SphereIDs:      req.SphereIDs,
		ProjectIDs:     req.ProjectIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		rollback()
		return nil, fmt.Errorf("save asset: %w", err)
	}

	// Tag the fresh folder with its project memberships; a failure here is logged
	// only, the asset itself is already saved.
	folder := naming.ModelFolder(title)
	tagNames := make([]string, len(projectNames))
	for i, n := range projectNames {
		tagNames[i] = naming.Sanitize(n)
	}
	res := &UpdateResult{Asset: asset}
	if err := s.store.SyncTags(ctx, folder, tagNames); err != nil {
		res.warn(fmt.Sprintf("storage tag sync failed: %v", err))
	}

	snapshot := &model.AssetVersion{
		ID:          uuid.New().String(),
		AssetID:     asset.ID,
		Label:       version,
		ArchivePath: archivePath,
		Screenshots: append([]string(nil), screenshots...),
		CreatedAt:   now,
	}
	if err := s.versions.Append(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("append version snapshot: %w", err)
	}

	if err := s.audit.Append(ctx, fmt.Sprintf("created asset %s", title), actor.ID, &asset.ID); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	return asset, nil
}
