package storage

import (
	"context"
	"errors"
	"io"
)

// Package storage abstracts the external hierarchical file-storage service holding
// asset archives and preview images. Implementations must rely on streaming I/O only.

var (
	// ErrNotFound marks an object or folder that is already absent. Callers treat it
	// as non-fatal during cleanup: a file may legitimately be gone.
	ErrNotFound = errors.New("storage: not found")

	// ErrUnavailable marks a backend that could not be reached at all (down, wrong
	// address, bad credentials). Fatal for the storage step it occurred in.
	ErrUnavailable = errors.New("storage: unavailable")
)

// Gateway is the outbound interface to the file-storage collaborator.
//
// Folder paths use forward slashes and no leading/trailing slash, e.g.
// "models/Pump_A/v1.0".
type Gateway interface {
	// EnsureFolder creates the folder path recursively. Idempotent: an
	// already-existing folder is success, not an error.
	EnsureFolder(ctx context.Context, folder string) error

	// RenameFolder moves a folder and everything under it. Callers invoke it only
	// when the target name actually differs.
	RenameFolder(ctx context.Context, oldFolder, newFolder string) error

	// SyncTags reconciles the tag names attached to a folder with the desired set:
	// missing names are attached, extra ones detached. Repeated calls with the same
	// names converge and perform no further mutation.
	SyncTags(ctx context.Context, folder string, names []string) error

	// WriteFile stores the content under path and returns the stored path.
	WriteFile(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)

	// DeleteFile removes a single file. Returns ErrNotFound if it is already gone.
	DeleteFile(ctx context.Context, path string) error

	// DeleteFolderRecursive removes a folder and all of its contents.
	DeleteFolderRecursive(ctx context.Context, folder string) error
}
