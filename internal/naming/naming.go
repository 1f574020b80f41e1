// Package naming derives deterministic, filesystem-safe storage paths from
// human-chosen titles and random identifiers. The folder layout is a compatibility
// contract with the existing storage tree:
//
//	models/{sanitize(title)}/v{version}         archive
//	models/{sanitize(title)}/v{version}/screenshots  preview images
//	projects/{sanitize(name)}                   project cover images
package naming

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	modelsRoot        = "models"
	projectsRoot      = "projects"
	screenshotsFolder = "screenshots"
)

// Sanitize maps a display title to a folder segment by replacing every rune outside
// [a-zA-Z0-9_-] with '_'. The mapping is many-to-one: distinct titles can collide.
func Sanitize(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, title)
}

// ModelFolder returns the asset's root folder for the given title.
func ModelFolder(title string) string {
	return path.Join(modelsRoot, Sanitize(title))
}

// VersionFolder returns the folder holding the archive for a version label.
func VersionFolder(title, version string) string {
	return path.Join(ModelFolder(title), "v"+version)
}

// ScreenshotsFolder returns the preview-image folder for a version.
func ScreenshotsFolder(title, version string) string {
	return path.Join(VersionFolder(title, version), screenshotsFolder)
}

// ProjectFolder returns the cover-image folder for a project name.
func ProjectFolder(name string) string {
	return path.Join(projectsRoot, Sanitize(name))
}

// RewriteFolderPrefix rewrites a stored path from the old title's folder to the new
// title's folder. Paths outside models/{sanitize(oldTitle)}/ are returned unchanged,
// so stale or foreign references are never mangled.
func RewriteFolderPrefix(p, oldTitle, newTitle string) string {
	oldPrefix := ModelFolder(oldTitle) + "/"
	if !strings.HasPrefix(p, oldPrefix) {
		return p
	}
	return ModelFolder(newTitle) + "/" + strings.TrimPrefix(p, oldPrefix)
}

// FileName generates a collision-safe stored file name preserving the original
// extension.
func FileName(originalFilename string) string {
	return uuid.New().String() + ext(originalFilename)
}

// archiveExts is the allow-list of acceptable model-archive extensions.
var archiveExts = map[string]bool{
	".zip": true,
	".rar": true,
	".7z":  true,
	".tar": true,
	".gz":  true,
}

// IsArchiveFilename reports whether the filename carries an accepted archive extension.
func IsArchiveFilename(name string) bool {
	return archiveExts[ext(name)]
}

func ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i:])
}
