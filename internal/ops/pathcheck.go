package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/refcat/internal/errors"
)

// formatExtensions lists the file extensions accepted for each export format.
var formatExtensions = map[string][]string{
	FormatMarkdown: {".md", ".markdown"},
	FormatHTML:     {".html", ".htm"},
	FormatJSONL:    {".jsonl"},
}

// FormatForPath infers the export format from a file extension.
// It returns "" for unknown extensions.
func FormatForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for format, exts := range formatExtensions {
		if slices.Contains(exts, ext) {
			return format
		}
	}
	return ""
}

// ValidateExportPath checks that path is safe to write an export of format to:
// no ".." components, an extension matching the format, and no symlink at
// the destination or its parent directory.
func ValidateExportPath(path, format string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	exts := formatExtensions[format]
	if !slices.Contains(exts, strings.ToLower(filepath.Ext(cleaned))) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have one of %v extensions for format %s", exts, format))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if info, err := os.Lstat(filepath.Dir(absPath)); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}

	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
		if info.IsDir() {
			return errors.NewInvalidRequest("path is a directory")
		}
	}

	return nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Forward slashes count on all platforms
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
