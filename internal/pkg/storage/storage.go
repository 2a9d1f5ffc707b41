package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

// FileStorage holds uploaded source payloads.
type FileStorage interface {
	// Upload stores a file and returns its storage key
	Upload(ctx context.Context, file io.Reader, key string) (string, error)

	// Download opens a stored file; ErrFileNotFound if absent
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)
}

// AllowedSourceExts lists upload extensions the parser understands.
var AllowedSourceExts = []string{".csv", ".json", ".txt", ".xlsx"}

// SourceFileKey builds the storage key for a source upload, keeping only the base name.
func SourceFileKey(sourceID, filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return path.Join("sources", sourceID, base)
}

// HasAllowedExt reports whether filename carries one of the allowed extensions.
func HasAllowedExt(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
