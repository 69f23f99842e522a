package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/middleware"
)

// LocalStorage stores blobs on the local filesystem. StorageID is the path
// relative to the base directory. Intended for development and tests.
type LocalStorage struct {
	baseDir   string
	publicURL string
}

// NewLocalStorage builds a filesystem-backed BlobStorage rooted at baseDir.
func NewLocalStorage(baseDir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %q: %w", baseDir, err)
	}
	return &LocalStorage{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, key string, contentType string, body io.Reader) (*UploadResult, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		middleware.BlobOperations.WithLabelValues("upload", "error").Inc()
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		middleware.BlobOperations.WithLabelValues("upload", "error").Inc()
		return nil, fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		middleware.BlobOperations.WithLabelValues("upload", "error").Inc()
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}
	middleware.BlobOperations.WithLabelValues("upload", "ok").Inc()

	return &UploadResult{
		URL:       fmt.Sprintf("%s/%s", s.publicURL, key),
		StorageID: key,
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, storageID string) error {
	path, err := s.resolve(storageID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		middleware.BlobOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete blob %q: %w", storageID, err)
	}
	middleware.BlobOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

func (s *LocalStorage) DeleteMany(ctx context.Context, storageIDs []string) error {
	var firstErr error
	for _, id := range storageIDs {
		if id == "" {
			continue
		}
		if err := s.Delete(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// resolve joins key under baseDir and rejects path traversal.
func (s *LocalStorage) resolve(key string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return path, nil
}
