// Package storage abstracts blob storage for post images and profile photos.
package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored blob.
type UploadResult struct {
	// URL is the public location clients can fetch the blob from.
	URL string
	// StorageID is the backend-specific identifier needed to delete the blob.
	StorageID string
}

// BlobStorage is implemented by the S3 and local-disk backends.
type BlobStorage interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, storageID string) error
	DeleteMany(ctx context.Context, storageIDs []string) error
}
