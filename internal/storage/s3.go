package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"inkwell/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage stores blobs in an S3-compatible bucket (AWS S3, Cloudflare R2,
// MinIO). StorageID is the object key.
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// S3Config holds the settings needed to build an S3 client.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	// PublicURL is the base URL blobs are served from, without trailing slash.
	PublicURL string
}

// NewS3Storage builds an S3-backed BlobStorage.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// R2 and MinIO expect path-style addressing
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, contentType string, body io.Reader) (*UploadResult, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		middleware.BlobOperations.WithLabelValues("upload", "error").Inc()
		return nil, fmt.Errorf("failed to upload blob %q: %w", key, err)
	}
	middleware.BlobOperations.WithLabelValues("upload", "ok").Inc()

	return &UploadResult{
		URL:       fmt.Sprintf("%s/%s", s.publicURL, key),
		StorageID: key,
	}, nil
}

func (s *S3Storage) Delete(ctx context.Context, storageID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		middleware.BlobOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete blob %q: %w", storageID, err)
	}
	middleware.BlobOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

func (s *S3Storage) DeleteMany(ctx context.Context, storageIDs []string) error {
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
