package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ElStudioBarberia/course-service/internal/config"
	"github.com/ElStudioBarberia/course-service/internal/storage"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	return w.c.ListBuckets(ctx)
}
func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	return w.c.SetBucketPolicy(ctx, bucketName, policy)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}
func (w minioClientWrapper) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return w.c.StatObject(ctx, bucketName, objectName, opts)
}

var _ storage.Client = (*Client)(nil)

type Client struct {
	api           minioAPI
	publicBaseURL string
}

// NewClient creates a storage client from configuration.
func NewClient(cfg config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return NewClientWithAPI(minioClientWrapper{c: mc}, base), nil
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(api minioAPI, publicBaseURL string) *Client {
	return &Client{api: api, publicBaseURL: publicBaseURL}
}

func (c *Client) ListBuckets(ctx context.Context) ([]string, error) {
	infos, err := c.api.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, nil
}

// EnsureBucket creates the bucket if missing and applies its policy.
// Returns true when the bucket was created by this call.
func (c *Client) EnsureBucket(ctx context.Context, name string, policy storage.BucketPolicy) (bool, error) {
	exists, err := c.api.BucketExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	created := false
	if !exists {
		if err := c.api.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
			return false, fmt.Errorf("failed to create bucket: %w", err)
		}
		created = true
	}

	if policy.Public {
		if err := c.api.SetBucketPolicy(ctx, name, publicReadPolicy(name)); err != nil {
			return created, fmt.Errorf("failed to set bucket policy: %w", err)
		}
	}

	return created, nil
}

func (c *Client) Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, opts storage.UploadOptions) error {
	if !opts.Upsert {
		if _, err := c.api.StatObject(ctx, bucket, path, minio.StatObjectOptions{}); err == nil {
			return fmt.Errorf("object already exists: %s/%s", bucket, path)
		}
	}

	putOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	}
	if _, err := c.api.PutObject(ctx, bucket, path, reader, size, putOpts); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (c *Client) PublicURL(bucket, path string) string {
	return storage.FormatPublicURL(c.publicBaseURL, bucket, path)
}

// Remove deletes the given objects. Failures are collected; removal of the
// remaining paths continues.
func (c *Client) Remove(ctx context.Context, bucket string, paths ...string) error {
	var firstErr error
	for _, path := range paths {
		if err := c.api.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{}); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove %s/%s: %w", bucket, path, err)
			}
		}
	}
	return firstErr
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`, bucket)
}
