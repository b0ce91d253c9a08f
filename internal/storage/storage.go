// Package storage abstracts the object store that holds course media and
// profile pictures, organized into named public buckets.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
)

// Well-known buckets. The legacy buckets predate the consolidated cursos
// bucket and are kept so existing stored URLs keep resolving.
const (
	BucketProfilePictures = "profile-pictures"
	BucketCursos          = "cursos"
	BucketVideos          = "videos"
	BucketMateriales      = "materiales"
	BucketCourseMaterials = "course-materials"
)

// BucketPolicy describes the provisioning policy applied to a bucket.
type BucketPolicy struct {
	Public           bool
	AllowedMIMETypes []string
	MaxObjectSize    int64
}

// Policies applied by the provisioning CLIs.
var (
	ProfilePicturesPolicy = BucketPolicy{
		Public:           true,
		AllowedMIMETypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxObjectSize:    5 * 1024 * 1024,
	}
	CursosPolicy = BucketPolicy{
		Public: true,
		AllowedMIMETypes: []string{
			"image/jpeg", "image/png", "image/webp",
			"video/mp4", "video/webm", "video/ogg",
			"application/pdf",
		},
		MaxObjectSize: 1024 * 1024 * 1024,
	}
)

// UploadOptions mirror the remote storage upload knobs.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// Client is the object storage surface used by services and CLIs.
type Client interface {
	ListBuckets(ctx context.Context) ([]string, error)
	EnsureBucket(ctx context.Context, name string, policy BucketPolicy) (created bool, err error)
	Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, opts UploadOptions) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket string, paths ...string) error
}

// ObjectRef identifies a stored object by bucket and path.
type ObjectRef struct {
	Bucket string
	Path   string
}

// ExtractObjectPath infers the bucket and object path from a public URL of
// the form <base>/storage/v1/object/public/<bucket>/<path...>. Some rows
// store the bare path instead of the full URL, and some older URLs repeat
// the bucket name at the start of the path; both quirks are handled here
// so deletes keep working. Returns false when the URL cannot be parsed.
func ExtractObjectPath(publicURL string) (ObjectRef, bool) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return ObjectRef{}, false
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	objectIdx := -1
	for i, p := range parts {
		if p == "object" {
			objectIdx = i
			break
		}
	}
	if objectIdx < 0 || objectIdx+2 >= len(parts) || parts[objectIdx+1] != "public" {
		return ObjectRef{}, false
	}

	bucket := parts[objectIdx+2]
	pathParts := parts[objectIdx+3:]
	if len(pathParts) == 0 {
		return ObjectRef{}, false
	}

	// Duplicated bucket segment at the start of the path
	if pathParts[0] == bucket && len(pathParts) > 1 {
		pathParts = pathParts[1:]
	}

	return ObjectRef{Bucket: bucket, Path: strings.Join(pathParts, "/")}, true
}

// Allows reports whether an object of the given content type and size may
// be stored under this policy. A zero MaxObjectSize means unlimited.
func (p BucketPolicy) Allows(contentType string, size int64) error {
	if p.MaxObjectSize > 0 && size > p.MaxObjectSize {
		return fmt.Errorf("object size %d exceeds bucket limit %d", size, p.MaxObjectSize)
	}
	if len(p.AllowedMIMETypes) == 0 {
		return nil
	}
	for _, mt := range p.AllowedMIMETypes {
		if strings.EqualFold(mt, contentType) {
			return nil
		}
	}
	return fmt.Errorf("content type %q not allowed in bucket", contentType)
}

// NewObjectName builds a collision-resistant object name keeping the
// original file extension: <random>_<millis>.<ext>.
func NewObjectName(filename string) string {
	buf := make([]byte, 6)
	rand.Read(buf)
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s_%d%s", hex.EncodeToString(buf), time.Now().UnixMilli(), ext)
}

// FormatPublicURL renders the fixed public object URL template.
func FormatPublicURL(baseURL, bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		strings.TrimRight(baseURL, "/"), bucket, path)
}
