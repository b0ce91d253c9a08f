package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElStudioBarberia/course-service/internal/storage"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

// bucketPolicies maps the buckets exposed for direct upload to their rules.
var bucketPolicies = map[string]storage.BucketPolicy{
	storage.BucketProfilePictures: storage.ProfilePicturesPolicy,
	storage.BucketCursos:          storage.CursosPolicy,
}

// UploadHandler proxies file uploads into the object store and hands back
// the public URL the row columns should reference.
type UploadHandler struct {
	BaseHandler
	store storage.Client
}

func NewUploadHandler(store storage.Client, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
	}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	bucket := c.Param("bucket")
	policy, ok := bucketPolicies[bucket]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Unknown bucket"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing file"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := policy.Allows(contentType, header.Size); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "File rejected", Details: err.Error()})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid file upload", Details: err.Error()})
		return
	}
	defer f.Close()

	path := storage.NewObjectName(header.Filename)
	err = h.store.Upload(c.Request.Context(), bucket, path, f, header.Size, storage.UploadOptions{
		ContentType:  contentType,
		CacheControl: "3600",
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "file uploaded", "bucket", bucket, "path", path, "size", header.Size)

	c.JSON(http.StatusCreated, SuccessResponse{Data: gin.H{
		"bucket":     bucket,
		"path":       path,
		"public_url": h.store.PublicURL(bucket, path),
	}})
}
