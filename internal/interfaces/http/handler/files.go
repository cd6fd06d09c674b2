package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
)

// ObjectOpener streams stored objects
type ObjectOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// FileHandler serves objects of the in-memory storage used when no S3
// bucket is configured. Its download URLs point at /files/<key>.
type FileHandler struct {
	BaseHandler
	storage ObjectOpener
}

// NewFileHandler creates a new file handler
func NewFileHandler(storage ObjectOpener) *FileHandler {
	return &FileHandler{storage: storage}
}

// Serve streams the object named by the wildcard path
func (h *FileHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		h.NotFound(c, "File not found")
		return
	}

	body, contentType, err := h.storage.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, identityapp.ErrObjectNotFound) {
			h.NotFound(c, "File not found")
			return
		}
		h.HandleError(c, err)
		return
	}
	defer body.Close()

	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}
