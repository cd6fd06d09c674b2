package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerly/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects bodies larger than maxBytes. Requests without a
// Content-Length are cut off while streaming.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
