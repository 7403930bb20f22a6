package httputil

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadLimitedBody reads the whole request body, failing once it exceeds limit bytes.
func ReadLimitedBody(c *gin.Context, limit int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	body, err := c.GetRawData()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}
