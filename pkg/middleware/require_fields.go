package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

// RequireFields rejects JSON bodies where any of fields is absent, null or an empty string.
// Fields are checked in order and only the first missing one is reported. The body is
// restored so downstream handlers can bind it again.
func RequireFields(fields ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var decoded interface{}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &decoded); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
				return
			}
		}
		obj, _ := decoded.(map[string]interface{})

		for _, field := range fields {
			if isBlank(obj[field]) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("Missing required field: %s", field),
				})
				return
			}
		}

		c.Next()
	}
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}
