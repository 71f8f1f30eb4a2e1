package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var sanitizePolicy = bluemonday.StrictPolicy()

// SanitizeJSONInput strips markup from every string field of incoming JSON
// bodies, including nested objects and arrays. The webhook route must never
// pass through here: its signature covers the raw bytes.
func SanitizeJSONInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Next()
			return
		}

		var body interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		cleaned, err := json.Marshal(sanitizeValue(body))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(cleaned))
		c.Request.ContentLength = int64(len(cleaned))

		c.Next()
	}
}

func sanitizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case string:
		return sanitizePolicy.Sanitize(value)
	case map[string]interface{}:
		for k, inner := range value {
			value[k] = sanitizeValue(inner)
		}
		return value
	case []interface{}:
		for i, inner := range value {
			value[i] = sanitizeValue(inner)
		}
		return value
	default:
		return v
	}
}
