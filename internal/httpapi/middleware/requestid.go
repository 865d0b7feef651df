package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/chatmultimodel/backend/internal/common"
)

const RequestIDHeader = "X-Request-Id"

// RequestID assigns a ULID to every request that did not bring one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			if id, err := common.NewULID(); err == nil {
				rid = id
			}
		}
		c.Header(RequestIDHeader, rid)
		c.Set("request_id", rid)
		c.Next()
	}
}
