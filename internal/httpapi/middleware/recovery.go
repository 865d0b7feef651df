package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatmultimodel/backend/internal/common"
	"github.com/chatmultimodel/backend/internal/logger"
)

// Recovery turns panics into the standard error envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", "panic", r, "path", c.FullPath())
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
