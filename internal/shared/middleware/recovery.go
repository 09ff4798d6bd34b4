package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/teamroster/server/internal/shared/errors"
	"github.com/teamroster/server/internal/shared/logger"
)

// Recovery returns a middleware that turns panics into INTERNAL responses.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.ForRequest(c.Request.Context()).Error("panic recovered",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				appErr := apperrors.Internal(nil)
				c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
			}
		}()
		c.Next()
	}
}
