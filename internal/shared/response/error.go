package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/teamroster/server/internal/shared/errors"
)

// ErrorMapping maps a domain error to an HTTP status and stable code.
type ErrorMapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// Error aborts the request with the standard error body.
func Error(c *gin.Context, appErr *apperrors.AppError) {
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}

// HandleError renders err using the first mapping that matches it.
// An *AppError anywhere in the chain is rendered as is.
// Returns false if nothing matched.
func HandleError(c *gin.Context, err error, mappings []ErrorMapping) bool {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = m.Err.Error()
			}
			Error(c, apperrors.New(m.Code, msg, m.Status, nil))
			return true
		}
	}
	if appErr, ok := apperrors.As(err); ok {
		Error(c, appErr)
		return true
	}
	return false
}

// HandleErrorWithDefault handles an error, falling back to INTERNAL.
func HandleErrorWithDefault(c *gin.Context, err error, mappings []ErrorMapping) {
	if !HandleError(c, err, mappings) {
		Error(c, apperrors.Internal(err))
	}
}
