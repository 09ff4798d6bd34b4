package identity

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/teamroster/server/internal/shared/errors"
	"github.com/teamroster/server/internal/shared/response"
)

const (
	// UserIDKey is the gin context key for the caller's user ID.
	UserIDKey = "user_id"
	// EmailKey is the gin context key for the caller's email.
	EmailKey = "email"
	// NameKey is the gin context key for the caller's display name.
	NameKey = "name"
	// PictureKey is the gin context key for the caller's photo URL.
	PictureKey = "picture"

	bearerPrefix = "Bearer "
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID    string
	Email string
	Name  string
}

// Profile is the identity provider's view of a user.
type Profile struct {
	UserID      string
	Email       string
	DisplayName string
	PhotoURL    string
}

// LoginRecorder mirrors a verified profile into local storage.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, profile Profile, at time.Time) error
}

// RequireAuth rejects requests without a valid bearer token and
// stores the verified identity in the gin context.
func RequireAuth(verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			response.Error(c, apperrors.Unauthorized("authorization header required"))
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			response.Error(c, apperrors.Unauthorized("invalid or expired token"))
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Set(NameKey, claims.Name)
		c.Set(PictureKey, claims.Picture)
		c.Next()
	}
}

// TrackLogin records the caller's profile after authentication.
// Failures are logged and never block the request.
func TrackLogin(recorder LoginRecorder, now func() time.Time, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID != "" {
			profile := Profile{
				UserID:      userID,
				Email:       c.GetString(EmailKey),
				DisplayName: c.GetString(NameKey),
				PhotoURL:    c.GetString(PictureKey),
			}
			if err := recorder.RecordLogin(c.Request.Context(), profile, now()); err != nil {
				logger.Warn("record login failed",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
		}
		c.Next()
	}
}

// CallerFrom returns the authenticated caller.
// ok is false when no identity was established.
func CallerFrom(c *gin.Context) (Caller, bool) {
	id := c.GetString(UserIDKey)
	if id == "" {
		return Caller{}, false
	}
	return Caller{
		ID:    id,
		Email: c.GetString(EmailKey),
		Name:  c.GetString(NameKey),
	}, true
}
