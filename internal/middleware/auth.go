package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/kreqo/mytasks/internal/constants"
	apierrors "github.com/kreqo/mytasks/internal/errors"
	"github.com/kreqo/mytasks/internal/identity"
)

// CurrentUser reads the session and, when a user is logged in, attaches
// the user id to both the gin context and the request context so the
// identity gateway can resolve the acting identity. Anonymous requests
// pass through: task routes accept them.
func CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.ContextKeyUserID)

		if userID, ok := asUserID(raw); ok {
			c.Set(constants.ContextKeyUserID, userID)
			ctx := identity.WithUserID(c.Request.Context(), userID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// RequireAuth rejects requests without an authenticated session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetUserID(c); !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return asUserID(userID)
}

func asUserID(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
