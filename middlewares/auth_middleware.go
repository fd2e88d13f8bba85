package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key holding the signed-in user id.
const ContextUserID = "userID"

// SessionSource reports the device session, remote first with offline fallback.
type SessionSource interface {
	SessionUser(ctx context.Context) (string, bool)
}

// RequireSession rejects requests while no user is signed in on this device.
func RequireSession(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := sessions.SessionUser(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		c.Set(ContextUserID, uid)
		c.Next()
	}
}
