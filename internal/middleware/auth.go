package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarauxil/internal/pkg/response"
)

// Authenticator resolves a caller's opaque user id from the request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// RequireUser rejects unauthenticated requests and stores the caller's user
// id in the gin context for downstream handlers.
func RequireUser(gate Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := gate.Authenticate(c.Request)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// UserID returns the authenticated caller id set by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString("user_id")
}
