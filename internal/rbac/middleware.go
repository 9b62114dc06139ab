package rbac

import (
	"net/http"

	"harvest-intake/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAdmin gates admin-only endpoints (user management, lot management,
// record deletion, day close/reopen). It assumes auth.RequireUserToken ran
// earlier in the chain; a lot-token session is never an admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.UserID(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !auth.IsAdmin(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireLotScope enforces that the request carries a lot-token scope.
// Record creation is operator-only; staff use the admin surface instead.
func RequireLotScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		lotID, err := auth.LotID(c.Request.Context())
		if err != nil || lotID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "lot token required"})
			return
		}
		c.Next()
	}
}
