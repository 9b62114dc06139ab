package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RequireUserToken verifies a user token and injects identity into request context.
// It does not perform admin checks; those belong to internal/rbac.
func RequireUserToken(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := m.VerifyUser(tok, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx := WithUser(c.Request.Context(), claims.UserID, claims.Email, claims.IsAdmin)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", claims.UserID)
		c.Set("is_admin", claims.IsAdmin)

		c.Next()
	}
}

// RequireLotToken verifies a lot-scoped token and injects the lot scope.
func RequireLotToken(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := m.VerifyLot(tok, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid lot token"})
			return
		}

		ctx := WithLot(c.Request.Context(), claims.LotID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("lot_id", claims.LotID)

		c.Next()
	}
}

// RequireUserOrLot accepts either token kind. Used on endpoints that both
// operators (scoped to their lot) and staff may call; downstream code decides
// what the scope permits.
func RequireUserOrLot(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		now := time.Now()
		if claims, err := m.VerifyUser(tok, now); err == nil {
			ctx := WithUser(c.Request.Context(), claims.UserID, claims.Email, claims.IsAdmin)
			c.Request = c.Request.WithContext(ctx)
			c.Set("user_id", claims.UserID)
			c.Set("is_admin", claims.IsAdmin)
			c.Next()
			return
		}
		if claims, err := m.VerifyLot(tok, now); err == nil {
			ctx := WithLot(c.Request.Context(), claims.LotID)
			c.Request = c.Request.WithContext(ctx)
			c.Set("lot_id", claims.LotID)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return "", false
	}
	return strings.TrimPrefix(raw, bearerPrefix), true
}
