package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"harvest-intake/internal/audit"
	"harvest-intake/internal/auth"
	"harvest-intake/internal/lots"
	"harvest-intake/internal/records"
	"harvest-intake/internal/reporting"
	"harvest-intake/internal/users"
	"harvest-intake/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Users     *users.Service
	Lots      *lots.Service
	Records   *records.Service
	Audit     *audit.Service
	Reporting *reporting.Service

	// Redis throttles login attempts; nil disables throttling (tests,
	// local runs without redis).
	Redis *redis.Client
	Log   *slog.Logger

	Clock func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

// logger prefers the request-scoped logger injected by logger.Middleware so
// error lines carry the request id. Outside a request pipeline it falls back
// to the handler-level logger.
func (h Handlers) logger(c *gin.Context) *slog.Logger {
	if l := logger.FromGin(c); l != slog.Default() {
		return l
	}
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and returned as an opaque 500 so internals never leak to clients.
func (h Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, records.ErrDayClosed):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "day is closed"})
	case errors.Is(err, records.ErrLotMismatch):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "record belongs to another lot"})
	case errors.Is(err, records.ErrOrderNumberTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "order number already used"})
	case errors.Is(err, users.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, lots.ErrCodeTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "lot code already in use"})
	case errors.Is(err, users.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, audit.ErrReasonRequired):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "reason required"})
	case errors.Is(err, records.ErrNotFound),
		errors.Is(err, lots.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, records.ErrInvalidArgument),
		errors.Is(err, lots.ErrInvalidArgument),
		errors.Is(err, users.ErrInvalidArgument),
		errors.Is(err, audit.ErrInvalidEntry),
		errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	default:
		h.logger(c).Error("request failed", "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
