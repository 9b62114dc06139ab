package main

import (
	"database/sql"
	"net/http"
	"time"

	"harvest-intake/internal/auth"
	"harvest-intake/internal/httpapi"
	"harvest-intake/internal/rbac"
	"harvest-intake/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, mgr *auth.Manager, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// AUTH routes (token issuance, public).
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/lot-login", h.LotLogin)
	}

	// Ticket registration: lot token only.
	scale := v1.Group("/records")
	scale.Use(auth.RequireLotToken(mgr), rbac.RequireLotScope())
	{
		scale.POST("", h.CreateRecord)
	}

	// Shared endpoints: operator or staff. Lot sessions are pinned to their
	// lot inside the service layer; GET dispatches to own-lot listing or
	// cross-lot search depending on the session kind.
	shared := v1.Group("/records")
	shared.Use(auth.RequireUserOrLot(mgr))
	{
		shared.GET("", h.ListRecords)
		shared.GET("/:id", h.GetRecord)
		shared.PUT("/:id", h.UpdateRecord)
	}

	// Back-office endpoints: user token.
	staff := v1.Group("", auth.RequireUserToken(mgr))
	{
		staff.GET("/records/:id/history", h.RecordHistory)

		staff.GET("/lots", h.SearchLots)
		staff.GET("/lots/:id", h.GetLot)
		staff.GET("/lots/:id/history", h.LotHistory)
		staff.GET("/lots/:id/summary", h.LotSummary)
		staff.GET("/lots/:id/export", h.ExportLotRecords)
	}

	// Admin endpoints.
	admin := v1.Group("", auth.RequireUserToken(mgr), rbac.RequireAdmin())
	{
		admin.DELETE("/records/:id", h.DeleteRecord)

		admin.POST("/lots", h.CreateLot)
		admin.PUT("/lots/:id", h.UpdateLot)
		admin.DELETE("/lots/:id", h.DeactivateLot)
		admin.POST("/lots/:id/restore", h.RestoreLot)
		admin.POST("/lots/activate", h.ActivateLot)
		admin.POST("/lots/:id/close-day", h.CloseDay)
		admin.POST("/lots/:id/reopen-day", h.ReopenDay)

		admin.POST("/users", h.CreateUser)
		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:id", h.DeleteUser)
	}
}
