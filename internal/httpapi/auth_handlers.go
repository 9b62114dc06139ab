package httpapi

import (
	"net/http"
	"strings"
	"time"

	"harvest-intake/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = time.Minute
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a back-office account and issues a user token.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	throttleKey := "login:user:" + strings.ToLower(req.Email)
	if !h.allowAttempt(c, throttleKey) {
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.clearAttempts(c, throttleKey)

	token, err := h.Auth.IssueUserToken(h.now(), u.ID, u.Email, u.IsAdmin)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user": gin.H{
			"id":      u.ID,
			"email":   u.Email,
			"isAdmin": u.IsAdmin,
		},
	})
}

type lotLoginRequest struct {
	Code string `json:"code"`
}

// LotLogin exchanges the active lot's code for a lot-scoped token. Lot codes
// are short, so attempts are throttled per client address rather than per
// code.
func (h Handlers) LotLogin(c *gin.Context) {
	var req lotLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}

	throttleKey := "login:lot:" + c.ClientIP()
	if !h.allowAttempt(c, throttleKey) {
		return
	}

	lot, err := h.Lots.FindActiveByCode(c.Request.Context(), code)
	if err != nil {
		// Wrong code and inactive lot look the same to the caller.
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid lot code"})
		return
	}
	h.clearAttempts(c, throttleKey)

	token, err := h.Auth.IssueLotToken(h.now(), lot.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_in":   int(h.Auth.LotTokenTTL().Seconds()),
		"lot": gin.H{
			"id":     lot.ID,
			"name":   lot.Name,
			"cereal": lot.Cereal,
		},
	})
}

// allowAttempt applies the redis login throttle. Redis being down fails
// open.
func (h Handlers) allowAttempt(c *gin.Context, key string) bool {
	if h.Redis == nil {
		return true
	}
	ok, err := utils.AllowLoginAttempt(c.Request.Context(), h.Redis, key, loginAttemptLimit, loginAttemptWindow)
	if err != nil {
		h.logger(c).Warn("login throttle unavailable", "err", err)
		return true
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
		return false
	}
	return true
}

// clearAttempts drops the throttle counter once a login succeeds, so earlier
// typos within the window do not count against the next attempts.
func (h Handlers) clearAttempts(c *gin.Context, key string) {
	if h.Redis == nil {
		return
	}
	if err := utils.ResetLoginAttempts(c.Request.Context(), h.Redis, key); err != nil {
		h.logger(c).Warn("login throttle reset failed", "err", err)
	}
}
