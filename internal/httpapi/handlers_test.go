package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"harvest-intake/internal/audit"
	"harvest-intake/internal/auth"
	"harvest-intake/internal/config"
	"harvest-intake/internal/lots"
	"harvest-intake/internal/records"
	"harvest-intake/internal/reporting"
	"harvest-intake/internal/users"

	"github.com/gin-gonic/gin"
)

func newTestHandlers(t *testing.T) Handlers {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auditSvc := audit.NewService(audit.NewMemoryRepo(), time.UTC)
	recordsRepo := records.NewMemoryRepo()

	mgr, err := auth.NewManager(config.AuthConfig{
		JWTSecret:    "user-secret-user-secret-user-secret",
		LotSecret:    "lot-secret-lot-secret-lot-secret-xx",
		JWTIssuer:    "harvest-intake-test",
		JWTAudience:  "harvest-intake",
		UserTokenTTL: time.Hour,
		LotTokenTTL:  12 * time.Hour,
	})
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}

	return Handlers{
		Auth:      mgr,
		Users:     users.NewService(users.NewMemoryRepo(), nil),
		Lots:      lots.NewService(lots.NewMemoryRepo()),
		Records:   records.NewService(recordsRepo, auditSvc),
		Audit:     auditSvc,
		Reporting: reporting.NewService(recordsRepo, time.UTC),
	}
}

func withLot(lotID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithLot(c.Request.Context(), lotID))
		c.Next()
	}
}

func withUser(userID string, admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), userID, userID+"@example.com", admin))
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRecord_LotSession(t *testing.T) {
	h := newTestHandlers(t)
	r := gin.New()
	r.POST("/records", withLot("lot-1"), h.CreateRecord)

	w := doJSON(t, r, http.MethodPost, "/records", gin.H{
		"date":       "2025-01-10T09:00:00Z",
		"kilograms":  1000,
		"truckPlate": "AB 123 CD",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var rec records.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.LotID != "lot-1" || rec.OrderNumber != 1 || rec.CreatedBy != "lot_operator" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestCreateRecord_ClosedDayRejected(t *testing.T) {
	h := newTestHandlers(t)
	r := gin.New()
	r.POST("/records", withLot("lot-1"), h.CreateRecord)

	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	if _, err := h.Audit.CloseDay(context.Background(), "lot-1", day, "admin"); err != nil {
		t.Fatalf("close day: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/records", gin.H{
		"date":      "2025-01-10T09:00:00Z",
		"kilograms": 1000,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for closed day, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateRecord_LotMismatchIs403(t *testing.T) {
	h := newTestHandlers(t)

	rec, err := h.Records.Create(context.Background(), "lot-1", records.CreateInput{
		Date:      time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		Kilograms: 1000,
	}, "admin")
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}

	r := gin.New()
	r.PUT("/records/:id", withLot("lot-2"), h.UpdateRecord)

	w := doJSON(t, r, http.MethodPut, "/records/"+rec.ID, gin.H{"kilograms": 1200})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateRecord_DuplicateOrderNumberIs409(t *testing.T) {
	h := newTestHandlers(t)
	r := gin.New()
	r.POST("/records", withLot("lot-1"), h.CreateRecord)

	first := doJSON(t, r, http.MethodPost, "/records", gin.H{
		"date":      "2025-01-10T09:00:00Z",
		"kilograms": 1000,
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("seed create: %d", first.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/records", gin.H{
		"date":        "2025-01-10T10:00:00Z",
		"orderNumber": 1,
		"kilograms":   900,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLotLogin(t *testing.T) {
	h := newTestHandlers(t)
	r := gin.New()
	r.POST("/auth/lot-login", h.LotLogin)

	lot, err := h.Lots.Create(context.Background(), lots.CreateInput{Name: "Campo", Cereal: "soy"})
	if err != nil {
		t.Fatalf("create lot: %v", err)
	}

	// Inactive lot: the code does not resolve yet.
	w := doJSON(t, r, http.MethodPost, "/auth/lot-login", gin.H{"code": lot.Code})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive lot, got %d", w.Code)
	}

	if _, err := h.Lots.SetActive(context.Background(), lot.Code); err != nil {
		t.Fatalf("activate: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/auth/lot-login", gin.H{"code": lot.Code})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := h.Auth.VerifyLot(resp.AccessToken, time.Now())
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.LotID != lot.ID {
		t.Fatalf("expected lot %s in token, got %s", lot.ID, claims.LotID)
	}
}

func TestLogin(t *testing.T) {
	h := newTestHandlers(t)
	r := gin.New()
	r.POST("/auth/login", h.Login)

	if _, err := h.Users.Create(context.Background(), users.CreateInput{
		Email:    "admin@example.com",
		Password: "harvest-2025",
		IsAdmin:  true,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "harvest-2025",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := h.Auth.VerifyUser(resp.AccessToken, time.Now())
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatalf("expected admin claim")
	}
}

func TestCloseAndReopenDay(t *testing.T) {
	h := newTestHandlers(t)
	r := gin.New()
	r.POST("/lots/:id/close-day", withUser("admin", true), h.CloseDay)
	r.POST("/lots/:id/reopen-day", withUser("admin", true), h.ReopenDay)

	w := doJSON(t, r, http.MethodPost, "/lots/lot-1/close-day", gin.H{"day": "2025-01-10T00:00:00Z"})
	if w.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Reopening without a reason must fail.
	w = doJSON(t, r, http.MethodPost, "/lots/lot-1/reopen-day", gin.H{"day": "2025-01-10T00:00:00Z"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reopen without reason: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/lots/lot-1/reopen-day", gin.H{
		"day":    "2025-01-10T00:00:00Z",
		"reason": "correction",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reopen: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	closed, err := h.Audit.IsDayClosed(context.Background(), "lot-1", time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("is closed: %v", err)
	}
	if closed {
		t.Fatalf("expected day open after reopen")
	}
}

func TestExportLotRecords(t *testing.T) {
	h := newTestHandlers(t)
	r := gin.New()
	r.GET("/lots/:id/export", withUser("admin", true), h.ExportLotRecords)

	lot, err := h.Lots.Create(context.Background(), lots.CreateInput{Name: "Campo", Cereal: "soy"})
	if err != nil {
		t.Fatalf("create lot: %v", err)
	}

	// Nothing to export yet.
	w := doJSON(t, r, http.MethodGet, "/lots/"+lot.ID+"/export", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty lot, got %d", w.Code)
	}

	if _, err := h.Records.Create(context.Background(), lot.ID, records.CreateInput{
		Date:      time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		Kilograms: 1000,
	}, "admin"); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	w = doJSON(t, r, http.MethodGet, "/lots/"+lot.ID+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Fatalf("expected attachment disposition")
	}
}
