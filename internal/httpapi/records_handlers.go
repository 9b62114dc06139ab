package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"harvest-intake/internal/auth"
	"harvest-intake/internal/export"
	"harvest-intake/internal/records"

	"github.com/gin-gonic/gin"
)

type createRecordRequest struct {
	Date        time.Time `json:"date"`
	OrderNumber int       `json:"orderNumber"`
	Kilograms   float64   `json:"kilograms"`

	BolsonNumber int    `json:"bolsonNumber"`
	LoteNumber   string `json:"loteNumber"`
	TruckPlate   string `json:"truckPlate"`
	TruckDriver  string `json:"truckDriver"`
	Tolvero      string `json:"tolvero"`
	Controller   string `json:"controller"`
	Cereal       string `json:"cereal"`
}

// CreateRecord registers a weighing ticket in the lot of the current lot
// session.
func (h Handlers) CreateRecord(c *gin.Context) {
	lotID, err := auth.LotID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "lot session required"})
		return
	}

	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	actor, err := auth.Actor(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
		return
	}

	rec, err := h.Records.Create(c.Request.Context(), lotID, records.CreateInput{
		Date:         req.Date,
		OrderNumber:  req.OrderNumber,
		Kilograms:    req.Kilograms,
		BolsonNumber: req.BolsonNumber,
		LoteNumber:   req.LoteNumber,
		TruckPlate:   req.TruckPlate,
		TruckDriver:  req.TruckDriver,
		Tolvero:      req.Tolvero,
		Controller:   req.Controller,
		Cereal:       req.Cereal,
	}, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type updateRecordRequest struct {
	Date        *time.Time `json:"date"`
	OrderNumber *int       `json:"orderNumber"`
	Kilograms   *float64   `json:"kilograms"`

	BolsonNumber *int    `json:"bolsonNumber"`
	TruckPlate   *string `json:"truckPlate"`
	TruckDriver  *string `json:"truckDriver"`
	Tolvero      *string `json:"tolvero"`
	Controller   *string `json:"controller"`
	Cereal       *string `json:"cereal"`
}

// UpdateRecord patches a ticket. Lot sessions can only touch records in
// their own lot; user sessions are unrestricted.
func (h Handlers) UpdateRecord(c *gin.Context) {
	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	scope := requestScope(c)
	rec, err := h.Records.Update(c.Request.Context(), c.Param("id"), records.UpdateInput{
		Date:         req.Date,
		OrderNumber:  req.OrderNumber,
		Kilograms:    req.Kilograms,
		BolsonNumber: req.BolsonNumber,
		TruckPlate:   req.TruckPlate,
		TruckDriver:  req.TruckDriver,
		Tolvero:      req.Tolvero,
		Controller:   req.Controller,
		Cereal:       req.Cereal,
	}, scope)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) GetRecord(c *gin.Context) {
	rec, err := h.Records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if lotID, err := auth.LotID(c.Request.Context()); err == nil && lotID != rec.LotID {
		h.respondError(c, records.ErrLotMismatch)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteRecord removes a ticket. Admin only.
func (h Handlers) DeleteRecord(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user session required"})
		return
	}
	if err := h.Records.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRecords serves both session kinds: lot sessions get their own lot's
// records, user sessions get the cross-lot search.
func (h Handlers) ListRecords(c *gin.Context) {
	if _, err := auth.LotID(c.Request.Context()); err == nil {
		h.listLotRecords(c)
		return
	}
	h.SearchRecords(c)
}

// listLotRecords returns a lot session's own records, optionally narrowed
// to one day.
func (h Handlers) listLotRecords(c *gin.Context) {
	lotID, err := auth.LotID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "lot session required"})
		return
	}

	var rows []records.Record
	if day, ok := parseDateQuery(c, "day"); ok {
		rows, err = h.Records.ListByLotAndDay(c.Request.Context(), lotID, day)
	} else {
		rows, err = h.Records.ListByLot(c.Request.Context(), lotID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h Handlers) SearchRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	orderNumber, _ := strconv.Atoi(c.Query("orderNumber"))

	f := records.Filter{
		LotID:       c.Query("lotId"),
		TruckPlate:  c.Query("truckPlate"),
		TruckDriver: c.Query("truckDriver"),
		Cereal:      c.Query("cereal"),
		OrderNumber: orderNumber,
		Page:        page,
		Limit:       limit,
	}
	if from, ok := parseDateQuery(c, "from"); ok {
		f.DateFrom = from
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		f.DateTo = to
	}

	rows, total, err := h.Records.Search(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "total": total})
}

type closeDayRequest struct {
	Day    time.Time `json:"day"`
	Reason string    `json:"reason"`
}

// CloseDay freezes one operational day of a lot. Admin only.
func (h Handlers) CloseDay(c *gin.Context) {
	var req closeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Day.IsZero() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "day required"})
		return
	}
	userID, _ := auth.UserID(c.Request.Context())

	entry, err := h.Audit.CloseDay(c.Request.Context(), c.Param("id"), req.Day, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ReopenDay lifts a closure. A reason is mandatory and lands in the audit
// trail. Admin only.
func (h Handlers) ReopenDay(c *gin.Context) {
	var req closeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Day.IsZero() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "day required"})
		return
	}
	userID, _ := auth.UserID(c.Request.Context())

	entry, err := h.Audit.ReopenDay(c.Request.Context(), c.Param("id"), req.Day, userID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// LotHistory returns a lot's audit trail, newest first.
func (h Handlers) LotHistory(c *gin.Context) {
	entries, err := h.Audit.HistoryByLot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// RecordHistory returns one record's audit trail, newest first.
func (h Handlers) RecordHistory(c *gin.Context) {
	entries, err := h.Audit.HistoryByRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ExportLotRecords streams a lot's records as an xlsx download, optionally
// narrowed to one day via ?day=YYYY-MM-DD.
func (h Handlers) ExportLotRecords(c *gin.Context) {
	lotID := c.Param("id")
	lot, err := h.Lots.Get(c.Request.Context(), lotID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var (
		rows    []records.Record
		dayName string
	)
	if day, ok := parseDateQuery(c, "day"); ok {
		dayName = day.Format("2006-01-02")
		rows, err = h.Records.ExportByLotAndDay(c.Request.Context(), lotID, day)
	} else {
		rows, err = h.Records.ExportByLot(c.Request.Context(), lotID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	out, err := export.Workbook(rows)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(lot.Name, dayName)+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}

// requestScope builds the mutation scope from whatever identity the request
// carries.
func requestScope(c *gin.Context) records.Scope {
	ctx := c.Request.Context()
	var scope records.Scope
	if lotID, err := auth.LotID(ctx); err == nil {
		scope.LotID = lotID
	}
	if userID, err := auth.UserID(ctx); err == nil {
		scope.UserID = userID
		scope.Admin = auth.IsAdmin(ctx)
	}
	return scope
}
