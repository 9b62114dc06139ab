package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"harvest-intake/internal/lots"
	"harvest-intake/internal/reporting"

	"github.com/gin-gonic/gin"
)

type createLotRequest struct {
	Name      string     `json:"name"`
	Cereal    string     `json:"cereal"`
	StartDate *time.Time `json:"startDate"`
}

func (h Handlers) CreateLot(c *gin.Context) {
	var req createLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	in := lots.CreateInput{Name: req.Name, Cereal: req.Cereal}
	if req.StartDate != nil {
		in.StartDate = *req.StartDate
	}
	lot, err := h.Lots.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

func (h Handlers) GetLot(c *gin.Context) {
	lot, err := h.Lots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

type updateLotRequest struct {
	Name      *string    `json:"name"`
	Cereal    *string    `json:"cereal"`
	StartDate *time.Time `json:"startDate"`
}

func (h Handlers) UpdateLot(c *gin.Context) {
	var req updateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	lot, err := h.Lots.Update(c.Request.Context(), c.Param("id"), lots.UpdateInput{
		Name:      req.Name,
		Cereal:    req.Cereal,
		StartDate: req.StartDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h Handlers) DeactivateLot(c *gin.Context) {
	lot, err := h.Lots.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h Handlers) RestoreLot(c *gin.Context) {
	lot, err := h.Lots.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

type activateLotRequest struct {
	Code string `json:"code"`
}

// ActivateLot makes the lot with the given code the active one.
func (h Handlers) ActivateLot(c *gin.Context) {
	var req activateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	lot, err := h.Lots.SetActive(c.Request.Context(), req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h Handlers) SearchLots(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := h.Lots.Search(c.Request.Context(), lots.Filter{
		Name:            c.Query("name"),
		Cereal:          c.Query("cereal"),
		Code:            c.Query("code"),
		IncludeDisabled: c.Query("includeDisabled") == "true",
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// LotSummary returns aggregated intake metrics for a lot.
func (h Handlers) LotSummary(c *gin.Context) {
	req := reporting.LotSummaryRequest{LotID: c.Param("id")}
	if from, ok := parseDateQuery(c, "from"); ok {
		req.Range.From = from
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		req.Range.To = to
	}
	sum, err := h.Reporting.LotSummary(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
