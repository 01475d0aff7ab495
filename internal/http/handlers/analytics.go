package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nagarik-sewa/backend/internal/service"
)

// @Summary Office analytics
// @Description Aggregated performance statistics for one office
// @Tags analytics
// @Produce json
// @Success 200 {object} models.OfficeAnalytics
// @Failure 404 {object} map[string]any
// @Router /api/analytics/office/{id} [get]
func (h *Handler) OfficeAnalytics(c *gin.Context) {
	officeID := c.Param("id")
	office, ok := h.Dir.Office(officeID)
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "office "+officeID+" not found", nil)
		return
	}
	analytics, err := h.Analytics.OfficeAnalytics(c.Request.Context(), officeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"office_name":        office.Name,
		"office_name_nepali": office.NameNepali,
		"district":           office.District,
		"province":           office.Province,
		"analytics":          analytics,
	})
}

// @Summary Office rankings
// @Description Offices in scope ordered by a metric, min-visit filtered
// @Tags analytics
// @Produce json
// @Param scope path string true "national, province or district"
// @Param province query string false "province name (province scope)"
// @Param district query string false "district name (district scope)"
// @Param metric query string false "ranking metric" default(overall_rating)
// @Param min_visits query int false "minimum sample size" default(3)
// @Param limit query int false "maximum entries" default(20)
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/analytics/rankings/{scope} [get]
func (h *Handler) Rankings(c *gin.Context) {
	scope := c.Param("scope")
	scopeKey := c.Query("province")
	if scopeKey == "" {
		scopeKey = c.Query("district")
	}
	minVisits, err := strconv.Atoi(c.DefaultQuery("min_visits", "3"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "min_visits must be an integer", nil)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
		return
	}

	rankings, err := h.Analytics.Rank(c.Request.Context(), service.RankRequest{
		Scope:     scope,
		ScopeKey:  scopeKey,
		Metric:    c.DefaultQuery("metric", "overall_rating"),
		MinVisits: minVisits,
		Limit:     limit,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scope":        scope,
		"metric":       c.DefaultQuery("metric", "overall_rating"),
		"rankings":     rankings,
		"total_ranked": len(rankings),
	})
}

type CompareRequest struct {
	OfficeIDs []string `json:"office_ids" binding:"required"`
	Metrics   []string `json:"metrics"`
}

// @Summary Compare offices
// @Description Radar-style comparison with metrics normalized onto [0,1]
// @Tags analytics
// @Accept json
// @Produce json
// @Success 200 {object} service.Comparison
// @Failure 400 {object} map[string]any
// @Router /api/analytics/compare [post]
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "office_ids are required", err.Error())
		return
	}
	comparison, err := h.Analytics.Compare(c.Request.Context(), req.OfficeIDs, req.Metrics)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// @Summary Analytics dashboard
// @Tags analytics
// @Produce json
// @Success 200 {object} service.Dashboard
// @Router /api/analytics/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.Analytics.Dashboard(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
