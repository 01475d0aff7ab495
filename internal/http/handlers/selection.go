package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// @Summary Districts
// @Description All districts grouped by province, for the selection flow
// @Tags selection
// @Produce json
// @Router /api/selection/districts [get]
func (h *Handler) Districts(c *gin.Context) {
	provinces := h.Dir.Districts()
	var all []string
	for _, districts := range provinces {
		all = append(all, districts...)
	}
	sort.Strings(all)
	c.JSON(http.StatusOK, gin.H{
		"districts": all,
		"provinces": provinces,
	})
}

// @Summary Offices
// @Description Offices in a district, optionally filtered by type
// @Tags selection
// @Produce json
// @Param district query string true "district name"
// @Param office_type query string false "office type"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/selection/offices [get]
func (h *Handler) Offices(c *gin.Context) {
	district := c.Query("district")
	if district == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "district is required", nil)
		return
	}
	offices := h.Dir.OfficesByDistrict(district, c.Query("office_type"))
	c.JSON(http.StatusOK, gin.H{
		"district": district,
		"offices":  offices,
		"total":    len(offices),
	})
}
