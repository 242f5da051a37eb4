package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsUC domain.AnalyticsUsecase
}

func NewAnalyticsHandler(r *gin.RouterGroup, analyticsUC domain.AnalyticsUsecase) {
	handler := &AnalyticsHandler{analyticsUC: analyticsUC}

	analytics := r.Group("/analytics")
	{
		analytics.GET("/dashboard", handler.Dashboard)
		analytics.GET("/onboarding-funnel", handler.OnboardingFunnel)
		analytics.GET("/objectives/export", handler.ExportObjectives)
	}
}

// Dashboard godoc
// @Summary      Dashboard stats and per-quarter rollups
// @Tags         analytics
// @Produce      json
// @Param        quarters  query     string  false  "Comma-separated quarters (2026-Q1,2026-Q2)"
// @Param        statuses  query     string  false  "Comma-separated objective statuses"
// @Success      200       {object}  response.Response
// @Router       /analytics/dashboard [get]
// @Security     BearerAuth
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	filter := filterFromQuery(c)

	stats, rollups, err := h.analyticsUC.GetDashboard(principalContext(c), userID, filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Analíticas del dashboard", gin.H{
		"stats":    stats,
		"quarters": rollups,
	})
}

func (h *AnalyticsHandler) OnboardingFunnel(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	weeks, _ := strconv.Atoi(c.DefaultQuery("weeks", "12"))

	funnel, err := h.analyticsUC.GetOnboardingFunnel(principalContext(c), userID, weeks)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Funnel de onboarding", funnel)
}

// ExportObjectives godoc
// @Summary      Export objectives as XLSX
// @Tags         analytics
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /analytics/objectives/export [get]
// @Security     BearerAuth
func (h *AnalyticsHandler) ExportObjectives(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	filter := filterFromQuery(c)

	data, filename, err := h.analyticsUC.ExportObjectivesXLSX(principalContext(c), userID, filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// filterFromQuery maps the analytics query params onto the domain filter
func filterFromQuery(c *gin.Context) *domain.AnalyticsFilter {
	filter := &domain.AnalyticsFilter{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if quarters := c.Query("quarters"); quarters != "" {
		filter.Quarters = strings.Split(quarters, ",")
	}
	if statuses := c.Query("statuses"); statuses != "" {
		filter.Statuses = strings.Split(statuses, ",")
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return filter
}
