package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/core/ports"
)

type DashboardHandler struct {
	dashboard ports.DashboardService
}

func NewDashboardHandler(dashboard ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats handles GET /api/dashboard/stats.
//
// @Summary      Dashboard counters, breakdowns and upcoming milestones
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DashboardStats
// @Failure      401  {object}  map[string]string
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboard.Stats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Activities handles GET /api/dashboard/activities.
//
// @Summary      Recent uploads and logins, newest first
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum entries (default 10)"
// @Success      200    {array}   domain.Activity
// @Failure      401    {object}  map[string]string
// @Router       /dashboard/activities [get]
func (h *DashboardHandler) Activities(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	activities, err := h.dashboard.Activities(c.Request().Context(), actor, queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activities)
}
