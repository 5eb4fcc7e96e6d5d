package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/api/metrics"
	"github.com/recordhub/records-system/internal/core/ports"
)

type ReportHandler struct {
	reports ports.ReportService
}

func NewReportHandler(reports ports.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Generate handles POST /api/reports/:report.
//
// @Summary      Export records as a spreadsheet or PDF
// @Tags         reports
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/pdf
// @Security     BearerAuth
// @Param        report  path      string               true  "employees, clients, projects or documents"
// @Param        body    body      ports.ReportRequest  true  "Format (excel, xlsx, tabular, pdf, paginated-document) and filters"
// @Success      200     {file}    file
// @Failure      400     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /reports/{report} [post]
func (h *ReportHandler) Generate(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req ports.ReportRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	report := c.Param("report")
	file, err := h.reports.Generate(c.Request().Context(), actor, report, req)
	if err != nil {
		return err
	}
	metrics.ReportsGeneratedTotal.WithLabelValues(report, strings.TrimPrefix(filepath.Ext(file.Name), ".")).Inc()

	c.Response().Header().Set(echo.HeaderContentDisposition, attachment(file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Body)
}

// Stats handles GET /api/reports/stats.
//
// @Summary      Record counts and breakdowns
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ReportStats
// @Failure      403  {object}  map[string]string
// @Router       /reports/stats [get]
func (h *ReportHandler) Stats(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	stats, err := h.reports.Stats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
