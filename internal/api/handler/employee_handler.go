package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/api/metrics"
	"github.com/recordhub/records-system/internal/core/ports"
)

type EmployeeHandler struct {
	employees ports.EmployeeService
}

func NewEmployeeHandler(employees ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List handles GET /api/employees.
//
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Param        search      query     string  false  "Name or employee id substring"
// @Param        status      query     string  false  "Employment status"
// @Param        department  query     string  false  "Department"
// @Success      200         {object}  pageResponse[ports.EmployeeView]
// @Failure      403         {object}  map[string]string
// @Router       /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := h.employees.List(c.Request().Context(), actor, listParams(c, "status", "department"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(page))
}

// Get handles GET /api/employees/:id.
//
// @Summary      Get an employee
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee record id"
// @Success      200  {object}  ports.EmployeeView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.employees.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Create handles POST /api/employees.
//
// @Summary      Create an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.EmployeeInput  true  "Employee details"
// @Success      201   {object}  ports.EmployeeView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req ports.EmployeeInput
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	view, err := h.employees.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("employee").Inc()
	return c.JSON(http.StatusCreated, view)
}

// Update handles PUT /api/employees/:id. The body is merged into the stored
// record and the result is validated again.
//
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Employee record id"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  ports.EmployeeView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	view, err := h.employees.Update(c.Request().Context(), actor, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/employees/:id.
//
// @Summary      Delete an employee
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee record id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.employees.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	metrics.RecordsDeletedTotal.WithLabelValues("employee").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "employee deleted"})
}
