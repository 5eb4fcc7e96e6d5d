package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/api/metrics"
	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

type ClientHandler struct {
	clients ports.ClientService
}

func NewClientHandler(clients ports.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List handles GET /api/clients.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Param        search  query     string  false  "Company or contact name substring"
// @Param        status  query     string  false  "Client status"
// @Success      200     {object}  pageResponse[ports.ClientView]
// @Failure      403     {object}  map[string]string
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := h.clients.List(c.Request().Context(), actor, listParams(c, "status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(page))
}

// Get handles GET /api/clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client record id"
// @Success      200  {object}  ports.ClientView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.clients.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Create handles POST /api/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.ClientProfile  true  "Client details"
// @Success      201   {object}  ports.ClientView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.ClientProfile
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	view, err := h.clients.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("client").Inc()
	return c.JSON(http.StatusCreated, view)
}

// Update handles PUT /api/clients/:id.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Client record id"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  ports.ClientView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	view, err := h.clients.Update(c.Request().Context(), actor, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// AddContract handles POST /api/clients/:id/contracts.
//
// @Summary      Add a contract to a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Client record id"
// @Param        body  body      domain.Contract  true  "Contract"
// @Success      201   {object}  ports.ClientView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /clients/{id}/contracts [post]
func (h *ClientHandler) AddContract(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.Contract
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	view, err := h.clients.AddContract(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("contract").Inc()
	return c.JSON(http.StatusCreated, view)
}
