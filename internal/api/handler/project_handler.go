package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordhub/records-system/internal/api/metrics"
	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

type ProjectHandler struct {
	projects ports.ProjectService
}

func NewProjectHandler(projects ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List handles GET /api/projects. Employees only see projects they manage
// or belong to.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Param        search    query     string  false  "Title or description substring"
// @Param        status    query     string  false  "Project status"
// @Param        priority  query     string  false  "Project priority"
// @Success      200       {object}  pageResponse[ports.ProjectView]
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := h.projects.List(c.Request().Context(), actor, listParams(c, "status", "priority"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(page))
}

// Get handles GET /api/projects/:id.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project record id"
// @Success      200  {object}  ports.ProjectView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.projects.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Create handles POST /api/projects.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.ProjectProfile  true  "Project details"
// @Success      201   {object}  ports.ProjectView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.ProjectProfile
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	view, err := h.projects.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("project").Inc()
	return c.JSON(http.StatusCreated, view)
}

// Update handles PUT /api/projects/:id.
//
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Project record id"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  ports.ProjectView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	view, err := h.projects.Update(c.Request().Context(), actor, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// AddTeamMember handles POST /api/projects/:id/team.
//
// @Summary      Add a team member
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Project record id"
// @Param        body  body      domain.TeamMember  true  "Team member"
// @Success      200   {object}  ports.ProjectView
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /projects/{id}/team [post]
func (h *ProjectHandler) AddTeamMember(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.TeamMember
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	view, err := h.projects.AddTeamMember(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Milestones handles GET /api/projects/:id/milestones.
//
// @Summary      List milestones by due date
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project record id"
// @Success      200  {array}   domain.Milestone
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id}/milestones [get]
func (h *ProjectHandler) Milestones(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	milestones, err := h.projects.Milestones(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, milestones)
}

// AddMilestone handles POST /api/projects/:id/milestones.
//
// @Summary      Add a milestone
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Project record id"
// @Param        body  body      domain.Milestone  true  "Milestone"
// @Success      201   {object}  domain.Milestone
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /projects/{id}/milestones [post]
func (h *ProjectHandler) AddMilestone(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.Milestone
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	m, err := h.projects.AddMilestone(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("milestone").Inc()
	return c.JSON(http.StatusCreated, m)
}
