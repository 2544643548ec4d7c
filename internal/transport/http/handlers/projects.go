package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/usecase"
)

// ProjectHandler exposes the project CRUD endpoints.
type ProjectHandler struct {
	projects *usecase.ProjectService
	logger   *zap.Logger
}

// NewProjectHandler builds a project handler instance.
func NewProjectHandler(projects *usecase.ProjectService, log *zap.Logger) *ProjectHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectHandler{projects: projects, logger: log}
}

// Create godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body ProjectRequest true "Project payload"
// @Success 201 {object} ProjectPayload
// @Failure 400 {object} ValidationErrorResponse
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), usecase.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		h.respondProjectError(c, err, "create project failed")
		return
	}

	c.JSON(http.StatusCreated, newProjectPayload(project))
}

// List godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Success 200 {object} ProjectListResponse
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.ListProjects(c.Request.Context())
	if err != nil {
		h.respondProjectError(c, err, "list projects failed")
		return
	}

	payloads := make([]ProjectPayload, 0, len(projects))
	for _, project := range projects {
		payloads = append(payloads, newProjectPayload(project))
	}

	c.JSON(http.StatusOK, ProjectListResponse{Projects: payloads, Total: len(payloads)})
}

// Get godoc
// @Summary Get a project with its tasks
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectPayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondProjectError(c, err, "get project failed")
		return
	}

	c.JSON(http.StatusOK, newProjectPayload(project))
}

// Update godoc
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body ProjectRequest true "Project payload"
// @Success 200 {object} ProjectPayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), c.Param("id"), usecase.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		h.respondProjectError(c, err, "update project failed")
		return
	}

	c.JSON(http.StatusOK, newProjectPayload(project))
}

// Delete godoc
// @Summary Delete a project and its tasks
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		h.respondProjectError(c, err, "delete project failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error, fallback string) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, NewValidationErrorResponse(c, validationErr.Violations))
		return
	}

	if errors.Is(err, usecase.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "project not found"))
		return
	}

	h.logger.Error(fallback, zap.Error(err))
	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, fallback))
}
