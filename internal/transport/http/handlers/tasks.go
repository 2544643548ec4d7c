package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/usecase"
)

// TaskHandler exposes the task CRUD endpoints nested under projects.
type TaskHandler struct {
	tasks  *usecase.TaskService
	logger *zap.Logger
}

// NewTaskHandler builds a task handler instance.
func NewTaskHandler(tasks *usecase.TaskService, log *zap.Logger) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{tasks: tasks, logger: log}
}

// Create godoc
// @Summary Create a task in a project
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body TaskRequest true "Task payload"
// @Success 201 {object} TaskPayload
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), c.Param("id"), usecase.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		h.respondTaskError(c, err, "create task failed")
		return
	}

	c.JSON(http.StatusCreated, newTaskPayload(task))
}

// List godoc
// @Summary List tasks of a project
// @Tags Tasks
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} TaskListResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondTaskError(c, err, "list tasks failed")
		return
	}

	payloads := make([]TaskPayload, 0, len(tasks))
	for _, task := range tasks {
		payloads = append(payloads, newTaskPayload(task))
	}

	c.JSON(http.StatusOK, TaskListResponse{Tasks: payloads, Total: len(payloads)})
}

// Get godoc
// @Summary Get a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Project ID"
// @Param taskId path string true "Task ID"
// @Success 200 {object} TaskPayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id}/tasks/{taskId} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.GetTask(c.Request.Context(), c.Param("id"), c.Param("taskId"))
	if err != nil {
		h.respondTaskError(c, err, "get task failed")
		return
	}

	c.JSON(http.StatusOK, newTaskPayload(task))
}

// Update godoc
// @Summary Update a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param taskId path string true "Task ID"
// @Param request body TaskRequest true "Task payload"
// @Success 200 {object} TaskPayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id}/tasks/{taskId} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("id"), c.Param("taskId"), usecase.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		h.respondTaskError(c, err, "update task failed")
		return
	}

	c.JSON(http.StatusOK, newTaskPayload(task))
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Project ID"
// @Param taskId path string true "Task ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{id}/tasks/{taskId} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Request.Context(), c.Param("id"), c.Param("taskId")); err != nil {
		h.respondTaskError(c, err, "delete task failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error, fallback string) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, NewValidationErrorResponse(c, validationErr.Violations))
		return
	}

	switch {
	case errors.Is(err, usecase.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "project not found"))
	case errors.Is(err, usecase.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "task not found"))
	default:
		h.logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, fallback))
	}
}
