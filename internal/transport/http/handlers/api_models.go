package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/project-planner/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// ValidationErrorResponse carries every violation found in one request.
type ValidationErrorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations"`
	TraceID    string   `json:"trace_id,omitempty"`
}

// NewValidationErrorResponse builds the aggregated violation payload.
func NewValidationErrorResponse(c *gin.Context, violations []string) ValidationErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ValidationErrorResponse{
		Error:      "validation failed",
		Violations: violations,
		TraceID:    traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegistrationRequest defines the credential registration payload.
type RegistrationRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CredentialSummary describes a minimal view of a credential returned by the API.
type CredentialSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistrationResponse contains the created credential.
type RegistrationResponse struct {
	Credential CredentialSummary `json:"credential"`
	Message    string            `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ProjectRequest defines the payload for creating or updating a project.
type ProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Budget      float64 `json:"budget"`
}

// TaskPayload summarizes a task entity.
type TaskPayload struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	EstimatedHours float64 `json:"estimated_hours"`
	ProjectID      string  `json:"project_id"`
}

// ProjectPayload summarizes a project entity.
type ProjectPayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Budget      float64       `json:"budget"`
	CreatedAt   time.Time     `json:"created_at"`
	Tasks       []TaskPayload `json:"tasks"`
}

// ProjectListResponse wraps multiple projects.
type ProjectListResponse struct {
	Projects []ProjectPayload `json:"projects"`
	Total    int              `json:"total"`
}

// TaskRequest defines the payload for creating or updating a task.
type TaskRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    *string `json:"description,omitempty"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// TaskListResponse wraps multiple tasks.
type TaskListResponse struct {
	Tasks []TaskPayload `json:"tasks"`
	Total int           `json:"total"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func newCredentialSummary(credential domain.Credential) CredentialSummary {
	summary := CredentialSummary{
		ID:        credential.ID,
		Email:     credential.Email,
		CreatedAt: credential.CreatedAt,
	}
	if len(credential.Roles) > 0 {
		roles := make([]string, len(credential.Roles))
		copy(roles, credential.Roles)
		summary.Roles = roles
	}
	return summary
}

func newTaskPayload(task domain.TaskItem) TaskPayload {
	return TaskPayload{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		EstimatedHours: task.EstimatedHours,
		ProjectID:      task.ProjectID,
	}
}

func newProjectPayload(project domain.Project) ProjectPayload {
	tasks := make([]TaskPayload, 0, len(project.Tasks))
	for _, task := range project.Tasks {
		tasks = append(tasks, newTaskPayload(task))
	}

	return ProjectPayload{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Budget:      project.Budget,
		CreatedAt:   project.CreatedAt,
		Tasks:       tasks,
	}
}
