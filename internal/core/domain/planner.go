package domain

import "time"

// Project is a top-level planning entity owning an ordered collection of tasks.
type Project struct {
	ID          string
	Name        string
	Description *string
	Budget      float64
	CreatedAt   time.Time
	Tasks       []TaskItem
}

// TaskItem belongs to exactly one project.
type TaskItem struct {
	ID             string
	Title          string
	Description    *string
	EstimatedHours float64
	ProjectID      string
}
