package usecase

import (
	"context"
	"errors"

	"genius-keeper-backend/internal/task/domain"
)

var (
	ErrNotFound     = errors.New("task not found")
	ErrForbidden    = errors.New("not allowed to access this task")
	ErrInvalidInput = errors.New("invalid task input")
)

// Actor is the caller of a task operation. Managers see and change every
// task; anyone else only sees tasks assigned to them and may only move
// their status.
type Actor struct {
	ID        string
	CanManage bool
}

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// CreateTask assigns a new task and notifies the assignee
	CreateTask(ctx context.Context, actor Actor, req CreateTaskRequest) (*domain.Task, error)

	// GetTask retrieves a task by ID (with visibility check)
	GetTask(ctx context.Context, actor Actor, taskID string) (*domain.Task, error)

	// ListTasks lists the tasks visible to actor
	ListTasks(ctx context.Context, actor Actor, req ListTasksRequest) ([]*domain.Task, int64, error)

	// UpdateTask updates an existing task; re-assigning notifies the new assignee
	UpdateTask(ctx context.Context, actor Actor, taskID string, updates TaskUpdateRequest) (*domain.Task, error)

	// DeleteTask deletes a task
	DeleteTask(ctx context.Context, actor Actor, taskID string) error
}

// CreateTaskRequest represents the request body for creating a task.
// Timestamps are RFC 3339.
type CreateTaskRequest struct {
	AssigneeID    string  `json:"assignee_id" binding:"required"`
	PointOfSaleID string  `json:"point_of_sale_id"`
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	DueDate       *string `json:"due_date"`
	Priority      string  `json:"priority"`
	ReminderAt    *string `json:"reminder_at"`
}

// TaskUpdateRequest represents the fields that can be updated. An empty
// string clears DueDate or ReminderAt.
type TaskUpdateRequest struct {
	AssigneeID    *string `json:"assignee_id,omitempty"`
	PointOfSaleID *string `json:"point_of_sale_id,omitempty"`
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Status        *string `json:"status,omitempty"`
	ReminderAt    *string `json:"reminder_at,omitempty"`
}

// onlyStatus reports whether the update touches nothing but the status.
func (r TaskUpdateRequest) onlyStatus() bool {
	return r.AssigneeID == nil && r.PointOfSaleID == nil && r.Title == nil &&
		r.Description == nil && r.DueDate == nil && r.Priority == nil && r.ReminderAt == nil
}

type ListTasksRequest struct {
	Status     string
	AssigneeID string
	Limit      int
	Offset     int
}
