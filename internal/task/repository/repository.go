package repository

import (
	"context"
	"time"

	"genius-keeper-backend/internal/task/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *domain.Task) error

	// FindByID finds a task by its ID, (nil, nil) when missing
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// Find lists tasks matching filter, soonest due first
	Find(ctx context.Context, filter domain.Filter) ([]*domain.Task, int64, error)

	// Update updates an existing task
	Update(ctx context.Context, task *domain.Task) error

	// Delete deletes a task by ID
	Delete(ctx context.Context, id string) error

	// FindPendingReminders finds tasks where reminder_at <= now AND
	// reminder_sent = false AND status != completed
	FindPendingReminders(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// MarkReminderSent marks a task's reminder as sent
	MarkReminderSent(ctx context.Context, id string) error
}
