package domain

import "time"

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Task is a piece of field work a manager assigns to a merchandiser,
// optionally tied to a point of sale.
type Task struct {
	ID            string     `json:"id" gorm:"primaryKey" firestore:"-"`
	AssigneeID    string     `json:"assignee_id" gorm:"index;not null" firestore:"assigneeId"`
	AssignedBy    string     `json:"assigned_by" gorm:"index" firestore:"assignedBy"`
	PointOfSaleID string     `json:"point_of_sale_id,omitempty" gorm:"index" firestore:"pointOfSaleId,omitempty"`
	Title         string     `json:"title" gorm:"not null" firestore:"title"`
	Description   string     `json:"description,omitempty" firestore:"description,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty" firestore:"dueDate,omitempty"`
	Priority      Priority   `json:"priority" gorm:"default:medium" firestore:"priority"`
	Status        TaskStatus `json:"status" gorm:"default:pending" firestore:"status"`
	ReminderAt    *time.Time `json:"reminder_at,omitempty" firestore:"reminderAt,omitempty"`            // When to send the reminder push
	ReminderSent  bool       `json:"reminder_sent" gorm:"default:false" firestore:"reminderSent"` // Track if reminder was sent
	CreatedAt     time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time  `json:"updated_at" firestore:"updatedAt"`
}

// Filter narrows a task listing. Empty fields do not filter.
type Filter struct {
	AssigneeID string
	AssignedBy string
	Status     *TaskStatus
	Limit      int
	Offset     int
}
