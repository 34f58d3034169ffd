package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"genius-keeper-backend/internal/notification/dispatcher"
	"genius-keeper-backend/internal/task/domain"
	"genius-keeper-backend/internal/task/repository"
	"genius-keeper-backend/pkg/push"

	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type taskUsecase struct {
	taskRepo repository.TaskRepository
	notifier dispatcher.Notifier
	log      *logrus.Entry
}

// NewTaskUsecase creates the task usecase. notifier may be nil, in which
// case assignments are stored without notifying anyone.
func NewTaskUsecase(taskRepo repository.TaskRepository, notifier dispatcher.Notifier) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
		notifier: notifier,
		log:      logrus.WithField("component", "task"),
	}
}

func (u *taskUsecase) CreateTask(ctx context.Context, actor Actor, req CreateTaskRequest) (*domain.Task, error) {
	if !actor.CanManage {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(req.Title) == "" || req.AssigneeID == "" {
		return nil, fmt.Errorf("%w: title and assignee are required", ErrInvalidInput)
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	task := &domain.Task{
		AssigneeID:    req.AssigneeID,
		AssignedBy:    actor.ID,
		PointOfSaleID: req.PointOfSaleID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Priority:      priority,
		Status:        domain.TaskStatusPending,
	}
	if task.DueDate, err = parseTime("due_date", req.DueDate); err != nil {
		return nil, err
	}
	if task.ReminderAt, err = parseTime("reminder_at", req.ReminderAt); err != nil {
		return nil, err
	}

	if err := u.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	u.notifyAssigned(ctx, task)
	return task, nil
}

func (u *taskUsecase) GetTask(ctx context.Context, actor Actor, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !actor.CanManage && task.AssigneeID != actor.ID {
		return nil, ErrForbidden
	}
	return task, nil
}

func (u *taskUsecase) ListTasks(ctx context.Context, actor Actor, req ListTasksRequest) ([]*domain.Task, int64, error) {
	filter := domain.Filter{
		AssigneeID: req.AssigneeID,
		Limit:      req.Limit,
		Offset:     max(req.Offset, 0),
	}
	if !actor.CanManage {
		filter.AssigneeID = actor.ID
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if req.Status != "" {
		s := domain.TaskStatus(req.Status)
		if !s.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
		}
		filter.Status = &s
	}
	return u.taskRepo.Find(ctx, filter)
}

func (u *taskUsecase) UpdateTask(ctx context.Context, actor Actor, taskID string, updates TaskUpdateRequest) (*domain.Task, error) {
	task, err := u.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage && !updates.onlyStatus() {
		return nil, ErrForbidden
	}

	previousAssignee := task.AssigneeID

	if updates.AssigneeID != nil {
		if *updates.AssigneeID == "" {
			return nil, fmt.Errorf("%w: assignee cannot be empty", ErrInvalidInput)
		}
		task.AssigneeID = *updates.AssigneeID
	}
	if updates.PointOfSaleID != nil {
		task.PointOfSaleID = *updates.PointOfSaleID
	}
	if updates.Title != nil {
		if strings.TrimSpace(*updates.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		task.Title = strings.TrimSpace(*updates.Title)
	}
	if updates.Description != nil {
		task.Description = *updates.Description
	}
	if updates.Priority != nil {
		if task.Priority, err = parsePriority(*updates.Priority); err != nil {
			return nil, err
		}
	}
	if updates.Status != nil {
		s := domain.TaskStatus(*updates.Status)
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *updates.Status)
		}
		task.Status = s
	}
	if updates.DueDate != nil {
		if task.DueDate, err = parseTime("due_date", updates.DueDate); err != nil {
			return nil, err
		}
	}
	if updates.ReminderAt != nil {
		if task.ReminderAt, err = parseTime("reminder_at", updates.ReminderAt); err != nil {
			return nil, err
		}
		task.ReminderSent = false // Reset reminder status when time changes
	}

	if err := u.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	if task.AssigneeID != previousAssignee {
		u.notifyAssigned(ctx, task)
	}
	return task, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, actor Actor, taskID string) error {
	if !actor.CanManage {
		return ErrForbidden
	}
	if _, err := u.GetTask(ctx, actor, taskID); err != nil {
		return err
	}
	return u.taskRepo.Delete(ctx, taskID)
}

// notifyAssigned tells the assignee about the task. The assignment is
// already stored, so a failed notification is only logged.
func (u *taskUsecase) notifyAssigned(ctx context.Context, task *domain.Task) {
	if u.notifier == nil {
		return
	}
	body := task.Title
	if task.DueDate != nil {
		body = fmt.Sprintf("%s (due %s)", body, task.DueDate.Format("2006-01-02"))
	}
	msg := push.Message{
		Title: "New task assigned",
		Body:  body,
		Link:  "/tasks/" + task.ID,
		Data: map[string]string{
			"type":     "task_assigned",
			"task_id":  task.ID,
			"priority": string(task.Priority),
		},
	}
	if _, err := u.notifier.Notify(ctx, task.AssigneeID, msg); err != nil {
		u.log.WithError(err).WithField("task_id", task.ID).Warn("[Task] failed to notify assignee")
	}
}

func parsePriority(p string) (domain.Priority, error) {
	switch p {
	case "", "medium":
		return domain.PriorityMedium, nil
	case "high":
		return domain.PriorityHigh, nil
	case "low":
		return domain.PriorityLow, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, p)
}

func parseTime(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC 3339", ErrInvalidInput, field)
	}
	return &t, nil
}
