package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"genius-keeper-backend/internal/notification/dispatcher"
	"genius-keeper-backend/internal/task/domain"
	"genius-keeper-backend/internal/task/repository"
	"genius-keeper-backend/pkg/push"

	"github.com/sirupsen/logrus"
)

// TaskReminderScheduler notifies assignees when a task's reminder time passes
type TaskReminderScheduler struct {
	taskRepo repository.TaskRepository
	notifier dispatcher.Notifier
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
	log      *logrus.Entry
}

// NewTaskReminderScheduler creates a new scheduler. A non-positive
// interval means once per minute.
func NewTaskReminderScheduler(taskRepo repository.TaskRepository, notifier dispatcher.Notifier, interval time.Duration) *TaskReminderScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TaskReminderScheduler{
		taskRepo: taskRepo,
		notifier: notifier,
		interval: interval,
		stopChan: make(chan struct{}),
		now:      time.Now,
		log:      logrus.WithField("component", "task-reminders"),
	}
}

// Start begins the scheduler loop. It returns immediately; the loop ends
// on Stop or when ctx is done.
func (s *TaskReminderScheduler) Start(ctx context.Context) {
	s.log.WithField("interval", s.interval).Info("[TaskScheduler] Starting task reminder scheduler")

	go func() {
		// Run immediately on start
		s.checkAndSendReminders(ctx, s.now())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndSendReminders(ctx, s.now())
			case <-s.stopChan:
				s.log.Info("[TaskScheduler] Scheduler stopped")
				return
			case <-ctx.Done():
				s.log.Info("[TaskScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *TaskReminderScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// checkAndSendReminders notifies the assignee of every task whose reminder
// is due and returns how many reminders were processed.
func (s *TaskReminderScheduler) checkAndSendReminders(ctx context.Context, now time.Time) int {
	tasks, err := s.taskRepo.FindPendingReminders(ctx, now)
	if err != nil {
		s.log.WithError(err).Error("[TaskScheduler] Error finding pending reminders")
		return 0
	}
	if len(tasks) == 0 {
		return 0
	}

	s.log.WithField("count", len(tasks)).Info("[TaskScheduler] Found tasks with pending reminders")

	for _, task := range tasks {
		entry := s.log.WithField("task_id", task.ID)

		delivery, err := s.notifier.Notify(ctx, task.AssigneeID, reminderMessage(task))
		if err != nil {
			entry.WithError(err).Warn("[TaskScheduler] Error sending reminder")
		} else {
			entry.WithField("delivered", delivery.Delivered).Debug("[TaskScheduler] Sent reminder")
		}

		// Mark reminder as sent regardless of success (to avoid spamming)
		if err := s.taskRepo.MarkReminderSent(ctx, task.ID); err != nil {
			entry.WithError(err).Error("[TaskScheduler] Error marking reminder as sent")
		}
	}
	return len(tasks)
}

func reminderMessage(task *domain.Task) push.Message {
	body := task.Description
	if body == "" {
		body = "You have a task to complete."
	}
	if task.DueDate != nil {
		body = fmt.Sprintf("%s Due %s.", body, task.DueDate.Format("2006-01-02 15:04"))
	}
	return push.Message{
		Title: "Reminder: " + task.Title,
		Body:  body,
		Link:  "/tasks/" + task.ID,
		Data: map[string]string{
			"type":     "task_reminder",
			"task_id":  task.ID,
			"priority": string(task.Priority),
		},
	}
}
