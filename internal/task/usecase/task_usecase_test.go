package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"genius-keeper-backend/internal/notification/dispatcher"
	"genius-keeper-backend/internal/task/domain"
	"genius-keeper-backend/internal/task/repository"
	"genius-keeper-backend/internal/testutil"
	"genius-keeper-backend/pkg/push"
)

type notified struct {
	userID string
	msg    push.Message
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notified
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, userID string, msg push.Message) (dispatcher.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return dispatcher.Delivery{}, f.err
	}
	f.sent = append(f.sent, notified{userID: userID, msg: msg})
	return dispatcher.Delivery{NotificationID: "n1"}, nil
}

var (
	manager = Actor{ID: "m1", CanManage: true}
	merch   = Actor{ID: "u1"}
	other   = Actor{ID: "u2"}
)

func newUsecase(t *testing.T) (TaskUsecase, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	repo := repository.NewGormTaskRepository(testutil.NewTestDB(t, &domain.Task{}))
	return NewTaskUsecase(repo, notifier), notifier
}

func TestCreateTaskNotifiesAssignee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, notifier := newUsecase(t)

	due := "2026-03-05T17:00:00Z"
	task, err := uc.CreateTask(ctx, manager, CreateTaskRequest{
		AssigneeID: "u1",
		Title:      "  Build end-cap display ",
		DueDate:    &due,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Title != "Build end-cap display" || task.AssignedBy != "m1" || task.Priority != domain.PriorityMedium {
		t.Errorf("task = %+v", task)
	}
	if task.Status != domain.TaskStatusPending {
		t.Errorf("status = %s", task.Status)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.userID != "u1" || n.msg.Title != "New task assigned" || n.msg.Link != "/tasks/"+task.ID {
		t.Errorf("notification = %+v", n)
	}
	if n.msg.Body != "Build end-cap display (due 2026-03-05)" {
		t.Errorf("body = %q", n.msg.Body)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, notifier := newUsecase(t)

	bad := "tomorrow"
	cases := []struct {
		name  string
		actor Actor
		req   CreateTaskRequest
		want  error
	}{
		{"merchandiser cannot assign", merch, CreateTaskRequest{AssigneeID: "u1", Title: "x"}, ErrForbidden},
		{"blank title", manager, CreateTaskRequest{AssigneeID: "u1", Title: "   "}, ErrInvalidInput},
		{"bad priority", manager, CreateTaskRequest{AssigneeID: "u1", Title: "x", Priority: "urgent"}, ErrInvalidInput},
		{"bad due date", manager, CreateTaskRequest{AssigneeID: "u1", Title: "x", DueDate: &bad}, ErrInvalidInput},
	}
	for _, tc := range cases {
		if _, err := uc.CreateTask(ctx, tc.actor, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
	if len(notifier.sent) != 0 {
		t.Errorf("rejected tasks should not notify, got %d", len(notifier.sent))
	}
}

func TestCreateTaskSurvivesNotifyFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, notifier := newUsecase(t)
	notifier.err = errors.New("store down")

	task, err := uc.CreateTask(ctx, manager, CreateTaskRequest{AssigneeID: "u1", Title: "audit shelf"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := uc.GetTask(ctx, manager, task.ID); err != nil {
		t.Errorf("task should be stored: %v", err)
	}
}

func TestVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newUsecase(t)

	mine, _ := uc.CreateTask(ctx, manager, CreateTaskRequest{AssigneeID: "u1", Title: "mine"})
	_, _ = uc.CreateTask(ctx, manager, CreateTaskRequest{AssigneeID: "u2", Title: "theirs"})

	if _, err := uc.GetTask(ctx, other, mine.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user get err = %v", err)
	}
	if _, err := uc.GetTask(ctx, merch, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}

	// a merchandiser cannot widen the listing to someone else
	tasks, total, err := uc.ListTasks(ctx, merch, ListTasksRequest{AssigneeID: "u2"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if total != 1 || tasks[0].ID != mine.ID {
		t.Errorf("merchandiser list = %d", total)
	}

	_, total, _ = uc.ListTasks(ctx, manager, ListTasksRequest{})
	if total != 2 {
		t.Errorf("manager list total = %d", total)
	}
	if _, _, err := uc.ListTasks(ctx, manager, ListTasksRequest{Status: "archived"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad status err = %v", err)
	}
}

func TestUpdateTaskPermissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, notifier := newUsecase(t)

	task, _ := uc.CreateTask(ctx, manager, CreateTaskRequest{AssigneeID: "u1", Title: "count stock"})
	notifier.sent = nil

	inProgress := "in_progress"
	updated, err := uc.UpdateTask(ctx, merch, task.ID, TaskUpdateRequest{Status: &inProgress})
	if err != nil {
		t.Fatalf("status update: %v", err)
	}
	if updated.Status != domain.TaskStatusInProgress {
		t.Errorf("status = %s", updated.Status)
	}

	title := "count all stock"
	if _, err := uc.UpdateTask(ctx, merch, task.ID, TaskUpdateRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Errorf("merchandiser title edit err = %v", err)
	}
	if err := uc.DeleteTask(ctx, merch, task.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("merchandiser delete err = %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("status change should not notify, got %d", len(notifier.sent))
	}
}

func TestReassignNotifiesNewAssignee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, notifier := newUsecase(t)

	reminder := "2026-03-05T08:00:00Z"
	task, _ := uc.CreateTask(ctx, manager, CreateTaskRequest{AssigneeID: "u1", Title: "price check", ReminderAt: &reminder})
	notifier.sent = nil

	next := "u2"
	updated, err := uc.UpdateTask(ctx, manager, task.ID, TaskUpdateRequest{AssigneeID: &next, ReminderAt: &reminder})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.AssigneeID != "u2" || updated.ReminderSent {
		t.Errorf("updated = %+v", updated)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].userID != "u2" {
		t.Fatalf("notifications = %+v", notifier.sent)
	}

	none := ""
	updated, err = uc.UpdateTask(ctx, manager, task.ID, TaskUpdateRequest{ReminderAt: &none})
	if err != nil || updated.ReminderAt != nil {
		t.Errorf("clearing reminder = (%v, %v)", updated, err)
	}

	if err := uc.DeleteTask(ctx, manager, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := uc.GetTask(ctx, manager, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v", err)
	}
}
