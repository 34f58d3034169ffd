package repository

import (
	"context"
	"time"

	"genius-keeper-backend/internal/task/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const tasksCollection = "tasks"

type firestoreTaskRepository struct {
	client *firestore.Client
}

func NewFirestoreTaskRepository(client *firestore.Client) TaskRepository {
	return &firestoreTaskRepository{client: client}
}

func (r *firestoreTaskRepository) col() *firestore.CollectionRef {
	return r.client.Collection(tasksCollection)
}

func (r *firestoreTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	_, err := r.col().Doc(task.ID).Create(ctx, task)
	return err
}

func (r *firestoreTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeTask(doc)
}

// Find orders by creation time; Firestore cannot sort missing due dates
// last without a second query.
func (r *firestoreTaskRepository) Find(ctx context.Context, filter domain.Filter) ([]*domain.Task, int64, error) {
	q := r.col().Query
	if filter.AssigneeID != "" {
		q = q.Where("assigneeId", "==", filter.AssigneeID)
	}
	if filter.AssignedBy != "" {
		q = q.Where("assignedBy", "==", filter.AssignedBy)
	}
	if filter.Status != nil {
		q = q.Where("status", "==", string(*filter.Status))
	}

	docs, err := q.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(docs))

	start := min(max(filter.Offset, 0), len(docs))
	end := len(docs)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(docs))
	}

	tasks := make([]*domain.Task, 0, end-start)
	for _, doc := range docs[start:end] {
		task, err := decodeTask(doc)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	return tasks, total, nil
}

func (r *firestoreTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now()
	_, err := r.col().Doc(task.ID).Set(ctx, task)
	return err
}

func (r *firestoreTaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

func (r *firestoreTaskRepository) FindPendingReminders(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	docs, err := r.col().
		Where("reminderSent", "==", false).
		Where("reminderAt", "<=", now).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	var tasks []*domain.Task
	for _, doc := range docs {
		task, err := decodeTask(doc)
		if err != nil {
			return nil, err
		}
		if task.Status != domain.TaskStatusCompleted {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (r *firestoreTaskRepository) MarkReminderSent(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "reminderSent", Value: true},
		{Path: "updatedAt", Value: time.Now()},
	})
	return err
}

func decodeTask(doc *firestore.DocumentSnapshot) (*domain.Task, error) {
	var task domain.Task
	if err := doc.DataTo(&task); err != nil {
		return nil, err
	}
	task.ID = doc.Ref.ID
	return &task, nil
}
