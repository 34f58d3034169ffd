package repository

import (
	"context"
	"fmt"
	"time"

	"genius-keeper-backend/internal/notification/domain"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const notificationsCollection = "notifications"

type firestoreNotificationRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationRepository keeps notifications in a top-level
// "notifications" collection, queried by userId.
func NewFirestoreNotificationRepository(client *firestore.Client) NotificationRepository {
	return &firestoreNotificationRepository{client: client}
}

func (r *firestoreNotificationRepository) col() *firestore.CollectionRef {
	return r.client.Collection(notificationsCollection)
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.Read = false
	_, err := r.col().Doc(n.ID).Create(ctx, n)
	return err
}

func (r *firestoreNotificationRepository) userQuery(userID string, unreadOnly bool) firestore.Query {
	q := r.col().Where("userId", "==", userID)
	if unreadOnly {
		q = q.Where("read", "==", false)
	}
	return q
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string, filter domain.ListFilter) ([]domain.Notification, int64, error) {
	base := r.userQuery(userID, filter.UnreadOnly)
	total, err := count(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	q := base.OrderBy("createdAt", firestore.Desc)
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var notifications []domain.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		n, err := decodeNotification(doc)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, total, nil
}

func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	return count(ctx, r.userQuery(userID, true))
}

func count(ctx context.Context, q firestore.Query) (int64, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", res["all"])
	}
	return v.GetIntegerValue(), nil
}

func (r *firestoreNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeNotification(doc)
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{{Path: "read", Value: true}})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	refs, err := r.userQuery(userID, true).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, doc := range refs {
		job, err := bw.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}})
		if err != nil {
			bw.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var updated int64
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("mark notification read: %w", err)
			}
			continue
		}
		updated++
	}
	return updated, firstErr
}

func (r *firestoreNotificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

func decodeNotification(doc *firestore.DocumentSnapshot) (*domain.Notification, error) {
	var n domain.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, err
	}
	n.ID = doc.Ref.ID
	return &n, nil
}
