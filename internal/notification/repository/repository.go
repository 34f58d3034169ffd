package repository

import (
	"context"

	"genius-keeper-backend/internal/notification/domain"
)

// NotificationRepository is the notification recorder. FindByID returns
// (nil, nil) when the id does not exist.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, filter domain.ListFilter) ([]domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
}
