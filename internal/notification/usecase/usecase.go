package usecase

import (
	"context"
	"errors"

	"genius-keeper-backend/internal/notification/domain"
)

var (
	ErrNotFound  = errors.New("notification not found")
	ErrForbidden = errors.New("notification belongs to another user")
)

// NotificationUsecase is the recipient-side notification center.
type NotificationUsecase interface {
	List(ctx context.Context, userID string, filter domain.ListFilter) ([]domain.Notification, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	Open(ctx context.Context, userID, id string) (string, error)
}
