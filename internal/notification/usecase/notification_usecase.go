package usecase

import (
	"context"

	"genius-keeper-backend/internal/notification/domain"
	"genius-keeper-backend/internal/notification/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type notificationUsecase struct {
	repo repository.NotificationRepository
}

func NewNotificationUsecase(repo repository.NotificationRepository) NotificationUsecase {
	return &notificationUsecase{repo: repo}
}

func (u *notificationUsecase) List(ctx context.Context, userID string, filter domain.ListFilter) ([]domain.Notification, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return u.repo.ListByUser(ctx, userID, filter)
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return u.repo.CountUnread(ctx, userID)
}

// owned loads a notification and checks that userID owns it.
func (u *notificationUsecase) owned(ctx context.Context, userID, id string) (*domain.Notification, error) {
	n, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	if n.UserID != userID {
		return nil, ErrForbidden
	}
	return n, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	n, err := u.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !n.Read {
		if err := u.repo.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		n.Read = true
	}
	return n, nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return u.repo.MarkAllRead(ctx, userID)
}

func (u *notificationUsecase) Delete(ctx context.Context, userID, id string) error {
	if _, err := u.owned(ctx, userID, id); err != nil {
		return err
	}
	return u.repo.Delete(ctx, id)
}

// Open returns the deep link of a notification and deletes it, which is
// what the client does after navigating.
func (u *notificationUsecase) Open(ctx context.Context, userID, id string) (string, error) {
	n, err := u.owned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return "", err
	}
	return n.Link, nil
}
