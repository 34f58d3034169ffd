package repository

import (
	"context"

	"genius-keeper-backend/internal/order/domain"
)

// OrderRepository stores orders. FindByID returns (nil, nil) when the id
// does not exist.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}
