package usecase

import (
	"context"
	"errors"
	"fmt"

	"genius-keeper-backend/internal/order/domain"
	"genius-keeper-backend/internal/order/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrNotPending    = errors.New("only pending orders can change status")
)

type CreateOrderRequest struct {
	PointOfSaleID string  `json:"point_of_sale_id" binding:"required"`
	Total         float64 `json:"total" binding:"gte=0"`
	Notes         string  `json:"notes"`
}

type OrderUsecase interface {
	Create(ctx context.Context, userID string, req CreateOrderRequest) (*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
}

type orderUsecase struct {
	repo repository.OrderRepository
	log  *logrus.Entry
}

func NewOrderUsecase(repo repository.OrderRepository) OrderUsecase {
	return &orderUsecase{repo: repo, log: logrus.WithField("component", "order")}
}

func (u *orderUsecase) Create(ctx context.Context, userID string, req CreateOrderRequest) (*domain.Order, error) {
	order := &domain.Order{
		PointOfSaleID: req.PointOfSaleID,
		CreatedBy:     userID,
		Status:        domain.StatusPending,
		Total:         req.Total,
		Notes:         req.Notes,
	}
	if err := u.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	u.log.WithFields(logrus.Fields{"order_id": order.ID, "pos_id": order.PointOfSaleID}).Info("[Order] order created")
	return order, nil
}

func (u *orderUsecase) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return u.repo.FindByStatus(ctx, status)
}

// UpdateStatus moves a pending order to dispatched or cancelled.
func (u *orderUsecase) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if !status.Valid() || status == domain.StatusPending {
		return nil, ErrInvalidStatus
	}

	order, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status != domain.StatusPending {
		return nil, ErrNotPending
	}

	if err := u.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status
	return order, nil
}
