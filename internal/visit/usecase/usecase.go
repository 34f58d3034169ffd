package usecase

import (
	"context"
	"errors"
	"time"

	"genius-keeper-backend/internal/visit/domain"
)

var (
	ErrNotFound = errors.New("point of sale not found")
	ErrInactive = errors.New("point of sale is inactive")
)

// PointOfSaleRequest carries the editable fields of a point of sale.
type PointOfSaleRequest struct {
	Name          *string `json:"name"`
	Address       *string `json:"address"`
	Active        *bool   `json:"active"`
	VisitInterval *int    `json:"visit_interval" binding:"omitempty,min=0"`
	AssignedTo    *string `json:"assigned_to"`
}

// PointOfSaleStatus is a point of sale annotated with its visit status.
type PointOfSaleStatus struct {
	domain.PointOfSale
	Visit domain.VisitStatus `json:"visit"`
}

type VisitUsecase interface {
	CreatePointOfSale(ctx context.Context, req PointOfSaleRequest) (*domain.PointOfSale, error)
	UpdatePointOfSale(ctx context.Context, id string, req PointOfSaleRequest) (*domain.PointOfSale, error)
	GetPointOfSale(ctx context.Context, id string, now time.Time) (*PointOfSaleStatus, error)
	ListWithStatus(ctx context.Context, now time.Time) ([]PointOfSaleStatus, error)
	Search(ctx context.Context, query string, now time.Time) ([]PointOfSaleStatus, error)
	LogVisit(ctx context.Context, userID, posID, notes string) (*domain.VisitReport, error)
	History(ctx context.Context, posID string, limit int) ([]domain.VisitReport, error)
}
