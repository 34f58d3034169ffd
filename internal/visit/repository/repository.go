package repository

import (
	"context"

	"genius-keeper-backend/internal/visit/domain"
)

// PointOfSaleRepository stores points of sale. FindByID returns (nil, nil)
// when the id does not exist.
type PointOfSaleRepository interface {
	Create(ctx context.Context, pos *domain.PointOfSale) error
	Update(ctx context.Context, pos *domain.PointOfSale) error
	FindByID(ctx context.Context, id string) (*domain.PointOfSale, error)
	FindActive(ctx context.Context) ([]domain.PointOfSale, error)
	FindAll(ctx context.Context) ([]domain.PointOfSale, error)
}

// VisitReportRepository stores visit reports. LatestForPointOfSale returns
// (nil, nil) when the location has no report.
type VisitReportRepository interface {
	Create(ctx context.Context, report *domain.VisitReport) error
	LatestForPointOfSale(ctx context.Context, posID string) (*domain.VisitReport, error)
	ListForPointOfSale(ctx context.Context, posID string, limit int) ([]domain.VisitReport, error)
}
