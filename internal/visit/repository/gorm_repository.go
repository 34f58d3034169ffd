package repository

import (
	"context"
	"errors"
	"time"

	"genius-keeper-backend/internal/visit/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormPointOfSaleRepository struct {
	db *gorm.DB
}

func NewGormPointOfSaleRepository(db *gorm.DB) PointOfSaleRepository {
	return &gormPointOfSaleRepository{db: db}
}

func (r *gormPointOfSaleRepository) Create(ctx context.Context, pos *domain.PointOfSale) error {
	if pos.ID == "" {
		pos.ID = uuid.New().String()
	}
	now := time.Now()
	pos.CreatedAt = now
	pos.UpdatedAt = now
	return r.db.WithContext(ctx).Create(pos).Error
}

func (r *gormPointOfSaleRepository) Update(ctx context.Context, pos *domain.PointOfSale) error {
	pos.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(pos).Error
}

func (r *gormPointOfSaleRepository) FindByID(ctx context.Context, id string) (*domain.PointOfSale, error) {
	var pos domain.PointOfSale
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pos).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pos, nil
}

func (r *gormPointOfSaleRepository) FindActive(ctx context.Context) ([]domain.PointOfSale, error) {
	var list []domain.PointOfSale
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *gormPointOfSaleRepository) FindAll(ctx context.Context) ([]domain.PointOfSale, error) {
	var list []domain.PointOfSale
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

type gormVisitReportRepository struct {
	db *gorm.DB
}

func NewGormVisitReportRepository(db *gorm.DB) VisitReportRepository {
	return &gormVisitReportRepository{db: db}
}

func (r *gormVisitReportRepository) Create(ctx context.Context, report *domain.VisitReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *gormVisitReportRepository) LatestForPointOfSale(ctx context.Context, posID string) (*domain.VisitReport, error) {
	var report domain.VisitReport
	err := r.db.WithContext(ctx).
		Where("point_of_sale_id = ?", posID).
		Order("created_at DESC").
		Limit(1).
		Take(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *gormVisitReportRepository) ListForPointOfSale(ctx context.Context, posID string, limit int) ([]domain.VisitReport, error) {
	var reports []domain.VisitReport
	q := r.db.WithContext(ctx).Where("point_of_sale_id = ?", posID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&reports).Error
	return reports, err
}
