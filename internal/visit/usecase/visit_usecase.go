package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"genius-keeper-backend/internal/visit/domain"
	"genius-keeper-backend/internal/visit/repository"
	"genius-keeper-backend/pkg/fuzzy"

	"github.com/sirupsen/logrus"
)

type visitUsecase struct {
	posRepo   repository.PointOfSaleRepository
	visitRepo repository.VisitReportRepository
	log       *logrus.Entry
}

func NewVisitUsecase(posRepo repository.PointOfSaleRepository, visitRepo repository.VisitReportRepository) VisitUsecase {
	return &visitUsecase{
		posRepo:   posRepo,
		visitRepo: visitRepo,
		log:       logrus.WithField("component", "visit"),
	}
}

func (u *visitUsecase) CreatePointOfSale(ctx context.Context, req PointOfSaleRequest) (*domain.PointOfSale, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, errors.New("name is required")
	}

	pos := &domain.PointOfSale{Active: true}
	apply(pos, req)

	if err := u.posRepo.Create(ctx, pos); err != nil {
		return nil, fmt.Errorf("create point of sale: %w", err)
	}
	return pos, nil
}

func (u *visitUsecase) UpdatePointOfSale(ctx context.Context, id string, req PointOfSaleRequest) (*domain.PointOfSale, error) {
	pos, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(pos, req)
	if err := u.posRepo.Update(ctx, pos); err != nil {
		return nil, fmt.Errorf("update point of sale: %w", err)
	}
	return pos, nil
}

func apply(pos *domain.PointOfSale, req PointOfSaleRequest) {
	if req.Name != nil {
		pos.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		pos.Address = *req.Address
	}
	if req.Active != nil {
		pos.Active = *req.Active
	}
	if req.VisitInterval != nil {
		pos.VisitInterval = *req.VisitInterval
	}
	if req.AssignedTo != nil {
		pos.AssignedTo = *req.AssignedTo
	}
}

func (u *visitUsecase) find(ctx context.Context, id string) (*domain.PointOfSale, error) {
	pos, err := u.posRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, ErrNotFound
	}
	return pos, nil
}

func (u *visitUsecase) status(ctx context.Context, pos domain.PointOfSale, now time.Time) (PointOfSaleStatus, error) {
	latest, err := u.visitRepo.LatestForPointOfSale(ctx, pos.ID)
	if err != nil {
		return PointOfSaleStatus{}, fmt.Errorf("latest visit for %s: %w", pos.ID, err)
	}
	var last *time.Time
	if latest != nil {
		last = &latest.CreatedAt
	}
	return PointOfSaleStatus{
		PointOfSale: pos,
		Visit:       domain.EvaluateVisit(pos.VisitInterval, last, now),
	}, nil
}

func (u *visitUsecase) GetPointOfSale(ctx context.Context, id string, now time.Time) (*PointOfSaleStatus, error) {
	pos, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := u.status(ctx, *pos, now)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListWithStatus annotates every point of sale with the same evaluation the
// overdue supervisor uses. Inactive locations are never overdue.
func (u *visitUsecase) ListWithStatus(ctx context.Context, now time.Time) ([]PointOfSaleStatus, error) {
	all, err := u.posRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PointOfSaleStatus, 0, len(all))
	for _, pos := range all {
		st, err := u.status(ctx, pos, now)
		if err != nil {
			return nil, err
		}
		if !pos.Active {
			st.Visit.Overdue = false
			st.Visit.OverdueDays = 0
		}
		out = append(out, st)
	}
	return out, nil
}

// Search returns the points of sale whose name or address fuzzy-matches
// query, best match first.
func (u *visitUsecase) Search(ctx context.Context, query string, now time.Time) ([]PointOfSaleStatus, error) {
	all, err := u.ListWithStatus(ctx, now)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}

	threshold := fuzzy.Threshold(query)
	scores := make(map[string]float64, len(all))
	out := make([]PointOfSaleStatus, 0, len(all))
	for _, st := range all {
		if !fuzzy.Match(query, st.Name, threshold) && !fuzzy.Match(query, st.Address, threshold) {
			continue
		}
		scores[st.ID] = fuzzy.Score(query, st.Name, st.Address)
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return scores[out[i].ID] > scores[out[j].ID] })
	return out, nil
}

func (u *visitUsecase) LogVisit(ctx context.Context, userID, posID, notes string) (*domain.VisitReport, error) {
	pos, err := u.find(ctx, posID)
	if err != nil {
		return nil, err
	}
	if !pos.Active {
		return nil, ErrInactive
	}

	report := &domain.VisitReport{
		PointOfSaleID: posID,
		UserID:        userID,
		Notes:         notes,
	}
	if err := u.visitRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create visit report: %w", err)
	}

	u.log.WithFields(logrus.Fields{"pos_id": posID, "user_id": userID}).Info("[Visit] visit logged")
	return report, nil
}

func (u *visitUsecase) History(ctx context.Context, posID string, limit int) ([]domain.VisitReport, error) {
	if _, err := u.find(ctx, posID); err != nil {
		return nil, err
	}
	return u.visitRepo.ListForPointOfSale(ctx, posID, limit)
}
