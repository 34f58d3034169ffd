package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"genius-keeper-backend/internal/testutil"
	"genius-keeper-backend/internal/visit/domain"
	"genius-keeper-backend/internal/visit/repository"
)

func newUsecase(t *testing.T) (VisitUsecase, repository.VisitReportRepository) {
	t.Helper()
	db := testutil.NewTestDB(t, &domain.PointOfSale{}, &domain.VisitReport{})
	visits := repository.NewGormVisitReportRepository(db)
	return NewVisitUsecase(repository.NewGormPointOfSaleRepository(db), visits), visits
}

func ptr[T any](v T) *T { return &v }

func TestListWithStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, visits := newUsecase(t)
	now := time.Date(2024, 6, 20, 8, 0, 0, 0, time.UTC)

	fresh, _ := uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("A fresh")})
	late, _ := uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("B late"), VisitInterval: ptr(3)})
	never, _ := uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("C never")})
	closed, _ := uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("D closed"), Active: ptr(false)})

	_ = visits.Create(ctx, &domain.VisitReport{PointOfSaleID: fresh.ID, CreatedAt: now.Add(-24 * time.Hour)})
	_ = visits.Create(ctx, &domain.VisitReport{PointOfSaleID: late.ID, CreatedAt: now.Add(-5 * 24 * time.Hour)})

	list, err := uc.ListWithStatus(ctx, now)
	if err != nil {
		t.Fatalf("ListWithStatus: %v", err)
	}
	byID := map[string]PointOfSaleStatus{}
	for _, st := range list {
		byID[st.ID] = st
	}

	if byID[fresh.ID].Visit.Overdue {
		t.Error("fresh location should not be overdue")
	}
	if st := byID[late.ID].Visit; !st.Overdue || st.OverdueDays != 2 {
		t.Errorf("late status = %+v", st)
	}
	if st := byID[never.ID].Visit; !st.Overdue || !st.NeverVisited {
		t.Errorf("never status = %+v", st)
	}
	if byID[closed.ID].Visit.Overdue {
		t.Error("inactive location should not be reported overdue")
	}
}

func TestLogVisit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newUsecase(t)

	pos, err := uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("Tienda")})
	if err != nil {
		t.Fatalf("CreatePointOfSale: %v", err)
	}

	if _, err := uc.LogVisit(ctx, "m1", "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing pos err = %v", err)
	}

	report, err := uc.LogVisit(ctx, "m1", pos.ID, "shelf restocked")
	if err != nil {
		t.Fatalf("LogVisit: %v", err)
	}
	if report.UserID != "m1" || report.PointOfSaleID != pos.ID {
		t.Errorf("report = %+v", report)
	}

	st, err := uc.GetPointOfSale(ctx, pos.ID, time.Now())
	if err != nil || st.Visit.Overdue {
		t.Errorf("status after visit = (%+v, %v)", st, err)
	}

	if _, err := uc.UpdatePointOfSale(ctx, pos.ID, PointOfSaleRequest{Active: ptr(false)}); err != nil {
		t.Fatalf("UpdatePointOfSale: %v", err)
	}
	if _, err := uc.LogVisit(ctx, "m1", pos.ID, ""); !errors.Is(err, ErrInactive) {
		t.Errorf("inactive pos err = %v", err)
	}
}

func TestCreatePointOfSaleRequiresName(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t)

	if _, err := uc.CreatePointOfSale(context.Background(), PointOfSaleRequest{Name: ptr("  ")}); err == nil {
		t.Error("expected an error for a blank name")
	}
}

func TestSearchRanksAndFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, _ := newUsecase(t)
	now := time.Date(2024, 6, 20, 8, 0, 0, 0, time.UTC)

	byAddress, _ := uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("Súper Norte"), Address: ptr("Calle Lupe 5")})
	byName, _ := uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("Abarrotes Doña Lupe"), Address: ptr("Av. Juárez 10")})
	_, _ = uc.CreatePointOfSale(ctx, PointOfSaleRequest{Name: ptr("Farmacia del Ahorro"), Address: ptr("Reforma 222")})

	list, err := uc.Search(ctx, "lupe", now)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(list))
	}
	if list[0].ID != byName.ID || list[1].ID != byAddress.ID {
		t.Errorf("order = %s, %s", list[0].Name, list[1].Name)
	}
	if !list[0].Visit.NeverVisited {
		t.Error("search results should carry visit status")
	}

	list, _ = uc.Search(ctx, "doña", now)
	if len(list) != 1 || list[0].ID != byName.ID {
		t.Errorf("accent search = %v", list)
	}
	list, _ = uc.Search(ctx, "abarotes", now)
	if len(list) != 1 || list[0].ID != byName.ID {
		t.Errorf("typo search = %v", list)
	}

	all, _ := uc.Search(ctx, "  ", now)
	if len(all) != 3 {
		t.Errorf("blank query should list everything, got %d", len(all))
	}
}
