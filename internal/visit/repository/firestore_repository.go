package repository

import (
	"context"
	"time"

	"genius-keeper-backend/internal/visit/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	pointsOfSaleCollection = "pointsOfSale"
	visitReportsCollection = "visitReports"
)

type firestorePointOfSaleRepository struct {
	client *firestore.Client
}

func NewFirestorePointOfSaleRepository(client *firestore.Client) PointOfSaleRepository {
	return &firestorePointOfSaleRepository{client: client}
}

func (r *firestorePointOfSaleRepository) col() *firestore.CollectionRef {
	return r.client.Collection(pointsOfSaleCollection)
}

func (r *firestorePointOfSaleRepository) Create(ctx context.Context, pos *domain.PointOfSale) error {
	if pos.ID == "" {
		pos.ID = uuid.New().String()
	}
	now := time.Now()
	pos.CreatedAt = now
	pos.UpdatedAt = now
	_, err := r.col().Doc(pos.ID).Create(ctx, pos)
	return err
}

func (r *firestorePointOfSaleRepository) Update(ctx context.Context, pos *domain.PointOfSale) error {
	pos.UpdatedAt = time.Now()
	_, err := r.col().Doc(pos.ID).Set(ctx, pos)
	return err
}

func (r *firestorePointOfSaleRepository) FindByID(ctx context.Context, id string) (*domain.PointOfSale, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodePointOfSale(doc)
}

func (r *firestorePointOfSaleRepository) FindActive(ctx context.Context) ([]domain.PointOfSale, error) {
	docs, err := r.col().Where("active", "==", true).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodePointsOfSale(docs)
}

func (r *firestorePointOfSaleRepository) FindAll(ctx context.Context) ([]domain.PointOfSale, error) {
	docs, err := r.col().OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodePointsOfSale(docs)
}

func decodePointOfSale(doc *firestore.DocumentSnapshot) (*domain.PointOfSale, error) {
	var pos domain.PointOfSale
	if err := doc.DataTo(&pos); err != nil {
		return nil, err
	}
	pos.ID = doc.Ref.ID
	return &pos, nil
}

func decodePointsOfSale(docs []*firestore.DocumentSnapshot) ([]domain.PointOfSale, error) {
	list := make([]domain.PointOfSale, 0, len(docs))
	for _, doc := range docs {
		pos, err := decodePointOfSale(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, *pos)
	}
	return list, nil
}

type firestoreVisitReportRepository struct {
	client *firestore.Client
}

func NewFirestoreVisitReportRepository(client *firestore.Client) VisitReportRepository {
	return &firestoreVisitReportRepository{client: client}
}

func (r *firestoreVisitReportRepository) Create(ctx context.Context, report *domain.VisitReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	_, err := r.client.Collection(visitReportsCollection).Doc(report.ID).Create(ctx, report)
	return err
}

func (r *firestoreVisitReportRepository) byPointOfSale(posID string) firestore.Query {
	return r.client.Collection(visitReportsCollection).
		Where("pointOfSaleId", "==", posID).
		OrderBy("createdAt", firestore.Desc)
}

func (r *firestoreVisitReportRepository) LatestForPointOfSale(ctx context.Context, posID string) (*domain.VisitReport, error) {
	docs, err := r.byPointOfSale(posID).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var report domain.VisitReport
	if err := docs[0].DataTo(&report); err != nil {
		return nil, err
	}
	report.ID = docs[0].Ref.ID
	return &report, nil
}

func (r *firestoreVisitReportRepository) ListForPointOfSale(ctx context.Context, posID string, limit int) ([]domain.VisitReport, error) {
	q := r.byPointOfSale(posID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	reports := make([]domain.VisitReport, 0, len(docs))
	for _, doc := range docs {
		var report domain.VisitReport
		if err := doc.DataTo(&report); err != nil {
			return nil, err
		}
		report.ID = doc.Ref.ID
		reports = append(reports, report)
	}
	return reports, nil
}
