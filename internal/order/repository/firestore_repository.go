package repository

import (
	"context"
	"time"

	"genius-keeper-backend/internal/order/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ordersCollection = "orders"

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) OrderRepository {
	return &firestoreOrderRepository{client: client}
}

func (r *firestoreOrderRepository) col() *firestore.CollectionRef {
	return r.client.Collection(ordersCollection)
}

func (r *firestoreOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	_, err := r.col().Doc(order.ID).Create(ctx, order)
	return err
}

func (r *firestoreOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeOrder(doc)
}

func (r *firestoreOrderRepository) FindByStatus(ctx context.Context, s domain.Status) ([]domain.Order, error) {
	docs, err := r.col().Where("status", "==", string(s)).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := decodeOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (r *firestoreOrderRepository) UpdateStatus(ctx context.Context, id string, s domain.Status) error {
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
		{Path: "updatedAt", Value: time.Now()},
	})
	return err
}

func decodeOrder(doc *firestore.DocumentSnapshot) (*domain.Order, error) {
	var o domain.Order
	if err := doc.DataTo(&o); err != nil {
		return nil, err
	}
	o.ID = doc.Ref.ID
	return &o, nil
}
