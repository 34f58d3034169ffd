package domain

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDispatched, StatusCancelled:
		return true
	}
	return false
}

// Order is a replenishment order raised at a point of sale.
type Order struct {
	ID            string    `json:"id" gorm:"primaryKey" firestore:"-"`
	PointOfSaleID string    `json:"point_of_sale_id" gorm:"index" firestore:"pointOfSaleId"`
	CreatedBy     string    `json:"created_by" firestore:"createdBy"`
	Status        Status    `json:"status" gorm:"index;not null" firestore:"status"`
	Total         float64   `json:"total" firestore:"total"`
	Notes         string    `json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
}
