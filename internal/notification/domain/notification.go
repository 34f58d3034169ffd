package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is the persisted, user-visible record of one notify call.
// Only Read ever changes after creation.
type Notification struct {
	ID        string            `json:"id" gorm:"primaryKey" firestore:"-"`
	UserID    string            `json:"user_id" gorm:"index;not null" firestore:"userId"`
	Title     string            `json:"title" firestore:"title"`
	Body      string            `json:"body" firestore:"body"`
	Link      string            `json:"link" firestore:"link"`
	Data      datatypes.JSONMap `json:"data,omitempty" firestore:"data,omitempty"`
	Read      bool              `json:"read" gorm:"index;default:false" firestore:"read"`
	CreatedAt time.Time         `json:"created_at" gorm:"index" firestore:"createdAt"`
}

// ListFilter narrows a user's notification listing.
type ListFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
