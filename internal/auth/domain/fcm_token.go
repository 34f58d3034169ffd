package domain

import (
	"time"

	"gorm.io/datatypes"
)

// FCMToken is one registered push endpoint of a user. The token value is
// unique, so registering the same device twice overwrites the first row.
type FCMToken struct {
	ID         string            `json:"id" gorm:"primaryKey" firestore:"-"`
	UserID     string            `json:"user_id" gorm:"index;not null" firestore:"userId"`
	Token      string            `json:"-" gorm:"uniqueIndex;not null" firestore:"token"` // Don't expose token in JSON
	DeviceInfo string            `json:"device_info" firestore:"deviceInfo"`            // Browser/device metadata
	Metadata   datatypes.JSONMap `json:"metadata,omitempty" firestore:"metadata"`
	CreatedAt  time.Time         `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time         `json:"updated_at" firestore:"updatedAt"`
}
