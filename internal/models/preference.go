package models

import (
	"time"

	"github.com/google/uuid"
)

// Preference is a per-user key/value pair, the durable stand-in for the
// browser-local store.
type Preference struct {
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}
