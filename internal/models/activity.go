package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is one entry of a project's change feed.
type Activity struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID  uuid.UUID      `json:"projectId" gorm:"type:uuid;index;not null"`
	UserID     uuid.UUID      `json:"userId" gorm:"type:uuid;not null"`
	ActionType string         `json:"actionType" gorm:"not null"` // milestone_added, status_added, note_deleted, ...
	TargetID   *uuid.UUID     `json:"targetId" gorm:"type:uuid"`  // row the action touched
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
