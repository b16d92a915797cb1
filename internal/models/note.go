package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NoteInfo       = "info"
	NoteWarning    = "warning"
	NoteBlocker    = "blocker"
	NoteDependency = "dependency"
)

var NoteTypes = []string{NoteInfo, NoteWarning, NoteBlocker, NoteDependency}

func IsNoteType(t string) bool {
	for _, nt := range NoteTypes {
		if nt == t {
			return true
		}
	}
	return false
}

type Note struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	MilestoneID uuid.UUID      `json:"milestoneId" gorm:"type:uuid;index;not null"`
	Type        string         `json:"type" gorm:"not null;default:'info'"` // info, warning, blocker, dependency
	Content     string         `json:"content" gorm:"type:text;not null"`
	CreatedBy   uuid.UUID      `json:"createdBy" gorm:"type:uuid"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Note) TableName() string {
	return "milestone_notes"
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type CreateNoteRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (r CreateNoteRequest) Validate() error {
	if !IsNoteType(r.Type) {
		return &ValidationError{Field: "type", Message: "Type must be one of: info, warning, blocker, dependency"}
	}
	if strings.TrimSpace(r.Content) == "" {
		return &ValidationError{Field: "content", Message: "Content is required"}
	}
	return nil
}
