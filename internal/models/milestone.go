package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Milestone struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID       `json:"projectId" gorm:"type:uuid;index;not null"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text"`
	Date        string          `json:"date"` // free text, e.g. "March 2024"
	Completion  int             `json:"completion" gorm:"not null;default:0"`
	Position    int             `json:"position" gorm:"not null"`
	LegacyNotes *datatypes.JSON `json:"legacyNotes,omitempty" gorm:"column:legacy_notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
	Notes       []Note          `json:"notes" gorm:"foreignKey:MilestoneID"`
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// HasLegacyNotes reports whether the embedded pre-normalization notes field
// still carries data.
func (m *Milestone) HasLegacyNotes() bool {
	if m.LegacyNotes == nil {
		return false
	}
	s := strings.TrimSpace(string(*m.LegacyNotes))
	return s != "" && s != "null"
}

// Validate checks the editable fields of a milestone.
func (m *Milestone) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return validateCompletion(m.Completion)
}

func validateCompletion(c int) error {
	if c < 0 || c > 100 {
		return &ValidationError{Field: "completion", Message: "Completion must be between 0 and 100"}
	}
	return nil
}

// Milestone DTOs
type CreateMilestoneRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Completion  int    `json:"completion"`
}

func (r CreateMilestoneRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if strings.TrimSpace(r.Description) == "" {
		return &ValidationError{Field: "description", Message: "Description is required"}
	}
	if strings.TrimSpace(r.Date) == "" {
		return &ValidationError{Field: "date", Message: "Date is required"}
	}
	return validateCompletion(r.Completion)
}

type UpdateMilestoneRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Completion  *int    `json:"completion"`
}

// Apply overlays the set fields of r onto m.
func (r UpdateMilestoneRequest) Apply(m Milestone) Milestone {
	if r.Title != nil {
		m.Title = *r.Title
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	if r.Date != nil {
		m.Date = *r.Date
	}
	if r.Completion != nil {
		m.Completion = *r.Completion
	}
	return m
}
