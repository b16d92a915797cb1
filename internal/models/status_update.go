package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"
	StatusNotStarted = "Not Started"
)

// Statuses lists the status tags in display order.
var Statuses = []string{StatusCompleted, StatusInProgress, StatusNotStarted}

func IsStatus(s string) bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

type StatusUpdate struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID      `json:"projectId" gorm:"type:uuid;index;not null"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	Status    string         `json:"status" gorm:"column:status_type;not null"`
	CreatedBy uuid.UUID      `json:"createdBy" gorm:"type:uuid"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *StatusUpdate) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *StatusUpdate) Validate() error {
	return validateStatusFields(s.Content, s.Status)
}

func validateStatusFields(content, status string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "Content is required"}
	}
	if !IsStatus(status) {
		return &ValidationError{Field: "status", Message: "Status must be one of: Completed, In Progress, Not Started"}
	}
	return nil
}

type CreateStatusUpdateRequest struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

func (r CreateStatusUpdateRequest) Validate() error {
	return validateStatusFields(r.Content, r.Status)
}

type UpdateStatusUpdateRequest struct {
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func (r UpdateStatusUpdateRequest) Apply(s StatusUpdate) StatusUpdate {
	if r.Content != nil {
		s.Content = *r.Content
	}
	if r.Status != nil {
		s.Status = *r.Status
	}
	return s
}
