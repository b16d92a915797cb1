package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	ID            uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string                      `json:"name" gorm:"not null"`
	Summary       string                      `json:"summary" gorm:"type:text"`
	Goals         datatypes.JSONSlice[string] `json:"goals"`
	KPIs          datatypes.JSONSlice[string] `json:"kpis" gorm:"column:kpis"`
	CreatedBy     uuid.UUID                   `json:"createdBy" gorm:"type:uuid"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt              `json:"-" gorm:"index"`
	Milestones    []Milestone                 `json:"milestones" gorm:"foreignKey:ProjectID"`
	StatusUpdates []StatusUpdate              `json:"statusUpdates,omitempty" gorm:"foreignKey:ProjectID"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Goals == nil {
		p.Goals = datatypes.JSONSlice[string]{}
	}
	if p.KPIs == nil {
		p.KPIs = datatypes.JSONSlice[string]{}
	}
	return nil
}

// Project DTOs
type CreateProjectRequest struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Goals   []string `json:"goals"`
	KPIs    []string `json:"kpis"`
}

func (r CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "Project name is required"}
	}
	if strings.TrimSpace(r.Summary) == "" {
		return &ValidationError{Field: "summary", Message: "Summary is required"}
	}
	for _, k := range r.KPIs {
		if strings.TrimSpace(k) == "" {
			return &ValidationError{Field: "kpis", Message: "KPI tags must not be empty"}
		}
	}
	return nil
}

type UpdateSummaryRequest struct {
	Summary string `json:"summary"`
}

func (r UpdateSummaryRequest) Validate() error {
	if strings.TrimSpace(r.Summary) == "" {
		return &ValidationError{Field: "summary", Message: "Summary is required"}
	}
	return nil
}

type SwitchProjectRequest struct {
	Index int `json:"index"`
}
