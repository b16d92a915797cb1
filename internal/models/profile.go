package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

type Profile struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-"`
	Name      string         `json:"name"`
	Role      string         `json:"role" gorm:"not null;default:'viewer'"` // editor, viewer
	FCMToken  string         `json:"-" gorm:"column:fcm_token"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = RoleViewer
	}
	return nil
}

func (p *Profile) IsEditor() bool {
	return p.Role == RoleEditor
}

// Auth DTOs
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DeviceTokenRequest struct {
	Token string `json:"token"`
}

type AuthResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}
