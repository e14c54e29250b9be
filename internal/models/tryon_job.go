package models

import (
	"time"

	"gorm.io/gorm"
)

// Try-on job lifecycle states.
const (
	TryOnStatusPending    = "pending"
	TryOnStatusProcessing = "processing"
	TryOnStatusDone       = "done"
	TryOnStatusFailed     = "failed"
)

// TryOnJob tracks one render request through the external synthesis pipeline:
// a person photo and a garment image go out, a composite render comes back.
type TryOnJob struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	User            User           `gorm:"foreignKey:UserID" json:"user"`
	PersonImageURL  string         `gorm:"not null" json:"person_image_url"`
	GarmentImageURL string         `gorm:"not null" json:"garment_image_url"`
	ProductID       *uint          `gorm:"index" json:"product_id,omitempty"`
	Status          string         `gorm:"not null;default:pending;index" json:"status"`
	ResultImageURL  string         `json:"result_image_url,omitempty"`
	Advice          string         `gorm:"type:text" json:"advice,omitempty"`
	Error           string         `json:"error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
