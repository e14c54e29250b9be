package models

import "time"

// Image kinds accepted by the upload surface.
const (
	ImageKindPerson  = "person"
	ImageKindGarment = "garment"
	ImageKindRender  = "render"
)

// Image is the metadata record for an uploaded source image (a person photo
// or a garment shot) addressed by its content hash. Pixel data lives on disk
// under the configured upload directory.
type Image struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Hash           string         `gorm:"uniqueIndex;size:64;not null" json:"hash"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Kind           string         `gorm:"not null;default:person" json:"kind"`
	ContentType    string         `gorm:"not null" json:"content_type"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	SizeBytes      int64          `json:"size_bytes"`
	Status         string         `gorm:"not null;default:queued;index" json:"status"`
	Error          string         `json:"error,omitempty"`
	LastAccessedAt *time.Time     `json:"last_accessed_at,omitempty"`
	Variants       []ImageVariant `gorm:"foreignKey:ImageID" json:"variants,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ImageVariant is a resized rendition of an Image in a specific format.
type ImageVariant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageID   uint      `gorm:"not null;uniqueIndex:idx_image_size_format" json:"image_id"`
	SizePx    int       `gorm:"not null;uniqueIndex:idx_image_size_format" json:"size_px"`
	Format    string    `gorm:"not null;size:8;uniqueIndex:idx_image_size_format" json:"format"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
