// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a shared try-on render (or an authentic user-photographed
// look when IsManual is true) in the Vesti feed.
//
// LikeCount, CommentCount, ViewCount and Score are persisted counters that
// the repository mutates atomically in the same statement; Score is an
// accumulator advanced by fixed per-event weights, never recomputed from the
// counters.
type Post struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"not null;index" json:"user_id"`
	User           User   `gorm:"foreignKey:UserID" json:"user"`
	ResultImageURL string `gorm:"not null" json:"result_image_url"`
	Category       string `gorm:"index" json:"category"`
	VibeTag        string `json:"vibe_tag"`
	// IsManual marks an authentic photo upload as opposed to a synthesized render.
	IsManual     bool      `gorm:"not null;default:false" json:"is_manual"`
	LikeCount    int       `gorm:"not null;default:0" json:"like_count"`
	CommentCount int       `gorm:"not null;default:0" json:"comment_count"`
	ViewCount    int       `gorm:"not null;default:0" json:"view_count"`
	Score        int       `gorm:"not null;default:0;index" json:"score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	// Liked indicates whether the current requesting viewer liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
