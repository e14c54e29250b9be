package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a brand garment in the marketplace catalogue.
//
// The catalogue uses a continuous trend weighting (likes*2 + comments*1.5 +
// views*0.1) rather than the feed's flat accumulator; the two schemes are
// intentionally independent per collection type.
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Brand        string         `gorm:"not null;index" json:"brand"`
	Name         string         `gorm:"not null" json:"name"`
	ImageURL     string         `gorm:"not null" json:"image_url"`
	Category     string         `gorm:"index" json:"category"`
	PriceCents   int            `gorm:"not null" json:"price_cents"`
	Currency     string         `gorm:"not null;default:USD" json:"currency"`
	LikeCount    int            `gorm:"not null;default:0" json:"like_count"`
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`
	ViewCount    int            `gorm:"not null;default:0" json:"view_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TrendScore returns the catalogue trend weighting for the product's current
// counters. Unlike Post.Score this is a pure function of state, not an
// accumulator.
func (p *Product) TrendScore() float64 {
	return float64(p.LikeCount)*2 + float64(p.CommentCount)*1.5 + float64(p.ViewCount)*0.1
}
