package repository

import (
	"context"
	"time"

	"vesti/internal/models"
	"vesti/internal/observability"

	"gorm.io/gorm"
)

// ImageRepository defines persistence operations for uploaded image metadata
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByHash(ctx context.Context, hash string) (*models.Image, error)
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	UpdateStatus(ctx context.Context, id uint, status, errMsg string) error
	TouchLastAccessed(ctx context.Context, id uint) error
	AddVariant(ctx context.Context, variant *models.ImageVariant) error
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*models.Image, error)
	Delete(ctx context.Context, id uint) error
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image metadata repository
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	defer observability.TrackQuery("create", "images")()
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	return nil
}

// GetByHash looks an image up by content hash, the dedup key for uploads.
func (r *imageRepository) GetByHash(ctx context.Context, hash string) (*models.Image, error) {
	defer observability.TrackQuery("read", "images")()
	var image models.Image
	err := r.db.WithContext(ctx).Preload("Variants").Where("hash = ?", hash).First(&image).Error
	if err != nil {
		return nil, models.ClassifyStoreError(err, "Image", hash)
	}
	return &image, nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	defer observability.TrackQuery("read", "images")()
	var image models.Image
	if err := r.db.WithContext(ctx).Preload("Variants").First(&image, id).Error; err != nil {
		return nil, models.ClassifyStoreError(err, "Image", id)
	}
	return &image, nil
}

func (r *imageRepository) UpdateStatus(ctx context.Context, id uint, status, errMsg string) error {
	defer observability.TrackQuery("update", "images")()
	res := r.db.WithContext(ctx).Model(&models.Image{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": errMsg})
	if res.Error != nil {
		return models.NewStoreUnavailableError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Image", id)
	}
	return nil
}

func (r *imageRepository) TouchLastAccessed(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Image{}).
		Where("id = ?", id).
		Update("last_accessed_at", &now).Error
}

func (r *imageRepository) AddVariant(ctx context.Context, variant *models.ImageVariant) error {
	defer observability.TrackQuery("create", "image_variants")()
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	return nil
}

// ListStale returns images not served since olderThan, for the cleanup sweep.
func (r *imageRepository) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*models.Image, error) {
	defer observability.TrackQuery("read", "images")()
	var images []*models.Image
	err := r.db.WithContext(ctx).
		Where("last_accessed_at IS NULL OR last_accessed_at < ?", olderThan).
		Where("created_at < ?", olderThan).
		Limit(limit).
		Find(&images).Error
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return images, nil
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "images")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.ImageVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Image{}, id).Error
	})
}
