package repository

import (
	"context"

	"vesti/internal/models"
	"vesti/internal/observability"

	"gorm.io/gorm"
)

// TryOnRepository defines persistence operations for try-on render jobs
type TryOnRepository interface {
	Create(ctx context.Context, job *models.TryOnJob) error
	GetByID(ctx context.Context, id string) (*models.TryOnJob, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.TryOnJob, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Complete(ctx context.Context, id, resultURL, advice string) error
	Fail(ctx context.Context, id, errMsg string) error
}

type tryOnRepository struct {
	db *gorm.DB
}

// NewTryOnRepository creates a new try-on job repository
func NewTryOnRepository(db *gorm.DB) TryOnRepository {
	return &tryOnRepository{db: db}
}

func (r *tryOnRepository) Create(ctx context.Context, job *models.TryOnJob) error {
	defer observability.TrackQuery("create", "tryon_jobs")()
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	observability.TryOnJobs.WithLabelValues(models.TryOnStatusPending).Inc()
	return nil
}

func (r *tryOnRepository) GetByID(ctx context.Context, id string) (*models.TryOnJob, error) {
	defer observability.TrackQuery("read", "tryon_jobs")()
	var job models.TryOnJob
	if err := r.db.WithContext(ctx).Preload("User").First(&job, "id = ?", id).Error; err != nil {
		return nil, models.ClassifyStoreError(err, "TryOnJob", id)
	}
	return &job, nil
}

func (r *tryOnRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.TryOnJob, error) {
	defer observability.TrackQuery("read", "tryon_jobs")()
	var jobs []*models.TryOnJob
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	if err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	return jobs, nil
}

func (r *tryOnRepository) UpdateStatus(ctx context.Context, id, status string) error {
	defer observability.TrackQuery("update", "tryon_jobs")()
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

// Complete marks the job done and records the render and styling advice.
func (r *tryOnRepository) Complete(ctx context.Context, id, resultURL, advice string) error {
	defer observability.TrackQuery("update", "tryon_jobs")()
	err := r.update(ctx, id, map[string]interface{}{
		"status":           models.TryOnStatusDone,
		"result_image_url": resultURL,
		"advice":           advice,
	})
	if err == nil {
		observability.TryOnJobs.WithLabelValues(models.TryOnStatusDone).Inc()
	}
	return err
}

func (r *tryOnRepository) Fail(ctx context.Context, id, errMsg string) error {
	defer observability.TrackQuery("update", "tryon_jobs")()
	err := r.update(ctx, id, map[string]interface{}{
		"status": models.TryOnStatusFailed,
		"error":  errMsg,
	})
	if err == nil {
		observability.TryOnJobs.WithLabelValues(models.TryOnStatusFailed).Inc()
	}
	return err
}

func (r *tryOnRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.TryOnJob{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return models.NewStoreUnavailableError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("TryOnJob", id)
	}
	return nil
}
