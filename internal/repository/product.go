package repository

import (
	"context"
	"sort"

	"vesti/internal/cache"
	"vesti/internal/models"
	"vesti/internal/observability"

	"gorm.io/gorm"
)

// ProductRepository defines persistence operations for catalogue products
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	ListTrending(ctx context.Context, limit int) ([]*models.Product, error)
	IncrementEngagement(ctx context.Context, id uint, column string) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	defer observability.TrackQuery("create", "products")()
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	cache.Invalidate(ctx, cache.CatalogueKey)
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	defer observability.TrackQuery("read", "products")()
	var product models.Product
	err := cache.Aside(ctx, cache.ProductKey(id), &product, cache.ProductTTL, func() error {
		if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
			return models.ClassifyStoreError(err, "Product", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListTrending returns products ordered by trend score, highest first. The
// score is a weighted blend of engagement counters computed in Go so the
// weights live in exactly one place (models.Product.TrendScore).
func (r *productRepository) ListTrending(ctx context.Context, limit int) ([]*models.Product, error) {
	defer observability.TrackQuery("read", "products")()
	var products []*models.Product
	if err := r.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].TrendScore() > products[j].TrendScore()
	})
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

var productCounters = map[string]bool{
	"like_count":    true,
	"comment_count": true,
	"view_count":    true,
}

// IncrementEngagement bumps one of the product's engagement counters. The
// column name is checked against an allowlist; counters feed TrendScore so
// there is no stored score to maintain here.
func (r *productRepository) IncrementEngagement(ctx context.Context, id uint, column string) error {
	defer observability.TrackQuery("update", "products")()
	if !productCounters[column] {
		return models.NewValidationError("unknown engagement counter: " + column)
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return models.NewStoreUnavailableError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Product", id)
	}
	observability.EngagementEvents.WithLabelValues("products", column).Inc()
	cache.InvalidateProduct(ctx, id)
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	defer observability.TrackQuery("update", "products")()
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	cache.InvalidateProduct(ctx, product.ID)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "products")()
	if err := r.db.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		return models.NewStoreUnavailableError(err)
	}
	cache.InvalidateProduct(ctx, id)
	return nil
}
