package service

import (
	"context"
	"strings"

	"vesti/internal/cache"
	"vesti/internal/models"
	"vesti/internal/repository"
)

// ProductService serves the brand catalogue. Catalogue ranking is the blended
// trend weighting on current counters, independent from the feed's score
// accumulator.
type ProductService struct {
	productRepo repository.ProductRepository
}

type CreateProductInput struct {
	Brand      string
	Name       string
	ImageURL   string
	Category   string
	PriceCents int
	Currency   string
}

func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Brand) == "" {
		return nil, models.NewValidationError("brand is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("name is required")
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, models.NewValidationError("image_url is required")
	}
	if in.PriceCents < 0 {
		return nil, models.NewValidationError("price_cents must not be negative")
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	product := &models.Product{
		Brand:      in.Brand,
		Name:       in.Name,
		ImageURL:   in.ImageURL,
		Category:   in.Category,
		PriceCents: in.PriceCents,
		Currency:   currency,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Browsing a product counts as a view for trend ranking.
	if err := s.productRepo.IncrementEngagement(ctx, id, "view_count"); err != nil && !models.IsNotFound(err) {
		return nil, err
	}
	return product, nil
}

// ListTrending returns the catalogue ordered by trend score. The whole page
// is cached briefly since the ranking only shifts with engagement.
func (s *ProductService) ListTrending(ctx context.Context, limit int) ([]*models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var products []*models.Product
	err := cache.Aside(ctx, cache.CatalogueKey, &products, cache.CatalogueTTL, func() error {
		var fetchErr error
		products, fetchErr = s.productRepo.ListTrending(ctx, limit)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// LikeProduct bumps the catalogue like counter. Product likes are simple
// counters, not per-user rows like post likes.
func (s *ProductService) LikeProduct(ctx context.Context, id uint) error {
	return s.productRepo.IncrementEngagement(ctx, id, "like_count")
}

func (s *ProductService) CommentProduct(ctx context.Context, id uint) error {
	return s.productRepo.IncrementEngagement(ctx, id, "comment_count")
}
