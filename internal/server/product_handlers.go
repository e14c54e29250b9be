package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"vesti/internal/models"
	"vesti/internal/service"
)

type createProductRequest struct {
	Brand      string `json:"brand"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	Category   string `json:"category"`
	PriceCents int    `json:"price_cents"`
	Currency   string `json:"currency"`
}

// GetTrendingProducts returns the catalogue ranked by trend score.
func (s *Server) GetTrendingProducts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	products, err := s.productService.ListTrending(c.Context(), p.Limit)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one catalogue item. Fetching it counts as a view.
func (s *Server) GetProduct(c *fiber.Ctx) error {
	productID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	product, err := s.productService.GetProduct(c.Context(), productID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(product)
}

// CreateProduct adds a catalogue item. Admin only.
func (s *Server) CreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	product, err := s.productService.CreateProduct(c.Context(), service.CreateProductInput{
		Brand:      req.Brand,
		Name:       req.Name,
		ImageURL:   req.ImageURL,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	slog.InfoContext(c.Context(), "product created", "product_id", product.ID, "brand", product.Brand)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// LikeProduct bumps a product's like counter. Catalogue likes are counters,
// not per-user rows, so repeats stack.
func (s *Server) LikeProduct(c *fiber.Ctx) error {
	productID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.productService.LikeProduct(c.Context(), productID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"liked": true})
}

// CommentProduct bumps a product's comment counter. The catalogue keeps no
// comment bodies, only the count feeding the trend ranking.
func (s *Server) CommentProduct(c *fiber.Ctx) error {
	productID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.productService.CommentProduct(c.Context(), productID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
