package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"vesti/internal/models"
	"vesti/internal/service"
)

type submitTryOnRequest struct {
	PersonImageURL  string `json:"person_image_url"`
	GarmentImageURL string `json:"garment_image_url"`
	ProductID       *uint  `json:"product_id"`
}

// SubmitTryOn queues a try-on render and returns the pending job for polling.
func (s *Server) SubmitTryOn(c *fiber.Ctx) error {
	var req submitTryOnRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	job, err := s.tryOnService.Submit(c.Context(), service.SubmitTryOnInput{
		UserID:          currentUserID(c),
		PersonImageURL:  req.PersonImageURL,
		GarmentImageURL: req.GarmentImageURL,
		ProductID:       req.ProductID,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusAccepted).JSON(job)
}

// GetTryOnJob returns one of the caller's jobs by ID.
func (s *Server) GetTryOnJob(c *fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Params("id"))
	if jobID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid job ID"))
	}

	job, err := s.tryOnService.GetJob(c.Context(), currentUserID(c), jobID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(job)
}

// ListTryOnJobs returns the caller's jobs, newest first.
func (s *Server) ListTryOnJobs(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	jobs, err := s.tryOnService.ListJobs(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
