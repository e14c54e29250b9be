package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vesti/internal/models"
	"vesti/internal/observability"
	"vesti/internal/repository"
	"vesti/internal/tryon"

	"github.com/google/uuid"
)

// Synthesizer is the external render pipeline as the service sees it.
type Synthesizer interface {
	Synthesize(ctx context.Context, req tryon.SynthesisRequest) (*tryon.SynthesisResult, error)
	Advice(ctx context.Context, imageURL string) (string, error)
}

// TryOnService runs the render pipeline: persist the job, hand it to the
// synthesis service in the background, record the outcome.
type TryOnService struct {
	tryOnRepo   repository.TryOnRepository
	productRepo repository.ProductRepository
	client      Synthesizer

	// pipelineTimeout bounds the whole background render, detached from the
	// submitting request's context.
	pipelineTimeout time.Duration
}

type SubmitTryOnInput struct {
	UserID          uint
	PersonImageURL  string
	GarmentImageURL string
	ProductID       *uint
}

func NewTryOnService(
	tryOnRepo repository.TryOnRepository,
	productRepo repository.ProductRepository,
	client Synthesizer,
) *TryOnService {
	return &TryOnService{
		tryOnRepo:       tryOnRepo,
		productRepo:     productRepo,
		client:          client,
		pipelineTimeout: 2 * time.Minute,
	}
}

// Submit validates and persists a pending job, then starts the render in the
// background. The response carries the job ID for polling.
func (s *TryOnService) Submit(ctx context.Context, in SubmitTryOnInput) (*models.TryOnJob, error) {
	if strings.TrimSpace(in.PersonImageURL) == "" {
		return nil, models.NewValidationError("person_image_url is required")
	}
	if strings.TrimSpace(in.GarmentImageURL) == "" && in.ProductID == nil {
		return nil, models.NewValidationError("garment_image_url or product_id is required")
	}

	garmentURL := in.GarmentImageURL
	if in.ProductID != nil {
		product, err := s.productRepo.GetByID(ctx, *in.ProductID)
		if err != nil {
			return nil, err
		}
		if garmentURL == "" {
			garmentURL = product.ImageURL
		}
	}

	job := &models.TryOnJob{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		PersonImageURL:  in.PersonImageURL,
		GarmentImageURL: garmentURL,
		ProductID:       in.ProductID,
		Status:          models.TryOnStatusPending,
	}
	if err := s.tryOnRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	go s.run(job)

	return job, nil
}

func (s *TryOnService) GetJob(ctx context.Context, userID uint, jobID string) (*models.TryOnJob, error) {
	job, err := s.tryOnRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, models.NewNotFoundError("TryOnJob", jobID)
	}
	return job, nil
}

func (s *TryOnService) ListJobs(ctx context.Context, userID uint, limit, offset int) ([]*models.TryOnJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.tryOnRepo.ListByUser(ctx, userID, limit, offset)
}

// run executes the pipeline for one job. It owns its own context so the
// render survives the submitting HTTP request.
func (s *TryOnService) run(job *models.TryOnJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pipelineTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		observability.TryOnPipelineLatency.Observe(time.Since(start).Seconds())
	}()

	if err := s.tryOnRepo.UpdateStatus(ctx, job.ID, models.TryOnStatusProcessing); err != nil {
		slog.ErrorContext(ctx, "failed to mark try-on job processing", "job_id", job.ID, "err", err)
		return
	}

	result, err := s.client.Synthesize(ctx, tryon.SynthesisRequest{
		PersonImageURL:  job.PersonImageURL,
		GarmentImageURL: job.GarmentImageURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "try-on synthesis failed", "job_id", job.ID, "err", err)
		if ferr := s.tryOnRepo.Fail(ctx, job.ID, err.Error()); ferr != nil {
			slog.ErrorContext(ctx, "failed to mark try-on job failed", "job_id", job.ID, "err", ferr)
		}
		return
	}

	advice, err := s.client.Advice(ctx, result.ResultImageURL)
	if err != nil {
		// advice is garnish; the render still completes
		slog.WarnContext(ctx, "styling advice unavailable", "job_id", job.ID, "err", err)
		advice = ""
	}

	if err := s.tryOnRepo.Complete(ctx, job.ID, result.ResultImageURL, advice); err != nil {
		slog.ErrorContext(ctx, "failed to complete try-on job", "job_id", job.ID, "err", err)
		return
	}

	if job.ProductID != nil {
		if err := s.productRepo.IncrementEngagement(ctx, *job.ProductID, "view_count"); err != nil {
			slog.WarnContext(ctx, "failed to count product try-on", "product_id", *job.ProductID, "err", err)
		}
	}
}
