package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vesti/internal/models"
	"vesti/internal/tryon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tryOnRepoStub is a stub for repository.TryOnRepository.
type tryOnRepoStub struct {
	mu   sync.Mutex
	jobs map[string]*models.TryOnJob

	createErr error
}

func newTryOnRepoStub() *tryOnRepoStub {
	return &tryOnRepoStub{jobs: map[string]*models.TryOnJob{}}
}

func (s *tryOnRepoStub) Create(_ context.Context, job *models.TryOnJob) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *tryOnRepoStub) GetByID(_ context.Context, id string) (*models.TryOnJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, models.NewNotFoundError("TryOnJob", id)
	}
	copied := *job
	return &copied, nil
}

func (s *tryOnRepoStub) ListByUser(_ context.Context, userID uint, _, _ int) ([]*models.TryOnJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TryOnJob
	for _, job := range s.jobs {
		if job.UserID == userID {
			copied := *job
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *tryOnRepoStub) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.NewNotFoundError("TryOnJob", id)
	}
	job.Status = status
	return nil
}

func (s *tryOnRepoStub) Complete(_ context.Context, id, resultURL, advice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.NewNotFoundError("TryOnJob", id)
	}
	job.Status = models.TryOnStatusDone
	job.ResultImageURL = resultURL
	job.Advice = advice
	return nil
}

func (s *tryOnRepoStub) Fail(_ context.Context, id, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.NewNotFoundError("TryOnJob", id)
	}
	job.Status = models.TryOnStatusFailed
	job.Error = errMsg
	return nil
}

// productRepoStub is a stub for repository.ProductRepository.
type productRepoStub struct {
	getByIDFn             func(context.Context, uint) (*models.Product, error)
	incrementEngagementFn func(context.Context, uint, string) error
}

func (s *productRepoStub) Create(_ context.Context, _ *models.Product) error { return nil }
func (s *productRepoStub) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Product{ID: id, ImageURL: "/images/garment.webp"}, nil
}
func (s *productRepoStub) ListTrending(_ context.Context, _ int) ([]*models.Product, error) {
	return nil, nil
}
func (s *productRepoStub) IncrementEngagement(ctx context.Context, id uint, column string) error {
	if s.incrementEngagementFn != nil {
		return s.incrementEngagementFn(ctx, id, column)
	}
	return nil
}
func (s *productRepoStub) Update(_ context.Context, _ *models.Product) error { return nil }
func (s *productRepoStub) Delete(_ context.Context, _ uint) error            { return nil }

// synthesizerStub is a stub for the external render pipeline.
type synthesizerStub struct {
	synthesizeFn func(context.Context, tryon.SynthesisRequest) (*tryon.SynthesisResult, error)
	adviceFn     func(context.Context, string) (string, error)
}

func (s *synthesizerStub) Synthesize(ctx context.Context, req tryon.SynthesisRequest) (*tryon.SynthesisResult, error) {
	if s.synthesizeFn != nil {
		return s.synthesizeFn(ctx, req)
	}
	return &tryon.SynthesisResult{ResultImageURL: "/images/render.webp"}, nil
}

func (s *synthesizerStub) Advice(ctx context.Context, imageURL string) (string, error) {
	if s.adviceFn != nil {
		return s.adviceFn(ctx, imageURL)
	}
	return "", nil
}

func waitForStatus(t *testing.T, repo *tryOnRepoStub, id string, want string) *models.TryOnJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return nil
}

func TestTryOnService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires Person Image", func(t *testing.T) {
		svc := NewTryOnService(newTryOnRepoStub(), &productRepoStub{}, &synthesizerStub{})
		_, err := svc.Submit(ctx, SubmitTryOnInput{UserID: 1})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("Requires Garment Or Product", func(t *testing.T) {
		svc := NewTryOnService(newTryOnRepoStub(), &productRepoStub{}, &synthesizerStub{})
		_, err := svc.Submit(ctx, SubmitTryOnInput{UserID: 1, PersonImageURL: "/images/p.webp"})
		require.Error(t, err)
	})

	t.Run("Pipeline Completes", func(t *testing.T) {
		repo := newTryOnRepoStub()
		synth := &synthesizerStub{
			adviceFn: func(_ context.Context, _ string) (string, error) {
				return "cinch the waist", nil
			},
		}
		svc := NewTryOnService(repo, &productRepoStub{}, synth)

		job, err := svc.Submit(ctx, SubmitTryOnInput{
			UserID:          1,
			PersonImageURL:  "/images/p.webp",
			GarmentImageURL: "/images/g.webp",
		})
		require.NoError(t, err)
		require.NotEmpty(t, job.ID)
		assert.Equal(t, models.TryOnStatusPending, job.Status)

		done := waitForStatus(t, repo, job.ID, models.TryOnStatusDone)
		assert.Equal(t, "/images/render.webp", done.ResultImageURL)
		assert.Equal(t, "cinch the waist", done.Advice)
	})

	t.Run("Product Supplies Garment Image", func(t *testing.T) {
		repo := newTryOnRepoStub()
		var gotGarment string
		synth := &synthesizerStub{
			synthesizeFn: func(_ context.Context, req tryon.SynthesisRequest) (*tryon.SynthesisResult, error) {
				gotGarment = req.GarmentImageURL
				return &tryon.SynthesisResult{ResultImageURL: "/images/render.webp"}, nil
			},
		}
		svc := NewTryOnService(repo, &productRepoStub{}, synth)

		productID := uint(7)
		job, err := svc.Submit(ctx, SubmitTryOnInput{
			UserID:         1,
			PersonImageURL: "/images/p.webp",
			ProductID:      &productID,
		})
		require.NoError(t, err)

		waitForStatus(t, repo, job.ID, models.TryOnStatusDone)
		assert.Equal(t, "/images/garment.webp", gotGarment)
	})

	t.Run("Synthesis Failure Marks Job Failed", func(t *testing.T) {
		repo := newTryOnRepoStub()
		synth := &synthesizerStub{
			synthesizeFn: func(_ context.Context, _ tryon.SynthesisRequest) (*tryon.SynthesisResult, error) {
				return nil, models.NewStoreUnavailableError(assert.AnError)
			},
		}
		svc := NewTryOnService(repo, &productRepoStub{}, synth)

		job, err := svc.Submit(ctx, SubmitTryOnInput{
			UserID:          1,
			PersonImageURL:  "/images/p.webp",
			GarmentImageURL: "/images/g.webp",
		})
		require.NoError(t, err)

		failed := waitForStatus(t, repo, job.ID, models.TryOnStatusFailed)
		assert.NotEmpty(t, failed.Error)
	})

	t.Run("Advice Failure Still Completes", func(t *testing.T) {
		repo := newTryOnRepoStub()
		synth := &synthesizerStub{
			adviceFn: func(_ context.Context, _ string) (string, error) {
				return "", models.NewStoreUnavailableError(assert.AnError)
			},
		}
		svc := NewTryOnService(repo, &productRepoStub{}, synth)

		job, err := svc.Submit(ctx, SubmitTryOnInput{
			UserID:          1,
			PersonImageURL:  "/images/p.webp",
			GarmentImageURL: "/images/g.webp",
		})
		require.NoError(t, err)

		done := waitForStatus(t, repo, job.ID, models.TryOnStatusDone)
		assert.Empty(t, done.Advice)
	})
}

func TestTryOnService_GetJob(t *testing.T) {
	ctx := context.Background()
	repo := newTryOnRepoStub()
	svc := NewTryOnService(repo, &productRepoStub{}, &synthesizerStub{})

	job, err := svc.Submit(ctx, SubmitTryOnInput{
		UserID:          1,
		PersonImageURL:  "/images/p.webp",
		GarmentImageURL: "/images/g.webp",
	})
	require.NoError(t, err)

	t.Run("Owner Reads Job", func(t *testing.T) {
		got, err := svc.GetJob(ctx, 1, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, got.ID)
	})

	t.Run("Other Users See Not Found", func(t *testing.T) {
		_, err := svc.GetJob(ctx, 2, job.ID)
		assert.True(t, models.IsNotFound(err))
	})
}
