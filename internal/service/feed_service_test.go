package service

import (
	"context"
	"testing"
	"time"

	"vesti/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedFixture() (*postRepoStub, *userRepoStub) {
	posts := noopPostRepo()
	posts.listAllFn = func(_ context.Context, _ uint) ([]*models.Post, error) {
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		return []*models.Post{
			{ID: 1, UserID: 10, Score: 30, CreatedAt: base},
			{ID: 2, UserID: 11, Score: 45, CreatedAt: base.Add(time.Minute)},
			{ID: 3, UserID: 12, Score: 45, CreatedAt: base.Add(2 * time.Minute)},
			{ID: 4, UserID: 13, Score: 5, CreatedAt: base.Add(3 * time.Minute)},
		}, nil
	}

	users := noopUserRepo()
	users.getByIDsFn = func(_ context.Context, ids []uint) ([]*models.User, error) {
		return []*models.User{
			{ID: 10, Visibility: models.VisibilityPublic},
			{ID: 11, Visibility: models.VisibilityPublic},
			{ID: 12, Visibility: models.VisibilityPrivate},
			// author 13 missing entirely
		}, nil
	}
	return posts, users
}

func TestFeedService_GetFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("Orders By Score Then Recency And Hides Invisible", func(t *testing.T) {
		posts, users := feedFixture()
		svc := NewFeedService(posts, users)

		feed, err := svc.GetFeed(ctx, 99, 50)
		require.NoError(t, err)

		// post 3 is private, post 4's author is gone; 2 and 1 remain
		require.Len(t, feed, 2)
		assert.Equal(t, uint(2), feed[0].ID)
		assert.Equal(t, uint(1), feed[1].ID)
	})

	t.Run("Viewer Sees Own Invisible Post", func(t *testing.T) {
		posts, users := feedFixture()
		svc := NewFeedService(posts, users)

		feed, err := svc.GetFeed(ctx, 12, 50)
		require.NoError(t, err)

		require.Len(t, feed, 3)
		// 2 and 3 tie on score; 3 is newer and wins
		assert.Equal(t, uint(3), feed[0].ID)
		assert.Equal(t, uint(2), feed[1].ID)
		assert.Equal(t, uint(1), feed[2].ID)
	})

	t.Run("Limit Trims The Tail", func(t *testing.T) {
		posts, users := feedFixture()
		svc := NewFeedService(posts, users)

		feed, err := svc.GetFeed(ctx, 12, 2)
		require.NoError(t, err)
		require.Len(t, feed, 2)
	})

	t.Run("Store Error Propagates", func(t *testing.T) {
		posts, users := feedFixture()
		posts.listAllFn = func(_ context.Context, _ uint) ([]*models.Post, error) {
			return nil, models.NewStoreUnavailableError(assert.AnError)
		}
		svc := NewFeedService(posts, users)

		_, err := svc.GetFeed(ctx, 12, 50)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "STORE_UNAVAILABLE", appErr.Code)
	})
}
