package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vesti/internal/models"
	"vesti/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetFeedHandler(t *testing.T) {
	mockPosts := new(MockPostRepository)
	mockUsers := new(MockUserRepository)
	s := &Server{
		feedService: service.NewFeedService(mockPosts, mockUsers),
	}
	app := fiber.New()
	app.Get("/feed", s.GetFeed)

	now := time.Now()
	mockPosts.On("ListAll", mock.Anything, uint(0)).Return([]*models.Post{
		{ID: 1, UserID: 10, Score: 30, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, UserID: 10, Score: 45, CreatedAt: now.Add(-1 * time.Hour)},
	}, nil).Once()
	mockUsers.On("GetByIDs", mock.Anything, []uint{10}).Return([]*models.User{
		{ID: 10, Visibility: models.VisibilityPublic},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.Post `json:"posts"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 2, body.Count)
	// Higher score first
	assert.Equal(t, uint(2), body.Posts[0].ID)
	assert.Equal(t, uint(1), body.Posts[1].ID)

	mockPosts.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}
