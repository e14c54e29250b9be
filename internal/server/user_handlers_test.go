package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vesti/internal/models"
	"vesti/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserTestServer(userRepo *MockUserRepository, userID uint) (*Server, *fiber.App) {
	s := &Server{
		userService: service.NewUserService(userRepo),
	}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	return s, app
}

func TestUpdateMyVisibility(t *testing.T) {
	t.Run("Valid Level", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		s, app := newUserTestServer(mockUsers, 4)
		app.Put("/users/me/visibility", s.UpdateMyVisibility)

		mockUsers.On("UpdateVisibility", mock.Anything, uint(4), models.VisibilityRestricted).
			Return(nil).Once()
		mockUsers.On("GetByID", mock.Anything, uint(4)).
			Return(&models.User{ID: 4, Visibility: models.VisibilityRestricted}, nil).Once()

		body, _ := json.Marshal(map[string]string{"visibility": "restricted"})
		req := httptest.NewRequest(http.MethodPut, "/users/me/visibility", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var user models.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
		assert.Equal(t, models.VisibilityRestricted, user.Visibility)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Unknown Level", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		s, app := newUserTestServer(mockUsers, 4)
		app.Put("/users/me/visibility", s.UpdateMyVisibility)

		body, _ := json.Marshal(map[string]string{"visibility": "friends-only"})
		req := httptest.NewRequest(http.MethodPut, "/users/me/visibility", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockUsers.AssertNotCalled(t, "UpdateVisibility", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetMyProfile(t *testing.T) {
	mockUsers := new(MockUserRepository)
	s, app := newUserTestServer(mockUsers, 9)
	app.Get("/users/me", s.GetMyProfile)

	mockUsers.On("GetByID", mock.Anything, uint(9)).
		Return(&models.User{ID: 9, Username: "styler"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "styler", user.Username)
	mockUsers.AssertExpectations(t)
}
