package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vesti/internal/config"
	"vesti/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthTestServer(userRepo *MockUserRepository) (*Server, *fiber.App) {
	s := &Server{
		config:   &config.Config{JWTSecret: "test-secret-for-auth-handlers"},
		userRepo: userRepo,
	}
	app := fiber.New()
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/login", s.Login)
	return s, app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		_, app := newAuthTestServer(mockUsers)

		mockUsers.On("GetByEmail", mock.Anything, "new@example.com").
			Return(nil, models.NewNotFoundError("User", "new@example.com")).Once()
		mockUsers.On("GetByUsername", mock.Anything, "newcomer").
			Return(nil, models.NewNotFoundError("User", "newcomer")).Once()
		mockUsers.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "new@example.com" && u.Visibility == models.VisibilityPublic
		})).Return(nil).Once()

		resp := postJSON(t, app, "/auth/signup", map[string]string{
			"username": "newcomer",
			"email":    "new@example.com",
			"password": "Sup3rSecret!pass",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body authResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Token)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		_, app := newAuthTestServer(mockUsers)

		mockUsers.On("GetByEmail", mock.Anything, "taken@example.com").
			Return(&models.User{ID: 3, Email: "taken@example.com"}, nil).Once()

		resp := postJSON(t, app, "/auth/signup", map[string]string{
			"username": "someone",
			"email":    "taken@example.com",
			"password": "Sup3rSecret!pass",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Weak Password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		_, app := newAuthTestServer(mockUsers)

		resp := postJSON(t, app, "/auth/signup", map[string]string{
			"username": "someone",
			"email":    "ok@example.com",
			"password": "short",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockUsers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Username", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		_, app := newAuthTestServer(mockUsers)

		resp := postJSON(t, app, "/auth/signup", map[string]string{
			"username": "bad name!",
			"email":    "ok@example.com",
			"password": "Sup3rSecret!pass",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 5, Email: "user@example.com", Username: "user", Password: string(hash)}

	t.Run("Success", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		_, app := newAuthTestServer(mockUsers)
		mockUsers.On("GetByEmail", mock.Anything, "user@example.com").Return(stored, nil).Once()

		resp := postJSON(t, app, "/auth/login", map[string]string{
			"email":    "user@example.com",
			"password": "Sup3rSecret!pass",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body authResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Token)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		_, app := newAuthTestServer(mockUsers)
		mockUsers.On("GetByEmail", mock.Anything, "user@example.com").Return(stored, nil).Once()

		resp := postJSON(t, app, "/auth/login", map[string]string{
			"email":    "user@example.com",
			"password": "WrongPassword1!",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Unknown Email Matches Wrong Password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		_, app := newAuthTestServer(mockUsers)
		mockUsers.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, models.NewNotFoundError("User", "ghost@example.com")).Once()

		resp := postJSON(t, app, "/auth/login", map[string]string{
			"email":    "ghost@example.com",
			"password": "Sup3rSecret!pass",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Invalid email or password", body.Error)
	})
}
