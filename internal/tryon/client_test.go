package tryon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vesti/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/synthesize", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req SynthesisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/images/person.webp", req.PersonImageURL)

		json.NewEncoder(w).Encode(SynthesisResult{ResultImageURL: "/images/render.webp"})
	}))
	defer srv.Close()

	client := NewClient(Config{SynthesisBaseURL: srv.URL, SynthesisAPIKey: "test-key"})
	result, err := client.Synthesize(context.Background(), SynthesisRequest{
		PersonImageURL:  "/images/person.webp",
		GarmentImageURL: "/images/garment.webp",
	})
	require.NoError(t, err)
	assert.Equal(t, "/images/render.webp", result.ResultImageURL)
}

func TestClient_SynthesizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gpu pool exhausted", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{SynthesisBaseURL: srv.URL})
	_, err := client.Synthesize(context.Background(), SynthesisRequest{})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "STORE_UNAVAILABLE", appErr.Code)
}

func TestClient_SynthesizeUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Synthesize(context.Background(), SynthesisRequest{})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestClient_AdviceOptional(t *testing.T) {
	t.Run("Unconfigured Returns Empty", func(t *testing.T) {
		client := NewClient(Config{})
		advice, err := client.Advice(context.Background(), "/images/render.webp")
		require.NoError(t, err)
		assert.Empty(t, advice)
	})

	t.Run("Configured Returns Text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/advice", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"advice": "roll the sleeves"})
		}))
		defer srv.Close()

		client := NewClient(Config{AdviceBaseURL: srv.URL})
		advice, err := client.Advice(context.Background(), "/images/render.webp")
		require.NoError(t, err)
		assert.Equal(t, "roll the sleeves", advice)
	})
}
