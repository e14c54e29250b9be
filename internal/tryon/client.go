// Package tryon wraps the external garment synthesis pipeline behind a small
// client: one call renders the composite image, a second asks for styling
// advice on the result.
package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vesti/internal/models"
)

// Client talks to the synthesis and advice services.
type Client struct {
	synthesisBaseURL string
	synthesisAPIKey  string
	adviceBaseURL    string
	adviceAPIKey     string
	httpClient       *http.Client
}

// Config carries the external service endpoints. The two services are
// typically separate vendors, hence separate keys.
type Config struct {
	SynthesisBaseURL string
	SynthesisAPIKey  string
	AdviceBaseURL    string
	AdviceAPIKey     string
	Timeout          time.Duration
}

// SynthesisRequest is the render request payload.
type SynthesisRequest struct {
	PersonImageURL  string `json:"person_image_url"`
	GarmentImageURL string `json:"garment_image_url"`
}

// SynthesisResult is the completed render.
type SynthesisResult struct {
	ResultImageURL string `json:"result_image_url"`
}

type adviceRequest struct {
	ImageURL string `json:"image_url"`
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		synthesisBaseURL: cfg.SynthesisBaseURL,
		synthesisAPIKey:  cfg.SynthesisAPIKey,
		adviceBaseURL:    cfg.AdviceBaseURL,
		adviceAPIKey:     cfg.AdviceAPIKey,
		httpClient:       &http.Client{Timeout: timeout},
	}
}

// Synthesize renders the person wearing the garment. A non-2xx answer from
// the pipeline surfaces as a transient failure; the job stays retryable.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if c.synthesisBaseURL == "" {
		return nil, models.NewValidationError("synthesis service is not configured")
	}

	var result SynthesisResult
	if err := c.postJSON(ctx, c.synthesisBaseURL+"/v1/synthesize", c.synthesisAPIKey, req, &result); err != nil {
		return nil, err
	}
	if result.ResultImageURL == "" {
		return nil, models.NewStoreUnavailableError(fmt.Errorf("synthesis returned empty result"))
	}
	return &result, nil
}

// Advice asks the styling service to comment on a finished render. Advice is
// optional garnish: callers treat an error as a missing field, not a failed
// job.
func (c *Client) Advice(ctx context.Context, imageURL string) (string, error) {
	if c.adviceBaseURL == "" {
		return "", nil
	}

	var resp adviceResponse
	if err := c.postJSON(ctx, c.adviceBaseURL+"/v1/advice", c.adviceAPIKey, adviceRequest{ImageURL: imageURL}, &resp); err != nil {
		return "", err
	}
	return resp.Advice, nil
}

func (c *Client) postJSON(ctx context.Context, url, apiKey string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.NewStoreUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.NewStoreUnavailableError(fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return models.NewStoreUnavailableError(fmt.Errorf("decoding response from %s: %w", url, err))
	}
	return nil
}
