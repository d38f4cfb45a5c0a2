package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prompt-whispers/internal/config"
)

// imageGenerator turns prompt text into an image URL. The engine treats
// it as an opaque synchronous dependency; retries and degradation are
// the caller's business.
type imageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type dalleClient struct {
	cfg    config.Config
	client *http.Client
}

func newDalleClient(cfg config.Config) *dalleClient {
	return &dalleClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type dalleRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type dalleResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *dalleClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.cfg.OpenAIActive {
		return c.cfg.PlaceholderImageURL, nil
	}
	if strings.TrimSpace(c.cfg.OpenAIAPIKey) == "" {
		return "", errors.New("OpenAI API key is not configured")
	}

	payload, err := json.Marshal(dalleRequest{
		Model:  "dall-e-3",
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	})
	if err != nil {
		return "", fmt.Errorf("failed to build image request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	url := strings.TrimSuffix(c.cfg.DalleAPIURL, "/") + "/generations"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build image request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.cfg.OpenAIAPIKey))
	if c.cfg.OpenAIOrg != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.OpenAIOrg)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach image API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image API response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image API request failed (%d)", resp.StatusCode)
	}

	var parsed dalleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse image API response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("image API error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", errors.New("image API returned no image")
	}
	return parsed.Data[0].URL, nil
}
