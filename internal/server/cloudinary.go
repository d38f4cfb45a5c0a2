package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prompt-whispers/internal/config"

	"github.com/google/uuid"
)

// imageHost re-uploads a generated image to stable storage. Publishing
// is best effort: on any failure the raw generator URL is used instead,
// so a hosting outage never blocks a turn.
type imageHost interface {
	Publish(ctx context.Context, rawURL string) string
}

type cloudinaryClient struct {
	cfg    config.Config
	client *http.Client
}

func newCloudinaryClient(cfg config.Config) *cloudinaryClient {
	return &cloudinaryClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
}

func (c *cloudinaryClient) Publish(ctx context.Context, rawURL string) string {
	if c.cfg.CloudinaryCloudName == "" || c.cfg.CloudinaryUploadPreset == "" {
		return rawURL
	}

	form := url.Values{}
	form.Set("file", rawURL)
	form.Set("upload_preset", c.cfg.CloudinaryUploadPreset)
	form.Set("public_id", uuid.NewString())

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.cfg.CloudinaryCloudName)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return rawURL
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("image upload failed: %v", err)
		return rawURL
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("image upload failed status=%d", resp.StatusCode)
		return rawURL
	}

	var parsed cloudinaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.SecureURL == "" {
		return rawURL
	}
	return parsed.SecureURL
}
