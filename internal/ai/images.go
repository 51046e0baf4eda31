package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	imageSize  = "1792x1024"
	imageCount = 1
)

// ImageClient calls the OpenAI-compatible images endpoint.
type ImageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewImageClient(s Settings) *ImageClient {
	return &ImageClient{
		httpClient: s.httpClient(),
		baseURL:    strings.TrimRight(s.BaseURL, "/"),
		apiKey:     s.APIKey,
		model:      s.ImageModel,
	}
}

// GenerateImage returns the URL of the first generated image.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"n":      imageCount,
		"size":   imageSize,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal image request failed: %w", err)
	}

	url := c.baseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build image request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("image response status %d: %s", resp.StatusCode, providerMessage(raw))
	}

	var parsed struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse image json failed: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", fmt.Errorf("empty image data in response")
	}
	return parsed.Data[0].URL, nil
}

// providerMessage pulls error.message out of an OpenAI error body, or returns the raw body.
func providerMessage(raw []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
