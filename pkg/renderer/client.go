// Package renderer is the HTTP client for the manim rendering service.
package renderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultSceneName is the Scene subclass the system prompt asks the model to define.
const DefaultSceneName = "MathScene"

type GenerateRequest struct {
	Code      string `json:"code"`
	SceneName string `json:"scene_name"`
}

type GenerateResponse struct {
	Success     bool   `json:"success"`
	VideoBase64 string `json:"video_base64"`
	Filename    string `json:"filename"`
	Detail      string `json:"detail,omitempty"`
	Log         string `json:"log,omitempty"`
}

// Video is a rendered animation.
type Video struct {
	Data     []byte
	Filename string
}

// Client calls POST {baseURL}/generate. Requests rely on the transport
// default timeout; callers bound them with ctx when needed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Generate renders code and returns the decoded video. Non-2xx responses and
// success=false replies are errors.
func (c *Client) Generate(ctx context.Context, code, sceneName string) (*Video, error) {
	body, err := json.Marshal(GenerateRequest{Code: code, SceneName: sceneName})
	if err != nil {
		return nil, fmt.Errorf("encode render request: %w", err)
	}

	url := c.baseURL + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debugf("Calling Manim service at %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call Manim service %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp GenerateResponse
		raw, _ := io.ReadAll(resp.Body)
		detail := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &errorResp) == nil && errorResp.Detail != "" {
			detail = errorResp.Detail
		}
		if detail == "" {
			detail = resp.Status
		}
		return nil, fmt.Errorf("Manim service error (%d): %s", resp.StatusCode, detail)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}
	if !result.Success {
		reason := result.Log
		if reason == "" {
			reason = "Unknown error"
		}
		return nil, fmt.Errorf("animation generation failed: %s", reason)
	}
	if result.Filename == "" {
		return nil, errors.New("render response has no filename")
	}

	data, err := base64.StdEncoding.DecodeString(result.VideoBase64)
	if err != nil {
		return nil, fmt.Errorf("decode video payload: %w", err)
	}
	return &Video{Data: data, Filename: result.Filename}, nil
}

// Health probes GET {baseURL}/health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Manim service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Manim service health returned %d", resp.StatusCode)
	}
	return nil
}
