package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/example/stepshot/internal/document"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-sonnet-4-5"
)

type anthropicClient struct {
	baseClient
	httpClient *http.Client
}

func newAnthropicClient(opts Options) *anthropicClient {
	if opts.Model == "" {
		opts.Model = anthropicDefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = anthropicAPIURL
	}
	return &anthropicClient{
		baseClient: baseClient{opts: opts},
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *anthropicClient) name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []anthropicMsg `json:"messages"`
}

type anthropicMsg struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *anthropicClient) complete(ctx context.Context, system, prompt string, images [][]byte) (string, error) {
	content := make([]anthropicContent, 0, len(images)+1)
	for _, img := range images {
		content = append(content, anthropicContent{
			Type: "image",
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: "image/png",
				Data:      base64.StdEncoding.EncodeToString(img),
			},
		})
	}
	content = append(content, anthropicContent{Type: "text", Text: prompt})

	reqBody := anthropicRequest{
		Model:     c.opts.Model,
		MaxTokens: 8192,
		System:    system,
		Messages:  []anthropicMsg{{Role: "user", Content: content}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.opts.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s - %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	var out string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}

func (c *anthropicClient) Generate(ctx context.Context, images []image.Image, language string) (Guide, error) {
	return c.generate(ctx, c, images, language)
}

func (c *anthropicClient) GenerateIncremental(ctx context.Context, img image.Image, language, prevText, nextText string) ([]document.Step, error) {
	return c.generateIncremental(ctx, c, img, language, prevText, nextText)
}

func (c *anthropicClient) Regenerate(ctx context.Context, img image.Image, language, prevText, currentText, nextText, mode string) (string, error) {
	return c.regenerate(ctx, c, img, language, prevText, currentText, nextText, mode)
}
