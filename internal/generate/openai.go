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
	openaiAPIURL       = "https://api.openai.com/v1/chat/completions"
	openaiDefaultModel = "gpt-4o"
)

type openaiClient struct {
	baseClient
	httpClient *http.Client
}

func newOpenAIClient(opts Options) *openaiClient {
	if opts.Model == "" {
		opts.Model = openaiDefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = openaiAPIURL
	}
	return &openaiClient{
		baseClient: baseClient{opts: opts},
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *openaiClient) name() string { return "openai" }

type openaiRequest struct {
	Model    string      `json:"model"`
	Messages []openaiMsg `json:"messages"`
}

type openaiMsg struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type openaiPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openaiClient) complete(ctx context.Context, system, prompt string, images [][]byte) (string, error) {
	parts := make([]openaiPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, openaiPart{
			Type: "image_url",
			ImageURL: &openaiImageURL{
				URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
			},
		})
	}
	parts = append(parts, openaiPart{Type: "text", Text: prompt})
	userContent, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("marshal content: %w", err)
	}
	systemContent, err := json.Marshal(system)
	if err != nil {
		return "", fmt.Errorf("marshal system: %w", err)
	}

	reqBody := openaiRequest{
		Model: c.opts.Model,
		Messages: []openaiMsg{
			{Role: "system", Content: systemContent},
			{Role: "user", Content: userContent},
		},
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
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
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
		var apiErr openaiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s - %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return apiResp.Choices[0].Message.Content, nil
}

func (c *openaiClient) Generate(ctx context.Context, images []image.Image, language string) (Guide, error) {
	return c.generate(ctx, c, images, language)
}

func (c *openaiClient) GenerateIncremental(ctx context.Context, img image.Image, language, prevText, nextText string) ([]document.Step, error) {
	return c.generateIncremental(ctx, c, img, language, prevText, nextText)
}

func (c *openaiClient) Regenerate(ctx context.Context, img image.Image, language, prevText, currentText, nextText, mode string) (string, error) {
	return c.regenerate(ctx, c, img, language, prevText, currentText, nextText, mode)
}
