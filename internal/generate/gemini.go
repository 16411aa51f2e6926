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
	geminiAPIURL       = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiDefaultModel = "gemini-2.0-flash"
)

type geminiClient struct {
	baseClient
	httpClient *http.Client
}

func newGeminiClient(opts Options) *geminiClient {
	if opts.Model == "" {
		opts.Model = geminiDefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = geminiAPIURL
	}
	return &geminiClient{
		baseClient: baseClient{opts: opts},
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *geminiClient) name() string { return "gemini" }

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *geminiInline `json:"inline_data,omitempty"`
}

type geminiInline struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *geminiClient) complete(ctx context.Context, system, prompt string, images [][]byte) (string, error) {
	parts := make([]geminiPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInline{
				MimeType: "image/png",
				Data:     base64.StdEncoding.EncodeToString(img),
			},
		})
	}
	parts = append(parts, geminiPart{Text: prompt})

	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents:          []geminiContent{{Role: "user", Parts: parts}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.opts.BaseURL, c.opts.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.opts.APIKey)
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
		var apiErr geminiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s - %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("response has no candidates")
	}
	var out string
	for _, p := range apiResp.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out, nil
}

func (c *geminiClient) Generate(ctx context.Context, images []image.Image, language string) (Guide, error) {
	return c.generate(ctx, c, images, language)
}

func (c *geminiClient) GenerateIncremental(ctx context.Context, img image.Image, language, prevText, nextText string) ([]document.Step, error) {
	return c.generateIncremental(ctx, c, img, language, prevText, nextText)
}

func (c *geminiClient) Regenerate(ctx context.Context, img image.Image, language, prevText, currentText, nextText, mode string) (string, error) {
	return c.regenerate(ctx, c, img, language, prevText, currentText, nextText, mode)
}
