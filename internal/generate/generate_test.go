package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/stepshot/internal/document"
)

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func testOptions(provider, url string) Options {
	return Options{
		Provider:   provider,
		APIKey:     "test-key",
		BaseURL:    url,
		MaxRetries: 1,
		Timeout:    5 * time.Second,
	}
}

func anthropicTextResponse(text string) string {
	payload := map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	}
	out, _ := json.Marshal(payload)
	return string(out)
}

func TestAnthropicGenerate(t *testing.T) {
	guideJSON := `{"title":"Example","steps":[{"type":"text","content":"Step one"},{"type":"image","content":"1"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Errorf("missing request id header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 {
			t.Errorf("messages = %d, want 1", len(req.Messages))
		}
		imgs := 0
		for _, c := range req.Messages[0].Content {
			if c.Type == "image" {
				imgs++
				if c.Source == nil || c.Source.MediaType != "image/png" {
					t.Errorf("image block missing png source")
				}
			}
		}
		if imgs != 2 {
			t.Errorf("image blocks = %d, want 2", imgs)
		}
		fmt.Fprint(w, anthropicTextResponse(guideJSON))
	}))
	defer srv.Close()

	c, err := New(testOptions("anthropic", srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	guide, err := c.Generate(context.Background(), []image.Image{testImage(), testImage()}, "English")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if guide.Title != "Example" || len(guide.Steps) != 2 {
		t.Fatalf("guide = %+v", guide)
	}
	if guide.Steps[1].Type != document.StepImage || guide.Steps[1].Content != "1" {
		t.Fatalf("image step = %+v", guide.Steps[1])
	}
}

func TestAnthropicGenerateStripsCodeFence(t *testing.T) {
	guideJSON := "```json\n{\"title\":\"T\",\"steps\":[]}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, anthropicTextResponse(guideJSON))
	}))
	defer srv.Close()

	c, _ := New(testOptions("anthropic", srv.URL))
	guide, err := c.Generate(context.Background(), []image.Image{testImage()}, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if guide.Title != "T" {
		t.Fatalf("title = %q", guide.Title)
	}
}

func TestGenerateRejectsMissingTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, anthropicTextResponse(`{"steps":[]}`))
	}))
	defer srv.Close()

	c, _ := New(testOptions("anthropic", srv.URL))
	_, err := c.Generate(context.Background(), []image.Image{testImage()}, "")
	if err == nil {
		t.Fatal("missing title must be an error")
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Provider != "anthropic" {
		t.Fatalf("error should carry the provider identity, got %v", err)
	}
}

func TestGenerateRejectsMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, anthropicTextResponse("the screenshots show a login flow"))
	}))
	defer srv.Close()

	c, _ := New(testOptions("anthropic", srv.URL))
	_, err := c.Generate(context.Background(), []image.Image{testImage()}, "")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("malformed JSON should be a recoverable provider error, got %v", err)
	}
}

func TestGenerateRejectsUnknownStepType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, anthropicTextResponse(`{"title":"T","steps":[{"type":"video","content":"1"}]}`))
	}))
	defer srv.Close()

	c, _ := New(testOptions("anthropic", srv.URL))
	if _, err := c.Generate(context.Background(), []image.Image{testImage()}, ""); err == nil {
		t.Fatal("unknown step type must be rejected")
	}
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	c, _ := New(testOptions("anthropic", srv.URL))
	_, err := c.Generate(context.Background(), []image.Image{testImage()}, "")
	if err == nil || !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Fatalf("API error message should be surfaced, got %v", err)
	}
}

func TestGenerateIncrementalPlaceholder(t *testing.T) {
	stepsJSON := fmt.Sprintf(`{"steps":[{"type":"text","content":"Click save"},{"type":"image","content":%q}]}`, document.ImageIndexPlaceholder)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		json.NewDecoder(r.Body).Decode(&req)
		var prompt string
		for _, c := range req.Messages[0].Content {
			if c.Type == "text" {
				prompt = c.Text
			}
		}
		if !strings.Contains(prompt, "before it says") || !strings.Contains(prompt, "after it says") {
			t.Errorf("prompt should carry neighbor context, got %q", prompt)
		}
		fmt.Fprint(w, anthropicTextResponse(stepsJSON))
	}))
	defer srv.Close()

	c, _ := New(testOptions("anthropic", srv.URL))
	steps, err := c.GenerateIncremental(context.Background(), testImage(), "", "prev step", "next step")
	if err != nil {
		t.Fatalf("incremental: %v", err)
	}
	if len(steps) != 2 || steps[1].Content != document.ImageIndexPlaceholder {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestRegenerateReturnsPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, anthropicTextResponse("  Click the save button.\n"))
	}))
	defer srv.Close()

	c, _ := New(testOptions("anthropic", srv.URL))
	out, err := c.Regenerate(context.Background(), nil, "", "", "Click save", "", "make it friendlier")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if out != "Click the save button." {
		t.Fatalf("text = %q", out)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	guideJSON := `{"title":"T","steps":[{"type":"text","content":"s"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": guideJSON}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := New(testOptions("openai", srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	guide, err := c.Generate(context.Background(), []image.Image{testImage()}, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if guide.Title != "T" {
		t.Fatalf("guide = %+v", guide)
	}
}

func TestGeminiGenerate(t *testing.T) {
	guideJSON := `{"title":"T","steps":[]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing gemini api key header")
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": guideJSON}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := New(testOptions("gemini", srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	guide, err := c.Generate(context.Background(), []image.Image{testImage()}, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if guide.Title != "T" {
		t.Fatalf("guide = %+v", guide)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(Options{Provider: "perplexity", APIKey: "k"}); err == nil {
		t.Fatal("unknown provider must be rejected")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Options{Provider: "anthropic"}); err == nil {
		t.Fatal("missing api key must be rejected")
	}
}

func TestGenerateRequiresImages(t *testing.T) {
	c, _ := New(testOptions("anthropic", "http://unused"))
	if _, err := c.Generate(context.Background(), nil, ""); err == nil {
		t.Fatal("empty image list must be rejected before any request")
	}
}
