// Package generate turns ordered screenshots into guide text by calling a
// multimodal language-model provider. Providers share the prompt and
// payload-validation logic; each one only implements its wire format.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/example/stepshot/internal/document"
)

// Guide is a full generation result.
type Guide struct {
	Title string          `json:"title"`
	Steps []document.Step `json:"steps"`
}

// Client is the generation collaborator. All methods honor ctx and surface
// provider failures as *ProviderError values; no partial results are
// returned on failure.
type Client interface {
	// Generate produces a titled guide from the full ordered image list.
	Generate(ctx context.Context, images []image.Image, language string) (Guide, error)
	// GenerateIncremental produces the steps for one image given the text
	// of its nearest already-described neighbors. Image steps in the result
	// carry document.ImageIndexPlaceholder.
	GenerateIncremental(ctx context.Context, img image.Image, language, prevText, nextText string) ([]document.Step, error)
	// Regenerate rewrites one step's text. img may be nil when the step has
	// no image.
	Regenerate(ctx context.Context, img image.Image, language, prevText, currentText, nextText, mode string) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider   string // anthropic, openai or gemini
	Model      string
	APIKey     string
	BaseURL    string // overrides the provider endpoint, used in tests
	MaxRetries int
	Timeout    time.Duration
}

const defaultMaxRetries = 3

// New returns a Client for the named provider.
func New(opts Options) (Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("generate: missing API key for provider %q", opts.Provider)
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	switch strings.ToLower(opts.Provider) {
	case "anthropic", "":
		return newAnthropicClient(opts), nil
	case "openai":
		return newOpenAIClient(opts), nil
	case "gemini":
		return newGeminiClient(opts), nil
	}
	return nil, fmt.Errorf("generate: unknown provider %q", opts.Provider)
}

// ProviderError wraps a failure with the originating provider's identity so
// the user sees which backend misbehaved.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("%s: %v", e.Provider, e.Err) }
func (e *ProviderError) Unwrap() error { return e.Err }

// completer is the single primitive each provider implements: send one
// prompt plus PNG images, return raw model text.
type completer interface {
	name() string
	complete(ctx context.Context, system, prompt string, images [][]byte) (string, error)
}

// completeWithRetry retries transient failures with exponential backoff.
// Context cancellation is never retried.
func completeWithRetry(ctx context.Context, c completer, system, prompt string, images [][]byte, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		out, err := c.complete(ctx, system, prompt, images)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", &ProviderError{Provider: c.name(), Err: ctx.Err()}
		}
		backoff := time.Duration(1<<uint(i)) * time.Second
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", &ProviderError{Provider: c.name(), Err: ctx.Err()}
		}
	}
	return "", &ProviderError{Provider: c.name(), Err: fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeAll(images []image.Image) ([][]byte, error) {
	out := make([][]byte, len(images))
	for i, img := range images {
		data, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

const guideSystemPrompt = "You write concise step-by-step software guides from ordered screenshots. " +
	"Respond with a single JSON object and nothing else."

func guidePrompt(language string, imageCount int) string {
	return fmt.Sprintf(
		"Here are %d screenshots of a procedure in order. Write a guide in %s. "+
			"Respond with JSON: {\"title\": string, \"steps\": [{\"type\": \"text\"|\"image\", \"content\": string}]}. "+
			"Image steps reference screenshots by 1-based index in content. "+
			"Every screenshot must be referenced exactly once, each preceded by one text step describing it.",
		imageCount, languageOrDefault(language))
}

func incrementalPrompt(language, prevText, nextText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This screenshot was inserted into an existing guide written in %s.\n", languageOrDefault(language))
	if prevText != "" {
		fmt.Fprintf(&b, "The step before it says: %q\n", prevText)
	}
	if nextText != "" {
		fmt.Fprintf(&b, "The step after it says: %q\n", nextText)
	}
	fmt.Fprintf(&b, "Write the step(s) for this screenshot only. Respond with JSON: "+
		"{\"steps\": [{\"type\": \"text\"|\"image\", \"content\": string}]} "+
		"using %q as the content of the image step.", document.ImageIndexPlaceholder)
	return b.String()
}

func regeneratePrompt(language, prevText, currentText, nextText, mode string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite one step of a guide written in %s.\n", languageOrDefault(language))
	if prevText != "" {
		fmt.Fprintf(&b, "Previous step: %q\n", prevText)
	}
	fmt.Fprintf(&b, "Current step: %q\n", currentText)
	if nextText != "" {
		fmt.Fprintf(&b, "Next step: %q\n", nextText)
	}
	if mode != "" {
		fmt.Fprintf(&b, "Rewrite instruction: %s\n", mode)
	}
	b.WriteString("Respond with the rewritten step text only, no JSON, no quotes.")
	return b.String()
}

func languageOrDefault(language string) string {
	if language == "" {
		return "English"
	}
	return language
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// parseGuide validates a full-generation payload: title must be a string
// and steps an array. Anything else is a recoverable provider error.
func parseGuide(provider, raw string) (Guide, error) {
	var payload struct {
		Title *string           `json:"title"`
		Steps []json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return Guide{}, &ProviderError{Provider: provider, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if payload.Title == nil {
		return Guide{}, &ProviderError{Provider: provider, Err: fmt.Errorf("response missing title")}
	}
	if payload.Steps == nil {
		return Guide{}, &ProviderError{Provider: provider, Err: fmt.Errorf("response missing steps array")}
	}
	steps, err := parseSteps(payload.Steps)
	if err != nil {
		return Guide{}, &ProviderError{Provider: provider, Err: err}
	}
	return Guide{Title: *payload.Title, Steps: steps}, nil
}

// parseStepList validates an incremental payload: steps must be an array.
func parseStepList(provider, raw string) ([]document.Step, error) {
	var payload struct {
		Steps []json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, &ProviderError{Provider: provider, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if payload.Steps == nil {
		return nil, &ProviderError{Provider: provider, Err: fmt.Errorf("response missing steps array")}
	}
	steps, err := parseSteps(payload.Steps)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Err: err}
	}
	return steps, nil
}

func parseSteps(raw []json.RawMessage) ([]document.Step, error) {
	out := make([]document.Step, 0, len(raw))
	for i, r := range raw {
		var s document.Step
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, fmt.Errorf("step %d malformed: %w", i, err)
		}
		if s.Type != document.StepText && s.Type != document.StepImage {
			return nil, fmt.Errorf("step %d has unknown type %q", i, s.Type)
		}
		out = append(out, s)
	}
	return out, nil
}

// base methods shared by all providers through embedding.
type baseClient struct {
	opts Options
}

func (b *baseClient) generate(ctx context.Context, c completer, images []image.Image, language string) (Guide, error) {
	if len(images) == 0 {
		return Guide{}, fmt.Errorf("generate: no images")
	}
	encoded, err := encodeAll(images)
	if err != nil {
		return Guide{}, err
	}
	raw, err := completeWithRetry(ctx, c, guideSystemPrompt, guidePrompt(language, len(images)), encoded, b.opts.MaxRetries)
	if err != nil {
		return Guide{}, err
	}
	return parseGuide(c.name(), raw)
}

func (b *baseClient) generateIncremental(ctx context.Context, c completer, img image.Image, language, prevText, nextText string) ([]document.Step, error) {
	if img == nil {
		return nil, fmt.Errorf("generate: no image")
	}
	encoded, err := encodePNG(img)
	if err != nil {
		return nil, err
	}
	raw, err := completeWithRetry(ctx, c, guideSystemPrompt, incrementalPrompt(language, prevText, nextText), [][]byte{encoded}, b.opts.MaxRetries)
	if err != nil {
		return nil, err
	}
	return parseStepList(c.name(), raw)
}

func (b *baseClient) regenerate(ctx context.Context, c completer, img image.Image, language, prevText, currentText, nextText, mode string) (string, error) {
	var images [][]byte
	if img != nil {
		encoded, err := encodePNG(img)
		if err != nil {
			return "", err
		}
		images = [][]byte{encoded}
	}
	raw, err := completeWithRetry(ctx, c, guideSystemPrompt, regeneratePrompt(language, prevText, currentText, nextText, mode), images, b.opts.MaxRetries)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
