package config

import (
	"image/color"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
provider = openai
model = gpt-4o-mini
api_key_env = MY_OPENAI_KEY
language = German
session_dir = /tmp/sessions
save_dir = /tmp/guides
theme = dark

[notify]
capture = true
generate = false
save = true
export = false

[palette]
colors = #FF0000, #00FF00, #0000FF

[theme.custom]
Background = #111111
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Provider != "openai" {
		t.Errorf("Expected provider 'openai', got %q", cfg.Provider)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Expected model 'gpt-4o-mini', got %q", cfg.Model)
	}
	if cfg.APIKeyEnv != "MY_OPENAI_KEY" {
		t.Errorf("Expected api_key_env 'MY_OPENAI_KEY', got %q", cfg.APIKeyEnv)
	}
	if cfg.Language != "German" {
		t.Errorf("Expected language 'German', got %q", cfg.Language)
	}
	if cfg.SessionDir != "/tmp/sessions" {
		t.Errorf("Expected session_dir '/tmp/sessions', got %q", cfg.SessionDir)
	}
	if cfg.SaveDir != "/tmp/guides" {
		t.Errorf("Expected save_dir '/tmp/guides', got %q", cfg.SaveDir)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Expected theme 'dark', got %q", cfg.Theme)
	}

	if !cfg.Notify.Capture || cfg.Notify.Generate || !cfg.Notify.Save || cfg.Notify.Export {
		t.Errorf("Unexpected notify flags: %+v", cfg.Notify)
	}

	want := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
	}
	if len(cfg.Palette) != len(want) {
		t.Fatalf("Palette length = %d, want %d", len(cfg.Palette), len(want))
	}
	for i, col := range want {
		if cfg.Palette[i] != col {
			t.Errorf("Palette[%d] = %v, want %v", i, cfg.Palette[i], col)
		}
	}

	custom, ok := cfg.Themes["custom"]
	if !ok {
		t.Fatal("Expected theme 'custom' to be loaded")
	}
	if custom.Background.R != 0x11 || custom.Background.G != 0x11 || custom.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", custom.Background)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Provider != "" {
		t.Errorf("Provider should default to empty, got %q", cfg.Provider)
	}
	if len(cfg.Palette) == 0 {
		t.Error("Palette should fall back to defaults")
	}
}

func TestParseBadNotifyValue(t *testing.T) {
	_, err := Parse(strings.NewReader("[notify]\ncapture = sometimes\n"))
	if err == nil {
		t.Fatal("expected error for non-boolean notify value")
	}
}

func TestCircular(t *testing.T) {
	input := `provider = anthropic
language = French
session_dir = /home/user/sessions
save_dir = /home/user/guides
theme = light

[notify]
capture = true
generate = true
save = false
export = true

[palette]
colors = #E22424,#1A73E8

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.Provider != cfg2.Provider {
		t.Errorf("Provider mismatch: %q vs %q", cfg.Provider, cfg2.Provider)
	}
	if cfg.Language != cfg2.Language {
		t.Errorf("Language mismatch: %q vs %q", cfg.Language, cfg2.Language)
	}
	if cfg.SessionDir != cfg2.SessionDir {
		t.Errorf("SessionDir mismatch: %q vs %q", cfg.SessionDir, cfg2.SessionDir)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if len(cfg.Palette) != len(cfg2.Palette) {
		t.Fatalf("Palette length mismatch: %d vs %d", len(cfg.Palette), len(cfg2.Palette))
	}
	for i := range cfg.Palette {
		if cfg.Palette[i] != cfg2.Palette[i] {
			t.Errorf("Palette[%d] mismatch: %v vs %v", i, cfg.Palette[i], cfg2.Palette[i])
		}
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatal("Custom theme missing in one config")
	}
	if t1.Background != t2.Background {
		t.Errorf("Theme background mismatch: %v vs %v", t1.Background, t2.Background)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STEPSHOT_PROVIDER", "gemini")
	t.Setenv("STEPSHOT_LANGUAGE", "Spanish")
	cfg := New()
	cfg.Provider = "anthropic"
	ApplyEnv(cfg)
	if cfg.Provider != "gemini" {
		t.Errorf("env should override file value, got %q", cfg.Provider)
	}
	if cfg.Language != "Spanish" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.Model != "" {
		t.Errorf("unset env must not touch Model, got %q", cfg.Model)
	}
}
