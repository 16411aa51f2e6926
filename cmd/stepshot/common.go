package main

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/stepshot/internal/generate"
	"github.com/example/stepshot/internal/session"
)

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stepshot-sessions"
	}
	return filepath.Join(home, ".local", "share", "stepshot", "sessions")
}

func openStore(r *root) (*session.Store, error) {
	dir := r.sessionDir
	if dir == "" {
		dir = r.config.SessionDir
	}
	if dir == "" {
		dir = defaultSessionDir()
	}
	return session.NewStore(dir)
}

func parseSessionID(val string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", val)
	}
	return id, nil
}

// apiKeyEnvFor maps a provider to its conventional key variable when the
// config does not name one.
func apiKeyEnvFor(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

func newGenerator(r *root) (generate.Client, error) {
	provider := r.provider()
	keyEnv := r.config.APIKeyEnv
	if keyEnv == "" {
		keyEnv = apiKeyEnvFor(provider)
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("no API key: set %s or api_key_env in the config", keyEnv)
	}
	return generate.New(generate.Options{
		Provider: provider,
		Model:    r.model(),
		APIKey:   key,
	})
}

func decodeSessionImage(img session.Image) (image.Image, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", img.Name, err)
	}
	return decoded, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

func encodePNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// loadImageFile reads an image file into a session image, keeping the
// original bytes.
func loadImageFile(path string) (session.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Image{}, err
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return session.Image{}, fmt.Errorf("decode %s: %w", path, err)
	}
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	}
	info, err := os.Stat(path)
	var modified int64
	if err == nil {
		modified = info.ModTime().UnixMilli()
	}
	return session.Image{
		Name:         filepath.Base(path),
		Type:         mime,
		LastModified: modified,
		Data:         data,
	}, nil
}
