package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/stepshot/internal/document"
)

// exportedImage is an image in the interchange format: metadata plus the
// bytes as a data URL.
type exportedImage struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"`
	Data         string `json:"data"`
}

type exportedSession struct {
	Title  string          `json:"title"`
	Steps  []document.Step `json:"steps"`
	Images []exportedImage `json:"images"`
}

// Export encodes a session in the portable interchange format, without ids
// or timestamps.
func Export(s *Session) ([]byte, error) {
	imgs, err := encodeImages(s.Images)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(exportedSession{
		Title:  s.Title,
		Steps:  s.Steps,
		Images: imgs,
	}, "", "  ")
}

// Import parses an interchange file. Files missing a title, or whose steps
// or images are not arrays, are rejected with a recoverable error.
func Import(data []byte) (*Session, error) {
	var probe struct {
		Title  *string         `json:"title"`
		Steps  json.RawMessage `json:"steps"`
		Images json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	if probe.Title == nil {
		return nil, fmt.Errorf("import file missing title")
	}
	if !isJSONArray(probe.Steps) {
		return nil, fmt.Errorf("import file steps is not an array")
	}
	if !isJSONArray(probe.Images) {
		return nil, fmt.Errorf("import file images is not an array")
	}

	var raw exportedSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	imgs, err := decodeImages(raw.Images)
	if err != nil {
		return nil, err
	}
	return &Session{Title: raw.Title, Steps: raw.Steps, Images: imgs}, nil
}

func isJSONArray(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "[")
}

func encodeImages(images []Image) ([]exportedImage, error) {
	out := make([]exportedImage, len(images))
	for i, img := range images {
		mime := img.Type
		if mime == "" {
			mime = "image/png"
		}
		out[i] = exportedImage{
			Name:         img.Name,
			Type:         img.Type,
			LastModified: img.LastModified,
			Data:         "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
		}
	}
	return out, nil
}

func decodeImages(images []exportedImage) ([]Image, error) {
	out := make([]Image, len(images))
	for i, img := range images {
		data, err := decodeDataURL(img.Data)
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", img.Name, err)
		}
		out[i] = Image{
			Name:         img.Name,
			Type:         img.Type,
			LastModified: img.LastModified,
			Data:         data,
		}
	}
	return out, nil
}

// decodeDataURL parses "data:<mime>;base64,<payload>" and returns the raw
// bytes.
func decodeDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, "data:") {
		return nil, fmt.Errorf("not a data URL")
	}
	comma := strings.IndexByte(url, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta := url[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return data, nil
}
