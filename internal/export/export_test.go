package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/stepshot/internal/document"
	"github.com/example/stepshot/internal/session"
)

func TestSafeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"How To Log In", "how_to_log_in"},
		{"Déjà vu 2.0", "d_j__vu_2_0"},
		{"already_fine123", "already_fine123"},
		{"", DefaultBaseName},
	}
	for _, c := range cases {
		if got := SafeName(c.in); got != c.want {
			t.Errorf("SafeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestWritePDF(t *testing.T) {
	s := &session.Session{
		Title: "Example guide",
		Steps: []document.Step{
			{Type: document.StepText, Content: "Open the settings page"},
			{Type: document.StepImage, Content: "1"},
			{Type: document.StepText, Content: "Click save"},
		},
		Images: []session.Image{{
			Name: "shot.png",
			Type: "image/png",
			Data: pngBytes(t, 640, 480),
		}},
	}
	path := filepath.Join(t.TempDir(), "guide.pdf")
	if err := WritePDF(path, s); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF file")
	}
}

func TestWritePDFRejectsDanglingImageRef(t *testing.T) {
	s := &session.Session{
		Title: "Broken",
		Steps: []document.Step{{Type: document.StepImage, Content: "7"}},
	}
	if err := WritePDF(filepath.Join(t.TempDir(), "x.pdf"), s); err == nil {
		t.Fatal("dangling image reference must be an error")
	}
}

func TestWritePDFRejectsUnknownImageType(t *testing.T) {
	s := &session.Session{
		Title:  "Broken",
		Steps:  []document.Step{{Type: document.StepImage, Content: "1"}},
		Images: []session.Image{{Name: "x.webp", Type: "image/webp", Data: []byte{1, 2, 3}}},
	}
	if err := WritePDF(filepath.Join(t.TempDir(), "x.pdf"), s); err == nil {
		t.Fatal("unsupported image type must be an error")
	}
}
