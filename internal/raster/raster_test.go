package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/example/stepshot/internal/annotation"
	"github.com/example/stepshot/internal/geom"
)

func solid(w, h int, col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, col)
		}
	}
	return img
}

func TestBlurRegionStaysInsideRect(t *testing.T) {
	img := solid(40, 40, color.RGBA{255, 255, 255, 255})
	// A black square that straddles the blur region border.
	FillRect(img, image.Rect(18, 18, 22, 22), color.RGBA{0, 0, 0, 255})

	BlurRegion(img, image.Rect(0, 0, 20, 40), 4)

	// Inside the region, next to the square: smeared gray.
	if c := img.RGBAAt(16, 20); c.R == 255 || c.R == 0 {
		t.Fatalf("pixel inside region should be blurred, got %v", c)
	}
	// Outside the region, next to the square: untouched white.
	if c := img.RGBAAt(24, 20); c.R != 255 {
		t.Fatalf("pixel outside region should be untouched, got %v", c)
	}
	// The black square half outside the region keeps its hard edge.
	if c := img.RGBAAt(21, 20); c.R != 0 {
		t.Fatalf("square outside region should stay black, got %v", c)
	}
}

func TestBlurRegionZeroRadiusNoop(t *testing.T) {
	img := solid(10, 10, color.RGBA{10, 20, 30, 255})
	before := CloneRGBA(img)
	BlurRegion(img, img.Bounds(), 0)
	for i := range img.Pix {
		if img.Pix[i] != before.Pix[i] {
			t.Fatal("radius 0 must not modify the image")
		}
	}
}

func TestCropImage(t *testing.T) {
	img := solid(30, 20, color.RGBA{255, 0, 0, 255})
	out := CropImage(img, image.Rect(5, 5, 25, 15))
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 10 {
		t.Fatalf("crop size = %v", out.Bounds())
	}
	if out.RGBAAt(0, 0) != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("crop content = %v", out.RGBAAt(0, 0))
	}
}

func TestCropBeyondBoundsLeavesTransparent(t *testing.T) {
	img := solid(10, 10, color.RGBA{255, 0, 0, 255})
	out := CropImage(img, image.Rect(5, 5, 25, 15))
	if out.RGBAAt(0, 0) != (color.RGBA{255, 0, 0, 255}) {
		t.Fatal("overlap area should copy source pixels")
	}
	if out.RGBAAt(15, 5).A != 0 {
		t.Fatal("area past the source should be transparent")
	}
}

func TestNumberBadgeContrast(t *testing.T) {
	dark := solid(60, 60, color.RGBA{255, 255, 255, 255})
	DrawNumberBadge(dark, 30, 30, 1, color.RGBA{0, 0, 128, 255}, 14)
	foundWhite := false
	for y := 20; y < 40 && !foundWhite; y++ {
		for x := 20; x < 40; x++ {
			if c := dark.RGBAAt(x, y); c.R > 200 && c.G > 200 && c.B > 200 {
				foundWhite = true
				break
			}
		}
	}
	if !foundWhite {
		t.Fatal("dark badge should use a light label")
	}

	light := solid(60, 60, color.RGBA{128, 128, 128, 255})
	DrawNumberBadge(light, 30, 30, 1, color.RGBA{255, 255, 0, 255}, 14)
	foundDark := false
	for y := 20; y < 40 && !foundDark; y++ {
		for x := 20; x < 40; x++ {
			if c := light.RGBAAt(x, y); c.R < 50 && c.G < 50 && c.B < 50 {
				foundDark = true
				break
			}
		}
	}
	if !foundDark {
		t.Fatal("light badge should use a dark label")
	}
}

func TestMeasureTextGrowsWithContent(t *testing.T) {
	w1, h1 := MeasureText("hi", 16)
	w2, _ := MeasureText("hello there", 16)
	if w2 <= w1 {
		t.Fatalf("longer text should measure wider: %v vs %v", w1, w2)
	}
	_, h2 := MeasureText("one\ntwo", 16)
	if h2 <= h1 {
		t.Fatalf("two lines should measure taller: %v vs %v", h1, h2)
	}
}

func TestComposeDrawsAnnotations(t *testing.T) {
	base := solid(100, 100, color.RGBA{255, 255, 255, 255})
	red := color.RGBA{255, 0, 0, 255}
	r := &annotation.Rect{
		Shape:     annotation.Shape{ID: annotation.NewID(), Color: red, Start: geom.Point{X: 10, Y: 10}, End: geom.Point{X: 50, Y: 50}},
		LineWidth: 2,
	}
	out := Compose(base, []annotation.Annotation{r}, nil, 0)
	if out.RGBAAt(30, 10) != red {
		t.Fatalf("top edge pixel = %v, want stroke", out.RGBAAt(30, 10))
	}
	if out.RGBAAt(30, 30) != (color.RGBA{255, 255, 255, 255}) {
		t.Fatal("rect interior should not be filled")
	}
	// The base image is not mutated by compositing.
	if base.RGBAAt(30, 10) != (color.RGBA{255, 255, 255, 255}) {
		t.Fatal("Compose must not mutate the base image")
	}
}

func TestComposeBlursBeforeStrokes(t *testing.T) {
	base := solid(60, 60, color.RGBA{255, 255, 255, 255})
	FillRect(base, image.Rect(28, 28, 32, 32), color.RGBA{0, 0, 0, 255})
	red := color.RGBA{255, 0, 0, 255}
	blur := &annotation.Blur{
		Shape:    annotation.Shape{ID: annotation.NewID(), Start: geom.Point{X: 20, Y: 20}, End: geom.Point{X: 40, Y: 40}},
		Strength: 4,
	}
	line := &annotation.Arrow{
		Shape:     annotation.Shape{ID: annotation.NewID(), Color: red, Start: geom.Point{X: 20, Y: 30}, End: geom.Point{X: 40, Y: 30}},
		LineWidth: 2,
	}
	// Stroke listed before the blur in z-order; it must still end up sharp.
	out := Compose(base, []annotation.Annotation{line, blur}, nil, 0)
	if out.RGBAAt(30, 30) != red {
		t.Fatalf("stroke over blur region should stay sharp, got %v", out.RGBAAt(30, 30))
	}
}

func TestSelectionOverlayDrawsHandles(t *testing.T) {
	base := solid(120, 120, color.RGBA{40, 40, 40, 255})
	r := &annotation.Rect{
		Shape:     annotation.Shape{ID: annotation.NewID(), Color: color.RGBA{255, 0, 0, 255}, Start: geom.Point{X: 30, Y: 40}, End: geom.Point{X: 90, Y: 80}},
		LineWidth: 2,
	}
	out := Compose(base, []annotation.Annotation{r}, nil, r.ID)
	// The SE handle square is filled white.
	if c := out.RGBAAt(90, 80); c.R < 200 {
		t.Fatalf("handle at SE corner should be white, got %v", c)
	}
}

func TestApplyCropRoundsOutward(t *testing.T) {
	img := solid(50, 50, color.RGBA{1, 2, 3, 255})
	out := ApplyCrop(img, geom.Rect{MinX: 10.4, MinY: 10.6, MaxX: 40.2, MaxY: 40.9})
	if out.Bounds().Dx() != 31 || out.Bounds().Dy() != 31 {
		t.Fatalf("crop size = %v, want 31x31", out.Bounds())
	}
}

func TestScaleToWidth(t *testing.T) {
	img := solid(200, 100, color.RGBA{9, 9, 9, 255})
	out := ScaleToWidth(img, 100)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Fatalf("scaled size = %v, want 100x50", out.Bounds())
	}
	if same := ScaleToWidth(img, 400); same != img {
		t.Fatal("images already narrow enough are returned unchanged")
	}
}

func TestRenderRotatedTextLandsInFootprint(t *testing.T) {
	base := solid(200, 200, color.RGBA{255, 255, 255, 255})
	txt := &annotation.Text{
		Shape:    annotation.Shape{ID: annotation.NewID(), Color: color.RGBA{0, 0, 0, 255}, Start: geom.Point{X: 80, Y: 90}, Rotation: 0.8},
		FontSize: 20,
		Text:     "hello",
	}
	Render(base, txt)
	found := false
	for y := 0; y < 200 && !found; y++ {
		for x := 0; x < 200; x++ {
			if c := base.RGBAAt(x, y); c.R < 100 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("rotated text should paint some dark pixels")
	}
}

func checker(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestRotatedBlurClipsToShape(t *testing.T) {
	base := checker(200, 200, 8)
	blur := &annotation.Blur{
		Shape:    annotation.Shape{ID: annotation.NewID(), Start: geom.Point{X: 60, Y: 60}, End: geom.Point{X: 140, Y: 140}, Rotation: math.Pi / 4},
		Strength: 6,
	}
	out := Flatten(base, []annotation.Annotation{blur})

	// (62,62) sits inside the rotated footprint's bounding box but outside
	// the rotated rectangle itself; it must keep its original value.
	if got, want := out.RGBAAt(62, 62), base.RGBAAt(62, 62); got != want {
		t.Fatalf("pixel outside the rotated shape changed: %v -> %v", want, got)
	}
	if got, want := out.RGBAAt(138, 62), base.RGBAAt(138, 62); got != want {
		t.Fatalf("pixel outside the rotated shape changed: %v -> %v", want, got)
	}
	// The center is inside the shape; on a checkerboard a box blur lands
	// strictly between the two cell colors.
	if c := out.RGBAAt(100, 100); c.R == 0 || c.R == 255 {
		t.Fatalf("pixel inside the rotated shape should be blurred, got %v", c)
	}
}

func TestUnrotatedBlurStillCoversBounds(t *testing.T) {
	base := checker(100, 100, 8)
	blur := &annotation.Blur{
		Shape:    annotation.Shape{ID: annotation.NewID(), Start: geom.Point{X: 20, Y: 20}, End: geom.Point{X: 80, Y: 80}},
		Strength: 6,
	}
	out := Flatten(base, []annotation.Annotation{blur})
	if c := out.RGBAAt(50, 50); c.R == 0 || c.R == 255 {
		t.Fatalf("pixel inside the blur should be blurred, got %v", c)
	}
	if got, want := out.RGBAAt(10, 10), base.RGBAAt(10, 10); got != want {
		t.Fatalf("pixel outside the blur changed: %v -> %v", want, got)
	}
}

func TestComposeBlurDraftPreviewsEffect(t *testing.T) {
	base := checker(100, 100, 4)
	draft := &annotation.Blur{
		Shape:    annotation.Shape{ID: annotation.NewID(), Start: geom.Point{X: 20, Y: 20}, End: geom.Point{X: 60, Y: 60}},
		Strength: 6,
	}
	out := Compose(base, nil, draft, 0)

	changed := false
	for y := 20; y < 60 && !changed; y++ {
		for x := 20; x < 60; x++ {
			if out.RGBAAt(x, y) != base.RGBAAt(x, y) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Fatal("blur draft should visibly preview inside its region")
	}
	if got, want := out.RGBAAt(70, 70), base.RGBAAt(70, 70); got != want {
		t.Fatalf("preview leaked outside the draft region: %v -> %v", want, got)
	}
}
