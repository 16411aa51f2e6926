package raster

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultTextSize is the font size used when an annotation does not carry one.
const DefaultTextSize = 16

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font

	faceMu    sync.Mutex
	faceCache = map[int]font.Face{}
)

func regularFont() *opentype.Font {
	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Fatalf("parse font: %v", err)
		}
		parsedFont = f
	})
	return parsedFont
}

// Face returns a cached font face for the given size. Sizes are rounded to
// whole points so gestures that nudge the size do not churn the cache.
func Face(size float64) font.Face {
	pt := int(size + 0.5)
	if pt < 6 {
		pt = 6
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faceCache[pt]; ok {
		return f
	}
	f, err := opentype.NewFace(regularFont(), &opentype.FaceOptions{Size: float64(pt), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("font face %dpt: %v", pt, err)
		return basicfont.Face7x13
	}
	faceCache[pt] = f
	return f
}

// MeasureText returns the pixel width and height of text rendered at size.
// Lines are split on \n; the width is the widest line.
func MeasureText(text string, size float64) (float64, float64) {
	if size <= 0 {
		size = DefaultTextSize
	}
	face := Face(size)
	metrics := face.Metrics()
	lineH := (metrics.Ascent + metrics.Descent).Ceil()
	d := &font.Drawer{Face: face}
	var w int
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if lw := d.MeasureString(line).Ceil(); lw > w {
			w = lw
		}
	}
	return float64(w), float64(lineH * len(lines))
}

// DrawText renders multi-line text with its top-left corner at (x, y).
func DrawText(img *image.RGBA, x, y int, text string, size float64, col color.Color) {
	if size <= 0 {
		size = DefaultTextSize
	}
	face := Face(size)
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineH := (metrics.Ascent + metrics.Descent).Ceil()
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	for i, line := range strings.Split(text, "\n") {
		d.Dot = fixed.P(x, y+ascent+i*lineH)
		d.DrawString(line)
	}
}

// DrawNumberBadge draws a filled disc centred at (cx, cy) with the label
// rendered over it. The label color flips between black and white based on
// the perceived brightness of the badge color so it stays legible.
func DrawNumberBadge(img *image.RGBA, cx, cy, label int, col color.Color, radius int) {
	if radius < 1 {
		radius = 1
	}
	DrawFilledCircle(img, cx, cy, radius, col)

	cr, cg, cb, _ := col.RGBA()
	brightness := 0.299*float64(cr>>8) + 0.587*float64(cg>>8) + 0.114*float64(cb>>8)
	textCol := color.Color(color.Black)
	if brightness < 128 {
		textCol = color.White
	}

	text := fmt.Sprintf("%d", label)
	size := float64(radius)
	if size < 8 {
		size = 8
	}
	face := Face(size)
	d := &font.Drawer{Dst: img, Src: image.NewUniform(textCol), Face: face}
	w := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	d.Dot = fixed.P(cx-w/2, cy+(ascent-descent)/2)
	d.DrawString(text)
}
