package editor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/stepshot/internal/annotation"
	"github.com/example/stepshot/internal/geom"
	"github.com/example/stepshot/internal/raster"
)

const (
	buttonH         = 24
	swatchSize      = 18
	widthRowH       = 16
	sectionGap      = 4
	bannerH         = 24
	panStep         = 20
	minWindowHeight = 320
	checkerCell     = 12
)

// toolbarWidth returns a width wide enough for the title and every tool
// label.
func toolbarWidth(title string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	max := d.MeasureString(title).Ceil() + 8
	for _, tb := range toolButtons {
		if w := d.MeasureString(tb.label).Ceil() + 8; w > max {
			max = w
		}
	}
	if max < 96 {
		max = 96
	}
	return max
}

func fitZoom(img *image.RGBA, availW, availH int) float64 {
	if availW <= 0 || availH <= 0 {
		return 1
	}
	zw := float64(availW) / float64(img.Bounds().Dx())
	zh := float64(availH) / float64(img.Bounds().Dy())
	z := zw
	if zh < z {
		z = zh
	}
	if z > 1 {
		z = 1
	}
	return clampZoom(z)
}

func clampZoom(z float64) float64 {
	if z < 0.1 {
		return 0.1
	}
	if z > 8 {
		return 8
	}
	return z
}

// toolbarHitResult reports which toolbar element is under the pointer.
// Fields are -1 when the pointer is over none of that kind.
type toolbarHitResult struct {
	tool   int
	swatch int
	width  int
}

// toolbarHit maps a toolbar-local y coordinate to the element it lands on.
// The layout is tool buttons, palette swatches, then stroke widths.
func toolbarHit(y, paletteLen int) toolbarHitResult {
	hit := toolbarHitResult{tool: -1, swatch: -1, width: -1}
	if y < 0 {
		return hit
	}
	if y < len(toolButtons)*buttonH {
		hit.tool = y / buttonH
		return hit
	}
	y -= len(toolButtons)*buttonH + sectionGap
	if y >= 0 && y < paletteLen*swatchSize {
		hit.swatch = y / swatchSize
		return hit
	}
	y -= paletteLen*swatchSize + sectionGap
	if y >= 0 && y < len(strokeWidths)*widthRowH {
		hit.width = y / widthRowH
	}
	return hit
}

func fill(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(dst, r, &image.Uniform{col}, image.Point{}, draw.Src)
}

func label(dst *image.RGBA, x, y int, text string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{col},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func drawChecker(dst *image.RGBA, area image.Rectangle, light, dark color.RGBA) {
	for y := area.Min.Y; y < area.Max.Y; y += checkerCell {
		for x := area.Min.X; x < area.Max.X; x += checkerCell {
			col := light
			if ((x-area.Min.X)/checkerCell+(y-area.Min.Y)/checkerCell)%2 == 1 {
				col = dark
			}
			cell := image.Rect(x, y, x+checkerCell, y+checkerCell).Intersect(area)
			fill(dst, cell, col)
		}
	}
}

// frame gathers everything one repaint needs.
type frame struct {
	editor   *Editor
	dst      *image.RGBA
	toolbarW int
	width    int
	height   int

	store   *annotation.Store
	machine *annotation.Machine
	zoom    float64
	offset  image.Point

	colorIdx    int
	widthIdx    int
	hoverTool   int
	hoverSwatch int
	hoverWidth  int

	textActive bool
	textID     int64
	textInput  string

	message string
}

func (f *frame) draw() {
	th := f.editor.th
	fill(f.dst, f.dst.Bounds(), th.Background)

	canvasArea := image.Rect(f.toolbarW, 0, f.width, f.height)
	drawChecker(f.dst, canvasArea, th.CheckerLight, th.CheckerDark)
	f.drawCanvas(canvasArea)
	f.drawCropOverlay(canvasArea)
	f.drawTextOverlay()
	f.drawToolbar()
	f.drawBanner(canvasArea)
}

func (f *frame) drawCanvas(area image.Rectangle) {
	canvas := raster.Compose(f.editor.base, f.store.Committed(), f.store.Draft(), f.store.Selected())
	sw := int(float64(canvas.Bounds().Dx()) * f.zoom)
	sh := int(float64(canvas.Bounds().Dy()) * f.zoom)
	dstRect := image.Rect(
		area.Min.X+f.offset.X,
		area.Min.Y+f.offset.Y,
		area.Min.X+f.offset.X+sw,
		area.Min.Y+f.offset.Y+sh,
	)
	clipped := f.dst.SubImage(area).(*image.RGBA)
	xdraw.ApproxBiLinear.Scale(clipped, dstRect, canvas, canvas.Bounds(), xdraw.Over, nil)
}

// toDevice maps a canvas-space point to buffer coordinates.
func (f *frame) toDevice(p geom.Point) image.Point {
	return image.Point{
		X: f.toolbarW + f.offset.X + int(p.X*f.zoom),
		Y: f.offset.Y + int(p.Y*f.zoom),
	}
}

func (f *frame) drawCropOverlay(area image.Rectangle) {
	rect, pending := f.machine.CropRect()
	if !pending && f.machine.State() != annotation.StateCropping {
		return
	}
	r := geom.RectFromPoints(
		geom.Point{X: rect.MinX, Y: rect.MinY},
		geom.Point{X: rect.MaxX, Y: rect.MaxY},
	)
	if r.Empty() {
		return
	}
	min := f.toDevice(geom.Point{X: r.MinX, Y: r.MinY})
	max := f.toDevice(geom.Point{X: r.MaxX, Y: r.MaxY})
	pts := []image.Point{
		{min.X, min.Y}, {max.X, min.Y}, {max.X, max.Y}, {min.X, max.Y},
	}
	clipped := f.dst.SubImage(area).(*image.RGBA)
	raster.DrawDashedPolygon(clipped, pts, 6, 1, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255})
	if pending {
		label(f.dst, min.X, min.Y-6, "Enter: crop  Esc: cancel", f.editor.th.BannerText)
	}
}

func (f *frame) drawTextOverlay() {
	if !f.textActive {
		return
	}
	a := f.store.ByID(f.textID)
	if a == nil {
		return
	}
	t, ok := a.(*annotation.Text)
	if !ok {
		return
	}
	pos := f.toDevice(t.Start)
	raster.DrawText(f.dst, pos.X, pos.Y, f.textInput+"_", t.FontSize*f.zoom, t.Color)
}

func (f *frame) drawToolbar() {
	th := f.editor.th
	fill(f.dst, image.Rect(0, 0, f.toolbarW, f.height), th.ToolbarBackground)

	y := 0
	for i, tb := range toolButtons {
		bg := th.ButtonBackground
		if f.machine.Tool == tb.tool {
			bg = th.ButtonBackgroundPress
		} else if i == f.hoverTool {
			bg = th.ButtonBackgroundHover
		}
		r := image.Rect(0, y, f.toolbarW, y+buttonH)
		fill(f.dst, r, bg)
		raster.DrawRect(f.dst, r, th.ButtonBorder, 1)
		label(f.dst, 4, y+16, tb.label, th.ButtonText)
		y += buttonH
	}

	y += sectionGap
	for i, col := range f.editor.palette {
		r := image.Rect(4, y, 4+swatchSize-2, y+swatchSize-2)
		fill(f.dst, r, col)
		border := th.ButtonBorder
		if i == f.colorIdx {
			border = th.SelectionAccent
		} else if i == f.hoverSwatch {
			border = th.ButtonBackgroundHover
		}
		raster.DrawRect(f.dst, r, border, 1)
		y += swatchSize
	}

	y += sectionGap
	for i, wd := range strokeWidths {
		mid := y + widthRowH/2
		col := th.ButtonText
		if i == f.widthIdx {
			col = th.SelectionAccent
		} else if i == f.hoverWidth {
			col = th.ButtonBackgroundHover
		}
		raster.DrawLine(f.dst, 6, mid, f.toolbarW-6, mid, col, wd)
		y += widthRowH
	}

	label(f.dst, 4, f.height-8, fmt.Sprintf("%d%%", int(f.zoom*100)), th.Foreground)
}

func (f *frame) drawBanner(area image.Rectangle) {
	if f.message == "" {
		return
	}
	bar := image.Rect(area.Min.X, area.Max.Y-bannerH, area.Max.X, area.Max.Y)
	fill(f.dst, bar, f.editor.th.BannerBackground)
	label(f.dst, bar.Min.X+8, bar.Max.Y-8, f.message, f.editor.th.BannerText)
}
