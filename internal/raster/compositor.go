package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/example/stepshot/internal/annotation"
	"github.com/example/stepshot/internal/geom"
)

const handleSize = 8

func pt(p geom.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

func rectToImage(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.MinX)), int(math.Floor(r.MinY)),
		int(math.Ceil(r.MaxX)), int(math.Ceil(r.MaxY)),
	)
}

// rotatedCorners returns the four corners of a's bounding box rotated about
// its centre, in drawing order.
func rotatedCorners(a annotation.Annotation) []geom.Point {
	b := annotation.Bounds(a)
	c := annotation.Center(a)
	rot := a.Base().Rotation
	corners := []geom.Point{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
	out := make([]geom.Point, len(corners))
	for i, p := range corners {
		out[i] = geom.Rotate(p, c, rot)
	}
	return out
}

// footprint returns the axis-aligned pixel rect covered by a after rotation.
func footprint(a annotation.Annotation) image.Rectangle {
	return rectToImage(geom.PolyBounds(rotatedCorners(a)))
}

// Render draws a single annotation onto dst in canvas coordinates.
func Render(dst *image.RGBA, a annotation.Annotation) {
	b := a.Base()
	switch v := a.(type) {
	case *annotation.Rect:
		corners := rotatedCorners(a)
		pts := make([]image.Point, 0, 5)
		for _, p := range corners {
			pts = append(pts, pt(p))
		}
		pts = append(pts, pts[0])
		DrawPolyline(dst, pts, b.Color, v.LineWidth)
	case *annotation.Circle:
		bounds := annotation.Bounds(a)
		c := pt(bounds.Center())
		DrawEllipse(dst, c.X, c.Y, int(bounds.Width()/2), int(bounds.Height()/2), b.Rotation, b.Color, v.LineWidth)
	case *annotation.Arrow:
		c := annotation.Center(a)
		p0 := pt(geom.Rotate(b.Start, c, b.Rotation))
		p1 := pt(geom.Rotate(b.End, c, b.Rotation))
		DrawArrow(dst, p0.X, p0.Y, p1.X, p1.Y, b.Color, v.LineWidth)
	case *annotation.Pencil:
		c := annotation.Center(a)
		pts := make([]image.Point, len(b.Points))
		for i, p := range b.Points {
			pts[i] = pt(geom.Rotate(p, c, b.Rotation))
		}
		DrawPolyline(dst, pts, b.Color, v.LineWidth)
	case *annotation.Text:
		renderText(dst, v)
	case *annotation.Number:
		p := pt(b.Start)
		DrawNumberBadge(dst, p.X, p.Y, v.Label, b.Color, v.Size)
	case *annotation.Blur:
		renderBlur(dst, v)
	}
}

// renderBlur redacts the annotation's rectangle. An unrotated blur maps
// straight onto BlurRegion; a rotated one is blurred on a scratch copy over
// its axis-aligned footprint, and only pixels inside the rotated rectangle
// are copied back so the corners of the footprint stay sharp.
func renderBlur(dst *image.RGBA, bl *annotation.Blur) {
	area := footprint(bl).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	b := bl.Base()
	if b.Rotation == 0 {
		BlurRegion(dst, area, bl.Strength)
		return
	}
	scratch := CloneRGBA(dst)
	BlurRegion(scratch, area, bl.Strength)
	bounds := annotation.Bounds(bl)
	c := annotation.Center(bl)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			local := geom.Rotate(geom.Point{X: float64(x), Y: float64(y)}, c, -b.Rotation)
			if bounds.Contains(local) {
				dst.SetRGBA(x, y, scratch.RGBAAt(x, y))
			}
		}
	}
}

func renderText(dst *image.RGBA, t *annotation.Text) {
	if t.Text == "" {
		return
	}
	b := t.Base()
	anchor := pt(b.Start)
	if b.Rotation == 0 {
		DrawText(dst, anchor.X, anchor.Y, t.Text, t.FontSize, b.Color)
		return
	}
	// Render into an offscreen block, then map it through the rotation.
	w, h := MeasureText(t.Text, t.FontSize)
	if w < 1 || h < 1 {
		return
	}
	block := image.NewRGBA(image.Rect(0, 0, int(w)+2, int(h)+2))
	DrawText(block, 0, 0, t.Text, t.FontSize, b.Color)
	c := annotation.Center(t)
	rotateBlit(dst, block, geom.Point{X: float64(anchor.X), Y: float64(anchor.Y)}, c, b.Rotation)
}

// rotateBlit draws src onto dst with src's origin placed at topLeft and the
// whole block rotated by angle about center. Each destination pixel in the
// rotated footprint is inverse-mapped and nearest-sampled.
func rotateBlit(dst *image.RGBA, src *image.RGBA, topLeft, center geom.Point, angle float64) {
	sb := src.Bounds()
	corners := []geom.Point{
		topLeft,
		{X: topLeft.X + float64(sb.Dx()), Y: topLeft.Y},
		{X: topLeft.X + float64(sb.Dx()), Y: topLeft.Y + float64(sb.Dy())},
		{X: topLeft.X, Y: topLeft.Y + float64(sb.Dy())},
	}
	for i, p := range corners {
		corners[i] = geom.Rotate(p, center, angle)
	}
	area := rectToImage(geom.PolyBounds(corners)).Intersect(dst.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			local := geom.Rotate(geom.Point{X: float64(x), Y: float64(y)}, center, -angle)
			sx := int(math.Round(local.X - topLeft.X))
			sy := int(math.Round(local.Y - topLeft.Y))
			if sx < 0 || sy < 0 || sx >= sb.Dx() || sy >= sb.Dy() {
				continue
			}
			c := src.RGBAAt(sb.Min.X+sx, sb.Min.Y+sy)
			if c.A == 0 {
				continue
			}
			dst.Set(x, y, c)
		}
	}
}

// Compose flattens base plus annotations into a fresh image for on-screen
// display. Blur regions are applied first so strokes drawn over them stay
// sharp, then shapes in z-order, then the in-progress draft, then the
// selection outline and handles.
func Compose(base *image.RGBA, list []annotation.Annotation, draft annotation.Annotation, selectedID int64) *image.RGBA {
	out := CloneRGBA(base)
	for _, a := range list {
		if a.Kind() == annotation.KindBlur {
			Render(out, a)
		}
	}
	for _, a := range list {
		if a.Kind() != annotation.KindBlur {
			Render(out, a)
		}
	}
	if draft != nil {
		if draft.Kind() == annotation.KindBlur {
			// A full prefix-sum blur on every pointer frame is too slow;
			// a coarse mosaic previews the effect until the gesture commits.
			if r := footprint(draft).Intersect(out.Bounds()); !r.Empty() {
				previewBlur(out, r)
			}
		} else {
			Render(out, draft)
		}
	}
	if selectedID != 0 {
		for _, a := range list {
			if a.Base().ID == selectedID {
				drawSelection(out, a)
				break
			}
		}
	}
	return out
}

// previewBlur pixelates rect in place by scaling it down and back up. It
// stands in for the committed blur while a drag is live.
func previewBlur(img *image.RGBA, rect image.Rectangle) {
	const cell = 8
	w := rect.Dx() / cell
	h := rect.Dy() / cell
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, rect, draw.Src, nil)
	xdraw.ApproxBiLinear.Scale(img, rect, small, small.Bounds(), draw.Src, nil)
}

// Flatten composites base plus annotations without any editing chrome. This
// is the export path.
func Flatten(base *image.RGBA, list []annotation.Annotation) *image.RGBA {
	return Compose(base, list, nil, 0)
}

func drawSelection(dst *image.RGBA, a annotation.Annotation) {
	corners := rotatedCorners(a)
	pts := make([]image.Point, len(corners))
	for i, p := range corners {
		pts[i] = pt(p)
	}
	DrawDashedPolygon(dst, pts, 4, 1, color.White, color.Black)

	for _, h := range annotation.Handles(a) {
		hp := pt(h.Pos)
		if h.Kind == geom.HandleRotate {
			// Stalk from the top edge to the rotate handle.
			top := pt(geom.Point{X: (corners[0].X + corners[1].X) / 2, Y: (corners[0].Y + corners[1].Y) / 2})
			DrawLine(dst, top.X, top.Y, hp.X, hp.Y, color.Black, 1)
			DrawFilledCircle(dst, hp.X, hp.Y, handleSize/2, color.White)
			DrawEllipse(dst, hp.X, hp.Y, handleSize/2, handleSize/2, 0, color.Black, 1)
			continue
		}
		hr := image.Rect(hp.X-handleSize/2, hp.Y-handleSize/2, hp.X+handleSize/2, hp.Y+handleSize/2)
		FillRect(dst, hr, color.White)
		DrawRect(dst, hr, color.Black, 1)
	}
}

// ApplyCrop flattens nothing and cuts rect out of img. The result is
// rebased to a zero origin.
func ApplyCrop(img *image.RGBA, r geom.Rect) *image.RGBA {
	return CropImage(img, rectToImage(r))
}

// ScaleToWidth returns img scaled down so its width is at most maxWidth,
// preserving aspect ratio. Images already narrow enough are returned as is.
func ScaleToWidth(img *image.RGBA, maxWidth int) *image.RGBA {
	w := img.Bounds().Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	h := img.Bounds().Dy() * maxWidth / w
	if h < 1 {
		h = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}
