package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

// DrawLine draws a line between the two points with the given thickness
// and color using Bresenham stepping.
func DrawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolyline connects consecutive points. Single points degrade to a dot.
func DrawPolyline(img *image.RGBA, pts []image.Point, col color.Color, thick int) {
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		setThickPixel(img, pts[0].X, pts[0].Y, thick, col)
		return
	}
	for i := 1; i < len(pts); i++ {
		DrawLine(img, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, col, thick)
	}
}

// DrawEllipse strokes an axis-aligned ellipse centred at (cx, cy). rotation
// tilts the ellipse about its centre.
func DrawEllipse(img *image.RGBA, cx, cy, rx, ry int, rotation float64, col color.Color, thick int) {
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(float64(rx*rx+ry*ry))))
	if steps < 8 {
		steps = 8
	}
	sin, cos := math.Sincos(rotation)
	var prevX, prevY int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		ex := math.Cos(angle) * float64(rx)
		ey := math.Sin(angle) * float64(ry)
		x := cx + int(ex*cos-ey*sin)
		y := cy + int(ex*sin+ey*cos)
		if i > 0 {
			DrawLine(img, prevX, prevY, x, y, col, thick)
		} else {
			setThickPixel(img, x, y, thick, col)
		}
		prevX, prevY = x, y
	}
}

// DrawArrow draws a line from (x0, y0) to (x1, y1) with a two-stroke head
// at the destination end.
func DrawArrow(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	DrawLine(img, x0, y0, x1, y1, col, thick)
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	size := float64(6 + thick*2)
	a1 := angle + math.Pi/6
	a2 := angle - math.Pi/6
	x2 := x1 - int(math.Cos(a1)*size)
	y2 := y1 - int(math.Sin(a1)*size)
	x3 := x1 - int(math.Cos(a2)*size)
	y3 := y1 - int(math.Sin(a2)*size)
	DrawLine(img, x1, y1, x2, y2, col, thick)
	DrawLine(img, x1, y1, x3, y3, col, thick)
}

// DrawFilledCircle fills a disc centred at (cx, cy) with radius r.
func DrawFilledCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px := cx + dx
				py := cy + dy
				if image.Pt(px, py).In(img.Bounds()) {
					img.Set(px, py, col)
				}
			}
		}
	}
}

// DrawRect strokes an axis-aligned rectangle outline.
func DrawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	DrawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	DrawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	DrawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	DrawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

// DrawDashedLine draws a dashed line at any angle, alternating c1 and c2 in
// runs of dash pixels. The two-color pattern stays visible on both light and
// dark content.
func DrawDashedLine(img *image.RGBA, x0, y0, x1, y1 int, dash, thick int, c1, c2 color.Color) {
	if dash < 1 {
		dash = 1
	}
	length := math.Hypot(float64(x1-x0), float64(y1-y0))
	steps := int(length)
	if steps == 0 {
		setThickPixel(img, x0, y0, thick, c1)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		setThickPixel(img, x, y, thick, col)
	}
}

// DrawDashedPolygon connects the points in order and closes the shape.
func DrawDashedPolygon(img *image.RGBA, pts []image.Point, dash, thick int, c1, c2 color.Color) {
	for i := range pts {
		j := (i + 1) % len(pts)
		DrawDashedLine(img, pts[i].X, pts[i].Y, pts[j].X, pts[j].Y, dash, thick, c1, c2)
	}
}

// FillRect fills rect with col using Src semantics.
func FillRect(img *image.RGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(img, rect, &image.Uniform{col}, image.Point{}, draw.Src)
}

// CropImage returns a copy of rect from img. Areas of rect outside img are
// left transparent so the canvas can grow beyond the original capture.
func CropImage(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	if rect.Empty() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	src := rect.Intersect(img.Bounds())
	if !src.Empty() {
		draw.Draw(out, src.Sub(rect.Min), img, src.Min, draw.Src)
	}
	return out
}

// CloneRGBA returns a deep copy of img.
func CloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}
