package raster

import "image"

// BlurRegion box-blurs rect of img in place using per-channel prefix sums,
// one horizontal pass then one vertical pass. Pixels outside rect are never
// read or written, so blurred regions do not bleed across their border.
func BlurRegion(img *image.RGBA, rect image.Rectangle, radius int) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() || radius <= 0 {
		return
	}
	w := rect.Dx()
	h := rect.Dy()

	tmp := make([]uint8, w*h*4)

	// Horizontal pass into tmp.
	prefix := make([][4]int, w+1)
	for y := 0; y < h; y++ {
		row := (rect.Min.Y+y-img.Rect.Min.Y)*img.Stride + (rect.Min.X-img.Rect.Min.X)*4
		for x := 0; x < w; x++ {
			o := row + x*4
			for c := 0; c < 4; c++ {
				prefix[x+1][c] = prefix[x][c] + int(img.Pix[o+c])
			}
		}
		for x := 0; x < w; x++ {
			x0 := x - radius
			if x0 < 0 {
				x0 = 0
			}
			x1 := x + radius
			if x1 >= w {
				x1 = w - 1
			}
			count := x1 - x0 + 1
			o := (y*w + x) * 4
			for c := 0; c < 4; c++ {
				tmp[o+c] = uint8((prefix[x1+1][c] - prefix[x0][c]) / count)
			}
		}
	}

	// Vertical pass from tmp back into img.
	colPrefix := make([][4]int, h+1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			o := (y*w + x) * 4
			for c := 0; c < 4; c++ {
				colPrefix[y+1][c] = colPrefix[y][c] + int(tmp[o+c])
			}
		}
		for y := 0; y < h; y++ {
			y0 := y - radius
			if y0 < 0 {
				y0 = 0
			}
			y1 := y + radius
			if y1 >= h {
				y1 = h - 1
			}
			count := y1 - y0 + 1
			o := (rect.Min.Y+y-img.Rect.Min.Y)*img.Stride + (rect.Min.X+x-img.Rect.Min.X)*4
			for c := 0; c < 4; c++ {
				img.Pix[o+c] = uint8((colPrefix[y1+1][c] - colPrefix[y0][c]) / count)
			}
		}
	}
}
