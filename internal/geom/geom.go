// Package geom provides the pure 2D math used by the annotation editor:
// point rotation, bounding boxes, handle layout and containment tests.
// All coordinates are canvas-space pixels in the image's native resolution.
package geom

import "math"

// Point is a position in canvas space.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{p.X + d.X, p.Y + d.Y} }

// Sub returns the vector from d to p.
func (p Point) Sub(d Point) Point { return Point{p.X - d.X, p.Y - d.Y} }

// Rect is an axis-aligned rectangle described by its extremes.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectFromPoints returns the normalized rectangle spanned by a and b.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		MinX: math.Min(a.X, b.X),
		MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X),
		MaxY: math.Max(a.Y, b.Y),
	}
}

// RectAround returns the square of side 2*half centred at c.
func RectAround(c Point, half float64) Rect {
	return Rect{MinX: c.X - half, MinY: c.Y - half, MaxX: c.X + half, MaxY: c.Y + half}
}

// PolyBounds returns the bounding rectangle of pts. pts must be non-empty.
func PolyBounds(pts []Point) Rect {
	r := Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < r.MinX {
			r.MinX = p.X
		}
		if p.Y < r.MinY {
			r.MinY = p.Y
		}
		if p.X > r.MaxX {
			r.MaxX = p.X
		}
		if p.Y > r.MaxY {
			r.MaxY = p.Y
		}
	}
	return r
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the centroid of r.
func (r Rect) Center() Point {
	return Point{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Inset shrinks r by d on every side. Negative d grows the rectangle.
func (r Rect) Inset(d float64) Rect {
	return Rect{MinX: r.MinX + d, MinY: r.MinY + d, MaxX: r.MaxX - d, MaxY: r.MaxY - d}
}

// Contains reports whether p lies inside r (inclusive of the edges).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

// Rotate rotates p about center by angle radians.
func Rotate(p, center Point, angle float64) Point {
	if angle == 0 {
		return p
	}
	sin, cos := math.Sincos(angle)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}

// HandleKind identifies one of the manipulation handles of a selected shape.
type HandleKind string

const (
	HandleN      HandleKind = "n"
	HandleS      HandleKind = "s"
	HandleE      HandleKind = "e"
	HandleW      HandleKind = "w"
	HandleNE     HandleKind = "ne"
	HandleNW     HandleKind = "nw"
	HandleSE     HandleKind = "se"
	HandleSW     HandleKind = "sw"
	HandleRotate HandleKind = "rotate"
)

// RotateHandleOffset is the distance in pixels between the top edge of a
// shape's bounds and its rotation handle.
const RotateHandleOffset = 20

// Handle is a hit target used to resize or rotate a selected annotation.
type Handle struct {
	Kind   HandleKind
	Pos    Point
	Cursor string
}

var handleCursors = map[HandleKind]string{
	HandleN:      "ns-resize",
	HandleS:      "ns-resize",
	HandleE:      "ew-resize",
	HandleW:      "ew-resize",
	HandleNE:     "nesw-resize",
	HandleSW:     "nesw-resize",
	HandleNW:     "nwse-resize",
	HandleSE:     "nwse-resize",
	HandleRotate: "grab",
}

// Handles returns the eight resize handles at the corners and edge midpoints
// of bounds plus a rotation handle above the top-center, all rotated into
// world space by rotation about the bounds' centroid.
func Handles(bounds Rect, rotation float64) []Handle {
	c := bounds.Center()
	midX := (bounds.MinX + bounds.MaxX) / 2
	midY := (bounds.MinY + bounds.MaxY) / 2
	local := []Handle{
		{Kind: HandleNW, Pos: Point{bounds.MinX, bounds.MinY}},
		{Kind: HandleN, Pos: Point{midX, bounds.MinY}},
		{Kind: HandleNE, Pos: Point{bounds.MaxX, bounds.MinY}},
		{Kind: HandleE, Pos: Point{bounds.MaxX, midY}},
		{Kind: HandleSE, Pos: Point{bounds.MaxX, bounds.MaxY}},
		{Kind: HandleS, Pos: Point{midX, bounds.MaxY}},
		{Kind: HandleSW, Pos: Point{bounds.MinX, bounds.MaxY}},
		{Kind: HandleW, Pos: Point{bounds.MinX, midY}},
		{Kind: HandleRotate, Pos: Point{midX, bounds.MinY - RotateHandleOffset}},
	}
	out := make([]Handle, len(local))
	for i, h := range local {
		out[i] = Handle{Kind: h.Kind, Pos: Rotate(h.Pos, c, rotation), Cursor: handleCursors[h.Kind]}
	}
	return out
}

// Opposite returns the handle across the bounds from k. The rotation handle
// and unknown kinds map to themselves.
func Opposite(k HandleKind) HandleKind {
	switch k {
	case HandleN:
		return HandleS
	case HandleS:
		return HandleN
	case HandleE:
		return HandleW
	case HandleW:
		return HandleE
	case HandleNE:
		return HandleSW
	case HandleSW:
		return HandleNE
	case HandleNW:
		return HandleSE
	case HandleSE:
		return HandleNW
	}
	return k
}

// Dist returns the euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
