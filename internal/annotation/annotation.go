// Package annotation holds the vector annotation model placed over a
// screenshot: the shape variants, the committed/selected/draft store with
// undo history, and the pointer-driven interaction machine.
package annotation

import (
	"image/color"
	"sync/atomic"
	"time"

	"github.com/example/stepshot/internal/geom"
)

// Kind discriminates the annotation variants.
type Kind int

const (
	KindRect Kind = iota
	KindCircle
	KindArrow
	KindPencil
	KindText
	KindNumber
	KindBlur
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	case KindArrow:
		return "arrow"
	case KindPencil:
		return "pencil"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBlur:
		return "blur"
	}
	return "unknown"
}

// Shape carries the identity and geometry shared by every annotation kind.
// Start and End span the unrotated bounding box; Points is populated for
// pencil strokes only. Rotation is radians about the shape's own center.
type Shape struct {
	ID       int64
	Color    color.RGBA
	Start    geom.Point
	End      geom.Point
	Points   []geom.Point
	Rotation float64
}

// Annotation is one shape placed on one image. The concrete types are Rect,
// Circle, Arrow, Pencil, Text, Number and Blur; each carries exactly the
// fields its kind needs on top of the shared Shape.
type Annotation interface {
	Kind() Kind
	Base() *Shape
	Clone() Annotation
}

// Rect is an axis-aligned (before rotation) rectangle outline.
type Rect struct {
	Shape
	LineWidth int
}

// Circle is an ellipse inscribed in the Start/End box.
type Circle struct {
	Shape
	LineWidth int
}

// Arrow points from Start to End with a triangular head at End.
type Arrow struct {
	Shape
	LineWidth int
}

// Pencil is a freehand polyline through Points.
type Pencil struct {
	Shape
	LineWidth int
}

// Text is a multi-line text block anchored top-left at Start.
type Text struct {
	Shape
	FontSize float64
	Text     string
}

// Number is a numbered badge: a filled circle of radius Size centred at
// Start with Label rendered in a contrasting color.
type Number struct {
	Shape
	Size  int
	Label int
}

// Blur redacts the covered region with a gaussian-style blur of the base
// image. Strength is the blur radius in pixels.
type Blur struct {
	Shape
	Strength int
}

func (a *Rect) Kind() Kind   { return KindRect }
func (a *Circle) Kind() Kind { return KindCircle }
func (a *Arrow) Kind() Kind  { return KindArrow }
func (a *Pencil) Kind() Kind { return KindPencil }
func (a *Text) Kind() Kind   { return KindText }
func (a *Number) Kind() Kind { return KindNumber }
func (a *Blur) Kind() Kind   { return KindBlur }

func (a *Rect) Base() *Shape   { return &a.Shape }
func (a *Circle) Base() *Shape { return &a.Shape }
func (a *Arrow) Base() *Shape  { return &a.Shape }
func (a *Pencil) Base() *Shape { return &a.Shape }
func (a *Text) Base() *Shape   { return &a.Shape }
func (a *Number) Base() *Shape { return &a.Shape }
func (a *Blur) Base() *Shape   { return &a.Shape }

func cloneShape(s Shape) Shape {
	if s.Points != nil {
		pts := make([]geom.Point, len(s.Points))
		copy(pts, s.Points)
		s.Points = pts
	}
	return s
}

func (a *Rect) Clone() Annotation   { c := *a; c.Shape = cloneShape(a.Shape); return &c }
func (a *Circle) Clone() Annotation { c := *a; c.Shape = cloneShape(a.Shape); return &c }
func (a *Arrow) Clone() Annotation  { c := *a; c.Shape = cloneShape(a.Shape); return &c }
func (a *Pencil) Clone() Annotation { c := *a; c.Shape = cloneShape(a.Shape); return &c }
func (a *Text) Clone() Annotation   { c := *a; c.Shape = cloneShape(a.Shape); return &c }
func (a *Number) Clone() Annotation { c := *a; c.Shape = cloneShape(a.Shape); return &c }
func (a *Blur) Clone() Annotation   { c := *a; c.Shape = cloneShape(a.Shape); return &c }

var lastID atomic.Int64

// NewID returns a process-unique, monotonically increasing annotation id
// derived from the current time.
func NewID() int64 {
	for {
		now := time.Now().UnixMilli()
		prev := lastID.Load()
		if now <= prev {
			now = prev + 1
		}
		if lastID.CompareAndSwap(prev, now) {
			return now
		}
	}
}

// StrokeWidth returns the line width of stroked kinds and 0 for the rest.
func StrokeWidth(a Annotation) int {
	switch v := a.(type) {
	case *Rect:
		return v.LineWidth
	case *Circle:
		return v.LineWidth
	case *Arrow:
		return v.LineWidth
	case *Pencil:
		return v.LineWidth
	}
	return 0
}

// Bounds returns the annotation's bounding box in its own unrotated local
// frame: min/max over the points for pencil, a square of side 2*Size around
// the anchor for number badges, and the normalized Start/End rectangle
// otherwise.
func Bounds(a Annotation) geom.Rect {
	b := a.Base()
	switch v := a.(type) {
	case *Pencil:
		if len(b.Points) > 0 {
			return geom.PolyBounds(b.Points)
		}
	case *Number:
		return geom.RectAround(b.Start, float64(v.Size))
	}
	return geom.RectFromPoints(b.Start, b.End)
}

// Center returns the rotation/selection center: the anchor point for number
// badges and the bounds centroid for everything else.
func Center(a Annotation) geom.Point {
	if a.Kind() == KindNumber {
		return a.Base().Start
	}
	return Bounds(a).Center()
}

// Handles returns the manipulation handles of a in world space.
func Handles(a Annotation) []geom.Handle {
	return geom.Handles(Bounds(a), a.Base().Rotation)
}

// MeasureFunc reports the rendered width and height of a text block at the
// given font size. The compositor provides a font-backed implementation;
// a nil MeasureFunc falls back to a coarse estimate.
type MeasureFunc func(text string, fontSize float64) (w, h float64)

// estimateText approximates the extent of a rendered text block without
// consulting a font. Used when no measurer is wired (tests, headless paths).
func estimateText(text string, fontSize float64) (float64, float64) {
	maxLine := 0
	lines := 1
	run := 0
	for _, r := range text {
		if r == '\n' {
			lines++
			run = 0
			continue
		}
		run++
		if run > maxLine {
			maxLine = run
		}
	}
	return float64(maxLine) * fontSize * 0.6, float64(lines) * fontSize * 1.2
}

// hitTolerance is the click buffer beyond the stroke width that keeps thin
// shapes clickable.
const hitTolerance = 4

// HitTest reports whether p falls on a. The point is transformed into the
// annotation's unrotated local frame first, so rotated shapes hit-test the
// same as unrotated ones.
func HitTest(p geom.Point, a Annotation, measure MeasureFunc) bool {
	b := a.Base()
	local := geom.Rotate(p, Center(a), -b.Rotation)
	switch v := a.(type) {
	case *Number:
		return geom.Dist(local, b.Start) <= float64(v.Size)
	case *Text:
		if measure == nil {
			measure = estimateText
		}
		w, h := measure(v.Text, v.FontSize)
		r := geom.Rect{MinX: b.Start.X, MinY: b.Start.Y, MaxX: b.Start.X + w, MaxY: b.Start.Y + h}
		return r.Contains(local)
	}
	pad := float64(StrokeWidth(a) + hitTolerance)
	return Bounds(a).Inset(-pad).Contains(local)
}

// Equal reports deep equality of two annotations, including kind-specific
// fields. It gates history commits.
func Equal(a, b Annotation) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	ab, bb := a.Base(), b.Base()
	if ab.ID != bb.ID || ab.Color != bb.Color || ab.Start != bb.Start ||
		ab.End != bb.End || ab.Rotation != bb.Rotation {
		return false
	}
	if len(ab.Points) != len(bb.Points) {
		return false
	}
	for i := range ab.Points {
		if ab.Points[i] != bb.Points[i] {
			return false
		}
	}
	switch av := a.(type) {
	case *Rect:
		return av.LineWidth == b.(*Rect).LineWidth
	case *Circle:
		return av.LineWidth == b.(*Circle).LineWidth
	case *Arrow:
		return av.LineWidth == b.(*Arrow).LineWidth
	case *Pencil:
		return av.LineWidth == b.(*Pencil).LineWidth
	case *Text:
		bv := b.(*Text)
		return av.FontSize == bv.FontSize && av.Text == bv.Text
	case *Number:
		bv := b.(*Number)
		return av.Size == bv.Size && av.Label == bv.Label
	case *Blur:
		return av.Strength == b.(*Blur).Strength
	}
	return false
}

// ListsEqual reports element-wise equality of two annotation lists.
func ListsEqual(a, b []Annotation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
