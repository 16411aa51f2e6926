package annotation

import (
	"image/color"
	"math"
	"testing"

	"github.com/example/stepshot/internal/geom"
)

func newRect(start, end geom.Point, width int) *Rect {
	return &Rect{
		Shape:     Shape{ID: NewID(), Color: color.RGBA{R: 255, A: 255}, Start: start, End: end},
		LineWidth: width,
	}
}

func TestBoundsRect(t *testing.T) {
	a := newRect(geom.Point{X: 10, Y: 10}, geom.Point{X: 50, Y: 40}, 2)
	b := Bounds(a)
	if b.MinX != 10 || b.MinY != 10 || b.MaxX != 50 || b.MaxY != 40 {
		t.Fatalf("bounds = %+v", b)
	}
	if b.Width() != 40 || b.Height() != 30 {
		t.Fatalf("size = %vx%v, want 40x30", b.Width(), b.Height())
	}
}

func TestBoundsPencil(t *testing.T) {
	p := &Pencil{Shape: Shape{ID: NewID(), Points: []geom.Point{{X: 5, Y: 9}, {X: 1, Y: 2}, {X: 8, Y: 4}}}, LineWidth: 1}
	b := Bounds(p)
	if b.MinX != 1 || b.MinY != 2 || b.MaxX != 8 || b.MaxY != 9 {
		t.Fatalf("bounds = %+v", b)
	}
}

func TestBoundsAndCenterNumber(t *testing.T) {
	n := &Number{Shape: Shape{ID: NewID(), Start: geom.Point{X: 30, Y: 40}}, Size: 12, Label: 1}
	b := Bounds(n)
	if b.Width() != 24 || b.Height() != 24 {
		t.Fatalf("number bounds should be a 2*size square, got %vx%v", b.Width(), b.Height())
	}
	if c := Center(n); c != (geom.Point{X: 30, Y: 40}) {
		t.Fatalf("number center = %+v, want anchor", c)
	}
}

func TestHandlesZeroRotationMatchUnrotated(t *testing.T) {
	a := newRect(geom.Point{X: 10, Y: 10}, geom.Point{X: 50, Y: 40}, 2)
	hs := Handles(a)
	want := geom.Handles(Bounds(a), 0)
	for i := range hs {
		if hs[i].Pos != want[i].Pos {
			t.Errorf("handle %s = %+v, want %+v", hs[i].Kind, hs[i].Pos, want[i].Pos)
		}
	}
}

func TestHitTestTolerance(t *testing.T) {
	lw := 4
	a := newRect(geom.Point{X: 10, Y: 10}, geom.Point{X: 50, Y: 40}, lw)
	// Just outside the stroke but inside the 4px buffer: hit.
	near := geom.Point{X: 50 + float64(lw)/2 + 1, Y: 25}
	if !HitTest(near, a, nil) {
		t.Fatalf("point %v should hit within the tolerance buffer", near)
	}
	// Well beyond the buffer: miss.
	far := geom.Point{X: 50 + float64(lw)/2 + 10, Y: 25}
	if HitTest(far, a, nil) {
		t.Fatalf("point %v should miss", far)
	}
}

func TestHitTestRotated(t *testing.T) {
	a := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 40, Y: 10}, 1)
	a.Rotation = math.Pi / 2
	c := Center(a)
	// A point at the rotated far-right end of the bar.
	p := geom.Rotate(geom.Point{X: 40, Y: 5}, c, math.Pi/2)
	if !HitTest(p, a, nil) {
		t.Fatalf("rotated end point %v should hit", p)
	}
	// The unrotated end position no longer contains the shape.
	if HitTest(geom.Point{X: 39, Y: 5}, a, nil) {
		t.Fatal("unrotated end position should miss after rotation")
	}
}

func TestHitTestNumberRadius(t *testing.T) {
	n := &Number{Shape: Shape{ID: NewID(), Start: geom.Point{X: 100, Y: 100}}, Size: 10, Label: 3}
	if !HitTest(geom.Point{X: 107, Y: 100}, n, nil) {
		t.Fatal("inside radius should hit")
	}
	if HitTest(geom.Point{X: 100, Y: 111}, n, nil) {
		t.Fatal("outside radius should miss")
	}
}

func TestHitTestTextUsesMeasurer(t *testing.T) {
	txt := &Text{Shape: Shape{ID: NewID(), Start: geom.Point{X: 10, Y: 10}}, FontSize: 16, Text: "hello"}
	measure := func(string, float64) (float64, float64) { return 50, 20 }
	if !HitTest(geom.Point{X: 55, Y: 25}, txt, measure) {
		t.Fatal("point inside measured block should hit")
	}
	if HitTest(geom.Point{X: 65, Y: 25}, txt, measure) {
		t.Fatal("point right of measured block should miss")
	}
}

func TestEqualDetectsFieldChanges(t *testing.T) {
	a := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}, 2)
	b := a.Clone().(*Rect)
	if !Equal(a, b) {
		t.Fatal("clone should compare equal")
	}
	b.LineWidth = 3
	if Equal(a, b) {
		t.Fatal("line width change should break equality")
	}
	c := a.Clone().(*Rect)
	c.End = geom.Point{X: 11, Y: 10}
	if Equal(a, c) {
		t.Fatal("geometry change should break equality")
	}
}

func TestNewIDMonotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		id := NewID()
		if id <= prev {
			t.Fatalf("ids not monotonic: %d then %d", prev, id)
		}
		prev = id
	}
}
