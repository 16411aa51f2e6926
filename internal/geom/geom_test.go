package geom

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRectFromPointsNormalizes(t *testing.T) {
	r := RectFromPoints(Point{50, 40}, Point{10, 10})
	if r.MinX != 10 || r.MinY != 10 || r.MaxX != 50 || r.MaxY != 40 {
		t.Fatalf("unexpected rect %+v", r)
	}
	if r.Width() != 40 || r.Height() != 30 {
		t.Fatalf("unexpected size %vx%v", r.Width(), r.Height())
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	got := Rotate(Point{1, 0}, Point{0, 0}, math.Pi/2)
	if !almost(got.X, 0) || !almost(got.Y, 1) {
		t.Fatalf("rotate = %+v, want (0,1)", got)
	}
}

func TestRotateZeroIsIdentity(t *testing.T) {
	p := Point{3, 7}
	if got := Rotate(p, Point{100, 100}, 0); got != p {
		t.Fatalf("rotate by 0 moved point: %+v", got)
	}
}

func TestPolyBounds(t *testing.T) {
	pts := []Point{{4, 9}, {-2, 3}, {7, 5}}
	r := PolyBounds(pts)
	if r.MinX != -2 || r.MinY != 3 || r.MaxX != 7 || r.MaxY != 9 {
		t.Fatalf("unexpected bounds %+v", r)
	}
}

func TestHandlesUnrotated(t *testing.T) {
	b := Rect{MinX: 10, MinY: 10, MaxX: 50, MaxY: 40}
	hs := Handles(b, 0)
	if len(hs) != 9 {
		t.Fatalf("expected 9 handles, got %d", len(hs))
	}
	want := map[HandleKind]Point{
		HandleNW:     {10, 10},
		HandleN:      {30, 10},
		HandleNE:     {50, 10},
		HandleE:      {50, 25},
		HandleSE:     {50, 40},
		HandleS:      {30, 40},
		HandleSW:     {10, 40},
		HandleW:      {10, 25},
		HandleRotate: {30, 10 - RotateHandleOffset},
	}
	for _, h := range hs {
		w := want[h.Kind]
		if !almost(h.Pos.X, w.X) || !almost(h.Pos.Y, w.Y) {
			t.Errorf("handle %s at %+v, want %+v", h.Kind, h.Pos, w)
		}
		if h.Cursor == "" {
			t.Errorf("handle %s missing cursor hint", h.Kind)
		}
	}
}

func TestHandlesRotationMatchesPointRotation(t *testing.T) {
	b := Rect{MinX: 0, MinY: 0, MaxX: 20, MaxY: 10}
	angle := math.Pi / 3
	rotated := Handles(b, angle)
	plain := Handles(b, 0)
	c := b.Center()
	for i := range plain {
		want := Rotate(plain[i].Pos, c, angle)
		got := rotated[i].Pos
		if !almost(got.X, want.X) || !almost(got.Y, want.Y) {
			t.Errorf("handle %s at %+v, want %+v", plain[i].Kind, got, want)
		}
	}
}

func TestOpposite(t *testing.T) {
	pairs := map[HandleKind]HandleKind{
		HandleN: HandleS, HandleE: HandleW, HandleNE: HandleSW, HandleNW: HandleSE,
	}
	for k, v := range pairs {
		if Opposite(k) != v {
			t.Errorf("Opposite(%s) = %s, want %s", k, Opposite(k), v)
		}
		if Opposite(v) != k {
			t.Errorf("Opposite(%s) = %s, want %s", v, Opposite(v), k)
		}
	}
	if Opposite(HandleRotate) != HandleRotate {
		t.Error("rotate handle has no opposite")
	}
}

func TestRectContainsAndInset(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	if !r.Contains(Point{0, 0}) || !r.Contains(Point{10, 10}) {
		t.Fatal("edges should be inclusive")
	}
	grown := r.Inset(-5)
	if !grown.Contains(Point{-5, -5}) {
		t.Fatal("negative inset should grow the rect")
	}
	if r.Contains(Point{11, 5}) {
		t.Fatal("point outside reported as contained")
	}
}
