package annotation

import (
	"image/color"
	"math"

	"github.com/example/stepshot/internal/geom"
)

// Tool selects what a pointer gesture does.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRect
	ToolCircle
	ToolArrow
	ToolPencil
	ToolText
	ToolNumber
	ToolBlur
	ToolEraser
	ToolCrop
)

// State is the machine's gesture phase.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateMoving
	StateResizing
	StateRotating
	StateCropping
)

// minDrag is the movement threshold in pixels below which a drawing drag is
// treated as a cancelled gesture.
const minDrag = 3

// handleHitRadius is how close the pointer must be to a handle to grab it.
const handleHitRadius = 6

// Options are the tool settings applied to newly created annotations.
type Options struct {
	Color        color.RGBA
	LineWidth    int
	FontSize     float64
	NumberSize   int
	BlurStrength int
}

// Machine turns raw pointer events in canvas space into Store mutations.
// It owns the gesture bookkeeping (pressed point, grabbed handle, original
// geometry) but no annotation data of its own.
type Machine struct {
	store   *Store
	measure MeasureFunc

	Tool Tool
	Opts Options

	state  State
	press  geom.Point
	moved  bool
	handle geom.HandleKind

	// Geometry of the draft at gesture start, used as the transform origin.
	orig       Shape
	origBounds geom.Rect
	origCenter geom.Point

	crop        geom.Rect
	cropPending bool
}

// NewMachine returns an idle machine driving store. measure may be nil.
func NewMachine(store *Store, measure MeasureFunc) *Machine {
	return &Machine{
		store:   store,
		measure: measure,
		Opts: Options{
			Color:        color.RGBA{R: 255, A: 255},
			LineWidth:    2,
			FontSize:     16,
			NumberSize:   16,
			BlurStrength: 8,
		},
	}
}

// State returns the current gesture phase.
func (m *Machine) State() State { return m.state }

// CropRect returns the pending crop rectangle. ok is false until a crop
// gesture has completed; the rectangle then awaits ApplyCrop/CancelCrop.
func (m *Machine) CropRect() (geom.Rect, bool) { return m.crop, m.cropPending }

// CancelCrop drops any pending or in-progress crop rectangle.
func (m *Machine) CancelCrop() {
	m.crop = geom.Rect{}
	m.cropPending = false
	if m.state == StateCropping {
		m.state = StateIdle
	}
}

// newDraft builds an annotation of the active tool's kind anchored at
// origin using the current options.
func (m *Machine) newDraft(origin geom.Point) Annotation {
	base := Shape{ID: NewID(), Color: m.Opts.Color, Start: origin, End: origin}
	switch m.Tool {
	case ToolRect:
		return &Rect{Shape: base, LineWidth: m.Opts.LineWidth}
	case ToolCircle:
		return &Circle{Shape: base, LineWidth: m.Opts.LineWidth}
	case ToolArrow:
		return &Arrow{Shape: base, LineWidth: m.Opts.LineWidth}
	case ToolPencil:
		base.Points = []geom.Point{origin}
		return &Pencil{Shape: base, LineWidth: m.Opts.LineWidth}
	case ToolText:
		return &Text{Shape: base, FontSize: m.Opts.FontSize}
	case ToolNumber:
		return &Number{Shape: base, Size: m.Opts.NumberSize, Label: m.store.NextLabel()}
	case ToolBlur:
		return &Blur{Shape: base, Strength: m.Opts.BlurStrength}
	}
	return nil
}

// PointerDown starts a gesture at p. For the text tool it returns the id of
// the committed text annotation so the host can open its inline editor;
// otherwise it returns 0.
func (m *Machine) PointerDown(p geom.Point) int64 {
	if m.state != StateIdle {
		return 0
	}
	m.press = p
	m.moved = false

	// A grabbed handle on the selected annotation beats everything else.
	if sel := m.store.SelectedAnnotation(); sel != nil && m.Tool == ToolSelect {
		for _, h := range Handles(sel) {
			if geom.Dist(p, h.Pos) <= handleHitRadius {
				if !m.store.BeginEdit(sel.Base().ID) {
					return 0
				}
				m.orig = cloneShape(*sel.Base())
				m.origBounds = Bounds(sel)
				m.origCenter = Center(sel)
				m.handle = h.Kind
				if h.Kind == geom.HandleRotate {
					m.state = StateRotating
				} else {
					m.state = StateResizing
				}
				return 0
			}
		}
	}

	switch m.Tool {
	case ToolSelect:
		if id := m.store.HitAt(p, m.measure); id != 0 {
			m.store.Select(id)
			if m.store.BeginEdit(id) {
				m.orig = cloneShape(*m.store.Draft().Base())
				m.state = StateMoving
			}
			return 0
		}
		m.store.Select(0)
	case ToolEraser:
		if id := m.store.HitAt(p, m.measure); id != 0 {
			m.store.Erase(id)
		}
	case ToolCrop:
		m.crop = geom.Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		m.cropPending = false
		m.state = StateCropping
	case ToolText, ToolNumber:
		// Single click places these; no drag phase.
		d := m.newDraft(p)
		id := d.Base().ID
		m.store.Begin(d)
		m.store.CommitDraft()
		m.store.Select(id)
		if m.Tool == ToolText {
			return id
		}
	default:
		m.store.Begin(m.newDraft(p))
		m.state = StateDrawing
	}
	return 0
}

// PointerMove updates the active gesture with the pointer at p. Only the
// latest position before PointerUp matters; intermediate frames are not
// individually undoable.
func (m *Machine) PointerMove(p geom.Point) {
	if geom.Dist(p, m.press) >= minDrag {
		m.moved = true
	}
	switch m.state {
	case StateDrawing:
		d := m.store.Draft()
		if d == nil {
			return
		}
		b := d.Base()
		b.End = p
		if pc, ok := d.(*Pencil); ok {
			pc.Points = append(pc.Points, p)
		}
	case StateMoving:
		d := m.store.Draft()
		if d == nil {
			return
		}
		delta := p.Sub(m.press)
		b := d.Base()
		b.Start = m.orig.Start.Add(delta)
		b.End = m.orig.End.Add(delta)
		if len(m.orig.Points) > 0 {
			for i, op := range m.orig.Points {
				b.Points[i] = op.Add(delta)
			}
		}
	case StateResizing:
		m.resizeDraft(p)
	case StateRotating:
		m.rotateDraft(p)
	case StateCropping:
		m.crop.MaxX = p.X
		m.crop.MaxY = p.Y
	}
}

// PointerUp completes the gesture. Drawing drags below the movement
// threshold are discarded; crop gestures park a normalized rectangle that
// awaits an explicit apply or cancel.
func (m *Machine) PointerUp(p geom.Point) {
	switch m.state {
	case StateDrawing:
		m.PointerMove(p)
		if !m.moved {
			m.store.DiscardDraft()
		} else {
			id := m.store.Draft().Base().ID
			m.store.CommitDraft()
			m.store.Select(id)
		}
	case StateMoving, StateResizing, StateRotating:
		m.PointerMove(p)
		m.store.CommitDraft()
	case StateCropping:
		m.crop = geom.RectFromPoints(
			geom.Point{X: m.crop.MinX, Y: m.crop.MinY},
			geom.Point{X: p.X, Y: p.Y},
		)
		m.cropPending = !m.crop.Empty()
	}
	m.state = StateIdle
}

// resizeDraft recomputes the draft geometry with the dragged handle at p
// and the opposite handle fixed. Both points are un-rotated into the local
// frame, the new box computed there, and the new center rotated back, so a
// rotated shape resizes without skew.
func (m *Machine) resizeDraft(p geom.Point) {
	d := m.store.Draft()
	if d == nil {
		return
	}
	b := d.Base()
	origBounds := m.origBounds
	c := m.origCenter
	rot := m.orig.Rotation

	handles := geom.Handles(origBounds, 0)
	var pivotLocal geom.Point
	opposite := geom.Opposite(m.handle)
	for _, h := range handles {
		if h.Kind == opposite {
			pivotLocal = h.Pos
			break
		}
	}
	dragLocal := geom.Rotate(p, c, -rot)

	// Edge handles keep the orthogonal dimension fixed.
	nb := geom.RectFromPoints(pivotLocal, dragLocal)
	switch m.handle {
	case geom.HandleN, geom.HandleS:
		nb.MinX = origBounds.MinX
		nb.MaxX = origBounds.MaxX
	case geom.HandleE, geom.HandleW:
		nb.MinY = origBounds.MinY
		nb.MaxY = origBounds.MaxY
	}

	// The local box was computed about the old center; re-anchor the shape
	// so its new center lands where the rotated box says it should.
	newCenterWorld := geom.Rotate(nb.Center(), c, rot)
	shift := newCenterWorld.Sub(nb.Center())
	nb.MinX += shift.X
	nb.MinY += shift.Y
	nb.MaxX += shift.X
	nb.MaxY += shift.Y

	switch v := d.(type) {
	case *Number:
		r := math.Max(nb.Width(), nb.Height()) / 2
		if r < 1 {
			r = 1
		}
		v.Size = int(r)
		b.Start = geom.Point{X: (nb.MinX + nb.MaxX) / 2, Y: (nb.MinY + nb.MaxY) / 2}
		b.End = b.Start
	case *Pencil:
		ob := geom.PolyBounds(m.orig.Points)
		sx, sy := 1.0, 1.0
		if ob.Width() > 0 {
			sx = nb.Width() / ob.Width()
		}
		if ob.Height() > 0 {
			sy = nb.Height() / ob.Height()
		}
		for i, op := range m.orig.Points {
			b.Points[i] = geom.Point{
				X: nb.MinX + (op.X-ob.MinX)*sx,
				Y: nb.MinY + (op.Y-ob.MinY)*sy,
			}
		}
		b.Start = geom.Point{X: nb.MinX, Y: nb.MinY}
		b.End = geom.Point{X: nb.MaxX, Y: nb.MaxY}
	default:
		b.Start = geom.Point{X: nb.MinX, Y: nb.MinY}
		b.End = geom.Point{X: nb.MaxX, Y: nb.MaxY}
	}
}

// rotateDraft sets the draft rotation from the angle swept between the
// press point and p about the shape center.
func (m *Machine) rotateDraft(p geom.Point) {
	d := m.store.Draft()
	if d == nil {
		return
	}
	c := m.origCenter
	from := math.Atan2(m.press.Y-c.Y, m.press.X-c.X)
	to := math.Atan2(p.Y-c.Y, p.X-c.X)
	d.Base().Rotation = m.orig.Rotation + (to - from)
}

// DeleteSelected removes the selected annotation, if any.
func (m *Machine) DeleteSelected() {
	if id := m.store.Selected(); id != 0 {
		m.store.Delete(id)
	}
}
