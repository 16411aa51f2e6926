package annotation

import (
	"github.com/example/stepshot/internal/geom"
	"github.com/example/stepshot/internal/history"
)

// Store is the authoritative per-image annotation state: the committed list
// in z-order (creation order), the current selection, and the in-progress
// draft being drawn or transformed. Undo/redo covers committed edits only;
// draft mutations never touch history so pointer-move frames stay cheap.
type Store struct {
	hist     *history.History[[]Annotation]
	selected int64
	draft    Annotation
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{hist: history.New[[]Annotation](nil, ListsEqual)}
}

// Committed returns the committed annotations in paint order. Callers must
// not mutate the returned slice.
func (s *Store) Committed() []Annotation { return s.hist.Present() }

// Selected returns the id of the selected annotation, or 0 when nothing is
// selected.
func (s *Store) Selected() int64 { return s.selected }

// SelectedAnnotation returns the selected committed annotation, or nil.
func (s *Store) SelectedAnnotation() Annotation {
	if s.selected == 0 {
		return nil
	}
	return s.ByID(s.selected)
}

// ByID returns the committed annotation with the given id, or nil.
func (s *Store) ByID(id int64) Annotation {
	for _, a := range s.hist.Present() {
		if a.Base().ID == id {
			return a
		}
	}
	return nil
}

// Draft returns the in-progress annotation, or nil when no gesture is
// active. The machine mutates it in place between Begin and CommitDraft.
func (s *Store) Draft() Annotation { return s.draft }

// Begin installs a freshly created annotation as the draft.
func (s *Store) Begin(a Annotation) { s.draft = a }

// BeginEdit clones the committed annotation with the given id into the
// draft so a move/resize/rotate gesture can mutate it without touching
// history. It reports whether the id was found.
func (s *Store) BeginEdit(id int64) bool {
	a := s.ByID(id)
	if a == nil {
		return false
	}
	s.draft = a.Clone()
	return true
}

// CommitDraft pushes the draft into the committed list: it replaces the
// committed annotation with the same id (edit path) or appends (creation
// path), records the result in history, and clears the draft. Committing
// without a draft is a programming error.
func (s *Store) CommitDraft() {
	if s.draft == nil {
		panic("annotation: CommitDraft without a draft")
	}
	cur := s.hist.Present()
	next := make([]Annotation, 0, len(cur)+1)
	replaced := false
	for _, a := range cur {
		if a.Base().ID == s.draft.Base().ID {
			next = append(next, s.draft)
			replaced = true
			continue
		}
		next = append(next, a)
	}
	if !replaced {
		next = append(next, s.draft)
	}
	s.hist.Set(next)
	s.draft = nil
}

// Amend applies fn to a clone of the committed annotation with the given
// id and commits the result as one undoable edit. Used for inline text
// re-editing. It reports whether the id was found.
func (s *Store) Amend(id int64, fn func(Annotation)) bool {
	if !s.BeginEdit(id) {
		return false
	}
	fn(s.draft)
	s.CommitDraft()
	return true
}

// DiscardDraft drops the in-progress annotation without committing. Used
// for gestures below the minimum movement threshold and for cancels.
func (s *Store) DiscardDraft() { s.draft = nil }

// Select sets the selection; id 0 clears it.
func (s *Store) Select(id int64) { s.selected = id }

// Delete removes the committed annotation with the given id and clears the
// selection if it pointed at it.
func (s *Store) Delete(id int64) {
	cur := s.hist.Present()
	next := make([]Annotation, 0, len(cur))
	for _, a := range cur {
		if a.Base().ID == id {
			continue
		}
		next = append(next, a)
	}
	if len(next) == len(cur) {
		return
	}
	s.hist.Set(next)
	if s.selected == id {
		s.selected = 0
	}
}

// Erase is Delete triggered by the eraser tool's click-to-remove path.
func (s *Store) Erase(id int64) { s.Delete(id) }

// Undo steps the committed list back one edit. The selection is cleared:
// the selected annotation may not exist in the restored state.
func (s *Store) Undo() bool {
	if !s.hist.Undo() {
		return false
	}
	s.selected = 0
	return true
}

// Redo mirrors Undo.
func (s *Store) Redo() bool {
	if !s.hist.Redo() {
		return false
	}
	s.selected = 0
	return true
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool { return s.hist.CanRedo() }

// Reset installs list as a fresh baseline with no undo history. Used on
// load, after save, and after a crop invalidates all coordinates.
func (s *Store) Reset(list []Annotation) {
	s.hist.Reset(list)
	s.selected = 0
	s.draft = nil
}

// HitAt returns the id of the topmost committed annotation under p, or 0.
// Later entries win: z-order is creation order, ties break to the most
// recently created.
func (s *Store) HitAt(p geom.Point, measure MeasureFunc) int64 {
	list := s.hist.Present()
	for i := len(list) - 1; i >= 0; i-- {
		if HitTest(p, list[i], measure) {
			return list[i].Base().ID
		}
	}
	return 0
}

// NextLabel returns the label for the next number badge: one past the
// maximum label currently in use, so freed numbers are not reused.
func (s *Store) NextLabel() int {
	max := 0
	consider := func(a Annotation) {
		if n, ok := a.(*Number); ok && n.Label > max {
			max = n.Label
		}
	}
	for _, a := range s.hist.Present() {
		consider(a)
	}
	if s.draft != nil {
		consider(s.draft)
	}
	return max + 1
}
