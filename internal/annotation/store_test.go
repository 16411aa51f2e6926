package annotation

import (
	"testing"

	"github.com/example/stepshot/internal/geom"
)

func TestCommitDraftAppendsAndReplaces(t *testing.T) {
	s := NewStore()
	a := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}, 2)
	s.Begin(a)
	s.CommitDraft()
	if len(s.Committed()) != 1 {
		t.Fatalf("expected 1 committed annotation, got %d", len(s.Committed()))
	}

	// Editing the same id replaces rather than appends.
	if !s.BeginEdit(a.ID) {
		t.Fatal("BeginEdit should find the committed annotation")
	}
	s.Draft().Base().End = geom.Point{X: 20, Y: 20}
	s.CommitDraft()
	got := s.Committed()
	if len(got) != 1 {
		t.Fatalf("edit should replace, got %d annotations", len(got))
	}
	if got[0].Base().End != (geom.Point{X: 20, Y: 20}) {
		t.Fatalf("edit not applied: %+v", got[0].Base().End)
	}
}

func TestCommitWithoutDraftPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewStore().CommitDraft()
}

func TestDraftMutationDoesNotTouchHistory(t *testing.T) {
	s := NewStore()
	a := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}, 2)
	s.Begin(a)
	s.Draft().Base().End = geom.Point{X: 30, Y: 30}
	s.Draft().Base().End = geom.Point{X: 40, Y: 40}
	if s.CanUndo() {
		t.Fatal("draft updates must not create history entries")
	}
	s.CommitDraft()
	if !s.CanUndo() {
		t.Fatal("commit should create exactly one history entry")
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	s := NewStore()
	a := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}, 2)
	s.Begin(a)
	s.CommitDraft()
	s.Select(a.ID)
	s.Delete(a.ID)
	if s.Selected() != 0 {
		t.Fatal("deleting the selected annotation should clear the selection")
	}
	if len(s.Committed()) != 0 {
		t.Fatal("annotation not deleted")
	}
}

func TestUndoRestoresDeleted(t *testing.T) {
	s := NewStore()
	a := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}, 2)
	s.Begin(a)
	s.CommitDraft()
	s.Erase(a.ID)
	if !s.Undo() {
		t.Fatal("undo should apply")
	}
	if len(s.Committed()) != 1 {
		t.Fatal("undo should restore the erased annotation")
	}
	if s.Selected() != 0 {
		t.Fatal("undo clears the selection")
	}
	if !s.Redo() {
		t.Fatal("redo should apply")
	}
	if len(s.Committed()) != 0 {
		t.Fatal("redo should re-remove the annotation")
	}
}

func TestNumberingContinuity(t *testing.T) {
	s := NewStore()
	var ids []int64
	for i := 0; i < 3; i++ {
		n := &Number{Shape: Shape{ID: NewID(), Start: geom.Point{X: float64(i * 50), Y: 10}}, Size: 10, Label: s.NextLabel()}
		ids = append(ids, n.ID)
		s.Begin(n)
		s.CommitDraft()
	}
	s.Delete(ids[1])

	labels := map[int]bool{}
	for _, a := range s.Committed() {
		labels[a.(*Number).Label] = true
	}
	if !labels[1] || !labels[3] || labels[2] {
		t.Fatalf("expected labels {1,3}, got %v", labels)
	}

	n := &Number{Shape: Shape{ID: NewID(), Start: geom.Point{X: 200, Y: 10}}, Size: 10, Label: s.NextLabel()}
	if n.Label != 4 {
		t.Fatalf("next label = %d, want 4 (max+1, not count+1)", n.Label)
	}
}

func TestHitAtPrefersTopmost(t *testing.T) {
	s := NewStore()
	bottom := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 100, Y: 100}, 2)
	top := newRect(geom.Point{X: 40, Y: 40}, geom.Point{X: 60, Y: 60}, 2)
	for _, a := range []Annotation{bottom, top} {
		s.Begin(a)
		s.CommitDraft()
	}
	if got := s.HitAt(geom.Point{X: 50, Y: 50}, nil); got != top.ID {
		t.Fatalf("HitAt = %d, want topmost %d", got, top.ID)
	}
	if got := s.HitAt(geom.Point{X: 5, Y: 5}, nil); got != bottom.ID {
		t.Fatalf("HitAt = %d, want bottom %d", got, bottom.ID)
	}
	if got := s.HitAt(geom.Point{X: 300, Y: 300}, nil); got != 0 {
		t.Fatalf("HitAt on empty space = %d, want 0", got)
	}
}

func TestAmendText(t *testing.T) {
	s := NewStore()
	txt := &Text{Shape: Shape{ID: NewID(), Start: geom.Point{X: 10, Y: 10}}, FontSize: 16, Text: "before"}
	s.Begin(txt)
	s.CommitDraft()
	if !s.Amend(txt.ID, func(a Annotation) { a.(*Text).Text = "after" }) {
		t.Fatal("Amend should find the annotation")
	}
	if got := s.ByID(txt.ID).(*Text).Text; got != "after" {
		t.Fatalf("text = %q, want after", got)
	}
	s.Undo()
	if got := s.ByID(txt.ID).(*Text).Text; got != "before" {
		t.Fatalf("text after undo = %q, want before", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewStore()
	a := newRect(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10}, 2)
	s.Begin(a)
	s.CommitDraft()
	s.Select(a.ID)
	s.Reset(nil)
	if len(s.Committed()) != 0 || s.Selected() != 0 || s.CanUndo() {
		t.Fatal("reset should clear annotations, selection and history")
	}
}
