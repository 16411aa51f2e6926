package history

import "testing"

func TestSetUndoRedo(t *testing.T) {
	h := New(0, nil)
	h.Set(1)
	h.Set(2)
	if got := h.Present(); got != 2 {
		t.Fatalf("present = %d, want 2", got)
	}
	if !h.Undo() {
		t.Fatal("expected undo to take effect")
	}
	if got := h.Present(); got != 1 {
		t.Fatalf("present after undo = %d, want 1", got)
	}
	if !h.Redo() {
		t.Fatal("expected redo to take effect")
	}
	if got := h.Present(); got != 2 {
		t.Fatalf("present after redo = %d, want 2", got)
	}
}

func TestUndoEmptyPastIsNoop(t *testing.T) {
	h := New("seed", nil)
	if h.Undo() {
		t.Fatal("undo with empty past should be a no-op")
	}
	if got := h.Present(); got != "seed" {
		t.Fatalf("present = %q, want seed", got)
	}
}

func TestRedoEmptyFutureIsNoop(t *testing.T) {
	h := New(1, nil)
	h.Set(2)
	if h.Redo() {
		t.Fatal("redo with empty future should be a no-op")
	}
	if got := h.Present(); got != 2 {
		t.Fatalf("present = %d, want 2", got)
	}
}

func TestSetAfterUndoClearsFuture(t *testing.T) {
	h := New(0, nil)
	h.Set(1)
	h.Set(2)
	h.Undo()
	h.Set(3)
	if h.CanRedo() {
		t.Fatal("redo branch should be discarded by a new Set")
	}
	if got := h.Present(); got != 3 {
		t.Fatalf("present = %d, want 3", got)
	}
	h.Undo()
	if got := h.Present(); got != 1 {
		t.Fatalf("present = %d, want 1", got)
	}
}

func TestSetIdempotence(t *testing.T) {
	h := New([]int{1, 2}, nil)
	before := h.Depth()
	h.Set([]int{1, 2})
	if h.Depth() != before {
		t.Fatalf("equal Set pushed a history entry: depth %d -> %d", before, h.Depth())
	}
}

func TestResetClearsStacks(t *testing.T) {
	h := New(0, nil)
	h.Set(1)
	h.Set(2)
	h.Undo()
	h.Reset(9)
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("reset should clear both stacks")
	}
	if got := h.Present(); got != 9 {
		t.Fatalf("present = %d, want 9", got)
	}
}

func TestCustomEquality(t *testing.T) {
	// Equality that ignores sign: Set(-1) over 1 must be a no-op.
	eq := func(a, b int) bool {
		if a < 0 {
			a = -a
		}
		if b < 0 {
			b = -b
		}
		return a == b
	}
	h := New(1, eq)
	if h.Set(-1) {
		t.Fatal("Set of an equal value should not record an entry")
	}
	if h.Set(2) == false {
		t.Fatal("Set of a different value should record an entry")
	}
}
