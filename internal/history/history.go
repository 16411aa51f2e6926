// Package history implements a generic linear undo/redo history: a
// past/present/future triple with equality-gated commits. It backs both the
// annotation store and the document editor.
package history

import "reflect"

// History tracks the edit timeline of a value of type T. The zero value is
// not usable; construct with New.
type History[T any] struct {
	past    []T
	present T
	future  []T
	eq      func(a, b T) bool
}

// New returns a History seeded with present. eq gates Set calls; a nil eq
// falls back to reflect.DeepEqual.
func New[T any](present T, eq func(a, b T) bool) *History[T] {
	if eq == nil {
		eq = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	return &History[T]{present: present, eq: eq}
}

// Present returns the current value.
func (h *History[T]) Present() T { return h.present }

// Set commits v as the new present state. It is a no-op when v equals the
// current present. Committing discards any redo branch. It reports whether
// a new entry was recorded.
func (h *History[T]) Set(v T) bool {
	if h.eq(v, h.present) {
		return false
	}
	h.past = append(h.past, h.present)
	h.present = v
	h.future = nil
	return true
}

// Undo steps back one entry. It reports whether a step was taken; with an
// empty past it is a no-op.
func (h *History[T]) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	h.future = append([]T{h.present}, h.future...)
	h.present = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return true
}

// Redo steps forward one entry. It reports whether a step was taken; with an
// empty future it is a no-op.
func (h *History[T]) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	h.past = append(h.past, h.present)
	h.present = h.future[0]
	h.future = h.future[1:]
	return true
}

// CanUndo reports whether an Undo would take effect.
func (h *History[T]) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether a Redo would take effect.
func (h *History[T]) CanRedo() bool { return len(h.future) > 0 }

// Reset clears both stacks and installs seed as the new baseline. The reset
// itself is not undoable; it is used after loads and saves.
func (h *History[T]) Reset(seed T) {
	h.past = nil
	h.future = nil
	h.present = seed
}

// Depth returns how many undo entries are recorded.
func (h *History[T]) Depth() int { return len(h.past) }
