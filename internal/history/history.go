// Package history keeps a bounded linear undo/redo stack of full-diagram
// snapshots. Snapshots are deep copies: nothing stored here aliases the live
// diagram.
package history

import (
	"github.com/draftboard/draftboard/backend-go/internal/diagram"
)

// DefaultLimit caps the number of retained snapshots.
const DefaultLimit = 80

// History is a linear snapshot sequence with a current-index pointer.
// Committing after an undo truncates the forward entries.
type History struct {
	snapshots []*diagram.Diagram
	index     int
	limit     int
}

// New returns an uninitialized history with the given snapshot cap (or
// DefaultLimit when limit <= 0). Commit is a no-op until the first Reset.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Reset reinitializes the history to a single snapshot of d. Called whenever
// the active diagram is swapped wholesale (project switch, import).
func (h *History) Reset(d *diagram.Diagram) {
	h.snapshots = []*diagram.Diagram{d.Clone()}
	h.index = 0
}

// Commit appends a snapshot of d, truncating any redo entries and evicting
// the oldest snapshot beyond the cap. No-op before the first Reset.
func (h *History) Commit(d *diagram.Diagram) {
	if len(h.snapshots) == 0 {
		return
	}

	h.snapshots = append(h.snapshots[:h.index+1], d.Clone())
	if len(h.snapshots) > h.limit {
		h.snapshots = h.snapshots[len(h.snapshots)-h.limit:]
	}
	h.index = len(h.snapshots) - 1
}

// Undo steps back one snapshot and returns a deep copy of it. Returns false
// at the oldest entry.
func (h *History) Undo() (*diagram.Diagram, bool) {
	if h.index == 0 || len(h.snapshots) == 0 {
		return nil, false
	}
	h.index--
	return h.snapshots[h.index].Clone(), true
}

// Redo steps forward one snapshot and returns a deep copy of it. Returns
// false at the newest entry.
func (h *History) Redo() (*diagram.Diagram, bool) {
	if len(h.snapshots) == 0 || h.index >= len(h.snapshots)-1 {
		return nil, false
	}
	h.index++
	return h.snapshots[h.index].Clone(), true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	return len(h.snapshots) > 0 && h.index < len(h.snapshots)-1
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}
