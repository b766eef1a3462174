// Package dirty accumulates buffer lines whose content may have changed
// since the last frame. Marks are advisory: the render engine still hashes
// each candidate against the line cache before repainting it.
package dirty

import "sort"

// Tracker collects dirty line marks between frames. Not safe for
// concurrent use; the edit path and render path run on the same goroutine.
type Tracker struct {
	lines map[int]struct{}
	// all is set when an edit invalidates everything (paste, undo of a
	// multi-line change, whole-buffer reload).
	all bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{lines: make(map[int]struct{})}
}

// Mark records a single buffer line as possibly changed.
func (t *Tracker) Mark(line int) {
	if line < 0 || t.all {
		return
	}
	t.lines[line] = struct{}{}
}

// MarkRange records the half-open range [start, end) as possibly changed.
func (t *Tracker) MarkRange(start, end int) {
	if t.all {
		return
	}
	if start < 0 {
		start = 0
	}
	for i := start; i < end; i++ {
		t.lines[i] = struct{}{}
	}
}

// MarkAll invalidates every line; subsequent marks are absorbed.
func (t *Tracker) MarkAll() {
	t.all = true
	for k := range t.lines {
		delete(t.lines, k)
	}
}

// All reports whether everything was invalidated since the last take.
func (t *Tracker) All() bool {
	return t.all
}

// IsEmpty reports whether no marks are pending.
func (t *Tracker) IsEmpty() bool {
	return !t.all && len(t.lines) == 0
}

// Marked returns the number of individually marked lines.
func (t *Tracker) Marked() int {
	return len(t.lines)
}

// TakeInViewport returns the marked lines that fall inside
// [first, first+rows), sorted ascending, and clears the tracker. When
// MarkAll was called it returns nil with all=true; the caller must treat
// that as a full repaint.
func (t *Tracker) TakeInViewport(first, rows int) (lines []int, all bool) {
	if t.all {
		t.all = false
		return nil, true
	}
	for line := range t.lines {
		if line >= first && line < first+rows {
			lines = append(lines, line)
		}
	}
	for k := range t.lines {
		delete(t.lines, k)
	}
	sort.Ints(lines)
	return lines, false
}

// Clear drops all pending marks.
func (t *Tracker) Clear() {
	t.all = false
	for k := range t.lines {
		delete(t.lines, k)
	}
}
