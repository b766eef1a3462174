// Package schedule collapses fine-grained invalidation marks from editing
// operations into one render decision per frame. Producers call Mark as
// edits happen; the frame loop calls Consume once and hands the decision to
// the render engine.
package schedule

import "sync/atomic"

// DeltaKind identifies a render invalidation variant. The set is closed:
// collapse logic switches exhaustively over it.
type DeltaKind int

const (
	// KindFull repaints the entire frame.
	KindFull DeltaKind = iota
	// KindLines repaints a half-open buffer line range [Start, End).
	KindLines
	// KindScroll shifts the viewport from OldFirst to NewFirst.
	KindScroll
	// KindStatusLine repaints only the status line.
	KindStatusLine
	// KindCursorOnly moves the cursor within unchanged content.
	KindCursorOnly
)

func (k DeltaKind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindLines:
		return "lines"
	case KindScroll:
		return "scroll"
	case KindStatusLine:
		return "status_line"
	case KindCursorOnly:
		return "cursor_only"
	}
	return "unknown"
}

// Delta is one invalidation notice. Start/End are meaningful only for
// KindLines, OldFirst/NewFirst only for KindScroll.
type Delta struct {
	Kind     DeltaKind
	Start    int
	End      int
	OldFirst int
	NewFirst int
}

func Full() Delta                { return Delta{Kind: KindFull} }
func Lines(start, end int) Delta { return Delta{Kind: KindLines, Start: start, End: end} }
func Scroll(oldFirst, newFirst int) Delta {
	return Delta{Kind: KindScroll, OldFirst: oldFirst, NewFirst: newFirst}
}
func StatusLine() Delta { return Delta{Kind: KindStatusLine} }
func CursorOnly() Delta { return Delta{Kind: KindCursorOnly} }

// Decision pairs the minimal truthful description of damage with the
// strategy the engine will actually execute. Effective may escalate to
// Full when a partial path would cost more than it saves.
type Decision struct {
	Semantic  Delta
	Effective Delta
}

// DefaultScrollShiftMax is the largest absolute scroll distance eligible
// for the scroll-region shift path. Beyond it, repainting the entering
// rows approaches full-frame cost and the shift stops paying for itself.
const DefaultScrollShiftMax = 12

// Metrics counts semantic delta frequencies across collapse cycles.
type Metrics struct {
	full       atomic.Uint64
	lines      atomic.Uint64
	scroll     atomic.Uint64
	statusLine atomic.Uint64
	cursorOnly atomic.Uint64

	collapsedScrolls   atomic.Uint64
	suppressedByScroll atomic.Uint64
	semanticFrames     atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of scheduler counters.
type MetricsSnapshot struct {
	Full       uint64
	Lines      uint64
	Scroll     uint64
	StatusLine uint64
	CursorOnly uint64

	CollapsedScrolls   uint64
	SuppressedByScroll uint64
	SemanticFrames     uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Full:               m.full.Load(),
		Lines:              m.lines.Load(),
		Scroll:             m.scroll.Load(),
		StatusLine:         m.statusLine.Load(),
		CursorOnly:         m.cursorOnly.Load(),
		CollapsedScrolls:   m.collapsedScrolls.Load(),
		SuppressedByScroll: m.suppressedByScroll.Load(),
		SemanticFrames:     m.semanticFrames.Load(),
	}
}

func (m *Metrics) countSemantic(d Delta) {
	switch d.Kind {
	case KindFull:
		m.full.Add(1)
	case KindLines:
		m.lines.Add(1)
	case KindScroll:
		m.scroll.Add(1)
	case KindStatusLine:
		m.statusLine.Add(1)
	case KindCursorOnly:
		m.cursorOnly.Add(1)
	}
}

// Scheduler accumulates marks between frames. Not safe for concurrent use;
// marks and consume run on the editor goroutine.
type Scheduler struct {
	pending  []Delta
	metrics  Metrics
	shiftMax int
}

// New returns a scheduler with the default scroll-shift threshold.
func New() *Scheduler {
	return &Scheduler{shiftMax: DefaultScrollShiftMax}
}

// SetScrollShiftMax overrides the scroll-shift eligibility threshold.
// Values below zero are ignored; zero disables the scroll path entirely.
func (s *Scheduler) SetScrollShiftMax(n int) {
	if n >= 0 {
		s.shiftMax = n
	}
}

// Mark records a delta. Multiple calls accumulate until Consume.
func (s *Scheduler) Mark(d Delta) {
	s.pending = append(s.pending, d)
}

// MarkStatus records a status-line invalidation. Convenience for mode and
// command-buffer changes.
func (s *Scheduler) MarkStatus() {
	s.Mark(StatusLine())
}

// Pending reports whether any marks await consumption.
func (s *Scheduler) Pending() bool {
	return len(s.pending) > 0
}

// MetricsSnapshot copies current counters.
func (s *Scheduler) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.snapshot()
}

// Consume drains the queue and returns one decision, or ok=false when no
// marks are pending.
func (s *Scheduler) Consume() (Decision, bool) {
	if len(s.pending) == 0 {
		return Decision{}, false
	}
	merged := s.collapse()
	s.pending = s.pending[:0]
	s.metrics.countSemantic(merged)
	s.metrics.semanticFrames.Add(1)
	return Decision{Semantic: merged, Effective: s.effective(merged)}, true
}

// effective derives the executable strategy from the merged semantic.
// Lines and CursorOnly run as partial paths. Scroll runs as a shift only
// within the threshold. StatusLine executes as Full; a status-only fast
// path exists downstream in the engine as a paint skip, not a strategy.
func (s *Scheduler) effective(merged Delta) Delta {
	switch merged.Kind {
	case KindCursorOnly, KindLines:
		return merged
	case KindScroll:
		diff := merged.NewFirst - merged.OldFirst
		if diff < 0 {
			diff = -diff
		}
		if diff <= s.shiftMax {
			return merged
		}
		return Full()
	}
	return Full()
}

func (s *Scheduler) collapse() Delta {
	var (
		haveStatus, haveCursor bool
		lineRange              *Delta
		scrollOldFirst         int
		scrollNewFirst         int
		scrollEvents           int
	)
	for _, d := range s.pending {
		switch d.Kind {
		case KindFull:
			return Full()
		case KindStatusLine:
			haveStatus = true
		case KindCursorOnly:
			haveCursor = true
		case KindLines:
			if lineRange == nil {
				r := d
				lineRange = &r
			} else {
				if d.Start < lineRange.Start {
					lineRange.Start = d.Start
				}
				if d.End > lineRange.End {
					lineRange.End = d.End
				}
			}
		case KindScroll:
			if scrollEvents == 0 {
				scrollOldFirst = d.OldFirst
			}
			scrollNewFirst = d.NewFirst
			scrollEvents++
		}
	}
	if scrollEvents > 0 {
		if scrollEvents > 1 {
			s.metrics.collapsedScrolls.Add(uint64(scrollEvents - 1))
		}
		if lineRange != nil || haveStatus || haveCursor {
			s.metrics.suppressedByScroll.Add(1)
		}
		return Scroll(scrollOldFirst, scrollNewFirst)
	}
	if lineRange != nil {
		return Lines(lineRange.Start, lineRange.End)
	}
	if haveStatus {
		return StatusLine()
	}
	if haveCursor {
		return CursorOnly()
	}
	return Full()
}
