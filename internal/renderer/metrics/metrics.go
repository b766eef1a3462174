// Package metrics counts render-path outcomes. Counters are atomic so the
// metrics overlay and any future telemetry reader can snapshot them without
// stalling the render loop.
package metrics

import "sync/atomic"

// PathMetrics tracks which render strategies ran and what they cost.
type PathMetrics struct {
	fullFrames       atomic.Uint64
	linesFrames      atomic.Uint64
	cursorOnlyFrames atomic.Uint64
	escalations      atomic.Uint64

	resizeInvalidations atomic.Uint64

	dirtyMarked    atomic.Uint64
	dirtyCandidate atomic.Uint64
	dirtyRepainted atomic.Uint64

	lastFrameNanos atomic.Uint64
	totalNanos     atomic.Uint64

	printCommands atomic.Uint64
	cellsPrinted  atomic.Uint64

	scrollShifts    atomic.Uint64
	scrollRowsSaved atomic.Uint64
	scrollDegraded  atomic.Uint64

	trimAttempts  atomic.Uint64
	trimSuccess   atomic.Uint64
	trimColsSaved atomic.Uint64

	statusSkipped atomic.Uint64
}

func (m *PathMetrics) CountFullFrame()       { m.fullFrames.Add(1) }
func (m *PathMetrics) CountLinesFrame()      { m.linesFrames.Add(1) }
func (m *PathMetrics) CountCursorOnlyFrame() { m.cursorOnlyFrames.Add(1) }
func (m *PathMetrics) CountEscalation()      { m.escalations.Add(1) }

func (m *PathMetrics) CountResizeInvalidation() { m.resizeInvalidations.Add(1) }

func (m *PathMetrics) AddDirtyMarked(n int)    { m.dirtyMarked.Add(uint64(n)) }
func (m *PathMetrics) AddDirtyCandidate(n int) { m.dirtyCandidate.Add(uint64(n)) }
func (m *PathMetrics) AddDirtyRepainted(n int) { m.dirtyRepainted.Add(uint64(n)) }

// RecordFrameNanos stores the latest frame duration and accumulates the
// running total.
func (m *PathMetrics) RecordFrameNanos(ns uint64) {
	m.lastFrameNanos.Store(ns)
	m.totalNanos.Add(ns)
}

func (m *PathMetrics) AddOutput(printCommands, cellsPrinted uint64) {
	m.printCommands.Add(printCommands)
	m.cellsPrinted.Add(cellsPrinted)
}

func (m *PathMetrics) CountScrollShift(rowsSaved int) {
	m.scrollShifts.Add(1)
	if rowsSaved > 0 {
		m.scrollRowsSaved.Add(uint64(rowsSaved))
	}
}

func (m *PathMetrics) CountScrollDegraded() { m.scrollDegraded.Add(1) }

func (m *PathMetrics) CountTrimAttempt() { m.trimAttempts.Add(1) }
func (m *PathMetrics) CountTrimSuccess(colsSaved int) {
	m.trimSuccess.Add(1)
	if colsSaved > 0 {
		m.trimColsSaved.Add(uint64(colsSaved))
	}
}

func (m *PathMetrics) CountStatusSkipped() { m.statusSkipped.Add(1) }

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	FullFrames       uint64
	LinesFrames      uint64
	CursorOnlyFrames uint64
	Escalations      uint64

	ResizeInvalidations uint64

	DirtyMarked    uint64
	DirtyCandidate uint64
	DirtyRepainted uint64

	LastFrameNanos uint64
	TotalNanos     uint64

	PrintCommands uint64
	CellsPrinted  uint64

	ScrollShifts    uint64
	ScrollRowsSaved uint64
	ScrollDegraded  uint64

	TrimAttempts  uint64
	TrimSuccess   uint64
	TrimColsSaved uint64

	StatusSkipped uint64
}

// TotalFrames returns the frame count across all strategies.
func (s Snapshot) TotalFrames() uint64 {
	return s.FullFrames + s.LinesFrames + s.CursorOnlyFrames
}

// PartialRatio returns the fraction of frames that avoided a full repaint.
func (s Snapshot) PartialRatio() float64 {
	total := s.TotalFrames()
	if total == 0 {
		return 0
	}
	return float64(s.LinesFrames+s.CursorOnlyFrames) / float64(total)
}

// Snapshot copies the current counter values.
func (m *PathMetrics) Snapshot() Snapshot {
	return Snapshot{
		FullFrames:          m.fullFrames.Load(),
		LinesFrames:         m.linesFrames.Load(),
		CursorOnlyFrames:    m.cursorOnlyFrames.Load(),
		Escalations:         m.escalations.Load(),
		ResizeInvalidations: m.resizeInvalidations.Load(),
		DirtyMarked:         m.dirtyMarked.Load(),
		DirtyCandidate:      m.dirtyCandidate.Load(),
		DirtyRepainted:      m.dirtyRepainted.Load(),
		LastFrameNanos:      m.lastFrameNanos.Load(),
		TotalNanos:          m.totalNanos.Load(),
		PrintCommands:       m.printCommands.Load(),
		CellsPrinted:        m.cellsPrinted.Load(),
		ScrollShifts:        m.scrollShifts.Load(),
		ScrollRowsSaved:     m.scrollRowsSaved.Load(),
		ScrollDegraded:      m.scrollDegraded.Load(),
		TrimAttempts:        m.trimAttempts.Load(),
		TrimSuccess:         m.trimSuccess.Load(),
		TrimColsSaved:       m.trimColsSaved.Load(),
		StatusSkipped:       m.statusSkipped.Load(),
	}
}

// ResetForResize clears dirty accounting after a geometry change but keeps
// lifetime frame counters.
func (m *PathMetrics) ResetForResize() {
	m.resizeInvalidations.Add(1)
	m.dirtyMarked.Store(0)
	m.dirtyCandidate.Store(0)
	m.dirtyRepainted.Store(0)
}
