package metrics

import "testing"

func TestSnapshotReflectsCounts(t *testing.T) {
	var m PathMetrics
	m.CountFullFrame()
	m.CountLinesFrame()
	m.CountLinesFrame()
	m.CountCursorOnlyFrame()
	m.CountEscalation()
	m.AddDirtyMarked(4)
	m.AddDirtyCandidate(3)
	m.AddDirtyRepainted(2)
	m.AddOutput(5, 120)
	m.CountScrollShift(18)
	m.CountScrollDegraded()
	m.CountTrimAttempt()
	m.CountTrimSuccess(36)
	m.CountStatusSkipped()
	m.RecordFrameNanos(1500)
	m.RecordFrameNanos(500)

	s := m.Snapshot()
	if s.FullFrames != 1 || s.LinesFrames != 2 || s.CursorOnlyFrames != 1 {
		t.Errorf("frame counts = %d/%d/%d", s.FullFrames, s.LinesFrames, s.CursorOnlyFrames)
	}
	if s.TotalFrames() != 4 {
		t.Errorf("TotalFrames = %d, want 4", s.TotalFrames())
	}
	if s.Escalations != 1 {
		t.Errorf("Escalations = %d, want 1", s.Escalations)
	}
	if s.DirtyMarked != 4 || s.DirtyCandidate != 3 || s.DirtyRepainted != 2 {
		t.Errorf("dirty = %d/%d/%d", s.DirtyMarked, s.DirtyCandidate, s.DirtyRepainted)
	}
	if s.PrintCommands != 5 || s.CellsPrinted != 120 {
		t.Errorf("output = %d/%d", s.PrintCommands, s.CellsPrinted)
	}
	if s.ScrollShifts != 1 || s.ScrollRowsSaved != 18 || s.ScrollDegraded != 1 {
		t.Errorf("scroll = %d/%d/%d", s.ScrollShifts, s.ScrollRowsSaved, s.ScrollDegraded)
	}
	if s.TrimAttempts != 1 || s.TrimSuccess != 1 || s.TrimColsSaved != 36 {
		t.Errorf("trim = %d/%d/%d", s.TrimAttempts, s.TrimSuccess, s.TrimColsSaved)
	}
	if s.StatusSkipped != 1 {
		t.Errorf("StatusSkipped = %d, want 1", s.StatusSkipped)
	}
	if s.LastFrameNanos != 500 || s.TotalNanos != 2000 {
		t.Errorf("timing = %d/%d", s.LastFrameNanos, s.TotalNanos)
	}
}

func TestPartialRatio(t *testing.T) {
	var m PathMetrics
	if got := m.Snapshot().PartialRatio(); got != 0 {
		t.Errorf("empty PartialRatio = %v, want 0", got)
	}
	m.CountFullFrame()
	m.CountLinesFrame()
	m.CountCursorOnlyFrame()
	m.CountCursorOnlyFrame()
	if got := m.Snapshot().PartialRatio(); got != 0.75 {
		t.Errorf("PartialRatio = %v, want 0.75", got)
	}
}

func TestResetForResize(t *testing.T) {
	var m PathMetrics
	m.CountFullFrame()
	m.AddDirtyMarked(9)
	m.ResetForResize()

	s := m.Snapshot()
	if s.ResizeInvalidations != 1 {
		t.Errorf("ResizeInvalidations = %d, want 1", s.ResizeInvalidations)
	}
	if s.DirtyMarked != 0 {
		t.Errorf("DirtyMarked = %d, want 0 after resize", s.DirtyMarked)
	}
	if s.FullFrames != 1 {
		t.Errorf("FullFrames = %d, lifetime counter must survive resize", s.FullFrames)
	}
}
