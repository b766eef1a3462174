// Package overlay renders the optional diagnostics rows painted directly
// above the status line. Overlay rows are always repainted when enabled;
// they are few and change every frame anyway.
package overlay

import (
	"fmt"

	"github.com/tern-editor/tern/internal/renderer/backend"
	"github.com/tern-editor/tern/internal/renderer/metrics"
	"github.com/tern-editor/tern/internal/renderer/schedule"
	"github.com/tern-editor/tern/internal/text"
)

// DefaultLines is the row budget when the metrics overlay is toggled on
// without an explicit count.
const DefaultLines = 2

// BuildMetricsLines formats up to max overlay rows from the render path and
// scheduler snapshots. Width is accepted for future wrapping; rows longer
// than the terminal are clipped at paint time.
func BuildMetricsLines(path metrics.Snapshot, sched schedule.MetricsSnapshot, max int) []string {
	if max <= 0 {
		return nil
	}
	out := make([]string, 0, max)
	out = append(out, fmt.Sprintf(
		"rp full:%d lines:%d cur:%d esc:%d dirty:%d cand:%d rep:%d cells:%d statSkip:%d",
		path.FullFrames, path.LinesFrames, path.CursorOnlyFrames, path.Escalations,
		path.DirtyMarked, path.DirtyCandidate, path.DirtyRepainted,
		path.CellsPrinted, path.StatusSkipped))
	if len(out) >= max {
		return out
	}
	out = append(out, fmt.Sprintf(
		"delta f:%d l:%d sc:%d st:%d cur:%d supp:%d sem:%d trimCols:%d scrollSaved:%d",
		sched.Full, sched.Lines, sched.Scroll, sched.StatusLine, sched.CursorOnly,
		sched.SuppressedByScroll, sched.SemanticFrames,
		path.TrimColsSaved, path.ScrollRowsSaved))
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// PaintRows writes overlay rows into the batch writer, anchored so the last
// overlay row sits directly above the status line at row height-1. Rows are
// clipped to the terminal width on grapheme cluster boundaries. Does
// nothing when the rows do not fit above the status line.
func PaintRows(w *backend.BatchWriter, lines []string, width, height int) {
	count := len(lines)
	if count == 0 || height <= 0 || count >= height {
		return
	}
	firstRow := height - 1 - count
	for i, line := range lines {
		y := firstRow + i
		w.MoveTo(0, y)
		w.ClearLine(0, y)
		x, off := 0, 0
		for off < len(line) && x < width {
			next := text.NextBoundary(line, off)
			cluster := line[off:next]
			cw := text.ClusterWidth(cluster)
			if cw == 0 {
				cw = 1
			}
			if x+cw > width {
				break
			}
			w.Print(cluster)
			x += cw
			off = next
		}
	}
}
