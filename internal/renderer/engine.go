package renderer

import (
	"time"

	"github.com/tern-editor/tern/internal/editor"
	"github.com/tern-editor/tern/internal/renderer/backend"
	"github.com/tern-editor/tern/internal/renderer/core"
	"github.com/tern-editor/tern/internal/renderer/dirty"
	"github.com/tern-editor/tern/internal/renderer/linecache"
	"github.com/tern-editor/tern/internal/renderer/metrics"
	"github.com/tern-editor/tern/internal/renderer/overlay"
	"github.com/tern-editor/tern/internal/renderer/schedule"
	"github.com/tern-editor/tern/internal/text"
)

// DefaultLinesEscalationPct is the proportion of visible text rows whose
// inclusion in the lines-partial candidate set escalates the frame to a
// full repaint. Above it, many discrete line clears cost more than one
// frame rebuild.
const DefaultLinesEscalationPct = 0.60

// Snapshot carries everything one frame needs: editor state, view, terminal
// geometry, and the pre-formatted status line.
type Snapshot struct {
	State  *editor.State
	View   editor.View
	Width  int
	Height int
	Status string
}

// Engine owns the viewport line cache and executes render strategies
// against a terminal sink.
type Engine struct {
	sink    backend.Sink
	cache   *linecache.Cache
	metrics metrics.PathMetrics
	caps    backend.Capabilities

	escalationPct  float64
	trimMinSavings int

	// overlaySource supplies diagnostic overlay rows when the overlay is
	// enabled; nil uses the built-in metrics rows.
	overlaySource func(max int) []string

	// Last-frame instrumentation for tests and diagnostics.
	lastRepaintLines []int
	lastRepaintKind  string

	prevStatus      string
	prevStatusKnown bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapabilities overrides detected terminal capabilities.
func WithCapabilities(caps backend.Capabilities) Option {
	return func(e *Engine) { e.caps = caps }
}

// WithEscalationThreshold overrides the lines-partial escalation
// proportion. Values outside (0, 1] are ignored.
func WithEscalationThreshold(pct float64) Option {
	return func(e *Engine) {
		if pct > 0 && pct <= 1 {
			e.escalationPct = pct
		}
	}
}

// WithTrimMinSavings overrides the minimum columns a trimmed repaint must
// save to be worth emitting.
func WithTrimMinSavings(cols int) Option {
	return func(e *Engine) {
		if cols >= 0 {
			e.trimMinSavings = cols
		}
	}
}

// WithOverlaySource installs a provider for diagnostic overlay rows.
func WithOverlaySource(fn func(max int) []string) Option {
	return func(e *Engine) { e.overlaySource = fn }
}

// New creates an engine writing to sink.
func New(sink backend.Sink, opts ...Option) *Engine {
	e := &Engine{
		sink:           sink,
		cache:          linecache.New(),
		caps:           backend.DetectCapabilities(),
		escalationPct:  DefaultLinesEscalationPct,
		trimMinSavings: DefaultTrimMinSavings,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Capabilities returns the terminal capabilities the engine was built with.
func (e *Engine) Capabilities() backend.Capabilities {
	return e.caps
}

// Metrics returns a snapshot of render path counters.
func (e *Engine) Metrics() metrics.Snapshot {
	return e.metrics.Snapshot()
}

// LastCursorLine returns the buffer line the cursor was last painted on,
// or -1 before the first frame.
func (e *Engine) LastCursorLine() int {
	return e.cache.LastCursorLine
}

// LastRepaintKind names the strategy of the most recent frame.
func (e *Engine) LastRepaintKind() string {
	return e.lastRepaintKind
}

// LastRepaintLines lists buffer lines repainted by the most recent partial
// frame.
func (e *Engine) LastRepaintLines() []int {
	return e.lastRepaintLines
}

// CacheViewportStart exposes the cache anchor for tests.
func (e *Engine) CacheViewportStart() int {
	return e.cache.ViewportStart
}

// CachePrevText exposes the cached painted text for a relative row.
func (e *Engine) CachePrevText(row int) (string, bool) {
	return e.cache.PrevText(row)
}

// InvalidateForResize drops the line cache so the next frame rebuilds it
// for the new geometry. The caller is expected to force a full repaint.
func (e *Engine) InvalidateForResize() {
	e.cache.Clear()
	e.prevStatusKnown = false
	e.metrics.ResetForResize()
}

// Apply dispatches a scheduler decision to the matching strategy.
func (e *Engine) Apply(d schedule.Decision, s Snapshot, tracker *dirty.Tracker) error {
	switch d.Effective.Kind {
	case schedule.KindCursorOnly:
		return e.RenderCursorOnly(s)
	case schedule.KindLines:
		return e.RenderLines(s, tracker)
	case schedule.KindScroll:
		return e.RenderScrollShift(s, d.Effective.OldFirst, d.Effective.NewFirst)
	default:
		return e.RenderFull(s)
	}
}

// overlayRows returns the diagnostic rows to paint this frame, empty when
// the overlay is off.
func (e *Engine) overlayRows(s Snapshot) []string {
	if !s.State.Overlay.Enabled {
		return nil
	}
	max := s.State.Overlay.Lines
	if max <= 0 {
		max = overlay.DefaultLines
	}
	if e.overlaySource != nil {
		rows := e.overlaySource(max)
		if len(rows) > max {
			rows = rows[:max]
		}
		return rows
	}
	return overlay.BuildMetricsLines(e.metrics.Snapshot(), schedule.MetricsSnapshot{}, max)
}

// RenderFull rebuilds the whole frame: text area, cursor highlight,
// overlay rows, status line. It also rewarms the line cache so subsequent
// partial frames diff against fresh ground truth.
func (e *Engine) RenderFull(s Snapshot) error {
	return e.renderFull(s, "full")
}

// renderFull is the shared full-frame body. Partial paths that escalate
// delegate here with their own kind so the report shows why the frame
// went full.
func (e *Engine) renderFull(s Snapshot, kind string) error {
	start := time.Now()
	// Hashing runs every full frame so the cache is warm for partials.
	e.classifyViewport(s, nil)

	e.lastRepaintLines = e.lastRepaintLines[:0]
	e.lastRepaintKind = kind

	overlayRows := e.overlayRows(s)
	frame := core.NewFrame(s.Width, s.Height)
	fullTextHeight := 0
	if s.Height > 0 {
		fullTextHeight = s.Height - 1
	}
	textHeight := fullTextHeight - len(overlayRows)
	if textHeight < 0 {
		textHeight = 0
	}

	first := s.View.First
	if textHeight > 0 {
		end := first + textHeight
		if lc := s.State.Buffer.LineCount(); end > lc {
			end = lc
		}
		for line := first; line < end; line++ {
			paintFrameRow(frame, line-first, s.State.LineContent(line), s.Width)
		}
	}

	if span, ok := e.cursorSpan(s.State, s.View, first, first+textHeight); ok {
		frame.ApplyFlagsSpan(span.startCol, span.line-first, span.width, core.FlagReverse|core.FlagCursor)
	}

	if s.Height > 0 {
		row := s.Height - 1 - len(overlayRows)
		for _, l := range overlayRows {
			paintFrameRow(frame, row, l, s.Width)
			row++
		}
		paintFrameRow(frame, s.Height-1, s.Status, s.Width)
		e.prevStatus = s.Status
		e.prevStatusKnown = true
	} else {
		e.prevStatusKnown = false
	}

	prints, cells, err := e.emitFrame(frame)
	if err != nil {
		return err
	}

	e.cache.LastCursorLine = s.View.Cursor.Line
	// Shadow the exact painted text so later partial frames can trim.
	for row := 0; row < e.cache.Len(); row++ {
		if first+row < s.State.Buffer.LineCount() {
			e.cache.SetPrevText(row, s.State.LineContent(first+row))
		}
	}

	e.metrics.CountFullFrame()
	e.metrics.RecordFrameNanos(uint64(time.Since(start).Nanoseconds()))
	e.metrics.AddOutput(prints, cells)
	return nil
}

// RenderCursorOnly repaints the previous and current cursor lines and
// restyles the cursor cluster. Content elsewhere is untouched.
func (e *Engine) RenderCursorOnly(s Snapshot) error {
	start := time.Now()
	if s.Height == 0 {
		return nil
	}
	e.lastRepaintLines = e.lastRepaintLines[:0]
	e.lastRepaintKind = "cursor_only"

	overlayRows := e.overlayRows(s)
	textHeight := s.Height - 1 - len(overlayRows)
	if textHeight < 0 {
		textHeight = 0
	}
	first := s.View.First
	lastExcl := first + textHeight

	w := backend.NewBatchWriter()
	paintLine := func(line int) {
		if line < first || line >= lastExcl {
			return
		}
		relY := line - first
		w.MoveTo(0, relY)
		w.ClearLine(0, relY)
		if _, ok := s.State.Buffer.Line(line); ok {
			paintContent(w, s.State.LineContent(line), s.Width)
		}
	}

	prev := e.cache.LastCursorLine
	curr := s.View.Cursor.Line
	if prev >= 0 && prev != curr {
		paintLine(prev)
		e.lastRepaintLines = append(e.lastRepaintLines, prev)
	}
	paintLine(curr)
	if !containsInt(e.lastRepaintLines, curr) {
		e.lastRepaintLines = append(e.lastRepaintLines, curr)
	}

	if span, ok := e.cursorSpan(s.State, s.View, first, lastExcl); ok && span.startCol < s.Width {
		w.MoveTo(span.startCol, span.line-first)
		e.printCursorWithFallback(w, s.State, s.View)
	}

	overlay.PaintRows(w, overlayRows, s.Width, s.Height)
	e.maybePaintStatus(w, s.Status, s.Height)

	prints, cells, err := w.Flush(e.sink)
	if err != nil {
		return err
	}
	e.metrics.CountCursorOnlyFrame()
	e.metrics.RecordFrameNanos(uint64(time.Since(start).Nanoseconds()))
	e.metrics.AddOutput(prints, cells)
	e.cache.LastCursorLine = curr
	return nil
}

// RenderLines repaints only the dirty candidate lines plus the old and new
// cursor lines, escalating to a full frame when the candidate set covers
// too much of the viewport or the cache is cold.
func (e *Engine) RenderLines(s Snapshot, tracker *dirty.Tracker) error {
	start := time.Now()
	if s.Height == 0 {
		return nil
	}
	e.lastRepaintLines = e.lastRepaintLines[:0]
	e.lastRepaintKind = "lines"

	overlayRows := e.overlayRows(s)
	textHeight := s.Height - 1 - len(overlayRows)
	if textHeight < 0 {
		textHeight = 0
	}
	first := s.View.First
	visibleRows := textHeight
	lastExcl := first + visibleRows

	// Cold cache means hashes describe some other viewport; diffing against
	// them would repaint the wrong rows.
	if e.cache.ViewportStart != first || e.cache.Width != s.Width {
		return e.renderFull(s, "escalated_full")
	}

	candidates, all := tracker.TakeInViewport(first, visibleRows)
	if all {
		return e.renderFull(s, "escalated_full")
	}
	if old := e.cache.LastCursorLine; old >= first && old < lastExcl {
		candidates = append(candidates, old)
	}
	curr := s.View.Cursor.Line
	if curr >= first && curr < lastExcl {
		candidates = append(candidates, curr)
	}
	if len(candidates) == 0 {
		return nil
	}
	candidates = sortedUnique(candidates)

	if float64(len(candidates)) >= float64(visibleRows)*e.escalationPct {
		e.metrics.CountEscalation()
		return e.renderFull(s, "escalated_full")
	}

	e.metrics.CountLinesFrame()
	e.metrics.AddDirtyCandidate(len(candidates))

	w := backend.NewBatchWriter()
	repainted := 0
	for _, line := range candidates {
		if line < first || line >= lastExcl {
			continue
		}
		if _, ok := s.State.Buffer.Line(line); !ok {
			continue
		}
		relY := line - first
		content := s.State.LineContent(line)
		h := linecache.ComputeHash(content)

		changed := true
		if entry, ok := e.cache.Get(relY); ok && entry == h {
			changed = false
		}
		// Cursor lines always repaint: highlight state changed even when
		// content did not.
		if line == curr || line == e.cache.LastCursorLine {
			changed = true
		}
		if !changed {
			continue
		}

		e.metrics.CountTrimAttempt()
		trimmed := false
		if old, ok := e.cache.PrevText(relY); ok {
			if tr, ok := e.tryTrimLine(old, content, s.Width); ok {
				w.MoveTo(tr.prefixCols, relY)
				paintContent(w, tr.interior, s.Width-tr.prefixCols)
				e.metrics.CountTrimSuccess(tr.colsSaved)
				trimmed = true
			}
		}
		if !trimmed {
			w.MoveTo(0, relY)
			w.ClearLine(0, relY)
			paintContent(w, content, s.Width)
		}
		e.cache.SetHash(relY, h)
		e.cache.SetPrevText(relY, content)
		repainted++
		e.lastRepaintLines = append(e.lastRepaintLines, line)
	}

	if span, ok := e.cursorSpan(s.State, s.View, first, lastExcl); ok && span.startCol < s.Width {
		w.MoveTo(span.startCol, span.line-first)
		e.printCursorWithFallback(w, s.State, s.View)
	}
	overlay.PaintRows(w, overlayRows, s.Width, s.Height)
	e.maybePaintStatus(w, s.Status, s.Height)

	prints, cells, err := w.Flush(e.sink)
	if err != nil {
		return err
	}
	e.metrics.AddDirtyRepainted(repainted)
	e.metrics.RecordFrameNanos(uint64(time.Since(start).Nanoseconds()))
	e.metrics.AddOutput(prints, cells)
	e.cache.LastCursorLine = curr
	return nil
}

// RenderScrollShift moves on-screen rows with terminal scroll-region
// commands and repaints only the rows entering the viewport plus cursor
// housekeeping. Falls back to a full frame when the cache is cold, the
// terminal lacks scroll regions, or the shift is degenerate.
func (e *Engine) RenderScrollShift(s Snapshot, oldFirst, newFirst int) error {
	if s.Height == 0 || s.Width == 0 {
		return nil
	}
	delta := newFirst - oldFirst
	if delta == 0 {
		return nil
	}
	overlayRows := e.overlayRows(s)
	textHeight := s.Height - 1 - len(overlayRows)
	if textHeight < 0 {
		textHeight = 0
	}
	visibleRows := textHeight
	entering := delta
	if entering < 0 {
		entering = -entering
	}
	if entering >= visibleRows {
		e.metrics.CountScrollDegraded()
		return e.RenderFull(s)
	}
	if e.cache.Width != s.Width || e.cache.ViewportStart != oldFirst || e.cache.Len() != visibleRows {
		e.metrics.CountScrollDegraded()
		return e.RenderFull(s)
	}
	if !e.caps.SupportsScrollRegion {
		e.metrics.CountScrollDegraded()
		return e.RenderFull(s)
	}

	start := time.Now()
	e.lastRepaintLines = e.lastRepaintLines[:0]
	e.lastRepaintKind = "scroll_shift"

	w := backend.NewBatchWriter()
	w.Raw(backend.SetScrollRegion(textHeight))
	if delta > 0 {
		// Viewport moved down: content scrolls up within the region.
		w.Raw(backend.ScrollRegionUp(delta))
	} else {
		w.Raw(backend.ScrollRegionDown(-delta))
	}

	repaintRow := func(row int) {
		line := newFirst + row
		w.MoveTo(0, row)
		w.ClearLine(0, row)
		if _, ok := s.State.Buffer.Line(line); ok {
			content := s.State.LineContent(line)
			paintContent(w, content, s.Width)
			e.cache.SetPrevText(row, content)
		}
		e.lastRepaintLines = append(e.lastRepaintLines, line)
	}

	if delta > 0 {
		for i := 0; i < entering; i++ {
			repaintRow(visibleRows - entering + i)
		}
	} else {
		for i := 0; i < entering; i++ {
			repaintRow(i)
		}
	}
	repainted := entering

	// The old cursor line keeps its reverse-video cluster after the shift;
	// repaint it when it survives in the viewport.
	oldCursor := e.cache.LastCursorLine
	currCursor := s.View.Cursor.Line
	if oldCursor >= 0 && oldCursor != currCursor &&
		oldCursor >= newFirst && oldCursor < newFirst+visibleRows &&
		!containsInt(e.lastRepaintLines, oldCursor) {
		repaintRow(oldCursor - newFirst)
		repainted++
	}

	if span, ok := e.cursorSpan(s.State, s.View, newFirst, newFirst+visibleRows); ok && span.startCol < s.Width {
		w.MoveTo(span.startCol, span.line-newFirst)
		e.printCursorWithFallback(w, s.State, s.View)
	}

	w.Raw(backend.ResetScrollRegion())
	overlay.PaintRows(w, overlayRows, s.Width, s.Height)
	e.maybePaintStatus(w, s.Status, s.Height)

	prints, cells, err := w.Flush(e.sink)
	if err != nil {
		return err
	}

	e.metrics.CountScrollShift(visibleRows - repainted)
	e.metrics.AddDirtyRepainted(repainted)
	e.metrics.RecordFrameNanos(uint64(time.Since(start).Nanoseconds()))
	e.metrics.AddOutput(prints, cells)

	e.cache.ShiftForScroll(delta, newFirst, visibleRows, s.State.Buffer.Line)
	e.cache.LastCursorLine = currCursor
	return nil
}

// cursorSpan describes the screen span the cursor cluster occupies.
type cursorSpan struct {
	line     int
	startCol int
	width    int
}

func (e *Engine) cursorSpan(st *editor.State, view editor.View, first, lastExcl int) (cursorSpan, bool) {
	line := view.Cursor.Line
	if line < first || line >= lastExcl || line >= st.Buffer.LineCount() {
		return cursorSpan{}, false
	}
	content := st.LineContent(line)
	b := view.Cursor.Byte
	if b > len(content) {
		b = len(content)
	}
	col := text.VisualCol(content, b)
	next := text.NextBoundary(content, b)
	cw := text.ClusterWidth(content[b:next])
	if cw < 1 {
		cw = 1
	}
	return cursorSpan{line: line, startCol: col, width: cw}, true
}

// printCursorWithFallback emits the cursor cluster in reverse video, or a
// reversed space past end of line.
func (e *Engine) printCursorWithFallback(w *backend.BatchWriter, st *editor.State, view editor.View) {
	if _, ok := st.Buffer.Line(view.Cursor.Line); !ok {
		w.Print(backend.ReverseVideo(" "))
		return
	}
	content := st.LineContent(view.Cursor.Line)
	b := view.Cursor.Byte
	if b > len(content) {
		b = len(content)
	}
	next := text.NextBoundary(content, b)
	cluster := content[b:next]
	if cluster == "" {
		cluster = " "
	}
	w.Print(backend.ReverseVideo(cluster))
}

// maybePaintStatus repaints the status row only when its text changed
// since the last paint.
func (e *Engine) maybePaintStatus(w *backend.BatchWriter, status string, height int) {
	if height == 0 {
		return
	}
	if e.prevStatusKnown && status == e.prevStatus {
		e.metrics.CountStatusSkipped()
		return
	}
	y := height - 1
	w.MoveTo(0, y)
	w.ClearLine(0, y)
	w.Print(status)
	e.prevStatus = status
	e.prevStatusKnown = true
}

// emitFrame translates a built frame into writer commands, one MoveTo per
// row, emitting each leader cluster exactly once.
func (e *Engine) emitFrame(frame *core.Frame) (prints, cells uint64, err error) {
	w := backend.NewBatchWriter()
	for y := 0; y < frame.Height; y++ {
		w.MoveTo(0, y)
		for _, l := range frame.RowLeaders(y) {
			if l.Flags.Has(core.FlagReverse) {
				w.Print(backend.ReverseVideo(l.Cluster))
			} else {
				w.Print(l.Cluster)
			}
		}
	}
	return w.Flush(e.sink)
}

// paintContent emits a line's clusters up to the terminal width.
func paintContent(w *backend.BatchWriter, content string, width int) {
	off, col := 0, 0
	for off < len(content) && col < width {
		next := text.NextBoundary(content, off)
		cluster := content[off:next]
		cw := text.ClusterWidth(cluster)
		if cw < 1 {
			cw = 1
		}
		w.Print(cluster)
		col += cw
		off = next
	}
}

// paintFrameRow places a string's clusters into a frame row.
func paintFrameRow(frame *core.Frame, y int, content string, width int) {
	off, col := 0, 0
	for off < len(content) && col < width {
		next := text.NextBoundary(content, off)
		cluster := content[off:next]
		cw := text.ClusterWidth(cluster)
		if cw < 1 {
			cw = 1
		}
		frame.SetCluster(col, y, cluster, cw, 0)
		col += cw
		off = next
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func sortedUnique(s []int) []int {
	if len(s) < 2 {
		return s
	}
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
