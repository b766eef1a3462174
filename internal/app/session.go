package app

import (
	"fmt"
	"os"

	"github.com/tern-editor/tern/internal/config"
	"github.com/tern-editor/tern/internal/editor"
	"github.com/tern-editor/tern/internal/renderer"
	"github.com/tern-editor/tern/internal/renderer/backend"
	"github.com/tern-editor/tern/internal/renderer/dirty"
	"github.com/tern-editor/tern/internal/renderer/overlay"
	"github.com/tern-editor/tern/internal/renderer/schedule"
	"github.com/tern-editor/tern/internal/statusline"
	"github.com/tern-editor/tern/internal/text"
)

// Session owns one open buffer, its viewport, and the render pipeline
// around it. Input mutates the editor state and records deltas with the
// scheduler; RenderFrame drains exactly one decision per call.
type Session struct {
	cfg config.Config
	log *Logger

	state  *editor.State
	view   editor.View
	width  int
	height int

	engine  *renderer.Engine
	sched   *schedule.Scheduler
	tracker *dirty.Tracker
	format  *statusline.LuaFormatter

	// pendingCount is a normal-mode count prefix, 0 when absent.
	pendingCount int
	// pendingInput buffers an incomplete UTF-8 sequence in insert mode.
	pendingInput []byte
}

// SessionOption configures a session.
type SessionOption func(*sessionSetup)

type sessionSetup struct {
	logger *Logger
	width  int
	height int
	caps   *backend.Capabilities
}

// WithLogger attaches a logger to the session.
func WithLogger(l *Logger) SessionOption {
	return func(s *sessionSetup) { s.logger = l }
}

// WithSize sets the initial terminal geometry.
func WithSize(width, height int) SessionOption {
	return func(s *sessionSetup) { s.width, s.height = width, height }
}

// WithCapabilities overrides terminal capability detection.
func WithCapabilities(caps backend.Capabilities) SessionOption {
	return func(s *sessionSetup) { c := caps; s.caps = &c }
}

// NewSession builds a session around an output sink. The render tunables
// come from the configuration; the first frame is already scheduled as a
// full repaint.
func NewSession(cfg config.Config, sink backend.Sink, opts ...SessionOption) (*Session, error) {
	setup := sessionSetup{width: 80, height: 24}
	for _, opt := range opts {
		opt(&setup)
	}

	log := setup.logger
	if log == nil {
		log = NullLogger
	}

	s := &Session{
		cfg:     cfg,
		log:     log,
		state:   editor.NewState(text.NewBuffer("")),
		width:   setup.width,
		height:  setup.height,
		sched:   schedule.New(),
		tracker: dirty.NewTracker(),
	}
	s.sched.SetScrollShiftMax(cfg.Render.ScrollShiftMax)
	s.state.Overlay.Lines = cfg.Render.OverlayLines
	s.state.Overlay.Enabled = cfg.Render.OverlayLines > 0

	engOpts := []renderer.Option{
		renderer.WithEscalationThreshold(cfg.Render.LinesEscalationPct),
		renderer.WithTrimMinSavings(cfg.Render.TrimMinSavingsCols),
		renderer.WithOverlaySource(func(max int) []string {
			return overlay.BuildMetricsLines(s.engine.Metrics(), s.sched.MetricsSnapshot(), max)
		}),
	}
	if setup.caps != nil {
		engOpts = append(engOpts, renderer.WithCapabilities(*setup.caps))
	}
	s.engine = renderer.New(sink, engOpts...)

	if path := cfg.Editor.StatusScript; path != "" {
		script, err := os.ReadFile(path)
		if err != nil {
			log.Warn("status script unreadable: %v", err)
		} else if f, ferr := statusline.NewLuaFormatter(string(script)); ferr != nil {
			log.Warn("status script rejected: %v", ferr)
		} else {
			s.format = f
		}
	}

	s.sched.Mark(schedule.Full())
	return s, nil
}

// Close releases session resources.
func (s *Session) Close() {
	if s.format != nil {
		s.format.Close()
		s.format = nil
	}
}

// State returns the editor state the session mutates.
func (s *Session) State() *editor.State { return s.state }

// View returns the current viewport.
func (s *Session) View() editor.View { return s.view }

// Engine returns the render engine.
func (s *Session) Engine() *renderer.Engine { return s.engine }

// Scheduler returns the delta scheduler.
func (s *Session) Scheduler() *schedule.Scheduler { return s.sched }

// Size returns the current terminal geometry.
func (s *Session) Size() (width, height int) { return s.width, s.height }

// overlayRowCount returns how many rows the diagnostics overlay covers,
// matching what the render paths paint from the builtin metrics source.
func (s *Session) overlayRowCount() int {
	if !s.state.Overlay.Enabled {
		return 0
	}
	n := s.state.Overlay.Lines
	if n <= 0 || n > overlay.DefaultLines {
		n = overlay.DefaultLines
	}
	return n
}

// textHeight returns the number of buffer rows usable for scrolling: the
// screen minus the status line and any active overlay rows. The cursor
// must never be left under the overlay.
func (s *Session) textHeight() int {
	h := s.height - 1 - s.overlayRowCount()
	if h < 0 {
		h = 0
	}
	return h
}

// OpenFile loads a file into the buffer. A missing file leaves an empty
// buffer with the name attached, vi style.
func (s *Session) OpenFile(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		s.state.Buffer.ReplaceAll(string(data))
	case os.IsNotExist(err):
		s.state.Buffer.ReplaceAll("")
		s.state.Message = fmt.Sprintf("%q [new file]", path)
	default:
		return fmt.Errorf("open %s: %w", path, err)
	}
	s.state.FileName = path
	s.state.Dirty = false
	s.view = editor.View{}
	// Whole-buffer replacement invalidates every cached hash and the
	// painted-text shadow, not just the rows the next frame touches.
	s.engine.InvalidateForResize()
	s.tracker.Clear()
	s.sched.Mark(schedule.Full())
	s.log.Info("opened %s (%d lines)", path, s.state.Buffer.LineCount())
	return nil
}

// Resize records a new terminal geometry. The line cache is dropped and
// the next frame repaints everything.
func (s *Session) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.engine.InvalidateForResize()
	s.ensureVisible()
	s.tracker.Clear()
	s.sched.Mark(schedule.Full())
	s.log.Debug("resize to %dx%d", width, height)
}

// Pending reports whether a frame is waiting to be rendered.
func (s *Session) Pending() bool { return s.sched.Pending() }

// RenderFrame consumes one scheduler decision and renders it. It returns
// false when nothing was pending.
func (s *Session) RenderFrame() (bool, error) {
	d, ok := s.sched.Consume()
	if !ok {
		return false, nil
	}
	snap := renderer.Snapshot{
		State:  s.state,
		View:   s.view,
		Width:  s.width,
		Height: s.height,
		Status: s.statusLine(),
	}
	if err := s.engine.Apply(d, snap, s.tracker); err != nil {
		s.log.Error("render %s: %v", d.Effective.Kind, err)
		return true, err
	}
	// A full frame rewarms the whole cache, so line marks from this
	// cycle are already painted.
	if d.Effective.Kind == schedule.KindFull {
		s.tracker.Clear()
	}
	return true, nil
}

// statusContext assembles the status line inputs from the session state.
func (s *Session) statusContext() statusline.Context {
	content := s.state.LineContent(s.view.Cursor.Line)
	b := s.view.Cursor.Byte
	if b > len(content) {
		b = len(content)
	}
	return statusline.Context{
		Mode:          s.state.Mode,
		Line:          s.view.Cursor.Line,
		Col:           text.VisualCol(content, b),
		CommandActive: s.state.CommandActive,
		CommandBuffer: s.state.CommandBuffer,
		FileName:      s.state.FileName,
		Dirty:         s.state.Dirty,
	}
}

// statusLine renders the status text for the next frame. A configured
// Lua formatter takes precedence; its errors fall back to the builtin
// layout inside Format.
func (s *Session) statusLine() string {
	ctx := s.statusContext()
	var base string
	if s.format != nil {
		out, err := s.format.Format(ctx)
		if err != nil {
			s.log.Warn("status formatter: %v", err)
		}
		base = out
	} else {
		base = statusline.Build(ctx)
	}
	return statusline.WithMessage(base, s.state.Message, s.state.CommandActive, s.width)
}

// ensureVisible scrolls the viewport so the cursor row is on screen and
// records the scroll delta. It reports whether the viewport moved.
func (s *Session) ensureVisible() bool {
	th := s.textHeight()
	if th == 0 {
		return false
	}
	oldFirst := s.view.First
	first := oldFirst
	if s.view.Cursor.Line < first {
		first = s.view.Cursor.Line
	}
	if s.view.Cursor.Line >= first+th {
		first = s.view.Cursor.Line - th + 1
	}
	if first < 0 {
		first = 0
	}
	if first == oldFirst {
		return false
	}
	s.view.First = first
	s.sched.Mark(schedule.Scroll(oldFirst, first))
	return true
}

// setDirty flips the dirty flag. No status delta: edits always carry a
// line delta whose frame repaints the status line.
func (s *Session) setDirty() {
	s.state.Dirty = true
}

// clearMessage drops an ephemeral status message if one is showing.
func (s *Session) clearMessage() {
	if s.state.Message != "" {
		s.state.Message = ""
		s.sched.MarkStatus()
	}
}

// writeFile persists the buffer to its file.
func (s *Session) writeFile() error {
	if s.state.FileName == "" {
		return ErrNoFileName
	}
	if err := os.WriteFile(s.state.FileName, []byte(s.state.Buffer.Snapshot()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.state.FileName, err)
	}
	s.state.Dirty = false
	s.state.Message = fmt.Sprintf("%q written", s.state.FileName)
	s.log.Info("wrote %s", s.state.FileName)
	return nil
}
