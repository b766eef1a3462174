// Package editor holds the editor-side state the renderer consumes: the
// active buffer, cursor and viewport position, modal state, and the few
// status-line inputs (file name, dirty flag, command line, messages).
package editor

import (
	"github.com/tern-editor/tern/internal/text"
)

// Mode is the modal editing state.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeVisual
	ModeCommand
)

// String returns the display name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeVisual:
		return "VISUAL"
	case ModeCommand:
		return "COMMAND"
	default:
		return "NORMAL"
	}
}

// Cursor is a buffer position: line index plus byte offset within the line
// content (trailing newline excluded).
type Cursor struct {
	Line int
	Byte int
}

// View describes what the terminal shows: the first visible buffer line and
// the cursor.
type View struct {
	First  int
	Cursor Cursor
}

// OverlayMode controls the diagnostics overlay rows above the status line.
type OverlayMode struct {
	Enabled bool
	Lines   int
}

// State is the editor state snapshot the render paths read.
type State struct {
	Buffer *text.Buffer
	Mode   Mode

	// FileName is the path being edited; empty for a scratch buffer.
	FileName string
	// Dirty is true when the buffer has unsaved changes.
	Dirty bool

	// CommandActive is true while the command line is being typed.
	CommandActive bool
	// CommandBuffer is the command text, without the ':' prompt.
	CommandBuffer string

	// Message is an ephemeral status message shown right-aligned.
	Message string

	Overlay OverlayMode
}

// NewState creates editor state around a buffer.
func NewState(buf *text.Buffer) *State {
	return &State{Buffer: buf}
}

// LineContent returns the content of a buffer line without its line ending.
// Missing lines read as empty.
func (s *State) LineContent(i int) string {
	raw, ok := s.Buffer.Line(i)
	if !ok {
		return ""
	}
	return text.TrimLineEnding(raw)
}

// ClampCursor keeps the cursor within the buffer.
func (s *State) ClampCursor(c *Cursor) {
	if c.Line < 0 {
		c.Line = 0
	}
	if last := s.Buffer.LineCount() - 1; c.Line > last {
		c.Line = last
	}
	if c.Byte < 0 {
		c.Byte = 0
	}
	if l := s.Buffer.LineLen(c.Line); c.Byte > l {
		c.Byte = l
	}
}
