package app

import (
	"fmt"
	"unicode/utf8"

	"github.com/tern-editor/tern/internal/editor"
	"github.com/tern-editor/tern/internal/renderer/schedule"
	"github.com/tern-editor/tern/internal/text"
)

const (
	keyEscape    = 0x1b
	keyEnter     = '\r'
	keyBackspace = 0x7f
	keyCtrlD     = 0x04
	keyCtrlH     = 0x08
	keyCtrlU     = 0x15
)

// HandleKey feeds one input byte through the modal state machine. It
// returns ErrQuit when the user asked to exit.
func (s *Session) HandleKey(b byte) error {
	switch {
	case s.state.CommandActive:
		return s.handleCommandKey(b)
	case s.state.Mode == editor.ModeInsert:
		return s.handleInsertKey(b)
	default:
		return s.handleNormalKey(b)
	}
}

// count consumes the pending count prefix, defaulting to one.
func (s *Session) count() int {
	n := s.pendingCount
	s.pendingCount = 0
	if n < 1 {
		return 1
	}
	return n
}

func (s *Session) handleNormalKey(b byte) error {
	if b >= '1' && b <= '9' || (b == '0' && s.pendingCount > 0) {
		s.pendingCount = s.pendingCount*10 + int(b-'0')
		return nil
	}

	switch b {
	case keyEscape:
		s.pendingCount = 0
		s.clearMessage()

	case 'h':
		s.moveHorizontal(-s.count())
	case 'l':
		s.moveHorizontal(s.count())
	case 'j':
		s.moveVertical(s.count())
	case 'k':
		s.moveVertical(-s.count())

	case keyCtrlD:
		s.scrollHalfPage(1)
	case keyCtrlU:
		s.scrollHalfPage(-1)

	case 'g':
		s.jumpToLine(0)
	case 'G':
		s.jumpToLine(s.state.Buffer.LineCount() - 1)

	case 'i':
		s.pendingCount = 0
		s.state.Mode = editor.ModeInsert
		s.clearMessage()
		s.sched.MarkStatus()

	case 'x':
		s.deleteClusters(s.count())

	case 'o':
		s.pendingCount = 0
		s.openLineBelow()

	case ':':
		s.pendingCount = 0
		s.state.CommandActive = true
		s.state.CommandBuffer = ""
		s.clearMessage()
		s.sched.MarkStatus()

	default:
		s.pendingCount = 0
	}
	return nil
}

// moveHorizontal moves the cursor n clusters within the current line,
// left for negative n.
func (s *Session) moveHorizontal(n int) {
	content := s.state.LineContent(s.view.Cursor.Line)
	b := s.view.Cursor.Byte
	for ; n > 0; n-- {
		b = text.NextBoundary(content, b)
	}
	for ; n < 0; n++ {
		b = text.PrevBoundary(content, b)
	}
	if b > len(content) {
		b = len(content)
	}
	if b == s.view.Cursor.Byte {
		return
	}
	s.view.Cursor.Byte = b
	s.markCursorMotion()
}

// moveVertical moves the cursor n lines, clamping the byte offset to the
// destination line.
func (s *Session) moveVertical(n int) {
	c := s.view.Cursor
	c.Line += n
	s.state.ClampCursor(&c)
	if c == s.view.Cursor {
		return
	}
	s.view.Cursor = c
	s.markCursorMotion()
}

// jumpToLine places the cursor at the start of the given line.
func (s *Session) jumpToLine(line int) {
	s.pendingCount = 0
	c := editor.Cursor{Line: line}
	s.state.ClampCursor(&c)
	if c == s.view.Cursor {
		return
	}
	s.view.Cursor = c
	s.markCursorMotion()
}

// scrollHalfPage shifts the viewport half a text page in the given
// direction and drags the cursor along.
func (s *Session) scrollHalfPage(dir int) {
	s.pendingCount = 0
	th := s.textHeight()
	step := th / 2
	if step < 1 {
		step = 1
	}
	oldFirst := s.view.First
	first := oldFirst + dir*step
	if max := s.state.Buffer.LineCount() - 1; first > max {
		first = max
	}
	if first < 0 {
		first = 0
	}

	c := s.view.Cursor
	c.Line += first - oldFirst
	s.state.ClampCursor(&c)
	if c.Line < first {
		c.Line = first
	}
	moved := c != s.view.Cursor
	s.view.Cursor = c

	if first == oldFirst {
		if moved {
			s.markCursorMotion()
		}
		return
	}
	s.view.First = first
	s.sched.Mark(schedule.Scroll(oldFirst, first))
}

// markCursorMotion records the render work for a pure cursor move: a
// scroll when the viewport had to follow, a cursor-only repaint
// otherwise. Both paths carry the status line along, so no status delta
// is needed.
func (s *Session) markCursorMotion() {
	if !s.ensureVisible() {
		s.sched.Mark(schedule.CursorOnly())
	}
}

// lineBottom returns the exclusive end of the visible line range.
func (s *Session) lineBottom() int {
	return s.view.First + s.textHeight()
}

// markLineEdit records a single-line content change.
func (s *Session) markLineEdit(line int) {
	s.tracker.Mark(line)
	s.sched.Mark(schedule.Lines(line, line+1))
	s.setDirty()
}

// markTailEdit records an edit that shifts every visible line at or
// below the given one.
func (s *Session) markTailEdit(line int) {
	bottom := s.lineBottom()
	if bottom <= line {
		bottom = line + 1
	}
	s.tracker.MarkRange(line, bottom)
	s.sched.Mark(schedule.Lines(line, bottom))
	s.setDirty()
}

// deleteClusters deletes n grapheme clusters at the cursor.
func (s *Session) deleteClusters(n int) {
	line := s.view.Cursor.Line
	deleted := false
	for ; n > 0; n-- {
		content := s.state.LineContent(line)
		b := s.view.Cursor.Byte
		if b >= len(content) {
			break
		}
		end := text.NextBoundary(content, b)
		if err := s.state.Buffer.DeleteRange(line, b, end); err != nil {
			s.log.Error("delete: %v", err)
			return
		}
		deleted = true
	}
	if !deleted {
		return
	}
	s.state.ClampCursor(&s.view.Cursor)
	s.markLineEdit(line)
}

// openLineBelow inserts an empty line under the cursor and enters insert
// mode on it.
func (s *Session) openLineBelow() {
	line := s.view.Cursor.Line
	if err := s.state.Buffer.InsertNewline(line, s.state.Buffer.LineLen(line)); err != nil {
		s.log.Error("open line: %v", err)
		return
	}
	s.view.Cursor = editor.Cursor{Line: line + 1}
	s.state.Mode = editor.ModeInsert
	s.markTailEdit(line + 1)
	s.ensureVisible()
}

func (s *Session) handleInsertKey(b byte) error {
	switch {
	case b == keyEscape:
		s.pendingInput = s.pendingInput[:0]
		s.state.Mode = editor.ModeNormal
		s.sched.MarkStatus()

	case b == keyEnter:
		s.pendingInput = s.pendingInput[:0]
		line := s.view.Cursor.Line
		if err := s.state.Buffer.InsertNewline(line, s.view.Cursor.Byte); err != nil {
			s.log.Error("newline: %v", err)
			return nil
		}
		s.view.Cursor = editor.Cursor{Line: line + 1}
		s.markTailEdit(line)
		s.ensureVisible()

	case b == keyBackspace || b == keyCtrlH:
		s.pendingInput = s.pendingInput[:0]
		s.deleteBackward()

	default:
		s.insertByte(b)
	}
	return nil
}

// insertByte accumulates UTF-8 input and inserts complete runes at the
// cursor. Control bytes outside the printable range are dropped.
func (s *Session) insertByte(b byte) {
	if len(s.pendingInput) == 0 && b < 0x20 {
		return
	}
	s.pendingInput = append(s.pendingInput, b)
	if !utf8.FullRune(s.pendingInput) {
		if len(s.pendingInput) >= utf8.UTFMax {
			s.pendingInput = s.pendingInput[:0]
		}
		return
	}
	ins := string(s.pendingInput)
	s.pendingInput = s.pendingInput[:0]

	line := s.view.Cursor.Line
	if err := s.state.Buffer.InsertAt(line, s.view.Cursor.Byte, ins); err != nil {
		s.log.Error("insert: %v", err)
		return
	}
	s.view.Cursor.Byte += len(ins)
	s.markLineEdit(line)
}

// deleteBackward removes the cluster before the cursor, joining with the
// previous line at a line start.
func (s *Session) deleteBackward() {
	line := s.view.Cursor.Line
	b := s.view.Cursor.Byte

	if b > 0 {
		content := s.state.LineContent(line)
		prev := text.PrevBoundary(content, b)
		if err := s.state.Buffer.DeleteRange(line, prev, b); err != nil {
			s.log.Error("backspace: %v", err)
			return
		}
		s.view.Cursor.Byte = prev
		s.markLineEdit(line)
		return
	}

	if line == 0 {
		return
	}
	prevLen := s.state.Buffer.LineLen(line - 1)
	if err := s.state.Buffer.JoinLines(line - 1); err != nil {
		s.log.Error("join: %v", err)
		return
	}
	s.view.Cursor = editor.Cursor{Line: line - 1, Byte: prevLen}
	s.markTailEdit(line - 1)
	s.ensureVisible()
}

func (s *Session) handleCommandKey(b byte) error {
	switch {
	case b == keyEscape:
		s.state.CommandActive = false
		s.state.CommandBuffer = ""
		s.sched.MarkStatus()

	case b == keyEnter:
		cmd := s.state.CommandBuffer
		s.state.CommandActive = false
		s.state.CommandBuffer = ""
		s.sched.MarkStatus()
		return s.execCommand(cmd)

	case b == keyBackspace || b == keyCtrlH:
		if s.state.CommandBuffer == "" {
			s.state.CommandActive = false
		} else {
			s.state.CommandBuffer = s.state.CommandBuffer[:len(s.state.CommandBuffer)-1]
		}
		s.sched.MarkStatus()

	case b >= 0x20:
		s.state.CommandBuffer += string(b)
		s.sched.MarkStatus()
	}
	return nil
}

// execCommand runs an ex-style command.
func (s *Session) execCommand(cmd string) error {
	switch cmd {
	case "":
		return nil

	case "q":
		if s.state.Dirty {
			s.state.Message = "unsaved changes (:q! overrides)"
			s.sched.MarkStatus()
			return nil
		}
		return ErrQuit

	case "q!":
		return ErrQuit

	case "w":
		if err := s.writeFile(); err != nil {
			s.state.Message = err.Error()
		}
		s.sched.MarkStatus()
		return nil

	case "wq", "x":
		if err := s.writeFile(); err != nil {
			s.state.Message = err.Error()
			s.sched.MarkStatus()
			return nil
		}
		return ErrQuit

	case "overlay":
		s.state.Overlay.Enabled = !s.state.Overlay.Enabled
		// The overlay covers bottom text rows, so the cursor may need to
		// come back on screen.
		s.ensureVisible()
		s.sched.Mark(schedule.Full())
		return nil

	default:
		s.state.Message = fmt.Sprintf("not an editor command: %s", cmd)
		s.sched.MarkStatus()
		return nil
	}
}
