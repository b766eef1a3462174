package backend

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
)

// TerminalSink translates command batches into ANSI escape sequences on an
// io.Writer (normally the tty). Output is buffered and written with a
// single flush per batch; a failed flush surfaces as an error to the
// caller, which treats the frame as dropped.
type TerminalSink struct {
	out *bufio.Writer
}

// NewTerminalSink wraps a writer, typically os.Stdout.
func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{out: bufio.NewWriterSize(w, 32*1024)}
}

// Flush emits the batch and flushes the underlying writer once.
func (t *TerminalSink) Flush(cmds []Command) error {
	for _, c := range cmds {
		switch c.Kind {
		case CmdMoveTo:
			// ansi.CursorPosition is 1-based.
			t.out.WriteString(ansi.CursorPosition(c.X+1, c.Y+1))
		case CmdClearLine:
			t.out.WriteString(ansi.EraseLine(2))
		case CmdPrint, CmdRaw:
			t.out.WriteString(c.Text)
		}
	}
	if err := t.out.Flush(); err != nil {
		return fmt.Errorf("terminal flush: %w", err)
	}
	return nil
}

// EnterScreen switches to the alternate screen and hides the hardware
// cursor (the renderer paints a software cursor).
func (t *TerminalSink) EnterScreen() error {
	t.out.WriteString("\x1b[?1049h")
	t.out.WriteString("\x1b[?25l")
	t.out.WriteString(ansi.EraseDisplay(2))
	if err := t.out.Flush(); err != nil {
		return fmt.Errorf("terminal enter: %w", err)
	}
	return nil
}

// LeaveScreen restores the main screen and hardware cursor.
func (t *TerminalSink) LeaveScreen() error {
	t.out.WriteString("\x1b[?25h")
	t.out.WriteString("\x1b[?1049l")
	if err := t.out.Flush(); err != nil {
		return fmt.Errorf("terminal leave: %w", err)
	}
	return nil
}

// Scroll-region control sequences shared by the engine and the sink. The
// engine emits these as Raw commands so partial strategies stay sink
// agnostic.

// SetScrollRegion returns the sequence restricting scrolling to rows
// [1, bottom] (1-based, DECSTBM).
func SetScrollRegion(bottom int) string {
	return ansi.SetTopBottomMargins(1, bottom)
}

// ResetScrollRegion returns the sequence restoring the full-screen scroll
// region.
func ResetScrollRegion() string {
	return "\x1b[r"
}

// ScrollRegionUp returns the sequence scrolling the region up by n lines
// (content moves up, blank lines enter at the bottom).
func ScrollRegionUp(n int) string {
	return ansi.ScrollUp(n)
}

// ScrollRegionDown returns the sequence scrolling the region down by n
// lines (blank lines enter at the top).
func ScrollRegionDown(n int) string {
	return ansi.ScrollDown(n)
}

// ReverseVideo wraps s in reverse-video toggles for the software cursor.
func ReverseVideo(s string) string {
	return "\x1b[7m" + s + "\x1b[0m"
}
