// Package statusline composes the bottom status row. Composition is a
// two-stage pipeline: Compose produces ordered segments, Format renders
// them into the display string. An optional Lua hook can replace the
// formatting stage with a user-defined layout.
package statusline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tern-editor/tern/internal/editor"
	"github.com/tern-editor/tern/internal/text"
)

// Context carries the inputs the status line renders from.
type Context struct {
	Mode editor.Mode
	// Line and Col are zero-based; display is one-based.
	Line int
	Col  int

	CommandActive bool
	// CommandBuffer is the command text without the ':' prompt.
	CommandBuffer string

	// FileName is the full path; only the base name is displayed.
	FileName string
	Dirty    bool
}

// SegmentKind identifies a status segment.
type SegmentKind int

const (
	SegMode SegmentKind = iota
	SegFileName
	SegPosition
	SegCommand
)

// Segment is one ordered piece of the status line.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Compose builds the ordered segment list for a context.
func Compose(ctx Context) []Segment {
	var file string
	switch {
	case ctx.FileName == "" && ctx.Dirty:
		file = " [No Name]*"
	case ctx.FileName == "":
		file = " [No Name]"
	case ctx.Dirty:
		file = " " + filepath.Base(ctx.FileName) + "*"
	default:
		file = " " + filepath.Base(ctx.FileName)
	}

	segs := []Segment{
		{Kind: SegMode, Text: ctx.Mode.String()},
		{Kind: SegFileName, Text: file},
		{Kind: SegPosition, Text: fmt.Sprintf(" Ln %d, Col %d :", ctx.Line+1, ctx.Col+1)},
	}
	if ctx.CommandActive {
		segs = append(segs, Segment{Kind: SegCommand, Text: strings.TrimPrefix(ctx.CommandBuffer, ":")})
	}
	return segs
}

// Format renders segments into the display string.
func Format(segs []Segment) string {
	var b strings.Builder
	b.Grow(48)
	for _, seg := range segs {
		if seg.Kind == SegMode {
			b.WriteByte('[')
			b.WriteString(seg.Text)
			b.WriteByte(']')
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Build renders the status line for a context.
func Build(ctx Context) string {
	return Format(Compose(ctx))
}

// BuildFromState derives the context from editor state and view and
// renders the line. The column is the cursor's visual column, so wide
// clusters count as two.
func BuildFromState(st *editor.State, view editor.View) string {
	content := st.LineContent(view.Cursor.Line)
	b := view.Cursor.Byte
	if b > len(content) {
		b = len(content)
	}
	return Build(Context{
		Mode:          st.Mode,
		Line:          view.Cursor.Line,
		Col:           text.VisualCol(content, b),
		CommandActive: st.CommandActive,
		CommandBuffer: st.CommandBuffer,
		FileName:      st.FileName,
		Dirty:         st.Dirty,
	})
}

// WithMessage appends an ephemeral message right-aligned to the terminal
// width. The message is dropped when the command line is active or when
// it cannot fit with at least one space of separation.
func WithMessage(base, message string, commandActive bool, width int) string {
	if message == "" || commandActive || width <= 0 {
		return base
	}
	baseCols := text.StringCols(base)
	msgCols := text.StringCols(message)
	if msgCols >= width || baseCols+1+msgCols > width {
		return base
	}
	startCol := width - msgCols
	if startCol > baseCols {
		return base + strings.Repeat(" ", startCol-baseCols) + message
	}
	return base + " " + message
}
