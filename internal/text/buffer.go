// Package text provides line-indexed text storage and grapheme-cluster
// helpers for the renderer. The buffer exposes only the narrow read surface
// the render paths need (line lookup by index) plus the handful of edit
// operations the editor shell performs.
package text

import (
	"errors"
	"strings"
)

// Errors returned by buffer operations.
var (
	ErrLineOutOfRange   = errors.New("line out of range")
	ErrOffsetOutOfRange = errors.New("offset out of range")
)

// Buffer stores text as a table of lines. Every line except possibly the
// last ends with '\n'; a trailing newline in the source text produces a
// final empty line, so "a\nb\n" has three lines: "a\n", "b\n", "".
type Buffer struct {
	lines []string
}

// NewBuffer creates a buffer from initial content.
func NewBuffer(content string) *Buffer {
	return &Buffer{lines: splitLines(content)}
}

func splitLines(content string) []string {
	lines := make([]string, 0, strings.Count(content, "\n")+1)
	for {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, content)
			return lines
		}
		lines = append(lines, content[:i+1])
		content = content[i+1:]
	}
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the raw line at index, including any trailing newline.
// The second return is false when the index is out of range.
func (b *Buffer) Line(i int) (string, bool) {
	if i < 0 || i >= len(b.lines) {
		return "", false
	}
	return b.lines[i], true
}

// LineLen returns the length in bytes of the line at index, excluding the
// trailing newline. Returns 0 for out-of-range indices.
func (b *Buffer) LineLen(i int) int {
	if i < 0 || i >= len(b.lines) {
		return 0
	}
	return len(TrimLineEnding(b.lines[i]))
}

// InsertAt inserts s (which must not contain a newline) into the line at
// the given byte offset.
func (b *Buffer) InsertAt(line, byteOff int, s string) error {
	if line < 0 || line >= len(b.lines) {
		return ErrLineOutOfRange
	}
	content := TrimLineEnding(b.lines[line])
	if byteOff < 0 || byteOff > len(content) {
		return ErrOffsetOutOfRange
	}
	ending := b.lines[line][len(content):]
	b.lines[line] = content[:byteOff] + s + content[byteOff:] + ending
	return nil
}

// DeleteRange removes bytes [start, end) from the line's content.
func (b *Buffer) DeleteRange(line, start, end int) error {
	if line < 0 || line >= len(b.lines) {
		return ErrLineOutOfRange
	}
	content := TrimLineEnding(b.lines[line])
	if start < 0 || end < start || end > len(content) {
		return ErrOffsetOutOfRange
	}
	ending := b.lines[line][len(content):]
	b.lines[line] = content[:start] + content[end:] + ending
	return nil
}

// InsertNewline splits the line at the given byte offset, shifting all
// following lines down by one.
func (b *Buffer) InsertNewline(line, byteOff int) error {
	if line < 0 || line >= len(b.lines) {
		return ErrLineOutOfRange
	}
	content := TrimLineEnding(b.lines[line])
	if byteOff < 0 || byteOff > len(content) {
		return ErrOffsetOutOfRange
	}
	ending := b.lines[line][len(content):]
	head := content[:byteOff] + "\n"
	tail := content[byteOff:] + ending
	b.lines = append(b.lines, "")
	copy(b.lines[line+2:], b.lines[line+1:])
	b.lines[line] = head
	b.lines[line+1] = tail
	return nil
}

// JoinLines merges the line at index with the one below it.
func (b *Buffer) JoinLines(line int) error {
	if line < 0 || line+1 >= len(b.lines) {
		return ErrLineOutOfRange
	}
	b.lines[line] = TrimLineEnding(b.lines[line]) + b.lines[line+1]
	b.lines = append(b.lines[:line+1], b.lines[line+2:]...)
	return nil
}

// DeleteLine removes the entire line at index. The buffer always keeps at
// least one (possibly empty) line.
func (b *Buffer) DeleteLine(line int) error {
	if line < 0 || line >= len(b.lines) {
		return ErrLineOutOfRange
	}
	if len(b.lines) == 1 {
		b.lines[0] = ""
		return nil
	}
	b.lines = append(b.lines[:line], b.lines[line+1:]...)
	return nil
}

// ReplaceAll swaps the entire buffer content. Callers owning a render cache
// must invalidate it afterwards.
func (b *Buffer) ReplaceAll(content string) {
	b.lines = splitLines(content)
}

// Snapshot returns the full buffer content as a single string.
func (b *Buffer) Snapshot() string {
	var sb strings.Builder
	for _, l := range b.lines {
		sb.WriteString(l)
	}
	return sb.String()
}

// TrimLineEnding strips one trailing "\r\n", "\n", or "\r" from a raw line.
func TrimLineEnding(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2]
	}
	if strings.HasSuffix(line, "\n") || strings.HasSuffix(line, "\r") {
		return line[:len(line)-1]
	}
	return line
}
