package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lines(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("line ")
		b.WriteByte(byte('0' + i%10))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestMotionRendersCursorOnly(t *testing.T) {
	s, _ := newTestSession(t, "alpha\nbravo\ncharlie", 80, 24)
	drain(t, s)

	if err := feed(s, "j"); err != nil {
		t.Fatal(err)
	}
	drain(t, s)

	if got := s.View().Cursor.Line; got != 1 {
		t.Errorf("cursor line = %d, want 1", got)
	}
	if got := s.Engine().LastRepaintKind(); got != "cursor_only" {
		t.Errorf("frame kind = %q, want cursor_only", got)
	}
}

func TestCountPrefix(t *testing.T) {
	s, _ := newTestSession(t, lines(10), 80, 24)
	drain(t, s)

	if err := feed(s, "3j"); err != nil {
		t.Fatal(err)
	}
	if got := s.View().Cursor.Line; got != 3 {
		t.Errorf("cursor line = %d, want 3", got)
	}

	if err := feed(s, "2l"); err != nil {
		t.Fatal(err)
	}
	if got := s.View().Cursor.Byte; got != 2 {
		t.Errorf("cursor byte = %d, want 2", got)
	}
}

func TestHorizontalMotionClampsAtLineEnds(t *testing.T) {
	s, _ := newTestSession(t, "ab", 80, 24)
	drain(t, s)

	if err := feed(s, "h"); err != nil {
		t.Fatal(err)
	}
	if got := s.View().Cursor.Byte; got != 0 {
		t.Errorf("cursor byte after h at start = %d, want 0", got)
	}

	if err := feed(s, "9l"); err != nil {
		t.Fatal(err)
	}
	if got := s.View().Cursor.Byte; got != 2 {
		t.Errorf("cursor byte after 9l = %d, want 2", got)
	}
}

func TestInsertTyping(t *testing.T) {
	s, _ := newTestSession(t, "hello", 80, 24)
	drain(t, s)

	if err := feed(s, "iab\x1b"); err != nil {
		t.Fatal(err)
	}
	drain(t, s)

	if got := s.State().LineContent(0); got != "abhello" {
		t.Errorf("line 0 = %q, want abhello", got)
	}
	if s.State().Mode.String() != "NORMAL" {
		t.Errorf("mode = %s, want NORMAL", s.State().Mode)
	}
	if !s.State().Dirty {
		t.Error("buffer not marked dirty after insert")
	}
}

func TestInsertEditRendersLinesFrame(t *testing.T) {
	s, _ := newTestSession(t, "hello\nworld\nthird", 80, 24)
	drain(t, s)

	if err := feed(s, "i"); err != nil {
		t.Fatal(err)
	}
	drain(t, s)
	if err := feed(s, "a"); err != nil {
		t.Fatal(err)
	}
	drain(t, s)

	if got := s.Engine().LastRepaintKind(); got != "lines" {
		t.Errorf("frame kind = %q, want lines", got)
	}
}

func TestInsertMultiByteRune(t *testing.T) {
	s, _ := newTestSession(t, "x", 80, 24)
	drain(t, s)

	if err := feed(s, "i\xc3\xa9\x1b"); err != nil {
		t.Fatal(err)
	}
	if got := s.State().LineContent(0); got != "éx" {
		t.Errorf("line 0 = %q, want éx", got)
	}
}

func TestDeleteCluster(t *testing.T) {
	s, _ := newTestSession(t, "hello", 80, 24)
	drain(t, s)

	if err := feed(s, "x"); err != nil {
		t.Fatal(err)
	}
	if got := s.State().LineContent(0); got != "ello" {
		t.Errorf("line 0 = %q, want ello", got)
	}

	if err := feed(s, "2x"); err != nil {
		t.Fatal(err)
	}
	if got := s.State().LineContent(0); got != "lo" {
		t.Errorf("line 0 after 2x = %q, want lo", got)
	}
}

func TestBackspaceJoinsLines(t *testing.T) {
	s, _ := newTestSession(t, "ab\ncd", 80, 24)
	drain(t, s)

	if err := feed(s, "ji\x7f"); err != nil {
		t.Fatal(err)
	}

	if got := s.State().Buffer.LineCount(); got != 1 {
		t.Fatalf("LineCount = %d, want 1", got)
	}
	if got := s.State().LineContent(0); got != "abcd" {
		t.Errorf("line 0 = %q, want abcd", got)
	}
	if c := s.View().Cursor; c.Line != 0 || c.Byte != 2 {
		t.Errorf("cursor = %+v, want line 0 byte 2", c)
	}
}

func TestOpenLineBelow(t *testing.T) {
	s, _ := newTestSession(t, "one\ntwo", 80, 24)
	drain(t, s)

	if err := feed(s, "onew"); err != nil {
		t.Fatal(err)
	}

	if got := s.State().LineContent(1); got != "new" {
		t.Errorf("line 1 = %q, want new", got)
	}
	if got := s.State().LineContent(2); got != "two" {
		t.Errorf("line 2 = %q, want two", got)
	}
}

func TestHalfPageScrollUsesScrollShift(t *testing.T) {
	s, _ := newTestSession(t, lines(40), 80, 24)
	drain(t, s)

	if err := feed(s, "\x04"); err != nil {
		t.Fatal(err)
	}
	drain(t, s)

	if got := s.View().First; got != 11 {
		t.Errorf("view first = %d, want 11", got)
	}
	if got := s.Engine().LastRepaintKind(); got != "scroll_shift" {
		t.Errorf("frame kind = %q, want scroll_shift", got)
	}

	if err := feed(s, "\x15"); err != nil {
		t.Fatal(err)
	}
	drain(t, s)
	if got := s.View().First; got != 0 {
		t.Errorf("view first after scroll up = %d, want 0", got)
	}
}

func TestJumpToBottomRendersFull(t *testing.T) {
	s, _ := newTestSession(t, lines(100), 80, 24)
	drain(t, s)

	if err := feed(s, "G"); err != nil {
		t.Fatal(err)
	}
	drain(t, s)

	if got := s.View().Cursor.Line; got != 100 {
		t.Errorf("cursor line = %d, want 100", got)
	}
	if got := s.View().First; got != 78 {
		t.Errorf("view first = %d, want 78", got)
	}
	if got := s.Engine().LastRepaintKind(); got != "full" {
		t.Errorf("frame kind = %q, want full", got)
	}
}

func TestQuitCommand(t *testing.T) {
	s, _ := newTestSession(t, "", 80, 24)
	drain(t, s)

	if err := feed(s, ":q\r"); !errors.Is(err, ErrQuit) {
		t.Errorf("feed(:q) = %v, want ErrQuit", err)
	}
}

func TestQuitRefusedWhileDirty(t *testing.T) {
	s, _ := newTestSession(t, "hello", 80, 24)
	drain(t, s)

	if err := feed(s, "x:q\r"); err != nil {
		t.Fatalf("feed = %v, want nil", err)
	}
	if !strings.Contains(s.State().Message, "unsaved") {
		t.Errorf("Message = %q", s.State().Message)
	}

	if err := feed(s, ":q!\r"); !errors.Is(err, ErrQuit) {
		t.Errorf("feed(:q!) = %v, want ErrQuit", err)
	}
}

func TestWriteCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, _ := newTestSession(t, "", 80, 24)
	if err := s.OpenFile(path); err != nil {
		t.Fatal(err)
	}
	drain(t, s)

	if err := feed(s, "x:w\r"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "ello\n" {
		t.Errorf("file content = %q, want ello\\n", got)
	}
	if s.State().Dirty {
		t.Error("buffer still dirty after :w")
	}
	if !strings.Contains(s.State().Message, "written") {
		t.Errorf("Message = %q", s.State().Message)
	}
}

func TestWriteWithoutFileName(t *testing.T) {
	s, _ := newTestSession(t, "hello", 80, 24)
	drain(t, s)

	if err := feed(s, ":w\r"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s.State().Message, "no file name") {
		t.Errorf("Message = %q", s.State().Message)
	}
}

func TestUnknownCommand(t *testing.T) {
	s, _ := newTestSession(t, "", 80, 24)
	drain(t, s)

	if err := feed(s, ":frobnicate\r"); err != nil {
		t.Fatal(err)
	}
	if got := s.State().Message; got != "not an editor command: frobnicate" {
		t.Errorf("Message = %q", got)
	}
}

func TestCommandLineEditing(t *testing.T) {
	s, _ := newTestSession(t, "", 80, 24)
	drain(t, s)

	if err := feed(s, ":wq\x7f"); err != nil {
		t.Fatal(err)
	}
	if got := s.State().CommandBuffer; got != "w" {
		t.Errorf("CommandBuffer = %q, want w", got)
	}

	if err := feed(s, "\x7f\x7f"); err != nil {
		t.Fatal(err)
	}
	if s.State().CommandActive {
		t.Error("command line still active after backspacing past start")
	}
}

func TestCommandEscapeCancels(t *testing.T) {
	s, _ := newTestSession(t, "hello", 80, 24)
	drain(t, s)

	if err := feed(s, ":q\x1b"); err != nil {
		t.Fatal(err)
	}
	if s.State().CommandActive {
		t.Error("command line still active after escape")
	}
	if s.State().CommandBuffer != "" {
		t.Errorf("CommandBuffer = %q, want empty", s.State().CommandBuffer)
	}
}

func TestOverlayToggleCommand(t *testing.T) {
	s, sink := newTestSession(t, "hello", 80, 24)
	drain(t, s)

	if err := feed(s, ":overlay\r"); err != nil {
		t.Fatal(err)
	}
	if !s.State().Overlay.Enabled {
		t.Fatal("overlay not enabled")
	}

	sink.Reset()
	drain(t, s)
	if got := sink.Prints(); !strings.Contains(got, "rp full:") {
		t.Errorf("overlay rows missing from frame output: %q", got)
	}
}
