package linecache

import "testing"

func sourceFromLines(lines []string) LineSource {
	return func(i int) (string, bool) {
		if i < 0 || i >= len(lines) {
			return "", false
		}
		return lines[i] + "\n", true
	}
}

func populate(c *Cache, lines []string, start, width, rows int) {
	c.Reset(start, width, rows)
	for i := 0; i < rows; i++ {
		line := ""
		if start+i < len(lines) {
			line = lines[start+i]
		}
		c.PushLine(ComputeHash(line))
	}
}

func TestComputeHashDistinguishesContent(t *testing.T) {
	a := ComputeHash("hello")
	b := ComputeHash("hellp")
	if a == b {
		t.Fatal("distinct content produced identical hash entries")
	}
	if a.Len != 5 || b.Len != 5 {
		t.Errorf("lengths = %d, %d; want 5, 5", a.Len, b.Len)
	}
	if ComputeHash("hello") != a {
		t.Error("hash not deterministic")
	}
}

func TestComputeHashEmpty(t *testing.T) {
	h := ComputeHash("")
	if h.Len != 0 {
		t.Errorf("Len = %d, want 0", h.Len)
	}
	if h.Hash != 14695981039346656037 {
		t.Errorf("empty hash = %d, want FNV offset basis", h.Hash)
	}
}

func TestResetPreservesLastCursorLine(t *testing.T) {
	c := New()
	c.LastCursorLine = 7
	c.Reset(3, 80, 10)
	if c.LastCursorLine != 7 {
		t.Errorf("LastCursorLine after Reset = %d, want 7", c.LastCursorLine)
	}
	c.Clear()
	if c.LastCursorLine != -1 {
		t.Errorf("LastCursorLine after Clear = %d, want -1", c.LastCursorLine)
	}
}

func TestPushAndGet(t *testing.T) {
	c := New()
	c.Reset(0, 80, 2)
	c.PushLine(ComputeHash("alpha"))
	c.PushLine(ComputeHash("beta"))
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	h, ok := c.Get(1)
	if !ok || h != ComputeHash("beta") {
		t.Errorf("Get(1) = %v, %v", h, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get past end reported ok")
	}
	if _, ok := c.Get(-1); ok {
		t.Error("Get(-1) reported ok")
	}
}

func TestPrevTextUnknownUntilSet(t *testing.T) {
	c := New()
	c.Reset(0, 80, 1)
	c.PushLine(ComputeHash("alpha"))
	if _, ok := c.PrevText(0); ok {
		t.Error("PrevText known before any paint")
	}
	c.SetPrevText(0, "alpha")
	got, ok := c.PrevText(0)
	if !ok || got != "alpha" {
		t.Errorf("PrevText(0) = %q, %v", got, ok)
	}
}

func TestTruncate(t *testing.T) {
	c := New()
	c.Reset(0, 80, 3)
	for _, s := range []string{"a", "b", "c"} {
		c.PushLine(ComputeHash(s))
	}
	c.Truncate(2)
	if c.Len() != 2 {
		t.Errorf("Len after Truncate = %d, want 2", c.Len())
	}
	c.Truncate(5)
	if c.Len() != 2 {
		t.Errorf("Truncate past end changed Len to %d", c.Len())
	}
}

func TestShiftForScrollDown(t *testing.T) {
	lines := []string{"l0", "l1", "l2", "l3", "l4", "l5", "l6"}
	c := New()
	populate(c, lines, 0, 80, 4)
	for i := 0; i < 4; i++ {
		c.SetPrevText(i, lines[i])
	}

	// Viewport moves from line 0 to line 2: rows shift up by 2, rows 2..3
	// enter from below.
	c.ShiftForScroll(2, 2, 4, sourceFromLines(lines))

	if c.ViewportStart != 2 {
		t.Errorf("ViewportStart = %d, want 2", c.ViewportStart)
	}
	for row := 0; row < 4; row++ {
		want := ComputeHash(lines[2+row])
		got, ok := c.Get(row)
		if !ok || got != want {
			t.Errorf("row %d hash mismatch after shift", row)
		}
	}
	// Surviving rows keep painted text; entering rows do not.
	if got, ok := c.PrevText(0); !ok || got != "l2" {
		t.Errorf("surviving row 0 PrevText = %q, %v", got, ok)
	}
	if _, ok := c.PrevText(3); ok {
		t.Error("entering row 3 should have unknown PrevText")
	}
}

func TestShiftForScrollUp(t *testing.T) {
	lines := []string{"l0", "l1", "l2", "l3", "l4", "l5"}
	c := New()
	populate(c, lines, 2, 80, 3)
	for i := 0; i < 3; i++ {
		c.SetPrevText(i, lines[2+i])
	}

	// Viewport moves from line 2 to line 1: rows shift down by 1, one row
	// enters at the top.
	c.ShiftForScroll(-1, 1, 3, sourceFromLines(lines))

	if c.ViewportStart != 1 {
		t.Errorf("ViewportStart = %d, want 1", c.ViewportStart)
	}
	for row := 0; row < 3; row++ {
		want := ComputeHash(lines[1+row])
		got, ok := c.Get(row)
		if !ok || got != want {
			t.Errorf("row %d hash mismatch after shift", row)
		}
	}
	if _, ok := c.PrevText(0); ok {
		t.Error("entering row 0 should have unknown PrevText")
	}
	if got, ok := c.PrevText(1); !ok || got != "l2" {
		t.Errorf("surviving row 1 PrevText = %q, %v", got, ok)
	}
}

func TestShiftForScrollPastEOF(t *testing.T) {
	lines := []string{"l0", "l1", "l2"}
	c := New()
	populate(c, lines, 0, 80, 3)

	// Scrolling down past the end brings empty rows in at the bottom.
	c.ShiftForScroll(1, 1, 3, sourceFromLines(lines))

	got, ok := c.Get(2)
	if !ok || got != ComputeHash("") {
		t.Errorf("past-EOF entering row hash = %v, want empty hash", got)
	}
}

func TestShiftForScrollDegenerateNoOp(t *testing.T) {
	lines := []string{"l0", "l1", "l2"}
	c := New()
	populate(c, lines, 0, 80, 3)

	c.ShiftForScroll(3, 3, 3, sourceFromLines(lines))
	if c.ViewportStart != 0 {
		t.Error("full-height shift should be a no-op")
	}
	c.ShiftForScroll(0, 0, 3, sourceFromLines(lines))
	if c.ViewportStart != 0 {
		t.Error("zero shift should be a no-op")
	}
	c.ShiftForScroll(1, 1, 4, sourceFromLines(lines))
	if c.ViewportStart != 0 {
		t.Error("row-count mismatch shift should be a no-op")
	}
}
