// Package linecache tracks what the terminal currently shows for each
// visible row: a content hash for cheap change detection, the exact text
// last painted for trimmed-diff repaints, and the last painted cursor row.
// It is the system of record for partial rendering and is owned exclusively
// by the render engine.
package linecache

import "github.com/tern-editor/tern/internal/text"

// LineHash is snapshot hash metadata for one visible line. Length is kept
// alongside the hash to shrink collision probability and allow a cheap
// mismatch short-circuit.
type LineHash struct {
	Hash uint64
	Len  int
}

// ComputeHash hashes line content (trailing newline already stripped by the
// caller) with FNV-1a.
func ComputeHash(line string) LineHash {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(line); i++ {
		h ^= uint64(line[i])
		h *= 1099511628211
	}
	return LineHash{Hash: h, Len: len(line)}
}

// LineSource resolves a raw buffer line (trailing newline included) by
// absolute index. The second return is false for out-of-range lines.
type LineSource func(line int) (string, bool)

// Cache holds per-row metadata for the viewport last painted.
//
// Warm invariant: len(hashes) == len(prevText) == visible rows, and
// ViewportStart/Width describe the represented geometry. Any mismatch with
// a newly requested geometry makes the cache cold and forces a full
// rebuild upstream.
type Cache struct {
	// ViewportStart is the buffer line backing row 0.
	ViewportStart int
	// Width is the terminal column count the cache was painted at.
	Width int

	hashes    []LineHash
	prevText  []string
	prevKnown []bool

	// LastCursorLine is the buffer line the cursor was last painted on;
	// negative when unknown.
	LastCursorLine int
}

// New creates an empty (cold) cache.
func New() *Cache {
	return &Cache{LastCursorLine: -1}
}

// Len returns the number of cached rows.
func (c *Cache) Len() int {
	return len(c.hashes)
}

// Clear drops all state, forcing the next frame cold. Used on resize and
// whole-buffer replacement.
func (c *Cache) Clear() {
	c.ViewportStart = 0
	c.Width = 0
	c.hashes = c.hashes[:0]
	c.prevText = c.prevText[:0]
	c.prevKnown = c.prevKnown[:0]
	c.LastCursorLine = -1
}

// Reset re-anchors the cache to a new viewport geometry and drops row
// state. LastCursorLine survives; only Clear discards it.
func (c *Cache) Reset(viewportStart, width, expectedRows int) {
	c.ViewportStart = viewportStart
	c.Width = width
	c.hashes = c.hashes[:0]
	c.prevText = c.prevText[:0]
	c.prevKnown = c.prevKnown[:0]
	if cap(c.hashes) < expectedRows {
		c.hashes = make([]LineHash, 0, expectedRows)
		c.prevText = make([]string, 0, expectedRows)
		c.prevKnown = make([]bool, 0, expectedRows)
	}
}

// PushLine appends a hash entry during cold population. The painted text
// for the row is unknown until a render stores it.
func (c *Cache) PushLine(h LineHash) {
	c.hashes = append(c.hashes, h)
	c.prevText = append(c.prevText, "")
	c.prevKnown = append(c.prevKnown, false)
}

// Get returns the hash entry for a relative row.
func (c *Cache) Get(row int) (LineHash, bool) {
	if row < 0 || row >= len(c.hashes) {
		return LineHash{}, false
	}
	return c.hashes[row], true
}

// SetHash overwrites the hash entry for a relative row.
func (c *Cache) SetHash(row int, h LineHash) {
	if row < 0 || row >= len(c.hashes) {
		return
	}
	c.hashes[row] = h
}

// Truncate drops cached rows beyond n (viewport shrank).
func (c *Cache) Truncate(n int) {
	if n < 0 || n >= len(c.hashes) {
		return
	}
	c.hashes = c.hashes[:n]
	c.prevText = c.prevText[:n]
	c.prevKnown = c.prevKnown[:n]
}

// PrevText returns the exact text last painted at a relative row, when
// known.
func (c *Cache) PrevText(row int) (string, bool) {
	if row < 0 || row >= len(c.prevText) || !c.prevKnown[row] {
		return "", false
	}
	return c.prevText[row], true
}

// SetPrevText records the text just painted at a relative row.
func (c *Cache) SetPrevText(row int, s string) {
	if row < 0 || row >= len(c.prevText) {
		return
	}
	c.prevText[row] = s
	c.prevKnown[row] = true
}

// ShiftForScroll moves surviving rows in place after a scroll-region shift
// and recomputes hashes only for rows newly entering the viewport.
//
// delta > 0 means the viewport moved down (content scrolled up, new rows
// enter at the bottom); delta < 0 the reverse. Precondition:
// 0 < |delta| < visibleRows; degenerate shifts must be redirected to a
// full rebuild by the caller. Entering rows have unknown painted text
// until the render stores it. LastCursorLine is left for the caller.
func (c *Cache) ShiftForScroll(delta, newFirst, visibleRows int, source LineSource) {
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	if abs == 0 || abs >= visibleRows || visibleRows != len(c.hashes) {
		return
	}

	enterHash := func(row int) LineHash {
		raw, ok := source(newFirst + row)
		if !ok {
			return ComputeHash("")
		}
		return ComputeHash(text.TrimLineEnding(raw))
	}

	if delta > 0 {
		// Surviving rows move toward index 0.
		for i := 0; i < visibleRows-abs; i++ {
			src := i + abs
			c.hashes[i] = c.hashes[src]
			c.prevText[i] = c.prevText[src]
			c.prevKnown[i] = c.prevKnown[src]
		}
		for i := 0; i < abs; i++ {
			row := visibleRows - abs + i
			c.hashes[row] = enterHash(row)
			c.prevText[row] = ""
			c.prevKnown[row] = false
		}
	} else {
		// Surviving rows move toward the far end; iterate bottom-up to
		// avoid overwriting sources.
		for i := visibleRows - abs - 1; i >= 0; i-- {
			dst := i + abs
			c.hashes[dst] = c.hashes[i]
			c.prevText[dst] = c.prevText[i]
			c.prevKnown[dst] = c.prevKnown[i]
		}
		for i := 0; i < abs; i++ {
			c.hashes[i] = enterHash(i)
			c.prevText[i] = ""
			c.prevKnown[i] = false
		}
	}
	c.ViewportStart = newFirst
}
