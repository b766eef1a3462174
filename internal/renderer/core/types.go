// Package core provides the shared cell grid types for the renderer
// subsystem. A Cell stores a full grapheme cluster rather than a single
// rune so wide and combining sequences are never split across emission
// paths.
package core

// Flags are per-cell style bits.
type Flags uint8

const (
	// FlagReverse marks reverse-video cells (software cursor).
	FlagReverse Flags = 1 << iota
	// FlagCursor marks cells that are part of the cursor span.
	FlagCursor
)

// Has returns true if the flag set contains all given bits.
func (f Flags) Has(bits Flags) bool {
	return f&bits == bits
}

// Cell is one logical grid position. A leader cell holds a full grapheme
// cluster and its display width (1 or 2). A continuation cell is the empty,
// zero-width placeholder occupying the trailing column of a wide leader.
type Cell struct {
	// Cluster is the full grapheme cluster; empty for continuation cells.
	Cluster string
	// Width is the display width in columns; 0 designates a continuation.
	Width uint8
	Flags Flags
}

// Leader builds a leader cell. Width is clamped to at least 1.
func Leader(cluster string, width int, flags Flags) Cell {
	if width < 1 {
		width = 1
	}
	return Cell{Cluster: cluster, Width: uint8(width), Flags: flags}
}

// Continuation builds a continuation cell carrying the leader's flags.
func Continuation(flags Flags) Cell {
	return Cell{Flags: flags}
}

// IsLeader reports whether the cell holds a printable cluster.
func (c Cell) IsLeader() bool {
	return c.Width > 0
}

// blank is the default single-space leader used for empty grid positions.
func blank() Cell {
	return Cell{Cluster: " ", Width: 1}
}

// Frame is a fixed width x height grid of cells, row-major. Frames are
// built transiently per full render and never persisted.
type Frame struct {
	Width  int
	Height int
	Cells  []Cell
}

// NewFrame creates a frame filled with blank cells.
func NewFrame(width, height int) *Frame {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = blank()
	}
	return &Frame{Width: width, Height: height, Cells: cells}
}

func (f *Frame) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0, false
	}
	return y*f.Width + x, true
}

// SetCluster places a cluster at (x, y) and fills continuation cells for
// its width. Widths that would overflow the row are clamped.
func (f *Frame) SetCluster(x, y int, cluster string, width int, flags Flags) {
	idx, ok := f.index(x, y)
	if !ok {
		return
	}
	if width < 1 {
		width = 1
	}
	if x+width > f.Width {
		width = f.Width - x
	}
	f.Cells[idx] = Leader(cluster, width, flags)
	for dx := 1; dx < width; dx++ {
		if ci, ok := f.index(x+dx, y); ok {
			f.Cells[ci] = Continuation(flags)
		}
	}
}

// ApplyFlagsSpan ORs flags over an existing span, leader and continuations
// alike.
func (f *Frame) ApplyFlagsSpan(x, y, span int, flags Flags) {
	for dx := 0; dx < span; dx++ {
		if idx, ok := f.index(x+dx, y); ok {
			f.Cells[idx].Flags |= flags
		}
	}
}

// RowLeader describes one leader cell within a row.
type RowLeader struct {
	Cluster string
	Width   int
	Flags   Flags
	X       int
}

// RowLeaders returns the leader cells of row y in column order, skipping
// continuation cells.
func (f *Frame) RowLeaders(y int) []RowLeader {
	if y < 0 || y >= f.Height {
		return nil
	}
	out := make([]RowLeader, 0, f.Width)
	for x := 0; x < f.Width; {
		cell := f.Cells[y*f.Width+x]
		if cell.IsLeader() {
			out = append(out, RowLeader{Cluster: cell.Cluster, Width: int(cell.Width), Flags: cell.Flags, X: x})
			x += int(cell.Width)
		} else {
			x++
		}
	}
	return out
}

// LineClusters collects the leader cluster strings of a row. Test oracle
// and diagnostics only.
func (f *Frame) LineClusters(y int) []string {
	leaders := f.RowLeaders(y)
	out := make([]string, len(leaders))
	for i, l := range leaders {
		out[i] = l.Cluster
	}
	return out
}

// RowText joins a row's leader clusters into the visible string, with
// trailing unstyled blanks stripped. Test oracle only.
func (f *Frame) RowText(y int) string {
	leaders := f.RowLeaders(y)
	end := len(leaders)
	for end > 0 && leaders[end-1].Cluster == " " && leaders[end-1].Flags == 0 {
		end--
	}
	var s string
	for _, l := range leaders[:end] {
		s += l.Cluster
	}
	return s
}

// Equal reports cell-for-cell equality of two frames. Test oracle only.
func (f *Frame) Equal(other *Frame) bool {
	if f.Width != other.Width || f.Height != other.Height {
		return false
	}
	for i := range f.Cells {
		if f.Cells[i] != other.Cells[i] {
			return false
		}
	}
	return true
}
