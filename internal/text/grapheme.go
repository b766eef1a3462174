package text

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// NextBoundary returns the byte offset of the grapheme-cluster boundary
// following pos. Returns len(s) when pos is at or past the last cluster.
func NextBoundary(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[pos:], -1)
	return pos + len(cluster)
}

// PrevBoundary returns the byte offset of the grapheme-cluster boundary
// preceding pos. Returns 0 when pos is at or before the first cluster.
func PrevBoundary(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > len(s) {
		pos = len(s)
	}
	prev := 0
	rest := s
	state := -1
	for off := 0; off < pos; {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if len(cluster) == 0 {
			break
		}
		if off+len(cluster) >= pos {
			return off
		}
		prev = off
		off += len(cluster)
	}
	return prev
}

// ClusterWidth returns the display width in terminal columns of a single
// grapheme cluster: 0 for the empty string, otherwise 1 or 2.
func ClusterWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	w := runewidth.StringWidth(cluster)
	if w < 1 {
		return 1
	}
	if w > 2 {
		return 2
	}
	return w
}

// VisualCol returns the display column of the given byte offset within s,
// accumulating cluster widths from the start of the line.
func VisualCol(s string, byteOff int) int {
	if byteOff > len(s) {
		byteOff = len(s)
	}
	col := 0
	rest := s
	state := -1
	for off := 0; off < byteOff; {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if len(cluster) == 0 {
			break
		}
		col += ClusterWidth(cluster)
		off += len(cluster)
	}
	return col
}

// StringCols returns the total display width of s.
func StringCols(s string) int {
	return VisualCol(s, len(s))
}
