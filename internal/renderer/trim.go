package renderer

import "github.com/tern-editor/tern/internal/text"

// DefaultTrimMinSavings is the minimum display columns a trimmed repaint
// must save over repainting the whole line.
const DefaultTrimMinSavings = 4

// trimResult describes a successful trimmed repaint: print interior at
// prefixCols instead of clearing and repainting the full line.
type trimResult struct {
	prefixCols int
	interior   string
	colsSaved  int
}

// tryTrimLine finds the cluster-aligned common prefix and suffix of the
// previously painted text and the new text, and returns the changed
// interior when repainting only it is both safe and worthwhile.
//
// The trim applies only when old and new have identical byte length:
// without terminal insert/delete-cell operations, repainting a shifted
// interior would leave the tail misaligned.
func (e *Engine) tryTrimLine(old, new string, width int) (trimResult, bool) {
	if old == new || width == 0 || len(old) != len(new) {
		return trimResult{}, false
	}

	// Longest common prefix on cluster boundaries.
	prefixBytes := 0
	bOld, bNew := 0, 0
	for bOld < len(old) && bNew < len(new) {
		nextOld := text.NextBoundary(old, bOld)
		nextNew := text.NextBoundary(new, bNew)
		if old[bOld:nextOld] != new[bNew:nextNew] {
			break
		}
		prefixBytes = nextOld
		if nextNew < nextOld {
			prefixBytes = nextNew
		}
		bOld, bNew = nextOld, nextNew
	}

	// Common suffix on cluster boundaries, never overlapping the prefix and
	// always leaving at least one differing cluster in the interior.
	suffixNewBytes := 0
	eoOld, eoNew := len(old), len(new)
	for eoOld > prefixBytes && eoNew > prefixBytes {
		prevOld := text.PrevBoundary(old, eoOld)
		prevNew := text.PrevBoundary(new, eoNew)
		if old[prevOld:eoOld] != new[prevNew:eoNew] {
			break
		}
		if prevOld <= prefixBytes || prevNew <= prefixBytes {
			break
		}
		suffixNewBytes += eoNew - prevNew
		eoOld, eoNew = prevOld, prevNew
	}

	interior := new[prefixBytes : len(new)-suffixNewBytes]
	if interior == "" {
		return trimResult{}, false
	}
	prefixCols := text.VisualCol(old, prefixBytes)
	if prefixCols >= width {
		return trimResult{}, false
	}
	saved := text.StringCols(new) - text.StringCols(interior)
	if saved < e.trimMinSavings {
		return trimResult{}, false
	}
	return trimResult{prefixCols: prefixCols, interior: interior, colsSaved: saved}, true
}
