package renderer

import "github.com/tern-editor/tern/internal/renderer/linecache"

// classifyViewport compares the visible lines against the cache and
// returns the buffer line indices whose content changed, rewarming the
// cache as it goes. A cold or re-anchored cache classifies every visible
// line as changed.
//
// When candidates is non-nil, warm-path changes are reported only for
// lines in it; cold-start lines are always reported.
func (e *Engine) classifyViewport(s Snapshot, candidates []int) []int {
	textHeight := 0
	if s.Height > 0 {
		textHeight = s.Height - 1
	}
	if textHeight == 0 {
		return nil
	}
	first := s.View.First
	end := first + textHeight
	if lc := s.State.Buffer.LineCount(); end > lc {
		end = lc
	}
	visible := end - first
	if visible <= 0 {
		e.cache.Truncate(0)
		return nil
	}

	// Height-only growth keeps the warm rows: anchor and width still match,
	// and the new rows fall through to the fresh-entry branch below.
	cold := e.cache.Len() == 0 || e.cache.ViewportStart != first || e.cache.Width != s.Width
	if cold {
		e.cache.Reset(first, s.Width, visible)
	}

	var candidateSet map[int]struct{}
	if candidates != nil {
		candidateSet = make(map[int]struct{}, len(candidates))
		for _, c := range candidates {
			candidateSet[c] = struct{}{}
		}
	}
	rawCount := visible
	if candidates != nil {
		rawCount = len(candidates)
	}
	e.metrics.AddDirtyMarked(rawCount)
	e.metrics.AddDirtyCandidate(rawCount)

	include := func(line int) bool {
		if candidateSet == nil {
			return true
		}
		_, ok := candidateSet[line]
		return ok
	}

	var changed []int
	for row := 0; row < visible; row++ {
		line := first + row
		h := linecache.ComputeHash(s.State.LineContent(line))
		if cold {
			e.cache.PushLine(h)
			changed = append(changed, line)
			continue
		}
		if entry, ok := e.cache.Get(row); ok {
			if entry != h {
				e.cache.SetHash(row, h)
				if include(line) {
					changed = append(changed, line)
				}
			}
		} else {
			// Viewport grew; new row is by definition changed.
			e.cache.PushLine(h)
			if include(line) {
				changed = append(changed, line)
			}
		}
	}
	if e.cache.Len() > visible {
		e.cache.Truncate(visible)
	}

	e.metrics.AddDirtyRepainted(len(changed))
	return changed
}
