// Package renderer turns editor state into terminal output incrementally.
//
// The engine executes exactly one strategy per frame: a full repaint, a
// cursor-only repaint, a partial repaint of changed lines, or a
// scroll-region shift that moves surviving rows with terminal scroll
// commands and paints only the rows entering the viewport. Strategy
// selection happens upstream in the schedule package; the engine may still
// escalate to a full repaint when a partial path cannot run safely (cold
// cache, missing terminal capability, too many changed lines).
//
// All paths emit grapheme clusters with the same boundary and width
// iteration, so a partial repaint never slices a cluster differently than
// the full frame it patches.
package renderer
