package backend

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2/terminfo"

	// Register the common terminfo entries (xterm and friends) so lookup
	// works without a compiled-in database for every terminal type.
	_ "github.com/gdamore/tcell/v2/terminfo/base"
)

// Capabilities describes the terminal features the renderer gates on.
type Capabilities struct {
	// Term is the terminal type the detection ran against.
	Term string
	// SupportsScrollRegion is true when the terminal advertises the
	// change-scroll-region capability (terminfo csr), enabling the
	// scroll-shift strategy.
	SupportsScrollRegion bool
}

// scrollRegionFamilies are terminal families known to honor DECSTBM and
// CSI S/T. tcell's terminfo layer does not expose csr, so detection
// pairs a successful lookup with the XTermLike flag plus this list.
var scrollRegionFamilies = []string{
	"screen",
	"tmux",
	"rxvt",
	"vt100",
	"vt220",
	"linux",
}

// DetectCapabilities inspects $TERM via terminfo. Unknown or dumb
// terminals report no scroll-region support, which degrades scroll
// deltas to full repaints.
func DetectCapabilities() Capabilities {
	term := os.Getenv("TERM")
	caps := Capabilities{Term: term}
	if term == "" || term == "dumb" {
		return caps
	}
	ti, err := terminfo.LookupTerminfo(term)
	if err != nil {
		return caps
	}
	caps.SupportsScrollRegion = ti.XTermLike || inScrollRegionFamily(term)
	return caps
}

func inScrollRegionFamily(term string) bool {
	for _, fam := range scrollRegionFamilies {
		if term == fam || strings.HasPrefix(term, fam+"-") {
			return true
		}
	}
	return false
}
