package renderer

import (
	"strings"
	"testing"

	"github.com/tern-editor/tern/internal/renderer/backend"
)

func trimEngine() *Engine {
	e, _ := newTestEngine(false)
	return e
}

func TestTrimSingleClusterReplacement(t *testing.T) {
	e := trimEngine()
	old := "alpha bravo charlie"
	new := "alpha Bravo charlie"

	tr, ok := e.tryTrimLine(old, new, 80)
	if !ok {
		t.Fatal("trim rejected")
	}
	if tr.interior != "B" {
		t.Errorf("interior = %q, want %q", tr.interior, "B")
	}
	if tr.prefixCols != 6 {
		t.Errorf("prefixCols = %d, want 6", tr.prefixCols)
	}
	if tr.colsSaved != 18 {
		t.Errorf("colsSaved = %d, want 18", tr.colsSaved)
	}
	// Reconstruction: prefix + interior + suffix must equal new.
	if got := new[:6] + tr.interior + new[7:]; got != new {
		t.Errorf("reconstruction = %q", got)
	}
}

func TestTrimRejectsLengthChange(t *testing.T) {
	e := trimEngine()
	if _, ok := e.tryTrimLine("abcdef", "abcXdef", 80); ok {
		t.Error("insertion accepted")
	}
	if _, ok := e.tryTrimLine("abcXdef", "abcdef", 80); ok {
		t.Error("deletion accepted")
	}
}

func TestTrimRejectsEqualAndZeroWidth(t *testing.T) {
	e := trimEngine()
	if _, ok := e.tryTrimLine("same", "same", 80); ok {
		t.Error("identical lines accepted")
	}
	if _, ok := e.tryTrimLine("ab", "ba", 0); ok {
		t.Error("zero width accepted")
	}
}

func TestTrimRejectsSmallSavings(t *testing.T) {
	e := trimEngine()
	// Whole line differs: nothing saved.
	if _, ok := e.tryTrimLine("abcd", "wxyz", 80); ok {
		t.Error("no-savings diff accepted")
	}
	// Short line: savings below the minimum.
	if _, ok := e.tryTrimLine("abcd", "aXcd", 80); ok {
		t.Error("3-column savings accepted with minimum 4")
	}
}

func TestTrimMinSavingsOverride(t *testing.T) {
	sink := &backend.CaptureSink{}
	e := New(sink,
		WithCapabilities(backend.Capabilities{Term: "test"}),
		WithTrimMinSavings(1))
	tr, ok := e.tryTrimLine("abcd", "aXcd", 80)
	if !ok {
		t.Fatal("trim rejected with lowered minimum")
	}
	if tr.interior != "X" {
		t.Errorf("interior = %q", tr.interior)
	}
}

func TestTrimRejectsPrefixBeyondWidth(t *testing.T) {
	e := trimEngine()
	old := strings.Repeat("a", 30) + "X" + strings.Repeat("b", 10)
	new := strings.Repeat("a", 30) + "Y" + strings.Repeat("b", 10)
	if _, ok := e.tryTrimLine(old, new, 20); ok {
		t.Error("change past the visible width accepted")
	}
}

func TestTrimWideClusterInterior(t *testing.T) {
	e := trimEngine()
	// Same byte length: swap one 3-byte CJK cluster for another.
	old := "ab日cdefgh"
	new := "ab本cdefgh"
	tr, ok := e.tryTrimLine(old, new, 80)
	if !ok {
		t.Fatal("trim rejected")
	}
	if tr.interior != "本" {
		t.Errorf("interior = %q, want 本", tr.interior)
	}
	if tr.prefixCols != 2 {
		t.Errorf("prefixCols = %d, want 2", tr.prefixCols)
	}
	// Line is 10 columns (8 narrow + 1 wide), interior 2: 8 saved.
	if tr.colsSaved != 8 {
		t.Errorf("colsSaved = %d, want 8", tr.colsSaved)
	}
}

func TestTrimChangeAtLineStart(t *testing.T) {
	e := trimEngine()
	tr, ok := e.tryTrimLine("Xbcdefghij", "Ybcdefghij", 80)
	if !ok {
		t.Fatal("trim rejected")
	}
	if tr.prefixCols != 0 || tr.interior != "Y" {
		t.Errorf("result = %+v", tr)
	}
}

func TestTrimChangeAtLineEnd(t *testing.T) {
	e := trimEngine()
	tr, ok := e.tryTrimLine("abcdefghiX", "abcdefghiY", 80)
	if !ok {
		t.Fatal("trim rejected")
	}
	if tr.prefixCols != 9 || tr.interior != "Y" {
		t.Errorf("result = %+v", tr)
	}
	if tr.colsSaved != 9 {
		t.Errorf("colsSaved = %d, want 9", tr.colsSaved)
	}
}
