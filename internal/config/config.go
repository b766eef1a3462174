// Package config loads and persists editor configuration. The on-disk
// format is TOML; a JSON form of the same document is supported for
// programmatic override and persistence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Render holds the tunables of the incremental render pipeline.
type Render struct {
	// ScrollShiftMax is the largest scroll distance rendered as a
	// scroll-region shift instead of a full repaint.
	ScrollShiftMax int `toml:"scroll_shift_max" json:"scrollShiftMax"`
	// LinesEscalationPct is the candidate-set proportion at which a
	// lines-partial frame escalates to full.
	LinesEscalationPct float64 `toml:"lines_escalation_pct" json:"linesEscalationPct"`
	// TrimMinSavingsCols is the minimum columns a trimmed line repaint
	// must save.
	TrimMinSavingsCols int `toml:"trim_min_savings_cols" json:"trimMinSavingsCols"`
	// OverlayLines is the diagnostics overlay row budget; 0 disables it
	// until toggled at runtime.
	OverlayLines int `toml:"overlay_lines" json:"overlayLines"`
}

// Editor holds general editing settings.
type Editor struct {
	TabSize int `toml:"tab_size" json:"tabSize"`
	// StatusScript is an optional Lua script path defining
	// format_status(ctx) for the status line.
	StatusScript string `toml:"status_script" json:"statusScript"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// Config is the root configuration document.
type Config struct {
	Render Render `toml:"render" json:"render"`
	Editor Editor `toml:"editor" json:"editor"`
	Log    Log    `toml:"log" json:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: Render{
			ScrollShiftMax:     12,
			LinesEscalationPct: 0.60,
			TrimMinSavingsCols: 4,
			OverlayLines:       0,
		},
		Editor: Editor{TabSize: 4},
		Log:    Log{Level: "info"},
	}
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("config: invalid value")

// Validate checks value ranges, normalizing nothing.
func (c Config) Validate() error {
	if c.Render.ScrollShiftMax < 0 {
		return fmt.Errorf("%w: render.scroll_shift_max %d is negative", ErrInvalid, c.Render.ScrollShiftMax)
	}
	if c.Render.LinesEscalationPct <= 0 || c.Render.LinesEscalationPct > 1 {
		return fmt.Errorf("%w: render.lines_escalation_pct %v outside (0, 1]", ErrInvalid, c.Render.LinesEscalationPct)
	}
	if c.Render.TrimMinSavingsCols < 0 {
		return fmt.Errorf("%w: render.trim_min_savings_cols %d is negative", ErrInvalid, c.Render.TrimMinSavingsCols)
	}
	if c.Render.OverlayLines < 0 {
		return fmt.Errorf("%w: render.overlay_lines %d is negative", ErrInvalid, c.Render.OverlayLines)
	}
	if c.Editor.TabSize < 1 {
		return fmt.Errorf("%w: editor.tab_size %d below 1", ErrInvalid, c.Editor.TabSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// LoadTOML reads a TOML file over the defaults. A missing file is not an
// error: the defaults are returned unchanged.
func LoadTOML(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}
