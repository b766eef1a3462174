package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplyJSON overlays a JSON document onto the configuration. Only paths
// present in the document are touched, so a sparse override like
// {"render":{"scrollShiftMax":6}} leaves everything else alone.
func (c *Config) ApplyJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("config: invalid json overlay")
	}
	doc := gjson.ParseBytes(data)

	setInt := func(path string, dst *int) {
		if v := doc.Get(path); v.Exists() {
			*dst = int(v.Int())
		}
	}
	setFloat := func(path string, dst *float64) {
		if v := doc.Get(path); v.Exists() {
			*dst = v.Float()
		}
	}
	setString := func(path string, dst *string) {
		if v := doc.Get(path); v.Exists() {
			*dst = v.String()
		}
	}

	setInt("render.scrollShiftMax", &c.Render.ScrollShiftMax)
	setFloat("render.linesEscalationPct", &c.Render.LinesEscalationPct)
	setInt("render.trimMinSavingsCols", &c.Render.TrimMinSavingsCols)
	setInt("render.overlayLines", &c.Render.OverlayLines)
	setInt("editor.tabSize", &c.Editor.TabSize)
	setString("editor.statusScript", &c.Editor.StatusScript)
	setString("log.level", &c.Log.Level)
	setString("log.file", &c.Log.File)

	return c.Validate()
}

// EncodeJSON renders the configuration as a JSON document.
func (c Config) EncodeJSON() ([]byte, error) {
	out := "{}"
	var err error
	set := func(path string, v interface{}) {
		if err != nil {
			return
		}
		out, err = sjson.Set(out, path, v)
	}

	set("render.scrollShiftMax", c.Render.ScrollShiftMax)
	set("render.linesEscalationPct", c.Render.LinesEscalationPct)
	set("render.trimMinSavingsCols", c.Render.TrimMinSavingsCols)
	set("render.overlayLines", c.Render.OverlayLines)
	set("editor.tabSize", c.Editor.TabSize)
	set("editor.statusScript", c.Editor.StatusScript)
	set("log.level", c.Log.Level)
	set("log.file", c.Log.File)
	if err != nil {
		return nil, fmt.Errorf("config: encode json: %w", err)
	}
	return []byte(out), nil
}

// SaveJSON writes the JSON form to path.
func (c Config) SaveJSON(path string) error {
	data, err := c.EncodeJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a JSON overlay file over the defaults. A missing file
// returns the defaults.
func LoadJSON(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.ApplyJSON(data); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}
