package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/loomtext/loom/buffer"
)

// Errors returned by configuration parsing.
var (
	ErrInvalidJSON       = errors.New("configuration is not valid JSON")
	ErrInvalidLineEnding = errors.New("invalid line ending")
)

// Defaults used when a setting is absent.
const (
	DefaultUndoDepth    = 1000
	DefaultTabWidth     = 4
	DefaultSnapshotKeep = 64
)

// Options holds the engine's tunable settings.
type Options struct {
	// UndoDepth bounds the undo history; older entries fall off.
	UndoDepth int

	// TabWidth is the display width of a tab character.
	TabWidth int

	// LineEnding is the style new buffers normalize to.
	LineEnding buffer.LineEnding

	// SnapshotMaxAge prunes retained snapshots older than this.
	// Zero disables age-based pruning.
	SnapshotMaxAge time.Duration

	// SnapshotKeep bounds the number of retained snapshots.
	SnapshotKeep int

	// DebugChecks enables structural validation after every edit.
	// Expensive; intended for tests and bug hunts.
	DebugChecks bool
}

// Default returns the built-in settings.
func Default() Options {
	return Options{
		UndoDepth:    DefaultUndoDepth,
		TabWidth:     DefaultTabWidth,
		LineEnding:   buffer.LineEndingLF,
		SnapshotKeep: DefaultSnapshotKeep,
	}
}

// lineEndingNames maps the JSON representation to the engine value.
var lineEndingNames = map[string]buffer.LineEnding{
	"lf":   buffer.LineEndingLF,
	"crlf": buffer.LineEndingCRLF,
	"cr":   buffer.LineEndingCR,
}

func lineEndingName(le buffer.LineEnding) string {
	switch le {
	case buffer.LineEndingCRLF:
		return "crlf"
	case buffer.LineEndingCR:
		return "cr"
	default:
		return "lf"
	}
}

// Parse reads options from a JSON document, filling absent settings with
// defaults. Unknown keys are ignored so configurations stay forward
// compatible.
func Parse(data []byte) (Options, error) {
	opts := Default()
	if len(data) == 0 {
		return opts, nil
	}
	if !gjson.ValidBytes(data) {
		return Options{}, ErrInvalidJSON
	}

	doc := gjson.ParseBytes(data)

	if v := doc.Get("undo_depth"); v.Exists() {
		if n := int(v.Int()); n > 0 {
			opts.UndoDepth = n
		}
	}
	if v := doc.Get("tab_width"); v.Exists() {
		if n := int(v.Int()); n > 0 {
			opts.TabWidth = n
		}
	}
	if v := doc.Get("line_ending"); v.Exists() {
		le, ok := lineEndingNames[v.String()]
		if !ok {
			return Options{}, fmt.Errorf("%w: %q", ErrInvalidLineEnding, v.String())
		}
		opts.LineEnding = le
	}
	if v := doc.Get("snapshot_max_age"); v.Exists() {
		d, err := time.ParseDuration(v.String())
		if err != nil {
			return Options{}, fmt.Errorf("snapshot_max_age: %w", err)
		}
		opts.SnapshotMaxAge = d
	}
	if v := doc.Get("snapshot_keep"); v.Exists() {
		if n := int(v.Int()); n >= 0 {
			opts.SnapshotKeep = n
		}
	}
	if v := doc.Get("debug_checks"); v.Exists() {
		opts.DebugChecks = v.Bool()
	}

	return opts, nil
}

// MarshalJSON serializes the options as a JSON document.
func (o Options) MarshalJSON() ([]byte, error) {
	out := []byte("{}")
	var err error

	set := func(key string, value any) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, key, value)
	}

	set("undo_depth", o.UndoDepth)
	set("tab_width", o.TabWidth)
	set("line_ending", lineEndingName(o.LineEnding))
	if o.SnapshotMaxAge > 0 {
		set("snapshot_max_age", o.SnapshotMaxAge.String())
	}
	set("snapshot_keep", o.SnapshotKeep)
	if o.DebugChecks {
		set("debug_checks", true)
	}

	return out, err
}

// LoadFile reads options from a JSON file. A missing file yields the
// defaults, so a fresh installation needs no configuration at all.
func LoadFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Options{}, err
	}
	return Parse(data)
}

// SaveFile writes the options to a JSON file.
func (o Options) SaveFile(path string) error {
	data, err := o.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// BufferOptions converts the settings to buffer construction options.
func (o Options) BufferOptions() []buffer.Option {
	return []buffer.Option{
		buffer.WithLineEnding(o.LineEnding),
		buffer.WithTabWidth(o.TabWidth),
	}
}
