// Package config holds the margin and size constants that drive sequence
// diagram layout.
//
// Every value has a default (see [Default]) so a zero-configuration render
// produces the standard look. Overrides come from a TOML file:
//
//	# lifeline.toml
//	actor_width   = 180
//	message_margin = 50
//	mirror_actors = false
//
// Keys that are absent from the file keep their defaults.
package config

import (
	"bytes"
	"math"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lifeline/pkg/errors"
)

// Config contains all layout constants. Distances are in user units
// (pixels in the SVG output).
type Config struct {
	// Outer margins added around the computed extent.
	DiagramMarginX float64 `toml:"diagram_margin_x" json:"diagram_margin_x"`
	DiagramMarginY float64 `toml:"diagram_margin_y" json:"diagram_margin_y"`

	// Actor boxes.
	ActorWidth  float64 `toml:"actor_width" json:"actor_width"`
	ActorHeight float64 `toml:"actor_height" json:"actor_height"`
	ActorMargin float64 `toml:"actor_margin" json:"actor_margin"`

	// Sections and notes.
	BoxMargin     float64 `toml:"box_margin" json:"box_margin"`
	BoxTextMargin float64 `toml:"box_text_margin" json:"box_text_margin"`
	NoteMargin    float64 `toml:"note_margin" json:"note_margin"`

	// Vertical advance before each message.
	MessageMargin float64 `toml:"message_margin" json:"message_margin"`

	// Activation bars.
	ActivationWidth float64 `toml:"activation_width" json:"activation_width"`

	// MirrorActors repeats the actor row below the diagram.
	MirrorActors    bool    `toml:"mirror_actors" json:"mirror_actors"`
	BottomMarginAdj float64 `toml:"bottom_margin_adj" json:"bottom_margin_adj"`

	// Text metrics. LineHeight is the fixed advance per extra line of
	// message or note text.
	FontSize   float64 `toml:"font_size" json:"font_size"`
	LineHeight float64 `toml:"line_height" json:"line_height"`

	// Self-loop messages extend at least this far to each side of the lifeline.
	SelfLoopMinWidth float64 `toml:"self_loop_min_width" json:"self_loop_min_width"`
	RightAngles      bool    `toml:"right_angles" json:"right_angles"`

	// Section label tab ("loop", "alt", ...) in the top-left corner.
	LabelBoxWidth  float64 `toml:"label_box_width" json:"label_box_width"`
	LabelBoxHeight float64 `toml:"label_box_height" json:"label_box_height"`

	// TitleSpace is the extra vertical room reserved above the diagram when a title is set.
	TitleSpace float64 `toml:"title_space" json:"title_space"`

	ShowSequenceNumbers bool `toml:"show_sequence_numbers" json:"show_sequence_numbers"`
}

// Default returns the standard layout constants.
func Default() Config {
	return Config{
		DiagramMarginX:   50,
		DiagramMarginY:   30,
		ActorWidth:       150,
		ActorHeight:      65,
		ActorMargin:      50,
		BoxMargin:        10,
		BoxTextMargin:    5,
		NoteMargin:       10,
		MessageMargin:    40,
		ActivationWidth:  10,
		MirrorActors:     true,
		BottomMarginAdj:  1,
		FontSize:         14,
		LineHeight:       17,
		SelfLoopMinWidth: 100,
		LabelBoxWidth:    50,
		LabelBoxHeight:   20,
		TitleSpace:       40,
	}
}

// Load reads a TOML file on top of [Default]. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML data on top of [Default] and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate rejects non-finite or negative sizes and a zero line height or
// actor width.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"diagram_margin_x", c.DiagramMarginX},
		{"diagram_margin_y", c.DiagramMarginY},
		{"actor_height", c.ActorHeight},
		{"actor_margin", c.ActorMargin},
		{"box_margin", c.BoxMargin},
		{"box_text_margin", c.BoxTextMargin},
		{"note_margin", c.NoteMargin},
		{"message_margin", c.MessageMargin},
		{"activation_width", c.ActivationWidth},
		{"bottom_margin_adj", c.BottomMarginAdj},
		{"font_size", c.FontSize},
		{"self_loop_min_width", c.SelfLoopMinWidth},
		{"label_box_width", c.LabelBoxWidth},
		{"label_box_height", c.LabelBoxHeight},
		{"title_space", c.TitleSpace},
		{"actor_width", c.ActorWidth},
		{"line_height", c.LineHeight},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be a finite number (got %g)", f.name, f.v)
		}
		if f.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative (got %g)", f.name, f.v)
		}
	}
	if c.ActorWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "actor_width must be positive (got %g)", c.ActorWidth)
	}
	if c.LineHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "line_height must be positive (got %g)", c.LineHeight)
	}
	return nil
}

// Encode writes the config as TOML. Used by `lifeline config` to print the
// effective settings.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}
