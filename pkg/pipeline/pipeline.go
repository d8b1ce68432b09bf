// Package pipeline runs the document → layout → render chain shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: validate a JSON document and convert it to a sequence.Diagram
//  2. Layout: compute geometry with layout.Build
//  3. Render: produce SVG, draw-list JSON, a DOT overview or its SVG
//
// Layouts and artifacts are cached by content hash (see pkg/cache), so
// re-rendering an unchanged document costs a hash and a lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, "checkout.json", data, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// Stages can also be run one at a time:
//
//	d, err := runner.Parse(ctx, "checkout.json", data)
//	l, err := runner.ComputeLayout(ctx, d, opts)
//	artifacts, err := runner.Render(ctx, l, d, opts)
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lifeline/pkg/cache"
	"github.com/matzehuels/lifeline/pkg/config"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/layout"
)

// Output formats.
const (
	FormatSVG      = "svg"      // the sequence diagram
	FormatJSON     = "json"     // flat draw list, see sink.RenderJSON
	FormatDOT      = "dot"      // participant overview as Graphviz DOT
	FormatOverview = "overview" // participant overview rendered to SVG
)

// StyleSimple is the only built-in drawing style.
const StyleSimple = "simple"

// DefaultStyle is the default visual style.
const DefaultStyle = StyleSimple

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatOverview: true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	StyleSimple: true,
}

// Options configures a pipeline run. The exported JSON form is what the API
// accepts next to a document.
type Options struct {
	// Layout options
	Config config.Config `json:"config"`
	Trace  bool          `json:"trace,omitempty"` // record per-event accumulator state

	// Render options
	Formats         []string `json:"formats,omitempty"`
	Style           string   `json:"style,omitempty"`
	SequenceNumbers bool     `json:"sequence_numbers,omitempty"` // force numbers on
	RightAngles     bool     `json:"right_angles,omitempty"`     // force square self-loops
	Detailed        bool     `json:"detailed,omitempty"`         // overview edge labels list message texts

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Diagram      *sequence.Diagram
	DocumentHash string
	Layout       layout.Layout
	Artifacts    map[string][]byte
	Stats        Stats
	CacheInfo    CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ActorCount int
	EventCount int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(keys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: %s)",
			style, strings.Join(keys(ValidStyles), ", "))
	}
	return nil
}

// SetLayoutDefaults fills in the default config and a discarding logger.
// A zero Config means "not set" and is replaced by config.Default().
func (o *Options) SetLayoutDefaults() {
	if o.Config == (config.Config{}) {
		o.Config = config.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.Config.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// ValidateAndSetDefaults checks every stage's options. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// NeedsDiagram reports whether any requested format is derived from the
// diagram rather than the layout.
func (o *Options) NeedsDiagram() bool {
	for _, f := range o.Formats {
		if f == FormatDOT || f == FormatOverview {
			return true
		}
	}
	return false
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() (cache.LayoutKeyOpts, error) {
	h, err := cache.HashJSON(o.Config)
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	return cache.LayoutKeyOpts{ConfigHash: h, Trace: o.Trace}, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:          format,
		Style:           o.Style,
		SequenceNumbers: o.SequenceNumbers,
		RightAngles:     o.RightAngles,
	}
	if format == FormatDOT || format == FormatOverview {
		opts.Style = fmt.Sprintf("overview:detailed=%t", o.Detailed)
	}
	return opts
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
