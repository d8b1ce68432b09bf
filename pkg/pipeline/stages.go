package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/lifeline/pkg/cache"
	"github.com/matzehuels/lifeline/pkg/diagram"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/layout"
	"github.com/matzehuels/lifeline/pkg/sequence/overview"
	"github.com/matzehuels/lifeline/pkg/sequence/sink"
	"github.com/matzehuels/lifeline/pkg/sequence/styles"
)

// =============================================================================
// Parse
// =============================================================================

// ParseDocument validates a JSON document and converts it to a diagram.
func ParseDocument(data []byte) (*sequence.Diagram, error) {
	doc, err := diagram.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.ToDiagram()
}

// DocumentHash returns the content hash of a diagram. It hashes the
// canonical document encoding, so formatting differences in the source
// file do not change it.
func DocumentHash(d *sequence.Diagram) (string, error) {
	data, err := json.Marshal(diagram.FromDiagram(d))
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	return cache.Hash(data), nil
}

// =============================================================================
// Layout
// =============================================================================

// GenerateLayout computes the layout of d with the options' config.
func GenerateLayout(d *sequence.Diagram, opts Options) (layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, err
	}
	lopts := []layout.Option{layout.WithConfig(opts.Config)}
	if !opts.Trace {
		lopts = append(lopts, layout.WithoutTrace())
	}
	return layout.Build(d, lopts...)
}

// =============================================================================
// Render
// =============================================================================

// RenderFromLayout generates the requested formats from a computed layout.
// The overview formats also need the diagram; d may be nil otherwise.
func RenderFromLayout(ctx context.Context, l layout.Layout, d *sequence.Diagram, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if d == nil && opts.NeedsDiagram() {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"formats %s and %s need the source document, not a stored layout", FormatDOT, FormatOverview)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, buildSVGOptions(l, opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(l, buildJSONOptions(opts)...)
		case FormatDOT, FormatOverview:
			if dot == "" {
				dot = overview.ToDOT(d, overview.Options{Detailed: opts.Detailed})
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = overview.RenderSVG(ctx, dot)
			}
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(l layout.Layout, opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithStyle(styleFor(opts.Style, l))}
	if opts.SequenceNumbers {
		svgOpts = append(svgOpts, sink.WithSequenceNumbers())
	}
	if opts.RightAngles {
		svgOpts = append(svgOpts, sink.WithRightAngles())
	}
	return svgOpts
}

func buildJSONOptions(opts Options) []sink.JSONOption {
	jsonOpts := []sink.JSONOption{sink.WithJSONStyle(opts.Style)}
	if opts.Trace {
		jsonOpts = append(jsonOpts, sink.WithJSONTrace())
	}
	return jsonOpts
}

// styleFor maps a validated style name to its implementation. Simple is
// currently the only one.
func styleFor(name string, l layout.Layout) styles.Style {
	if name == StyleSimple {
		return styles.Simple{FontSize: l.Config.FontSize}
	}
	return nil
}
