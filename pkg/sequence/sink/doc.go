// Package sink renders sequence diagram layouts to output formats.
//
// # Supported Formats
//
//   - SVG ([RenderSVG]): standalone vector graphic drawn through a
//     [styles.Style]
//   - JSON ([RenderJSON]): the flat list of draw requests, one per visible
//     element, for external drawing code
//
// Both take a computed [layout.Layout] and do not modify it:
//
//	l, err := layout.Build(diagram)
//	svg := sink.RenderSVG(l, sink.WithSequenceNumbers())
//	data, err := sink.RenderJSON(l, sink.WithJSONStyle("simple"))
//
// [styles.Style]: github.com/matzehuels/lifeline/pkg/sequence/styles.Style
// [layout.Layout]: github.com/matzehuels/lifeline/pkg/sequence/layout.Layout
package sink
