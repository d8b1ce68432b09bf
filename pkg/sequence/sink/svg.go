package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/layout"
	"github.com/matzehuels/lifeline/pkg/sequence/styles"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	seqNumbers  bool
	rightAngles bool
}

// WithStyle sets the drawing style. The default is [styles.Simple].
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithSequenceNumbers draws each message's sequence number at its start,
// regardless of the layout's configuration.
func WithSequenceNumbers() SVGOption { return func(r *svgRenderer) { r.seqNumbers = true } }

// WithRightAngles draws self-loops with straight segments instead of a curve.
func WithRightAngles() SVGOption { return func(r *svgRenderer) { r.rightAngles = true } }

// RenderSVG draws a layout as a standalone SVG document.
//
// Rect backgrounds, lifelines and activation bars are drawn first so that
// they sit behind everything else; the remaining draws follow in event
// order and the title comes last. Linked actors are wrapped in <a> elements
// using the layout's bindings.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{
		seqNumbers:  l.Config.ShowSequenceNumbers,
		rightAngles: l.Config.RightAngles,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.style == nil {
		r.style = styles.Simple{FontSize: l.Config.FontSize}
	}

	ext := l.Extent
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		ext.OriginX, ext.OriginY, ext.Width, ext.Height, ext.Width, ext.Height)
	r.style.RenderDefs(&buf)

	links := make(map[string]string, len(l.Bindings))
	for _, b := range l.Bindings {
		links[b.ElementID] = b.Href
	}

	for _, s := range l.Sections {
		if s.Kind == sequence.SectionRect {
			r.style.RenderSection(&buf, sectionFor(l, s))
		}
	}
	for _, ll := range l.Lifelines {
		r.style.RenderLifeline(&buf, styles.Lifeline{Actor: ll.Actor, X: ll.X, Y1: ll.Y1, Y2: ll.Y2})
	}
	for _, a := range l.Activations {
		r.style.RenderActivation(&buf, styles.Activation{
			Actor: a.Actor,
			X:     a.Rect.MinX, Y: a.Rect.MinY, W: a.Rect.Width(), H: a.Rect.Height(),
			Depth: a.Depth,
		})
	}

	for _, d := range l.Draws {
		switch d.Kind {
		case layout.DrawActor:
			a := l.Actors[d.Index]
			r.style.RenderActor(&buf, styles.Actor{
				ID:    a.ElementID(),
				Label: a.Label,
				X:     a.X, Y: a.Y, W: a.Width, H: a.Height,
				CX: a.CenterX(), CY: a.Y + a.Height/2,
				URL: links[a.ElementID()],
			})
		case layout.DrawMessage:
			r.style.RenderMessage(&buf, r.message(l, l.Messages[d.Index]))
		case layout.DrawNote:
			n := l.Notes[d.Index]
			r.style.RenderNote(&buf, styles.Note{
				X: n.X, Y: n.Y, W: n.Width, H: n.Height,
				Lines:      n.Lines,
				LineHeight: l.Config.LineHeight,
				Margin:     l.Config.NoteMargin,
			})
		case layout.DrawSection:
			if s := l.Sections[d.Index]; s.Kind != sequence.SectionRect {
				r.style.RenderSection(&buf, sectionFor(l, s))
			}
		}
	}

	r.style.RenderTitle(&buf, styles.Title{Text: ext.Title, X: ext.TitleX, Y: ext.TitleY})
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) message(l layout.Layout, m layout.MessageLine) styles.Message {
	sm := styles.Message{
		X1: m.StartX, X2: m.StopX, Y: m.Y,
		Lines:       m.Lines,
		TextX:       m.TextX,
		TextY:       m.TextY,
		LineHeight:  l.Config.LineHeight,
		Arrow:       string(m.Arrow),
		Dotted:      m.Arrow.Dotted(),
		SelfLoop:    m.SelfLoop,
		RightAngles: r.rightAngles,
		LoopWidth:   m.Area.Width(),
	}
	if r.seqNumbers {
		sm.Sequence = m.Sequence
	}
	return sm
}

func sectionFor(l layout.Layout, s layout.SectionBox) styles.Section {
	out := styles.Section{
		Kind:   string(s.Kind),
		Title:  s.Title,
		Fill:   s.Fill,
		X:      s.Rect.MinX, Y: s.Rect.MinY, W: s.Rect.Width(), H: s.Rect.Height(),
		LabelW: l.Config.LabelBoxWidth,
		LabelH: l.Config.LabelBoxHeight,
		Margin: l.Config.BoxMargin,
	}
	for _, d := range s.Dividers {
		out.Dividers = append(out.Dividers, styles.Divider{Y: d.Y, Label: d.Label})
	}
	return out
}
