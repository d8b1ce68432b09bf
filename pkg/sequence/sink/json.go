package sink

import (
	"encoding/json"

	"github.com/matzehuels/lifeline/pkg/sequence/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style string
	trace bool
}

// WithJSONStyle records the style name in the output.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONTrace includes the per-event accumulator trace.
func WithJSONTrace() JSONOption { return func(r *jsonRenderer) { r.trace = true } }

type jsonOutput struct {
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	OriginX  float64       `json:"origin_x"`
	OriginY  float64       `json:"origin_y"`
	Title    string        `json:"title,omitempty"`
	Style    string        `json:"style,omitempty"`
	Draws    []jsonDraw    `json:"draws"`
	Bindings []jsonBinding `json:"bindings,omitempty"`
	Trace    []layout.Step `json:"trace,omitempty"`
}

type jsonDraw struct {
	Kind     layout.DrawKind `json:"kind"`
	ID       string          `json:"id,omitempty"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	X2       *float64        `json:"x2,omitempty"`
	Text     string          `json:"text,omitempty"`
	Arrow    string          `json:"arrow,omitempty"`
	Sequence int             `json:"sequence,omitempty"`
	SelfLoop bool            `json:"self_loop,omitempty"`
	Dividers []jsonDivider   `json:"dividers,omitempty"`
}

type jsonDivider struct {
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

type jsonBinding struct {
	ElementID string `json:"element_id"`
	Href      string `json:"href"`
}

// RenderJSON exports the layout as a flat list of draw requests: one entry
// per visible element in event order, each with its discriminant, geometry,
// text and, for messages, arrow style and sequence number. Lines use x/y as
// the start point and x2 as the end.
//
// RenderJSON does not modify l and is safe to call concurrently.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:   l.Extent.Width,
		Height:  l.Extent.Height,
		OriginX: l.Extent.OriginX,
		OriginY: l.Extent.OriginY,
		Title:   l.Extent.Title,
		Style:   r.style,
		Draws:   make([]jsonDraw, 0, len(l.Draws)),
	}
	for _, d := range l.Draws {
		out.Draws = append(out.Draws, drawFor(l, d))
	}
	for _, b := range l.Bindings {
		out.Bindings = append(out.Bindings, jsonBinding{ElementID: b.ElementID, Href: b.Href})
	}
	if r.trace {
		out.Trace = l.Trace
	}
	return json.MarshalIndent(out, "", "  ")
}

func drawFor(l layout.Layout, d layout.Draw) jsonDraw {
	jd := jsonDraw{Kind: d.Kind}
	switch d.Kind {
	case layout.DrawActor:
		a := l.Actors[d.Index]
		jd.ID, jd.Text = a.ElementID(), a.Label
		jd.X, jd.Y, jd.Width, jd.Height = a.X, a.Y, a.Width, a.Height
	case layout.DrawMessage:
		m := l.Messages[d.Index]
		x2 := m.StopX
		jd.X, jd.Y, jd.X2 = m.StartX, m.Y, &x2
		jd.Text = m.Text
		jd.Arrow = string(m.Arrow)
		jd.Sequence = m.Sequence
		jd.SelfLoop = m.SelfLoop
		if m.SelfLoop {
			jd.Width, jd.Height = m.Area.Width(), m.Area.Height()
		}
	case layout.DrawNote:
		n := l.Notes[d.Index]
		jd.X, jd.Y, jd.Width, jd.Height = n.X, n.Y, n.Width, n.Height
		jd.Text = n.Text
	case layout.DrawSection:
		s := l.Sections[d.Index]
		jd.ID = string(s.Kind)
		jd.X, jd.Y, jd.Width, jd.Height = s.Rect.MinX, s.Rect.MinY, s.Rect.Width(), s.Rect.Height()
		jd.Text = s.Title
		if s.Fill != "" {
			jd.Text = s.Fill
		}
		for _, div := range s.Dividers {
			jd.Dividers = append(jd.Dividers, jsonDivider{Y: div.Y, Label: div.Label})
		}
	case layout.DrawActivation:
		a := l.Activations[d.Index]
		jd.ID = a.Actor
		jd.X, jd.Y, jd.Width, jd.Height = a.Rect.MinX, a.Rect.MinY, a.Rect.Width(), a.Rect.Height()
	}
	return jd
}
