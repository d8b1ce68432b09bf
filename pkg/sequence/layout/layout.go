package layout

import (
	"github.com/matzehuels/lifeline/pkg/config"
	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/bounds"
)

// DrawKind discriminates the entries of [Layout.Draws].
type DrawKind string

const (
	DrawActor      DrawKind = "actorBox"
	DrawMessage    DrawKind = "messageLine"
	DrawNote       DrawKind = "noteBox"
	DrawSection    DrawKind = "sectionFrame"
	DrawActivation DrawKind = "activationBox"
)

// Draw is one draw request. Index points into the slice of [Layout] that
// matches Kind (Actors for actor boxes, including the mirrored row).
type Draw struct {
	Kind  DrawKind `json:"kind" bson:"kind"`
	Index int      `json:"index" bson:"index"`
}

// Layout is the computed geometry of a sequence diagram. It is produced by
// [Build] and not modified afterwards.
type Layout struct {
	Extent Extent `json:"extent" bson:"extent"`

	// Actors holds the top row followed by the mirrored bottom row, if any.
	Actors      []ActorBox      `json:"actors" bson:"actors"`
	Lifelines   []Lifeline      `json:"lifelines,omitempty" bson:"lifelines,omitempty"`
	Messages    []MessageLine   `json:"messages,omitempty" bson:"messages,omitempty"`
	Notes       []NoteBox       `json:"notes,omitempty" bson:"notes,omitempty"`
	Sections    []SectionBox    `json:"sections,omitempty" bson:"sections,omitempty"`
	Activations []ActivationBox `json:"activations,omitempty" bson:"activations,omitempty"`

	// Draws lists every visible element in the order the events produced it.
	Draws []Draw `json:"draws" bson:"draws"`

	// Bindings are post-layout callbacks for the integration layer to attach.
	Bindings []Binding `json:"bindings,omitempty" bson:"bindings,omitempty"`

	// Trace records the accumulator state after every event.
	Trace []Step `json:"trace,omitempty" bson:"trace,omitempty"`

	Config config.Config `json:"config" bson:"config"`
}

// Extent is the overall size and viewport of the diagram.
type Extent struct {
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`
	OriginX float64 `json:"origin_x" bson:"origin_x"`
	OriginY float64 `json:"origin_y" bson:"origin_y"`
	Title   string  `json:"title,omitempty" bson:"title,omitempty"`
	TitleX  float64 `json:"title_x,omitempty" bson:"title_x,omitempty"`
	TitleY  float64 `json:"title_y,omitempty" bson:"title_y,omitempty"`
}

// ActorBox is a placed actor.
type ActorBox struct {
	ID       string  `json:"id" bson:"id"`
	Label    string  `json:"label" bson:"label"`
	Link     string  `json:"link,omitempty" bson:"link,omitempty"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`
	Mirrored bool    `json:"mirrored,omitempty" bson:"mirrored,omitempty"`
}

// CenterX returns the x of the actor's lifeline.
func (a ActorBox) CenterX() float64 { return a.X + a.Width/2 }

// Rect returns the actor box as a rectangle.
func (a ActorBox) Rect() bounds.Rect {
	return bounds.Rect{MinX: a.X, MinY: a.Y, MaxX: a.X + a.Width, MaxY: a.Y + a.Height}
}

// ElementID returns the id the SVG sink gives this actor's group.
func (a ActorBox) ElementID() string {
	if a.Mirrored {
		return "actor-bottom-" + a.ID
	}
	return "actor-" + a.ID
}

// Lifeline is the vertical line below an actor.
type Lifeline struct {
	Actor string  `json:"actor" bson:"actor"`
	X     float64 `json:"x" bson:"x"`
	Y1    float64 `json:"y1" bson:"y1"`
	Y2    float64 `json:"y2" bson:"y2"`
}

// MessageLine is a placed message arrow. For a self-loop StartX equals
// StopX and the loop hangs below Y to the right of it.
type MessageLine struct {
	From     string         `json:"from" bson:"from"`
	To       string         `json:"to" bson:"to"`
	Text     string         `json:"text,omitempty" bson:"text,omitempty"`
	Lines    []string       `json:"lines,omitempty" bson:"lines,omitempty"`
	Arrow    sequence.Arrow `json:"arrow" bson:"arrow"`
	StartX   float64        `json:"start_x" bson:"start_x"`
	StopX    float64        `json:"stop_x" bson:"stop_x"`
	Y        float64        `json:"y" bson:"y"`
	TextX    float64        `json:"text_x" bson:"text_x"`
	TextY    float64        `json:"text_y" bson:"text_y"`
	SelfLoop bool           `json:"self_loop,omitempty" bson:"self_loop,omitempty"`
	Sequence int            `json:"sequence" bson:"sequence"`

	// Area is the rectangle the message occupies, text excluded.
	Area bounds.Rect `json:"area" bson:"area"`
}

// NoteBox is a placed note.
type NoteBox struct {
	Actors    []string           `json:"actors" bson:"actors"`
	Placement sequence.Placement `json:"placement" bson:"placement"`
	Text      string             `json:"text,omitempty" bson:"text,omitempty"`
	Lines     []string           `json:"lines,omitempty" bson:"lines,omitempty"`
	X         float64            `json:"x" bson:"x"`
	Y         float64            `json:"y" bson:"y"`
	Width     float64            `json:"width" bson:"width"`
	Height    float64            `json:"height" bson:"height"`
}

// Rect returns the note as a rectangle.
func (n NoteBox) Rect() bounds.Rect {
	return bounds.Rect{MinX: n.X, MinY: n.Y, MaxX: n.X + n.Width, MaxY: n.Y + n.Height}
}

// SectionBox is a closed loop/opt/alt/par/rect frame.
type SectionBox struct {
	Kind     sequence.SectionKind `json:"kind" bson:"kind"`
	Title    string               `json:"title,omitempty" bson:"title,omitempty"`
	Fill     string               `json:"fill,omitempty" bson:"fill,omitempty"`
	Rect     bounds.Rect          `json:"rect" bson:"rect"`
	Dividers []bounds.Divider     `json:"dividers,omitempty" bson:"dividers,omitempty"`
	Depth    int                  `json:"depth" bson:"depth"`
}

// ActivationBox is a closed activation bar.
type ActivationBox struct {
	Actor string      `json:"actor" bson:"actor"`
	Rect  bounds.Rect `json:"rect" bson:"rect"`
	Depth int         `json:"depth" bson:"depth"`
}

// Binding pairs a drawn element with a link target.
type Binding struct {
	ElementID string `json:"element_id" bson:"element_id"`
	Href      string `json:"href" bson:"href"`
}

// Step is the accumulator state after one event.
type Step struct {
	Index       int     `json:"index" bson:"index"`
	Kind        string  `json:"kind" bson:"kind"`
	Cursor      float64 `json:"cursor" bson:"cursor"`
	Sections    int     `json:"sections" bson:"sections"`
	Activations int     `json:"activations" bson:"activations"`
}

// Count returns the number of draws of the given kind.
func (l Layout) Count(kind DrawKind) int {
	n := 0
	for _, d := range l.Draws {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
