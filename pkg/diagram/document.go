package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence"
)

// Document is the JSON input format of a sequence diagram.
//
//	{
//	  "title": "Checkout",
//	  "actors": [{"id": "A", "name": "Alice"}, {"id": "B"}],
//	  "events": [
//	    {"type": "message", "from": "A", "to": "B", "text": "hello"},
//	    {"type": "note", "actors": ["B"], "placement": "right_of", "text": "thinks"}
//	  ]
//	}
//
// Actors may also be declared inline with add_actor events. Every actor an
// event refers to must be declared somewhere in the document.
type Document struct {
	Title  string  `json:"title,omitempty" bson:"title,omitempty"`
	Actors []Actor `json:"actors,omitempty" bson:"actors,omitempty"`
	Events []Event `json:"events" bson:"events"`
}

// Actor is a participant declared up front.
type Actor struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Link string `json:"link,omitempty" bson:"link,omitempty"`
}

// Event is the flat wire form of every event variant. Type selects the
// variant and decides which of the other fields are meaningful.
type Event struct {
	Type string `json:"type" bson:"type"`

	// add_actor
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Link string `json:"link,omitempty" bson:"link,omitempty"`

	// message
	From     string `json:"from,omitempty" bson:"from,omitempty"`
	To       string `json:"to,omitempty" bson:"to,omitempty"`
	Arrow    string `json:"arrow,omitempty" bson:"arrow,omitempty"`
	Sequence int    `json:"sequence,omitempty" bson:"sequence,omitempty"`

	// activate_start, activate_end
	Actor string `json:"actor,omitempty" bson:"actor,omitempty"`

	// note
	Actors    []string `json:"actors,omitempty" bson:"actors,omitempty"`
	Placement string   `json:"placement,omitempty" bson:"placement,omitempty"`

	// section_start, section_divider, section_end
	Kind  string `json:"kind,omitempty" bson:"kind,omitempty"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`

	// message, note, set_title
	Text string `json:"text,omitempty" bson:"text,omitempty"`
}

// ParseDocument validates data against the document schema and decodes it.
func ParseDocument(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is empty")
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	return &doc, nil
}

// ReadDocument reads and parses a document from r. It does not close r.
func ReadDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return ParseDocument(data)
}

// ReadDocumentFile reads and parses the document at path.
func ReadDocumentFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the document against the schema. Documents built in
// code go through the same rules as parsed ones.
func (d *Document) Validate() error {
	return validateValue(d)
}

// ToDiagram converts the document into the layout input model. Labels and
// ids are checked, and every actor reference must resolve to an actor
// declared in Actors or by any add_actor event; otherwise the error is
// UNKNOWN_ACTOR tagged with the event index. A non-empty Title becomes a
// leading set_title event, so a later set_title in Events overrides it.
func (d *Document) ToDiagram() (*sequence.Diagram, error) {
	out := &sequence.Diagram{
		Actors: make([]sequence.Actor, 0, len(d.Actors)),
		Events: make([]sequence.Event, 0, len(d.Events)+1),
	}
	for _, a := range d.Actors {
		if err := errors.ValidateActorID(a.ID); err != nil {
			return nil, err
		}
		if err := errors.ValidateLabel(a.Name); err != nil {
			return nil, fmt.Errorf("actor %q: %w", a.ID, err)
		}
		if err := errors.ValidateLink(a.Link); err != nil {
			return nil, fmt.Errorf("actor %q: %w", a.ID, err)
		}
		out.Actors = append(out.Actors, sequence.Actor{ID: a.ID, Name: a.Name, Link: a.Link})
	}

	offset := 0
	if d.Title != "" {
		if err := errors.ValidateLabel(d.Title); err != nil {
			return nil, fmt.Errorf("title: %w", err)
		}
		out.Events = append(out.Events, sequence.SetTitle{Text: d.Title})
		offset = 1
	}

	for i, e := range d.Events {
		ev, err := e.toEvent()
		if err != nil {
			return nil, errors.AtEvent(i, e.Type, err)
		}
		out.Events = append(out.Events, ev)
	}

	declared := make(map[string]bool)
	for _, a := range out.ActorOrder() {
		declared[a.ID] = true
	}
	for i, ev := range out.Events[offset:] {
		for _, id := range references(ev) {
			if !declared[id] {
				return nil, errors.AtEvent(i, ev.Type(),
					errors.New(errors.ErrCodeUnknownActor, "actor %q was never declared", id))
			}
		}
	}
	return out, nil
}

func (e Event) toEvent() (sequence.Event, error) {
	label := e.Text
	switch e.Type {
	case "section_start", "section_divider":
		label = e.Label
	case "add_actor":
		label = e.Name
	}
	if err := errors.ValidateLabel(label); err != nil {
		return nil, err
	}

	switch e.Type {
	case "add_actor":
		if err := errors.ValidateActorID(e.ID); err != nil {
			return nil, err
		}
		if err := errors.ValidateLink(e.Link); err != nil {
			return nil, err
		}
		return sequence.AddActor{ID: e.ID, Name: e.Name, Link: e.Link}, nil
	case "message":
		arrow := sequence.Arrow(e.Arrow)
		if arrow == "" {
			arrow = sequence.ArrowSolid
		}
		if !arrow.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown arrow %q", e.Arrow)
		}
		return sequence.Message{From: e.From, To: e.To, Text: e.Text, Arrow: arrow, Sequence: e.Sequence}, nil
	case "activate_start":
		return sequence.ActivateStart{Actor: e.Actor}, nil
	case "activate_end":
		return sequence.ActivateEnd{Actor: e.Actor}, nil
	case "note":
		if len(e.Actors) == 0 || len(e.Actors) > 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "note needs one or two actors, got %d", len(e.Actors))
		}
		return sequence.Note{
			Actors:    append([]string(nil), e.Actors...),
			Placement: sequence.Placement(e.Placement),
			Text:      e.Text,
		}, nil
	case "section_start":
		kind := sequence.SectionKind(e.Kind)
		if !kind.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown section kind %q", e.Kind)
		}
		return sequence.SectionStart{Kind: kind, Label: e.Label}, nil
	case "section_divider":
		kind := sequence.DividerKind(e.Kind)
		if kind.Section() == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown divider kind %q", e.Kind)
		}
		return sequence.SectionDivider{Kind: kind, Label: e.Label}, nil
	case "section_end":
		return sequence.SectionEnd{Kind: sequence.SectionKind(e.Kind)}, nil
	case "set_title":
		return sequence.SetTitle{Text: e.Text}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown event type %q", e.Type)
}

// references lists the actor ids an event points at.
func references(ev sequence.Event) []string {
	switch ev := ev.(type) {
	case sequence.Message:
		return []string{ev.From, ev.To}
	case sequence.ActivateStart:
		return []string{ev.Actor}
	case sequence.ActivateEnd:
		return []string{ev.Actor}
	case sequence.Note:
		return ev.Actors
	}
	return nil
}

// FromDiagram converts a diagram back into its document form. Events keep
// their order; a set_title event stays an event rather than moving to
// Title.
func FromDiagram(d *sequence.Diagram) *Document {
	doc := &Document{
		Actors: make([]Actor, 0, len(d.Actors)),
		Events: make([]Event, 0, len(d.Events)),
	}
	for _, a := range d.Actors {
		doc.Actors = append(doc.Actors, Actor{ID: a.ID, Name: a.Name, Link: a.Link})
	}
	for _, ev := range d.Events {
		doc.Events = append(doc.Events, fromEvent(ev))
	}
	return doc
}

func fromEvent(ev sequence.Event) Event {
	e := Event{Type: ev.Type()}
	switch ev := ev.(type) {
	case sequence.AddActor:
		e.ID, e.Name, e.Link = ev.ID, ev.Name, ev.Link
	case sequence.Message:
		e.From, e.To, e.Text = ev.From, ev.To, ev.Text
		e.Arrow = string(ev.Arrow)
		e.Sequence = ev.Sequence
	case sequence.ActivateStart:
		e.Actor = ev.Actor
	case sequence.ActivateEnd:
		e.Actor = ev.Actor
	case sequence.Note:
		e.Actors = append([]string(nil), ev.Actors...)
		e.Placement = string(ev.Placement)
		e.Text = ev.Text
	case sequence.SectionStart:
		e.Kind, e.Label = string(ev.Kind), ev.Label
	case sequence.SectionDivider:
		e.Kind, e.Label = string(ev.Kind), ev.Label
	case sequence.SectionEnd:
		e.Kind = string(ev.Kind)
	case sequence.SetTitle:
		e.Text = ev.Text
	}
	return e
}

// WriteDocument encodes d as indented JSON.
func WriteDocument(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
