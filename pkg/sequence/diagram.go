package sequence

// Actor is a declared participant.
type Actor struct {
	ID   string
	Name string
	Link string
}

// Label returns the display name, falling back to the id.
func (a Actor) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Diagram is a parsed sequence diagram: actors in first-declaration order
// and the ordered event list. A Diagram is treated as immutable once built.
type Diagram struct {
	Actors []Actor
	Events []Event
}

// ActorOrder returns the actors in first-declaration order, merging the
// explicit Actors list with AddActor events. A later AddActor for a known
// id updates its name and link but keeps its slot.
func (d *Diagram) ActorOrder() []Actor {
	index := make(map[string]int, len(d.Actors))
	out := make([]Actor, 0, len(d.Actors))

	add := func(a Actor) {
		if i, ok := index[a.ID]; ok {
			if a.Name != "" {
				out[i].Name = a.Name
			}
			if a.Link != "" {
				out[i].Link = a.Link
			}
			return
		}
		index[a.ID] = len(out)
		out = append(out, a)
	}

	for _, a := range d.Actors {
		add(a)
	}
	for _, ev := range d.Events {
		if aa, ok := ev.(AddActor); ok {
			add(Actor{ID: aa.ID, Name: aa.Name, Link: aa.Link})
		}
	}
	return out
}

// Builder assembles a Diagram event by event. It is mostly useful in tests
// and examples; parsers usually append to Diagram.Events directly.
type Builder struct {
	d Diagram
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

func (b *Builder) add(ev Event) *Builder {
	b.d.Events = append(b.d.Events, ev)
	return b
}

// Actor appends an AddActor event.
func (b *Builder) Actor(id string) *Builder { return b.add(AddActor{ID: id}) }

// NamedActor appends an AddActor event with a display name.
func (b *Builder) NamedActor(id, name string) *Builder {
	return b.add(AddActor{ID: id, Name: name})
}

// Message appends a solid message.
func (b *Builder) Message(from, to, text string) *Builder {
	return b.add(Message{From: from, To: to, Text: text, Arrow: ArrowSolid})
}

// Arrow appends a message with an explicit arrow style.
func (b *Builder) Arrow(from, to, text string, arrow Arrow) *Builder {
	return b.add(Message{From: from, To: to, Text: text, Arrow: arrow})
}

// Activate appends an ActivateStart event.
func (b *Builder) Activate(actor string) *Builder { return b.add(ActivateStart{Actor: actor}) }

// Deactivate appends an ActivateEnd event.
func (b *Builder) Deactivate(actor string) *Builder { return b.add(ActivateEnd{Actor: actor}) }

// Note appends a note event.
func (b *Builder) Note(p Placement, text string, actors ...string) *Builder {
	return b.add(Note{Actors: actors, Placement: p, Text: text})
}

// Start appends a SectionStart event.
func (b *Builder) Start(kind SectionKind, label string) *Builder {
	return b.add(SectionStart{Kind: kind, Label: label})
}

// Divide appends a SectionDivider event.
func (b *Builder) Divide(kind DividerKind, label string) *Builder {
	return b.add(SectionDivider{Kind: kind, Label: label})
}

// End appends a SectionEnd event.
func (b *Builder) End(kind SectionKind) *Builder { return b.add(SectionEnd{Kind: kind}) }

// Title appends a SetTitle event.
func (b *Builder) Title(text string) *Builder { return b.add(SetTitle{Text: text}) }

// Event appends an arbitrary event.
func (b *Builder) Event(ev Event) *Builder { return b.add(ev) }

// Diagram returns the built diagram.
func (b *Builder) Diagram() *Diagram {
	d := b.d
	d.Events = append([]Event(nil), b.d.Events...)
	return &d
}
