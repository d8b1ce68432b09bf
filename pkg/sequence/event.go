// Package sequence defines the input model of a sequence diagram: the
// declared actors and the ordered list of events produced by a parser.
//
// Events form a closed set. Every variant implements [Event] through an
// unexported marker method, so code outside this package cannot add new
// kinds and a type switch over the variants below is exhaustive:
//
//	switch ev := ev.(type) {
//	case sequence.Message:
//	case sequence.Note:
//	...
//	}
//
// The layout engine lives in the [layout] subpackage and its bounds
// bookkeeping in [bounds].
package sequence

// Event is one entry of a parsed sequence diagram.
type Event interface {
	// Type returns the stable snake_case name of the variant, used in
	// serialized documents and error messages.
	Type() string
	isEvent()
}

// Arrow is the line style of a message.
type Arrow string

// Arrow styles. Open arrows have no head; cross arrows end in an X.
const (
	ArrowSolid       Arrow = "solid"
	ArrowDotted      Arrow = "dotted"
	ArrowSolidOpen   Arrow = "solid-open"
	ArrowDottedOpen  Arrow = "dotted-open"
	ArrowSolidCross  Arrow = "solid-cross"
	ArrowDottedCross Arrow = "dotted-cross"
)

// Valid reports whether a is one of the known arrow styles.
func (a Arrow) Valid() bool {
	switch a {
	case ArrowSolid, ArrowDotted, ArrowSolidOpen, ArrowDottedOpen, ArrowSolidCross, ArrowDottedCross:
		return true
	}
	return false
}

// Dotted reports whether the line is drawn dashed.
func (a Arrow) Dotted() bool {
	return a == ArrowDotted || a == ArrowDottedOpen || a == ArrowDottedCross
}

// Placement positions a note relative to its actor(s).
type Placement string

const (
	PlacementLeftOf  Placement = "left_of"
	PlacementRightOf Placement = "right_of"
	PlacementOver    Placement = "over"
)

// SectionKind is the kind of a nested frame.
type SectionKind string

const (
	SectionLoop SectionKind = "loop"
	SectionOpt  SectionKind = "opt"
	SectionAlt  SectionKind = "alt"
	SectionPar  SectionKind = "par"
	SectionRect SectionKind = "rect"
)

// Valid reports whether k is a known section kind.
func (k SectionKind) Valid() bool {
	switch k {
	case SectionLoop, SectionOpt, SectionAlt, SectionPar, SectionRect:
		return true
	}
	return false
}

// DividerKind splits an open section: "else" inside alt, "and" inside par.
type DividerKind string

const (
	DividerElse DividerKind = "else"
	DividerAnd  DividerKind = "and"
)

// Section returns the only section kind the divider may appear in.
func (d DividerKind) Section() SectionKind {
	switch d {
	case DividerElse:
		return SectionAlt
	case DividerAnd:
		return SectionPar
	}
	return ""
}

// AddActor declares a participant. Re-declaring an id updates its name.
type AddActor struct {
	ID   string
	Name string // Display text; defaults to ID
	Link string // Optional URL attached to the actor box
}

// Message is an arrow between two actors, or a self-loop when From == To.
type Message struct {
	From, To string
	Text     string
	Arrow    Arrow
	// Sequence overrides the displayed sequence number when non-zero.
	Sequence int
}

// ActivateStart opens an activation bar on Actor's lifeline.
type ActivateStart struct{ Actor string }

// ActivateEnd closes the most recent open activation on Actor's lifeline.
type ActivateEnd struct{ Actor string }

// Note is a text box next to or over one actor, or spanning two.
type Note struct {
	Actors    []string
	Placement Placement
	Text      string
}

// SectionStart opens a loop/opt/alt/par/rect frame. For rect, Label is the
// fill color.
type SectionStart struct {
	Kind  SectionKind
	Label string
}

// SectionDivider splits the innermost open section.
type SectionDivider struct {
	Kind  DividerKind
	Label string
}

// SectionEnd closes the innermost open section.
type SectionEnd struct{ Kind SectionKind }

// SetTitle sets the diagram title.
type SetTitle struct{ Text string }

func (AddActor) Type() string       { return "add_actor" }
func (Message) Type() string        { return "message" }
func (ActivateStart) Type() string  { return "activate_start" }
func (ActivateEnd) Type() string    { return "activate_end" }
func (Note) Type() string           { return "note" }
func (SectionStart) Type() string   { return "section_start" }
func (SectionDivider) Type() string { return "section_divider" }
func (SectionEnd) Type() string     { return "section_end" }
func (SetTitle) Type() string       { return "set_title" }

func (AddActor) isEvent()       {}
func (Message) isEvent()        {}
func (ActivateStart) isEvent()  {}
func (ActivateEnd) isEvent()    {}
func (Note) isEvent()           {}
func (SectionStart) isEvent()   {}
func (SectionDivider) isEvent() {}
func (SectionEnd) isEvent()     {}
func (SetTitle) isEvent()       {}
