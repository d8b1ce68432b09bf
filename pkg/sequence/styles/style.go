package styles

import "bytes"

// Style defines the visual appearance of a sequence diagram.
// Implementations control how each element kind is drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (arrow markers, filters).
	RenderDefs(buf *bytes.Buffer)
	// RenderActor writes an actor box with its label.
	RenderActor(buf *bytes.Buffer, a Actor)
	// RenderLifeline writes the vertical line below an actor.
	RenderLifeline(buf *bytes.Buffer, l Lifeline)
	// RenderActivation writes an activation bar.
	RenderActivation(buf *bytes.Buffer, a Activation)
	// RenderMessage writes a message arrow or self-loop and its text.
	RenderMessage(buf *bytes.Buffer, m Message)
	// RenderNote writes a note box and its text.
	RenderNote(buf *bytes.Buffer, n Note)
	// RenderSection writes a section frame, its label tab and dividers.
	RenderSection(buf *bytes.Buffer, s Section)
	// RenderTitle writes the diagram title.
	RenderTitle(buf *bytes.Buffer, t Title)
}

// Actor contains the data needed to draw one actor box.
type Actor struct {
	ID         string  // Element id
	Label      string  // Display text
	X, Y, W, H float64 // Position and dimensions
	CX, CY     float64 // Center coordinates (for text)
	URL        string  // Optional link target
}

// Lifeline is a vertical dashed line.
type Lifeline struct {
	Actor     string
	X, Y1, Y2 float64
}

// Activation is a bar on a lifeline.
type Activation struct {
	Actor      string
	X, Y, W, H float64
	Depth      int
}

// Message contains the geometry of one arrow.
type Message struct {
	X1, X2, Y    float64
	Lines        []string
	TextX, TextY float64 // Baseline of the first line
	LineHeight   float64
	Arrow        string // solid, dotted, solid-open, ...
	Dotted       bool
	SelfLoop     bool
	RightAngles  bool    // Draw self-loops with straight segments
	LoopWidth    float64 // Horizontal reach of a right-angled self-loop
	Sequence     int     // Displayed number, 0 to hide
}

// Note is a text box.
type Note struct {
	X, Y, W, H float64
	Lines      []string
	LineHeight float64
	Margin     float64
}

// Section is a loop/opt/alt/par/rect frame.
type Section struct {
	Kind       string
	Title      string
	Fill       string // rect sections
	X, Y, W, H float64
	Dividers   []Divider
	LabelW     float64
	LabelH     float64
	Margin     float64
}

// Divider separates the branches of an alt or par section.
type Divider struct {
	Y     float64
	Label string
}

// Title is the diagram heading.
type Title struct {
	Text string
	X, Y float64
}
