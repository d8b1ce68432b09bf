package bounds

import "github.com/matzehuels/lifeline/pkg/sequence"

// SectionFrame is an open or closed loop/opt/alt/par/rect region.
type SectionFrame struct {
	Kind  sequence.SectionKind
	Title string
	Fill  string // rect sections only
	Box   Box

	// Dividers are the else/and separators recorded while the frame was open.
	Dividers []Divider

	// Depth is the nesting level at open time; 1 is outermost.
	Depth int

	// MinWidth is enforced when the frame closes so that an empty or narrow
	// frame still fits its label.
	MinWidth float64
}

// Divider is a horizontal separator inside an alt or par frame.
type Divider struct {
	Y     float64 `json:"y" bson:"y"`
	Label string  `json:"label,omitempty" bson:"label,omitempty"`
}

// Rect returns the frame's rectangle.
func (f *SectionFrame) Rect() Rect { return f.Box.Rect() }

// ActivationFrame is an activation bar on one actor's lifeline. Its
// horizontal lane is fixed at open; the vertical extent grows with content
// and is finalized by Close.
type ActivationFrame struct {
	Actor         string
	StartX, StopX float64
	Y             Span

	// Depth is the 1-based stacking position among the actor's open
	// activations at open time.
	Depth int

	closed bool
}

// StartY returns the top edge of the bar.
func (a *ActivationFrame) StartY() float64 { return a.Y.Min }

// Close sets the bottom edge to at least stopY and marks the frame closed.
func (a *ActivationFrame) Close(stopY float64) {
	a.Y.Widen(a.Y.Min, stopY)
	a.closed = true
}

// Closed reports whether Close has been called.
func (a *ActivationFrame) Closed() bool { return a.closed }

// Rect returns the bar's rectangle.
func (a *ActivationFrame) Rect() Rect {
	return Rect{MinX: a.StartX, MinY: a.Y.Min, MaxX: a.StopX, MaxY: a.Y.Max}
}

// eachFromTop calls fn for every element of stack from the top down,
// passing its 1-based distance from the top.
func eachFromTop[T any](stack []T, fn func(item T, depth int)) {
	for i := len(stack) - 1; i >= 0; i-- {
		fn(stack[i], len(stack)-i)
	}
}
