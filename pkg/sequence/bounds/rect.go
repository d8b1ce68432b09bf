package bounds

import "math"

// Rect is an axis-aligned rectangle in user units. Y grows downwards.
type Rect struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// NewRect returns the normalized rectangle spanned by two corners.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		MinX: math.Min(x1, x2), MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2), MaxY: math.Max(y1, y2),
	}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return (r.MinX + r.MaxX) / 2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return (r.MinY + r.MaxY) / 2 }

// Inflate grows the rectangle by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Contains reports whether o lies entirely inside r (edges inclusive).
func (r Rect) Contains(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

// Span is a one-dimensional interval that starts out undefined and only
// ever widens.
type Span struct {
	Min, Max float64
	Set      bool
}

// Widen grows the span to include [lo, hi].
func (s *Span) Widen(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if !s.Set {
		s.Min, s.Max, s.Set = lo, hi, true
		return
	}
	s.Min = math.Min(s.Min, lo)
	s.Max = math.Max(s.Max, hi)
}

// Len returns Max-Min, or 0 for an undefined span.
func (s Span) Len() float64 {
	if !s.Set {
		return 0
	}
	return s.Max - s.Min
}

// Box is a bounding box whose axes become defined independently. A section
// frame, for example, knows its top edge as soon as it opens but learns its
// horizontal extent only when content is placed inside it.
type Box struct {
	X, Y Span
}

// Extend widens the box to contain r.
func (b *Box) Extend(r Rect) {
	b.X.Widen(r.MinX, r.MaxX)
	b.Y.Widen(r.MinY, r.MaxY)
}

// Defined reports whether both axes are known.
func (b Box) Defined() bool { return b.X.Set && b.Y.Set }

// Rect returns the box as a rectangle. Undefined axes collapse to zero.
func (b Box) Rect() Rect {
	var r Rect
	if b.X.Set {
		r.MinX, r.MaxX = b.X.Min, b.X.Max
	}
	if b.Y.Set {
		r.MinY, r.MaxY = b.Y.Min, b.Y.Max
	}
	return r
}
