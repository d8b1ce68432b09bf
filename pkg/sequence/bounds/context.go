// Package bounds tracks the geometry of one sequence diagram render: the
// global drawing extent, the vertical cursor, and the stacks of open section
// and activation frames.
//
// A [Context] is created per render and never shared. Every rectangle the
// layout places goes through [Context.Insert], which widens the global box
// and then every open frame. Section frames absorb margin on all four sides,
// growing by boxMargin per nesting level counted from the innermost frame,
// so outer frames enclose inner ones with increasing padding. Activation
// frames absorb margin vertically only; their lane width is fixed.
package bounds

import (
	"fmt"
	"math"

	"github.com/matzehuels/lifeline/pkg/config"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence"
)

// Context is the mutable state of a single render.
type Context struct {
	boxMargin       float64
	activationWidth float64
	labelWidth      float64
	labelHeight     float64

	data        Box
	verticalPos float64
	sections    []*SectionFrame
	activations []*ActivationFrame
}

// NewContext returns an empty context using the margins from cfg.
func NewContext(cfg config.Config) *Context {
	c := &Context{
		boxMargin:       cfg.BoxMargin,
		activationWidth: cfg.ActivationWidth,
		labelWidth:      cfg.LabelBoxWidth,
		labelHeight:     cfg.LabelBoxHeight,
	}
	c.Reset()
	return c
}

// Reset returns the context to its initial state: cursor at zero, both
// stacks empty and the global box undefined.
func (c *Context) Reset() {
	c.data = Box{}
	c.verticalPos = 0
	c.sections = nil
	c.activations = nil
}

// VerticalPos returns the vertical cursor.
func (c *Context) VerticalPos() float64 { return c.verticalPos }

// Bounds returns the global extent of everything inserted so far.
func (c *Context) Bounds() Box { return c.data }

// BumpVerticalPos advances the cursor by delta and pulls the bottom edge of
// the global box down with it. Negative deltas are a programming error.
func (c *Context) BumpVerticalPos(delta float64) {
	if delta < 0 || math.IsNaN(delta) {
		panic(fmt.Sprintf("bounds: negative cursor advance %v", delta))
	}
	c.verticalPos += delta
	c.data.Y.Widen(c.verticalPos, c.verticalPos)
}

// Insert normalizes the rectangle, widens the global box to contain it and
// propagates it into every open frame.
func (c *Context) Insert(x1, y1, x2, y2 float64) {
	r := NewRect(x1, y1, x2, y2)
	c.data.Extend(r)
	c.UpdateBounds(r)
}

// UpdateBounds widens every open frame to contain r. A frame n levels from
// the top of its stack is widened by n*boxMargin beyond r.
func (c *Context) UpdateBounds(r Rect) {
	eachFromTop(c.sections, func(f *SectionFrame, n int) {
		f.Box.Extend(r.Inflate(float64(n) * c.boxMargin))
		c.data.Extend(f.Box.Rect())
	})
	eachFromTop(c.activations, func(a *ActivationFrame, n int) {
		m := float64(n) * c.boxMargin
		a.Y.Widen(r.MinY-m, r.MaxY+m)
	})
}

// NewSection pushes a section frame whose top edge is the current cursor.
// The returned frame may be adjusted (MinWidth) until it is closed.
func (c *Context) NewSection(kind sequence.SectionKind, title, fill string) *SectionFrame {
	f := &SectionFrame{
		Kind:     kind,
		Title:    title,
		Fill:     fill,
		Depth:    len(c.sections) + 1,
		MinWidth: c.labelWidth + 2*c.boxMargin,
	}
	f.Box.Y.Widen(c.verticalPos, c.verticalPos)
	c.sections = append(c.sections, f)
	return f
}

// AddDivider records a divider at the current cursor in the innermost open
// section. The divider kind must match that section: else needs alt, and
// needs par.
func (c *Context) AddDivider(kind sequence.DividerKind, label string) error {
	if len(c.sections) == 0 {
		return errors.New(errors.ErrCodeMalformedSequence, "%s outside of any section", kind)
	}
	top := c.sections[len(c.sections)-1]
	if want := kind.Section(); want == "" || top.Kind != want {
		return errors.New(errors.ErrCodeMalformedSequence, "%s is not allowed inside %s", kind, top.Kind)
	}
	top.Dividers = append(top.Dividers, Divider{Y: c.verticalPos, Label: label})
	return nil
}

// EndSection pops the innermost section, which must be of the given kind,
// and finalizes its box. The bottom edge reaches at least the cursor and a
// frame with no content still gets room for its label. The finished box is
// then inserted so enclosing frames and the global extent contain it.
func (c *Context) EndSection(kind sequence.SectionKind) (*SectionFrame, error) {
	if len(c.sections) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedSequence, "end of %s without an open section", kind)
	}
	f := c.sections[len(c.sections)-1]
	if kind != "" && f.Kind != kind {
		return nil, errors.New(errors.ErrCodeMalformedSequence, "end of %s while %s is open", kind, f.Kind)
	}
	c.sections = c.sections[:len(c.sections)-1]

	f.Box.Y.Widen(f.Box.Y.Min, c.verticalPos)
	if f.Box.Y.Len() < c.labelHeight+c.boxMargin {
		f.Box.Y.Max = f.Box.Y.Min + c.labelHeight + c.boxMargin
	}
	if !f.Box.X.Set {
		x := 0.0
		if c.data.X.Set {
			x = c.data.X.Min
		}
		f.Box.X.Widen(x, x+f.MinWidth)
	} else if f.Box.X.Len() < f.MinWidth {
		f.Box.X.Max = f.Box.X.Min + f.MinWidth
	}

	r := f.Rect()
	c.data.Extend(r)
	c.UpdateBounds(r)
	return f, nil
}

// OpenSections returns the number of open section frames.
func (c *Context) OpenSections() int { return len(c.sections) }

// NewActivation opens an activation bar on actor, whose lifeline sits at
// center. The first bar is centered on the lifeline; each further bar on
// the same actor steps right by half the activation width.
func (c *Context) NewActivation(actor string, center float64) *ActivationFrame {
	open := len(c.Activations(actor))
	x := center + float64(open-1)*c.activationWidth/2
	a := &ActivationFrame{
		Actor:  actor,
		StartX: x,
		StopX:  x + c.activationWidth,
		Depth:  open + 1,
	}
	a.Y.Widen(c.verticalPos+2, c.verticalPos+2)
	c.activations = append(c.activations, a)
	return a
}

// EndActivation removes and returns the most recently opened activation of
// actor, regardless of other actors' bars opened after it. The caller sets
// the bottom edge with [ActivationFrame.Close].
func (c *Context) EndActivation(actor string) (*ActivationFrame, error) {
	for i := len(c.activations) - 1; i >= 0; i-- {
		if a := c.activations[i]; a.Actor == actor {
			c.activations = append(c.activations[:i], c.activations[i+1:]...)
			return a, nil
		}
	}
	return nil, errors.New(errors.ErrCodeMalformedSequence, "deactivate %q without an open activation", actor)
}

// Activations returns the open activation frames of actor, oldest first.
func (c *Context) Activations(actor string) []*ActivationFrame {
	var out []*ActivationFrame
	for _, a := range c.activations {
		if a.Actor == actor {
			out = append(out, a)
		}
	}
	return out
}

// TopActivation returns the most recently opened activation that is still
// open.
func (c *Context) TopActivation() (*ActivationFrame, bool) {
	if len(c.activations) == 0 {
		return nil, false
	}
	return c.activations[len(c.activations)-1], true
}

// OpenActivations returns the number of open activation frames across all
// actors.
func (c *Context) OpenActivations() int { return len(c.activations) }
