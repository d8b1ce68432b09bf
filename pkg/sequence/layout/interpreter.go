package layout

import (
	"math"
	"strings"

	"github.com/matzehuels/lifeline/pkg/config"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/bounds"
)

// Offsets of the fixed message and activation geometry.
const (
	lineBoxHeight     = 10 // vertical room inserted above a message line
	textAboveLine     = 7  // baseline of the last text line above the arrow
	selfLoopAdvance   = 30 // cursor advance below a self-loop
	activationMinSpan = 18
	activationPad     = 12
)

// Option configures [Build].
type Option func(*builder)

// WithConfig sets the layout constants. The default is [config.Default].
func WithConfig(cfg config.Config) Option { return func(b *builder) { b.cfg = cfg } }

// WithMeasurer sets the text measurer. The default is an [ApproxMeasurer]
// using the configured font size.
func WithMeasurer(m TextMeasurer) Option { return func(b *builder) { b.measure = m } }

// WithoutTrace skips recording [Layout.Trace].
func WithoutTrace() Option { return func(b *builder) { b.noTrace = true } }

type builder struct {
	cfg     config.Config
	measure TextMeasurer
	noTrace bool

	ctx    *bounds.Context
	out    Layout
	actors map[string]int // id -> index into out.Actors (top row)
	seq    int

	openSections []int // event indexes of unclosed SectionStart events
}

// Build lays out d. It walks the events once, in order, and stops at the
// first malformed or unresolvable event; the returned error then wraps an
// [errors.EventError] carrying that event's index and no layout is
// returned.
//
// Build has no shared state: concurrent calls are safe.
func Build(d *sequence.Diagram, opts ...Option) (Layout, error) {
	b := &builder{cfg: config.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if b.measure == nil {
		b.measure = ApproxMeasurer{FontSize: b.cfg.FontSize}
	}
	if err := b.cfg.Validate(); err != nil {
		return Layout{}, err
	}
	return b.run(d)
}

func (b *builder) run(d *sequence.Diagram) (Layout, error) {
	b.ctx = bounds.NewContext(b.cfg)
	b.out = Layout{Config: b.cfg}
	b.actors = make(map[string]int)

	actors := d.ActorOrder()
	for _, a := range actors {
		if err := errors.ValidateActorID(a.ID); err != nil {
			return Layout{}, err
		}
	}

	top := b.placeActors(actors, 0, false)
	for i, a := range top {
		b.actors[a.ID] = i
	}
	b.addActorDraws(top)
	b.ctx.BumpVerticalPos(b.cfg.ActorHeight)

	for i, ev := range d.Events {
		if err := b.step(i, ev); err != nil {
			return Layout{}, errors.AtEvent(i, ev.Type(), err)
		}
		if !b.noTrace {
			b.out.Trace = append(b.out.Trace, Step{
				Index:       i,
				Kind:        ev.Type(),
				Cursor:      b.ctx.VerticalPos(),
				Sections:    b.ctx.OpenSections(),
				Activations: b.ctx.OpenActivations(),
			})
		}
	}

	if n := len(b.openSections); n > 0 {
		i := b.openSections[n-1]
		return Layout{}, errors.AtEvent(i, d.Events[i].Type(),
			errors.New(errors.ErrCodeMalformedSequence, "section is never closed"))
	}
	b.closeDangling()
	b.assemble(actors)
	return b.out, nil
}

func (b *builder) step(i int, ev sequence.Event) error {
	switch ev := ev.(type) {
	case sequence.AddActor:
		// Placed up front from declaration order.
		return nil
	case sequence.Message:
		return b.message(ev)
	case sequence.ActivateStart:
		a, err := b.actor(ev.Actor)
		if err != nil {
			return err
		}
		b.ctx.NewActivation(a.ID, a.CenterX())
		return nil
	case sequence.ActivateEnd:
		return b.deactivate(ev.Actor)
	case sequence.Note:
		return b.note(ev)
	case sequence.SectionStart:
		return b.sectionStart(i, ev)
	case sequence.SectionDivider:
		return b.sectionDivider(ev)
	case sequence.SectionEnd:
		return b.sectionEnd(ev)
	case sequence.SetTitle:
		b.out.Extent.Title = ev.Text
		return nil
	default:
		return errors.New(errors.ErrCodeInternal, "unhandled event type %T", ev)
	}
}

func (b *builder) actor(id string) (ActorBox, error) {
	i, ok := b.actors[id]
	if !ok {
		return ActorBox{}, errors.New(errors.ErrCodeUnknownActor, "actor %q was never declared", id)
	}
	return b.out.Actors[i], nil
}

func (b *builder) message(m sequence.Message) error {
	from, err := b.actor(m.From)
	if err != nil {
		return err
	}
	to, err := b.actor(m.To)
	if err != nil {
		return err
	}
	arrow := m.Arrow
	if arrow == "" {
		arrow = sequence.ArrowSolid
	}
	if !arrow.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown arrow style %q", arrow)
	}

	lines := SplitLines(m.Text)
	extra := float64(len(lines)-1) * b.cfg.LineHeight
	b.ctx.BumpVerticalPos(b.cfg.MessageMargin + extra)
	y := b.ctx.VerticalPos()

	b.seq++
	ml := MessageLine{
		From:     m.From,
		To:       m.To,
		Text:     m.Text,
		Lines:    lines,
		Arrow:    arrow,
		Y:        y,
		TextY:    y - textAboveLine - extra,
		Sequence: b.seq,
	}
	if m.Sequence != 0 {
		ml.Sequence = m.Sequence
	}

	fromB, toB := b.flowBounds(from), b.flowBounds(to)
	textW := widest(lines, b.measure)

	if m.From == m.To {
		x := fromB[1]
		b.ctx.BumpVerticalPos(selfLoopAdvance)
		cur := b.ctx.VerticalPos()
		dx := math.Max(textW/2, b.cfg.SelfLoopMinWidth)
		b.ctx.Insert(x-dx, cur-lineBoxHeight, x+dx, cur)

		ml.StartX, ml.StopX = x, x
		ml.SelfLoop = true
		ml.TextX = x
		ml.Area = bounds.NewRect(x-dx, y-lineBoxHeight, x+dx, cur)
	} else {
		fromIdx, toIdx := 0, 1
		if fromB[0] <= toB[0] {
			fromIdx = 1
		}
		if fromB[0] < toB[0] {
			toIdx = 0
		}
		ml.StartX, ml.StopX = fromB[fromIdx], toB[toIdx]
		ml.TextX = (ml.StartX + ml.StopX) / 2
		b.ctx.Insert(ml.StartX, y-lineBoxHeight, ml.StopX, y)
		if textW > math.Abs(ml.StopX-ml.StartX) {
			b.ctx.Insert(ml.TextX-textW/2, y-lineBoxHeight, ml.TextX+textW/2, y)
		}
		ml.Area = bounds.NewRect(ml.StartX, y-lineBoxHeight, ml.StopX, y)
	}

	lo := min(fromB[0], fromB[1], toB[0], toB[1])
	hi := max(fromB[0], fromB[1], toB[0], toB[1])
	b.ctx.Insert(lo, y, hi, y)

	b.out.Draws = append(b.out.Draws, Draw{Kind: DrawMessage, Index: len(b.out.Messages)})
	b.out.Messages = append(b.out.Messages, ml)
	return nil
}

func (b *builder) deactivate(id string) error {
	if _, err := b.actor(id); err != nil {
		return err
	}
	a, err := b.ctx.EndActivation(id)
	if err != nil {
		return err
	}
	b.finishActivation(a)
	return nil
}

// finishActivation pads a bar that would be too short to see, closes it
// at the cursor and emits it.
func (b *builder) finishActivation(a *bounds.ActivationFrame) {
	cur := b.ctx.VerticalPos()
	if a.StartY()+activationMinSpan > cur {
		a.Y.Min = cur - 6
		b.ctx.BumpVerticalPos(activationPad)
		cur = b.ctx.VerticalPos()
	}
	a.Close(cur)
	b.ctx.Insert(a.StartX, cur-lineBoxHeight, a.StopX, cur)

	b.out.Draws = append(b.out.Draws, Draw{Kind: DrawActivation, Index: len(b.out.Activations)})
	b.out.Activations = append(b.out.Activations, ActivationBox{Actor: a.Actor, Rect: a.Rect(), Depth: a.Depth})
}

// closeDangling closes activations still open after the last event, most
// recent first.
func (b *builder) closeDangling() {
	for {
		top, ok := b.ctx.TopActivation()
		if !ok {
			return
		}
		a, _ := b.ctx.EndActivation(top.Actor)
		b.finishActivation(a)
	}
}

func (b *builder) note(n sequence.Note) error {
	if len(n.Actors) == 0 || len(n.Actors) > 2 {
		return errors.New(errors.ErrCodeInvalidInput, "note needs one or two actors, got %d", len(n.Actors))
	}
	var boxes []ActorBox
	for _, id := range n.Actors {
		a, err := b.actor(id)
		if err != nil {
			return err
		}
		boxes = append(boxes, a)
	}
	if len(boxes) == 2 && n.Placement != sequence.PlacementOver {
		return errors.New(errors.ErrCodeInvalidInput, "only %s notes may span two actors", sequence.PlacementOver)
	}

	b.ctx.BumpVerticalPos(b.cfg.BoxMargin)

	width := b.cfg.ActorWidth
	forced := false
	startx := boxes[0].X
	switch {
	case len(boxes) == 2 && boxes[0].ID != boxes[1].ID:
		x1, x2 := boxes[0].X, boxes[1].X
		width = math.Abs(x1-x2) + b.cfg.ActorMargin
		startx = (x1 + x2 + b.cfg.ActorWidth - width) / 2
		forced = true
	case n.Placement == sequence.PlacementRightOf:
		startx += (b.cfg.ActorWidth + b.cfg.ActorMargin) / 2
	case n.Placement == sequence.PlacementLeftOf:
		startx -= (b.cfg.ActorWidth + b.cfg.ActorMargin) / 2
	case n.Placement == sequence.PlacementOver:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown note placement %q", n.Placement)
	}

	lines := Wrap(n.Text, width-b.cfg.NoteMargin, b.measure)
	textH := float64(len(lines)) * b.cfg.LineHeight
	if !forced && textH > b.cfg.ActorWidth {
		width *= 2
		lines = Wrap(n.Text, width-b.cfg.NoteMargin, b.measure)
		textH = float64(len(lines)) * b.cfg.LineHeight
	}

	y := b.ctx.VerticalPos()
	nb := NoteBox{
		Actors:    append([]string(nil), n.Actors...),
		Placement: n.Placement,
		Text:      n.Text,
		Lines:     lines,
		X:         startx,
		Y:         y,
		Width:     width,
		Height:    textH + 2*b.cfg.NoteMargin,
	}
	b.ctx.Insert(nb.X, nb.Y, nb.X+nb.Width, nb.Y+nb.Height)
	b.ctx.BumpVerticalPos(nb.Height)

	b.out.Draws = append(b.out.Draws, Draw{Kind: DrawNote, Index: len(b.out.Notes)})
	b.out.Notes = append(b.out.Notes, nb)
	return nil
}

func (b *builder) sectionStart(i int, s sequence.SectionStart) error {
	if !s.Kind.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown section kind %q", s.Kind)
	}
	b.ctx.BumpVerticalPos(b.cfg.BoxMargin)
	if s.Kind == sequence.SectionRect {
		b.ctx.NewSection(s.Kind, "", s.Label)
		b.ctx.BumpVerticalPos(b.cfg.BoxMargin)
	} else {
		f := b.ctx.NewSection(s.Kind, s.Label, "")
		f.MinWidth = max(f.MinWidth, b.cfg.LabelBoxWidth+b.measure.Width(sectionTitle(s.Label))+2*b.cfg.BoxMargin)
		b.ctx.BumpVerticalPos(b.cfg.BoxMargin + b.cfg.BoxTextMargin)
	}
	b.openSections = append(b.openSections, i)
	return nil
}

func (b *builder) sectionDivider(d sequence.SectionDivider) error {
	b.ctx.BumpVerticalPos(b.cfg.BoxMargin)
	if err := b.ctx.AddDivider(d.Kind, d.Label); err != nil {
		return err
	}
	b.ctx.BumpVerticalPos(b.cfg.BoxMargin)
	return nil
}

func (b *builder) sectionEnd(e sequence.SectionEnd) error {
	f, err := b.ctx.EndSection(e.Kind)
	if err != nil {
		return err
	}
	b.openSections = b.openSections[:len(b.openSections)-1]

	b.out.Draws = append(b.out.Draws, Draw{Kind: DrawSection, Index: len(b.out.Sections)})
	b.out.Sections = append(b.out.Sections, SectionBox{
		Kind:     f.Kind,
		Title:    f.Title,
		Fill:     f.Fill,
		Rect:     f.Rect(),
		Dividers: f.Dividers,
		Depth:    f.Depth,
	})

	b.ctx.BumpVerticalPos(b.cfg.BoxMargin)
	if gap := f.Box.Y.Max - b.ctx.VerticalPos(); gap > 0 {
		b.ctx.BumpVerticalPos(gap)
	}
	return nil
}

// sectionTitle formats a section or divider label as drawn.
func sectionTitle(label string) string {
	if strings.TrimSpace(label) == "" {
		return ""
	}
	return "[ " + label + " ]"
}
