package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/lifeline/pkg/config"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/bounds"
)

func build(t *testing.T, d *sequence.Diagram, opts ...Option) Layout {
	t.Helper()
	l, err := Build(d, opts...)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return l
}

func TestScenarioSingleMessage(t *testing.T) {
	d := sequence.New().Actor("A").Actor("B").Message("A", "B", "hi").Diagram()
	l := build(t, d)

	if got := l.Count(DrawMessage); got != 1 {
		t.Fatalf("message draws = %d, want 1", got)
	}
	m := l.Messages[0]
	if m.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", m.Sequence)
	}
	if m.StartX != 75 || m.StopX != 275 {
		t.Errorf("line = [%v, %v], want [75, 275]", m.StartX, m.StopX)
	}

	cfg := config.Default()
	want := 2*cfg.ActorWidth + cfg.ActorMargin + 2*cfg.DiagramMarginX
	if l.Extent.Width != want {
		t.Errorf("Width = %v, want %v", l.Extent.Width, want)
	}
	if l.Extent.OriginX != -cfg.DiagramMarginX || l.Extent.OriginY != -cfg.DiagramMarginY {
		t.Errorf("origin = (%v, %v)", l.Extent.OriginX, l.Extent.OriginY)
	}
}

func TestScenarioActivatedSelfLoop(t *testing.T) {
	d := sequence.New().
		Actor("A").
		Activate("A").
		Message("A", "A", "loop").
		Deactivate("A").
		Diagram()
	l := build(t, d)

	if len(l.Activations) != 1 {
		t.Fatalf("activations = %d, want 1", len(l.Activations))
	}
	act := l.Activations[0].Rect
	loop := l.Messages[0]
	if !loop.SelfLoop {
		t.Fatal("message is not a self-loop")
	}
	if act.MinY > loop.Area.MinY || act.MaxY < loop.Area.MaxY {
		t.Errorf("activation %+v does not vertically contain loop %+v", act, loop.Area)
	}
	if act.MinX != 70 || act.MaxX != 80 {
		t.Errorf("activation x = [%v, %v], want [70, 80] centered on lifeline 75", act.MinX, act.MaxX)
	}
	if loop.StartX != act.MaxX {
		t.Errorf("loop starts at %v, want activation edge %v", loop.StartX, act.MaxX)
	}
}

func TestScenarioLoopSection(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Start(sequence.SectionLoop, "retry").
		Message("A", "B", "x").
		End(sequence.SectionLoop).
		Diagram()
	l := build(t, d)

	if len(l.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(l.Sections))
	}
	cfg := config.Default()
	s := l.Sections[0]
	m := l.Messages[0]

	if !s.Rect.Contains(m.Area.Inflate(cfg.BoxMargin)) {
		t.Errorf("section %+v does not contain message %+v with margin", s.Rect, m.Area)
	}
	if m.TextY-cfg.FontSize < s.Rect.MinY+cfg.BoxMargin {
		t.Errorf("message text at %v overlaps label row starting at %v", m.TextY, s.Rect.MinY)
	}
	if s.Title != "retry" || s.Kind != sequence.SectionLoop {
		t.Errorf("section = %+v", s)
	}
}

func TestScenarioAltDivider(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Start(sequence.SectionAlt, "a").
		Message("A", "B", "x").
		Divide(sequence.DividerElse, "b").
		Message("B", "A", "y").
		End(sequence.SectionAlt).
		Diagram()
	l := build(t, d)

	s := l.Sections[0]
	if len(s.Dividers) != 1 {
		t.Fatalf("dividers = %d, want 1", len(s.Dividers))
	}
	y := s.Dividers[0].Y
	if !(l.Messages[0].Y < y && y < l.Messages[1].Y) {
		t.Errorf("divider at %v not between messages at %v and %v", y, l.Messages[0].Y, l.Messages[1].Y)
	}
	if s.Dividers[0].Label != "b" {
		t.Errorf("divider label = %q, want b", s.Dividers[0].Label)
	}
}

func TestScenarioUnmatchedEnd(t *testing.T) {
	d := sequence.New().Actor("A").End(sequence.SectionLoop).Diagram()

	l, err := Build(d)
	if !errors.Is(err, errors.ErrCodeMalformedSequence) {
		t.Fatalf("Build() error = %v, want MALFORMED_SEQUENCE", err)
	}
	if i, ok := errors.EventIndex(err); !ok || i != 1 {
		t.Errorf("EventIndex = %d, %v; want 1, true", i, ok)
	}
	if len(l.Draws) != 0 || len(l.Actors) != 0 {
		t.Error("partial layout returned on error")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		d     *sequence.Diagram
		code  errors.Code
		index int
	}{
		{
			name:  "unknown message target",
			d:     sequence.New().Actor("A").Message("A", "B", "x").Diagram(),
			code:  errors.ErrCodeUnknownActor,
			index: 1,
		},
		{
			name:  "unknown activation actor",
			d:     sequence.New().Actor("A").Activate("Z").Diagram(),
			code:  errors.ErrCodeUnknownActor,
			index: 1,
		},
		{
			name:  "deactivate without activate",
			d:     sequence.New().Actor("A").Actor("B").Activate("B").Deactivate("A").Diagram(),
			code:  errors.ErrCodeMalformedSequence,
			index: 3,
		},
		{
			name:  "else inside loop",
			d:     sequence.New().Actor("A").Start(sequence.SectionLoop, "").Divide(sequence.DividerElse, "").Diagram(),
			code:  errors.ErrCodeMalformedSequence,
			index: 2,
		},
		{
			name:  "divider outside section",
			d:     sequence.New().Actor("A").Divide(sequence.DividerAnd, "").Diagram(),
			code:  errors.ErrCodeMalformedSequence,
			index: 1,
		},
		{
			name: "mismatched end",
			d: sequence.New().Actor("A").
				Start(sequence.SectionLoop, "").Start(sequence.SectionOpt, "").
				End(sequence.SectionLoop).Diagram(),
			code:  errors.ErrCodeMalformedSequence,
			index: 3,
		},
		{
			name:  "unclosed section",
			d:     sequence.New().Actor("A").Start(sequence.SectionPar, "").Message("A", "A", "").Diagram(),
			code:  errors.ErrCodeMalformedSequence,
			index: 1,
		},
		{
			name:  "unknown note actor",
			d:     sequence.New().Actor("A").Note(sequence.PlacementOver, "n", "A", "Q").Diagram(),
			code:  errors.ErrCodeUnknownActor,
			index: 1,
		},
		{
			name:  "side note spanning two actors",
			d:     sequence.New().Actor("A").Actor("B").Note(sequence.PlacementLeftOf, "n", "A", "B").Diagram(),
			code:  errors.ErrCodeInvalidInput,
			index: 2,
		},
		{
			name:  "bad arrow",
			d:     sequence.New().Actor("A").Arrow("A", "A", "", sequence.Arrow("zigzag")).Diagram(),
			code:  errors.ErrCodeInvalidInput,
			index: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.d)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Build() error = %v, want %s", err, tt.code)
			}
			if i, ok := errors.EventIndex(err); !ok || i != tt.index {
				t.Errorf("EventIndex = %d, %v; want %d", i, ok, tt.index)
			}
		})
	}
}

func TestMonotonicCursor(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").Actor("C").
		Title("checkout").
		Activate("A").
		Message("A", "B", "first\nsecond line").
		Start(sequence.SectionPar, "fan out").
		Message("B", "C", "x").
		Divide(sequence.DividerAnd, "").
		Note(sequence.PlacementOver, "a long note that will certainly need to wrap onto several lines", "B", "C").
		Start(sequence.SectionRect, "#eee").
		Activate("C").
		Deactivate("C").
		End(sequence.SectionRect).
		End(sequence.SectionPar).
		Message("A", "A", "self").
		Note(sequence.PlacementRightOf, "r", "C").
		Deactivate("A").
		Diagram()
	l := build(t, d)

	if len(l.Trace) != len(d.Events) {
		t.Fatalf("trace = %d steps, want %d", len(l.Trace), len(d.Events))
	}
	prev := config.Default().ActorHeight
	for _, s := range l.Trace {
		if s.Cursor < prev {
			t.Errorf("event %d (%s): cursor %v < previous %v", s.Index, s.Kind, s.Cursor, prev)
		}
		prev = s.Cursor
	}
	last := l.Trace[len(l.Trace)-1]
	if last.Sections != 0 || last.Activations != 0 {
		t.Errorf("final step has open frames: %+v", last)
	}
}

func TestSelfLoopMinimumWidth(t *testing.T) {
	for _, scale := range []float64{0.5, 1, 3} {
		cfg := config.Default()
		cfg.ActorWidth *= scale
		cfg.ActorMargin *= scale

		d := sequence.New().Actor("A").Message("A", "A", "").Diagram()
		l := build(t, d, WithConfig(cfg))

		if w := l.Messages[0].Area.Width(); w < 100 {
			t.Errorf("scale %v: self-loop width = %v, want >= 100", scale, w)
		}
	}
}

func TestSelfLoopWidensForText(t *testing.T) {
	text := "a considerably longer label than the minimum loop width allows"
	d := sequence.New().Actor("A").Message("A", "A", text).Diagram()
	l := build(t, d)

	m := ApproxMeasurer{FontSize: config.Default().FontSize}
	if got, want := l.Messages[0].Area.Width(), m.Width(text); got < want-1e-9 {
		t.Errorf("self-loop width = %v, want >= text width %v", got, want)
	}
}

func TestMultiLineMessageAdvance(t *testing.T) {
	cfg := config.Default()
	one := build(t, sequence.New().Actor("A").Actor("B").Message("A", "B", "x").Diagram())
	three := build(t, sequence.New().Actor("A").Actor("B").Message("A", "B", "x<br>y<br/>z").Diagram())

	if got, want := three.Messages[0].Y-one.Messages[0].Y, 2*cfg.LineHeight; got != want {
		t.Errorf("extra advance = %v, want %v", got, want)
	}
	if len(three.Messages[0].Lines) != 3 {
		t.Errorf("lines = %q", three.Messages[0].Lines)
	}
}

func TestSequenceNumbers(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Message("A", "B", "one").
		Note(sequence.PlacementOver, "n", "A").
		Event(sequence.Message{From: "B", To: "A", Text: "override", Sequence: 42}).
		Message("A", "B", "three").
		Diagram()
	l := build(t, d)

	want := []int{1, 42, 3}
	for i, w := range want {
		if l.Messages[i].Sequence != w {
			t.Errorf("message %d sequence = %d, want %d", i, l.Messages[i].Sequence, w)
		}
	}
}

func TestMessageAttachesToActivationEdge(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Activate("A").Activate("A").Activate("B").
		Message("A", "B", "x").
		Message("B", "A", "y").
		Diagram()
	l := build(t, d)

	right := l.Messages[0]
	if right.StartX != 85 || right.StopX != 270 {
		t.Errorf("A->B = [%v, %v], want [85, 270]", right.StartX, right.StopX)
	}
	left := l.Messages[1]
	if left.StartX != 270 || left.StopX != 85 {
		t.Errorf("B->A = [%v, %v], want [270, 85]", left.StartX, left.StopX)
	}
}

func TestActivationsCloseLIFOPerActor(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Activate("A").
		Activate("B").
		Activate("A").
		Message("A", "B", "x").
		Deactivate("A").
		Deactivate("B").
		Deactivate("A").
		Diagram()
	l := build(t, d)

	if len(l.Activations) != 3 {
		t.Fatalf("activations = %d, want 3", len(l.Activations))
	}
	wantActors := []string{"A", "B", "A"}
	wantDepth := []int{2, 1, 1}
	for i, a := range l.Activations {
		if a.Actor != wantActors[i] || a.Depth != wantDepth[i] {
			t.Errorf("activation %d = %s depth %d, want %s depth %d", i, a.Actor, a.Depth, wantActors[i], wantDepth[i])
		}
	}
	inner, outer := l.Activations[0].Rect, l.Activations[2].Rect
	if inner.MinX <= outer.MinX {
		t.Errorf("stacked bar at %v not offset from %v", inner.MinX, outer.MinX)
	}
	if outer.MaxY < inner.MaxY {
		t.Errorf("outer bar ends at %v before inner at %v", outer.MaxY, inner.MaxY)
	}
}

func TestShortActivationIsPadded(t *testing.T) {
	d := sequence.New().Actor("A").Activate("A").Deactivate("A").Diagram()
	l := build(t, d)

	if h := l.Activations[0].Rect.Height(); h <= 0 {
		t.Errorf("activation height = %v, want > 0", h)
	}
	if got := l.Trace[2].Cursor - l.Trace[1].Cursor; got != activationPad {
		t.Errorf("pad = %v, want %v", got, activationPad)
	}
}

func TestDanglingActivationClosed(t *testing.T) {
	d := sequence.New().Actor("A").Activate("A").Message("A", "A", "x").Diagram()
	l := build(t, d)

	if len(l.Activations) != 1 {
		t.Errorf("activations = %d, want 1", len(l.Activations))
	}
}

func TestNestedSectionsContainment(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Start(sequence.SectionLoop, "outer").
		Start(sequence.SectionOpt, "inner").
		Message("A", "B", "x").
		End(sequence.SectionOpt).
		End(sequence.SectionLoop).
		Diagram()
	l := build(t, d)

	inner, outer := l.Sections[0], l.Sections[1]
	if inner.Depth != 2 || outer.Depth != 1 {
		t.Errorf("depths = %d, %d; want 2, 1", inner.Depth, outer.Depth)
	}
	if !outer.Rect.Contains(inner.Rect) {
		t.Errorf("outer %+v does not contain inner %+v", outer.Rect, inner.Rect)
	}
	area := l.Messages[0].Area
	if !outer.Rect.Contains(area.Inflate(2 * config.Default().BoxMargin)) {
		t.Errorf("outer %+v does not contain message with double margin", outer.Rect)
	}
	box := bounds.Rect{MinX: l.Extent.OriginX, MinY: l.Extent.OriginY,
		MaxX: l.Extent.OriginX + l.Extent.Width, MaxY: l.Extent.OriginY + l.Extent.Height}
	if !box.Contains(outer.Rect) {
		t.Errorf("viewport %+v does not contain outer section %+v", box, outer.Rect)
	}
}

func TestEmptySection(t *testing.T) {
	d := sequence.New().
		Actor("A").
		Start(sequence.SectionOpt, "").
		End(sequence.SectionOpt).
		Diagram()
	l := build(t, d)

	cfg := config.Default()
	r := l.Sections[0].Rect
	if r.Width() < cfg.LabelBoxWidth || r.Height() < cfg.LabelBoxHeight {
		t.Errorf("empty section %+v smaller than its label", r)
	}
}

func TestRectSectionKeepsFill(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Start(sequence.SectionRect, "rgb(200, 220, 255)").
		Message("A", "B", "x").
		End(sequence.SectionRect).
		Diagram()
	l := build(t, d)

	s := l.Sections[0]
	if s.Fill != "rgb(200, 220, 255)" || s.Title != "" {
		t.Errorf("rect section = %+v", s)
	}
}

func TestNotePlacement(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name      string
		placement sequence.Placement
		actors    []string
		x, width  float64
	}{
		{"over one", sequence.PlacementOver, []string{"B"}, 200, cfg.ActorWidth},
		{"right of", sequence.PlacementRightOf, []string{"A"}, 100, cfg.ActorWidth},
		{"left of", sequence.PlacementLeftOf, []string{"B"}, 100, cfg.ActorWidth},
		{"spanning", sequence.PlacementOver, []string{"A", "B"}, 50, 250},
		{"spanning reversed", sequence.PlacementOver, []string{"B", "A"}, 50, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sequence.New().Actor("A").Actor("B").Note(tt.placement, "n", tt.actors...).Diagram()
			l := build(t, d)

			n := l.Notes[0]
			if n.X != tt.x || n.Width != tt.width {
				t.Errorf("note x=%v width=%v, want x=%v width=%v", n.X, n.Width, tt.x, tt.width)
			}
			if n.Height != cfg.LineHeight+2*cfg.NoteMargin {
				t.Errorf("note height = %v", n.Height)
			}
			if l.Trace[len(l.Trace)-1].Cursor != n.Y+n.Height {
				t.Error("cursor does not sit below the note")
			}
		})
	}
}

func TestTallNoteDoublesWidth(t *testing.T) {
	cfg := config.Default()
	text := ""
	for i := 0; i < 10; i++ {
		text += "line\n"
	}
	d := sequence.New().Actor("A").Note(sequence.PlacementOver, text, "A").Diagram()
	l := build(t, d)

	if l.Notes[0].Width != 2*cfg.ActorWidth {
		t.Errorf("width = %v, want %v", l.Notes[0].Width, 2*cfg.ActorWidth)
	}
}

func TestTitleReservesSpace(t *testing.T) {
	base := sequence.New().Actor("A").Diagram()
	titled := sequence.New().Actor("A").Title("Hello").Diagram()

	a, b := build(t, base), build(t, titled)
	space := config.Default().TitleSpace
	if b.Extent.Height != a.Extent.Height+space {
		t.Errorf("height = %v, want %v", b.Extent.Height, a.Extent.Height+space)
	}
	if b.Extent.OriginY != a.Extent.OriginY-space {
		t.Errorf("originY = %v, want %v", b.Extent.OriginY, a.Extent.OriginY-space)
	}
	if b.Extent.Title != "Hello" {
		t.Errorf("title = %q", b.Extent.Title)
	}
}

func TestMirrorActors(t *testing.T) {
	d := sequence.New().Actor("A").Actor("B").Message("A", "B", "x").Diagram()

	on := build(t, d)
	if len(on.Actors) != 4 || !on.Actors[3].Mirrored {
		t.Fatalf("mirrored actors missing: %+v", on.Actors)
	}
	if on.Lifelines[0].Y2 != on.Actors[2].Y {
		t.Errorf("lifeline ends at %v, want mirrored row at %v", on.Lifelines[0].Y2, on.Actors[2].Y)
	}

	cfg := config.Default()
	cfg.MirrorActors = false
	off := build(t, d, WithConfig(cfg))
	if len(off.Actors) != 2 {
		t.Errorf("actors = %d, want 2", len(off.Actors))
	}
	if off.Extent.Height >= on.Extent.Height {
		t.Errorf("unmirrored height %v not below mirrored %v", off.Extent.Height, on.Extent.Height)
	}
}

func TestDegenerateDiagrams(t *testing.T) {
	tests := []struct {
		name string
		d    *sequence.Diagram
	}{
		{"empty", &sequence.Diagram{}},
		{"single actor", sequence.New().Actor("A").Diagram()},
		{"title only", sequence.New().Title("t").Diagram()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := build(t, tt.d)
			if l.Extent.Width <= 0 || l.Extent.Height <= 0 {
				t.Errorf("extent = %+v, want non-zero", l.Extent)
			}
		})
	}
}

func TestBindings(t *testing.T) {
	d := &sequence.Diagram{Actors: []sequence.Actor{
		{ID: "api", Link: "https://example.com/api"},
		{ID: "db"},
	}}
	l := build(t, d)

	want := []Binding{
		{ElementID: "actor-api", Href: "https://example.com/api"},
		{ElementID: "actor-bottom-api", Href: "https://example.com/api"},
	}
	if len(l.Bindings) != len(want) {
		t.Fatalf("bindings = %+v", l.Bindings)
	}
	for i := range want {
		if l.Bindings[i] != want[i] {
			t.Errorf("binding %d = %+v, want %+v", i, l.Bindings[i], want[i])
		}
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	d := sequence.New().Actor("A").Actor("B").
		Start(sequence.SectionLoop, "x").Message("A", "B", "m").End(sequence.SectionLoop).Diagram()

	a, b := build(t, d), build(t, d)
	if a.Extent != b.Extent {
		t.Errorf("extents differ: %+v vs %+v", a.Extent, b.Extent)
	}
	if a.Sections[0].Rect != b.Sections[0].Rect {
		t.Error("section geometry leaked between builds")
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LineHeight = 0
	_, err := Build(&sequence.Diagram{}, WithConfig(cfg))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Build() error = %v, want INVALID_CONFIG", err)
	}
}

func TestDrawOrder(t *testing.T) {
	d := sequence.New().
		Actor("A").Actor("B").
		Activate("A").
		Message("A", "B", "x").
		Deactivate("A").
		Note(sequence.PlacementOver, "n", "A").
		Diagram()
	cfg := config.Default()
	cfg.MirrorActors = false
	l := build(t, d, WithConfig(cfg))

	want := []DrawKind{DrawActor, DrawActor, DrawMessage, DrawActivation, DrawNote}
	if len(l.Draws) != len(want) {
		t.Fatalf("draws = %+v", l.Draws)
	}
	for i, k := range want {
		if l.Draws[i].Kind != k {
			t.Errorf("draw %d = %s, want %s", i, l.Draws[i].Kind, k)
		}
	}
	if math.IsNaN(l.Extent.Width) {
		t.Error("NaN width")
	}
}
