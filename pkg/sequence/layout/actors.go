package layout

import "github.com/matzehuels/lifeline/pkg/sequence"

// placeActors puts actor i at x = i*(width+margin) on the given baseline and
// inserts each box into ctx. It does not move the cursor.
func (b *builder) placeActors(actors []sequence.Actor, baseline float64, mirrored bool) []ActorBox {
	out := make([]ActorBox, 0, len(actors))
	for i, a := range actors {
		box := ActorBox{
			ID:       a.ID,
			Label:    a.Label(),
			Link:     a.Link,
			X:        float64(i) * (b.cfg.ActorWidth + b.cfg.ActorMargin),
			Y:        baseline,
			Width:    b.cfg.ActorWidth,
			Height:   b.cfg.ActorHeight,
			Mirrored: mirrored,
		}
		r := box.Rect()
		b.ctx.Insert(r.MinX, r.MinY, r.MaxX, r.MaxY)
		out = append(out, box)
	}
	return out
}

// flowBounds returns the horizontal span a message attaches to on actor's
// lifeline: the centerline widened to the outer edges of its open
// activation bars.
func (b *builder) flowBounds(actor ActorBox) [2]float64 {
	c := actor.CenterX()
	span := [2]float64{c, c}
	for _, a := range b.ctx.Activations(actor.ID) {
		span[0] = min(span[0], a.StartX)
		span[1] = max(span[1], a.StopX)
	}
	return span
}

// addActorDraws appends boxes to the layout along with their draw requests
// and link bindings.
func (b *builder) addActorDraws(boxes []ActorBox) {
	for _, box := range boxes {
		b.out.Draws = append(b.out.Draws, Draw{Kind: DrawActor, Index: len(b.out.Actors)})
		b.out.Actors = append(b.out.Actors, box)
		if box.Link != "" {
			b.out.Bindings = append(b.out.Bindings, Binding{ElementID: box.ElementID(), Href: box.Link})
		}
	}
}
