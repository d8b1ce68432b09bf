package layout

import "github.com/matzehuels/lifeline/pkg/sequence"

// assemble places the optional mirrored actor row, draws lifelines down to
// the final extent and computes the diagram size and viewport.
func (b *builder) assemble(actors []sequence.Actor) {
	top := b.out.Actors[:len(actors):len(actors)]

	lifelineEnd := 0.0
	if b.cfg.MirrorActors {
		b.ctx.BumpVerticalPos(2 * b.cfg.BoxMargin)
		lifelineEnd = b.ctx.VerticalPos()
		b.addActorDraws(b.placeActors(actors, lifelineEnd, true))
	}

	box := b.ctx.Bounds().Rect()
	if !b.cfg.MirrorActors {
		lifelineEnd = box.MaxY
	}
	for _, a := range top {
		b.out.Lifelines = append(b.out.Lifelines, Lifeline{
			Actor: a.ID,
			X:     a.CenterX(),
			Y1:    a.Y + a.Height,
			Y2:    lifelineEnd,
		})
	}

	ext := &b.out.Extent
	ext.Width = box.Width() + 2*b.cfg.DiagramMarginX
	ext.Height = box.Height() + 2*b.cfg.DiagramMarginY
	if b.cfg.MirrorActors {
		ext.Height += b.cfg.BottomMarginAdj - b.cfg.BoxMargin
	}
	ext.OriginX = box.MinX - b.cfg.DiagramMarginX
	ext.OriginY = box.MinY - b.cfg.DiagramMarginY

	if ext.Title != "" {
		ext.Height += b.cfg.TitleSpace
		ext.OriginY -= b.cfg.TitleSpace
		ext.TitleX = box.CenterX()
		ext.TitleY = ext.OriginY + b.cfg.TitleSpace/2 + b.cfg.FontSize/2
	}
}
