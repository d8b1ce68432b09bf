package styles

import (
	"bytes"
	"fmt"
)

const (
	simpleFont     = `font-family="Helvetica,Arial,sans-serif"`
	simpleStroke   = "#333"
	actorFill      = "#eaeaea"
	noteFill       = "#fff5ad"
	noteStroke     = "#aaaa33"
	activationFill = "#f4f4f4"
	labelCut       = 7
)

// Simple is a plain black-on-white style.
type Simple struct {
	FontSize float64 // Defaults to 14
}

func (s Simple) fontSize() float64 {
	if s.FontSize > 0 {
		return s.FontSize
	}
	return 14
}

func (Simple) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <marker id="arrowhead" refX="9" refY="5" markerUnits="userSpaceOnUse" markerWidth="12" markerHeight="12" orient="auto">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="` + simpleStroke + `"/>
    </marker>
    <marker id="crosshead" refX="7" refY="7" markerUnits="userSpaceOnUse" markerWidth="15" markerHeight="8" orient="auto">
      <path d="M 1,2 L 6,7 M 6,2 L 1,7" fill="none" stroke="` + simpleStroke + `" stroke-width="1"/>
    </marker>
    <marker id="sequencenumber" refX="15" refY="15" markerWidth="60" markerHeight="40" orient="auto">
      <circle cx="15" cy="15" r="6" fill="` + simpleStroke + `"/>
    </marker>
  </defs>
`)
}

func (s Simple) RenderActor(buf *bytes.Buffer, a Actor) {
	WrapURL(buf, a.URL, func() {
		fmt.Fprintf(buf, `  <g id="%s" class="actor">`, EscapeXML(a.ID))
		fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="3" ry="3" fill="%s" stroke="%s"/>`,
			a.X, a.Y, a.W, a.H, actorFill, simpleStroke)
		fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" %s font-size="%.1f">%s</text>`,
			a.CX, a.CY, simpleFont, s.fontSize(), EscapeXML(a.Label))
		buf.WriteString("</g>\n")
	})
}

func (Simple) RenderLifeline(buf *bytes.Buffer, l Lifeline) {
	fmt.Fprintf(buf, `  <line class="lifeline" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#999" stroke-width="0.5"/>`+"\n",
		l.X, l.Y1, l.X, l.Y2)
}

func (Simple) RenderActivation(buf *bytes.Buffer, a Activation) {
	fmt.Fprintf(buf, `  <rect class="activation%d" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#666"/>`+"\n",
		a.Depth-1, a.X, a.Y, a.W, a.H, activationFill)
}

func (s Simple) RenderMessage(buf *bytes.Buffer, m Message) {
	buf.WriteString(`  <g class="message">`)
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" text-anchor="middle" %s font-size="%.1f">`,
		m.TextX, m.TextY, simpleFont, s.fontSize())
	writeLines(buf, m.Lines, m.TextX, m.TextY, m.LineHeight)
	buf.WriteString("</text>")

	attrs := fmt.Sprintf(`stroke="%s" stroke-width="1.5" fill="none"`, simpleStroke)
	if m.Dotted {
		attrs += ` stroke-dasharray="3,3"`
	}
	switch m.Arrow {
	case "solid", "dotted":
		attrs += ` marker-end="url(#arrowhead)"`
	case "solid-cross", "dotted-cross":
		attrs += ` marker-end="url(#crosshead)"`
	}
	if m.Sequence > 0 {
		attrs += ` marker-start="url(#sequencenumber)"`
	}

	switch {
	case m.SelfLoop && m.RightAngles:
		fmt.Fprintf(buf, `<path d="M %.2f,%.2f H %.2f V %.2f H %.2f" %s/>`,
			m.X1, m.Y, m.X1+m.LoopWidth/2, m.Y+25, m.X1, attrs)
	case m.SelfLoop:
		fmt.Fprintf(buf, `<path d="M %.2f,%.2f C %.2f,%.2f %.2f,%.2f %.2f,%.2f" %s/>`,
			m.X1, m.Y, m.X1+60, m.Y-10, m.X1+60, m.Y+30, m.X1, m.Y+20, attrs)
	default:
		fmt.Fprintf(buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" %s/>`, m.X1, m.Y, m.X2, m.Y, attrs)
	}

	if m.Sequence > 0 {
		fmt.Fprintf(buf, `<text class="sequenceNumber" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" %s font-size="10" fill="white">%d</text>`,
			m.X1, m.Y, simpleFont, m.Sequence)
	}
	buf.WriteString("</g>\n")
}

func (s Simple) RenderNote(buf *bytes.Buffer, n Note) {
	buf.WriteString(`  <g class="note">`)
	fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s"/>`,
		n.X, n.Y, n.W, n.H, noteFill, noteStroke)
	cx := n.X + n.W/2
	y := n.Y + n.Margin + s.fontSize()
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" text-anchor="middle" %s font-size="%.1f">`, cx, y, simpleFont, s.fontSize())
	writeLines(buf, n.Lines, cx, y, n.LineHeight)
	buf.WriteString("</text></g>\n")
}

func (s Simple) RenderSection(buf *bytes.Buffer, sec Section) {
	if sec.Kind == "rect" {
		fill := sec.Fill
		if fill == "" {
			fill = "none"
		}
		fmt.Fprintf(buf, `  <rect class="rect" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			sec.X, sec.Y, sec.W, sec.H, EscapeXML(fill))
		return
	}

	fmt.Fprintf(buf, `  <g class="section section-%s">`, EscapeXML(sec.Kind))
	fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="2"/>`,
		sec.X, sec.Y, sec.W, sec.H, simpleStroke)

	// Label tab with its bottom-right corner cut.
	x, y, w, h := sec.X, sec.Y, sec.LabelW, sec.LabelH
	fmt.Fprintf(buf, `<polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s" stroke="%s"/>`,
		x, y, x+w, y, x+w, y+h-labelCut, x+w-labelCut*1.2, y+h, x, y+h, actorFill, simpleStroke)
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" %s font-size="%.1f">%s</text>`,
		x+w/2, y+h/2, simpleFont, s.fontSize(), EscapeXML(sec.Kind))

	if t := Label(sec.Title); t != "" {
		fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" text-anchor="middle" %s font-size="%.1f">%s</text>`,
			x+(sec.W+w)/2, y+1.5*sec.Margin+s.fontSize()/2, simpleFont, s.fontSize(), EscapeXML(t))
	}
	for _, d := range sec.Dividers {
		fmt.Fprintf(buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="2" stroke-dasharray="3,3"/>`,
			sec.X, d.Y, sec.X+sec.W, d.Y, simpleStroke)
		if t := Label(d.Label); t != "" {
			fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" text-anchor="middle" %s font-size="%.1f">%s</text>`,
				sec.X+sec.W/2, d.Y+sec.Margin+s.fontSize()/2, simpleFont, s.fontSize(), EscapeXML(t))
		}
	}
	buf.WriteString("</g>\n")
}

func (s Simple) RenderTitle(buf *bytes.Buffer, t Title) {
	if t.Text == "" {
		return
	}
	fmt.Fprintf(buf, `  <text class="title" x="%.2f" y="%.2f" text-anchor="middle" %s font-size="%.1f" font-weight="bold">%s</text>`+"\n",
		t.X, t.Y, simpleFont, s.fontSize()*1.3, EscapeXML(t.Text))
}
