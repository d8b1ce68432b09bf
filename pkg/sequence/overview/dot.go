package overview

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lifeline/pkg/sequence"
)

// Options configures overview rendering.
type Options struct {
	// Detailed lists each message text on the edge instead of a count.
	Detailed bool
	// SelfLoops keeps edges from an actor to itself.
	SelfLoops bool
}

// Edge is an aggregated actor-to-actor interaction.
type Edge struct {
	From, To string
	Count    int
	Texts    []string
}

// Edges aggregates the messages of d by (from, to), in first-seen order.
func Edges(d *sequence.Diagram, opts Options) []Edge {
	index := map[[2]string]int{}
	var out []Edge
	for _, ev := range d.Events {
		m, ok := ev.(sequence.Message)
		if !ok || (m.From == m.To && !opts.SelfLoops) {
			continue
		}
		key := [2]string{m.From, m.To}
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, Edge{From: m.From, To: m.To})
		}
		out[i].Count++
		if m.Text != "" {
			out[i].Texts = append(out[i].Texts, m.Text)
		}
	}
	return out
}

// ToDOT converts the actor interactions of d to Graphviz DOT format. Each
// actor is a node (in declaration order) and each distinct sender/receiver
// pair an edge weighted by its message count. The result can be rendered
// with [RenderSVG].
func ToDOT(d *sequence.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#eaeaea\", fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("\n")

	for _, a := range d.ActorOrder() {
		attrs := []string{fmt.Sprintf("label=%q", a.Label())}
		if a.Link != "" {
			attrs = append(attrs, fmt.Sprintf("URL=%q", a.Link))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", a.ID, strings.Join(attrs, ", "))
	}

	edges := Edges(d, opts)
	slices.SortStableFunc(edges, func(a, b Edge) int { return cmp.Compare(b.Count, a.Count) })

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, penwidth=%d];\n", e.From, e.To, edgeLabel(e, opts.Detailed), min(e.Count, 5))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeLabel(e Edge, detailed bool) string {
	if detailed && len(e.Texts) > 0 {
		return strings.Join(e.Texts, "\n")
	}
	if e.Count == 1 {
		return "1 message"
	}
	return strconv.Itoa(e.Count) + " messages"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> header (fixed pt sizes) with a
// plain viewBox so the overview scales like the main diagram.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
