// Package overview renders a participant overview of a sequence diagram:
// a Graphviz graph with one node per actor and one edge per distinct
// sender/receiver pair, labeled with the number of messages exchanged.
//
// The overview complements the sequence layout when a diagram has many
// messages and the question is simply "who talks to whom":
//
//	dot := overview.ToDOT(diagram, overview.Options{})
//	svg, err := overview.RenderSVG(ctx, dot)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no external dot binary is needed.
package overview
