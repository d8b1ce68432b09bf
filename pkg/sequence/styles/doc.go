// Package styles defines visual styles for sequence diagram rendering.
//
// # The Style Interface
//
// All styles implement [Style], which provides one method per visual
// element: actor boxes, lifelines, activation bars, message arrows, notes,
// section frames and the title. Styles receive plain geometry structs
// ([Actor], [Message], ...) so they never depend on the layout package.
//
// # Simple Style
//
// [Simple] draws gray actor boxes, yellow notes and black frames with a
// sans-serif font:
//
//	svg := sink.RenderSVG(l, sink.WithStyle(styles.Simple{}))
//
// [EscapeXML] and [WrapURL] are shared helpers for style implementations.
package styles
