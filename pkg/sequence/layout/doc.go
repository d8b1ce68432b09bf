// Package layout computes the geometry of a sequence diagram.
//
// # Overview
//
// [Build] takes a parsed [sequence.Diagram] and returns a [Layout] with
// every actor, message, note, section frame and activation bar placed in
// user units (pixels in SVG output, origin top-left, Y grows downwards).
//
// The computation is a single pass:
//
//  1. Actors are placed in declaration order, actor i at
//     x = i*(actorWidth+actorMargin) on the top row.
//  2. Events are interpreted in order. Each advances a vertical cursor by
//     an event-specific margin and inserts the rectangles it occupies into a
//     [bounds.Context], which widens the global extent and every open
//     section and activation frame.
//  3. The extent is read back, an optional mirrored actor row is added at
//     the bottom, and outer margins give the final width, height and
//     viewport origin.
//
// # Errors
//
// Build stops at the first fatal event. Unmatched section or activation
// ends and dividers in the wrong section kind fail with
// MALFORMED_SEQUENCE; references to undeclared actors fail with
// UNKNOWN_ACTOR. The error carries the offending event index (see
// [errors.EventIndex]) and no partial layout is returned.
//
// # Output
//
// [Layout.Draws] lists the draw requests in event order. Sinks in
// [sink] turn a Layout into SVG or JSON.
//
// [sink]: github.com/matzehuels/lifeline/pkg/sequence/sink
// [errors.EventIndex]: github.com/matzehuels/lifeline/pkg/errors.EventIndex
package layout
