// Package diagram reads and writes the file formats around the layout
// engine: the JSON input document and the serialized layout.
//
// # Input documents
//
// [ParseDocument] validates raw bytes against an embedded JSON Schema
// (draft 2020-12, see [Schema]) before decoding, so structural problems
// such as a missing "from" or an unknown arrow style are reported with a
// JSON pointer to the offending value:
//
//	doc, err := diagram.ReadDocumentFile("checkout.json")
//	if err != nil {
//		return err
//	}
//	d, err := doc.ToDiagram()
//
// [Document.ToDiagram] then resolves actor references. A reference to an
// actor that is never declared fails with UNKNOWN_ACTOR and carries the
// event index, matching the errors returned by the layout engine.
//
// # Layouts
//
// [MarshalLayout] and [UnmarshalLayout] store a computed layout.Layout in
// a versioned JSON envelope, letting the CLI split layout and rendering
// into separate steps.
package diagram
