// Package export assembles a mission's committed transcript and metadata
// into the Spacelog interchange layout, either as a zip archive or a
// directory tree.
//
// Output is deterministic: page order, separators, JSON field order, and zip
// entry headers are all fixed, so exporting an unchanged mission twice
// produces byte-identical archives. Export reads committed revisions only and
// never consults page lock state.
package export
