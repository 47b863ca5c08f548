// Package style defines the handwriting appearance model and the pure
// functions that update it.
//
// # Settings
//
// [Settings] is a flat, total record: every field is always present and every
// update produces a new value. The zero value is not meaningful; start from
// [Default], which carries the pen preset.
//
// # Reducer
//
// [Apply] replaces a single field. Selecting a writing instrument is special:
// pen, pencil and marker each force a fixed (font family, color, thickness)
// [Preset] so that switching instruments always yields a recognizable look.
// Selecting [InstrumentCustom] forces nothing.
//
//	s := style.Default()
//	s, _ = style.Apply(s, style.FieldPaper, style.PaperGrid)
//	s, _ = style.Apply(s, style.FieldInstrument, style.InstrumentMarker)
//	// s.FontFamily == "Permanent Marker", s.Paper == "grid"
//
// # Partial settings
//
// A remote style analyzer returns a [Partial]: any subset of the fields.
// [Merge] performs a shallow override-merge of a Partial into Settings.
// [ParsePartialJSON] decodes analyzer output and drops fields whose values
// fall outside their domain, so a merge can never produce an invalid record.
package style
