// Package harness drives a scripted editing session over an annotated
// fixture. A Session owns the fixture files, the markers and ranges
// extracted from their annotations, and a single logical caret/selection
// pair scoped to the active file.
//
// Navigation operations position the caret in terms of markers, ranges,
// raw offsets, or line/column points. Editing operations mutate file
// content through one atomic primitive, replace-span-with-text, and remap
// every recorded marker and range offset after each mutation:
//
//   - offsets at or before the edit start are unchanged (an insertion
//     exactly at a recorded offset leaves the offset before the new text)
//   - offsets strictly inside the removed span are invalidated for good
//   - offsets at or past the removed span's end shift by the edit's delta
//
// Invalidated positions do not fail the edit that destroyed them; they
// surface as errors when a later operation dereferences the marker or
// range. All state is confined to one Session instance and one goroutine;
// nothing here is shared or locked.
package harness
