// Package textpos converts between absolute byte offsets and line/column
// positions in a file's text.
//
// An Index is built from the current content (or from a line-start table
// supplied by an external parser) and is only valid for that content. Callers
// must rebuild the index after any edit; the package never caches across
// content changes.
package textpos
