// Package analyzer defines the narrow surface the harness consumes from an
// external source-analysis tool: stepwise analysis, per-file diagnostics,
// and the parse-derived line table used for position conversion. The
// analyzer itself lives elsewhere; this package has no analysis logic.
package analyzer

import (
	"fmt"

	"github.com/dshills/fixtest/internal/textpos"
)

// Category classifies a diagnostic.
type Category uint8

const (
	CategoryError Category = iota
	CategoryWarning
	CategoryInformation
	CategoryHint
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryWarning:
		return "warning"
	case CategoryInformation:
		return "information"
	case CategoryHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseCategory converts a category name to a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "error":
		return CategoryError, nil
	case "warning":
		return CategoryWarning, nil
	case "information":
		return CategoryInformation, nil
	case "hint":
		return CategoryHint, nil
	default:
		return 0, fmt.Errorf("unknown diagnostic category %q", s)
	}
}

// Diagnostic is one analyzer finding. The span is in line/column
// coordinates relative to the analyzer's own parse of the file.
type Diagnostic struct {
	Category Category
	Message  string
	Span     textpos.Span
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Category, d.Span, d.Message)
}

// ParseResult carries the pieces of an analyzer's parse output the harness
// needs: the line-start table and total length for offset conversion.
type ParseResult struct {
	LineStarts []textpos.ByteOffset
	Length     textpos.ByteOffset
}

// Index builds a position index from the parse result.
func (pr ParseResult) Index() *textpos.Index {
	return textpos.FromLineStarts(pr.LineStarts, pr.Length)
}

// Analyzer is the consumed analysis interface.
type Analyzer interface {
	// TrackFiles tells the analyzer which fixture files to analyze.
	TrackFiles(paths []string)

	// Advance performs one increment of analysis and reports whether more
	// work is pending. The harness polls it to a fixed point.
	Advance() bool

	// Diagnostics returns the findings for one tracked file.
	Diagnostics(path string) []Diagnostic

	// ParseResult returns the parse output for one tracked file, or false
	// if the file has not been parsed.
	ParseResult(path string) (ParseResult, bool)
}
