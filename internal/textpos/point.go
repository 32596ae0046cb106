package textpos

import "fmt"

// ByteOffset represents a byte position in a file's content.
// It indexes directly into the content string.
type ByteOffset = int

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column (byte offset within line)
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// Span is a half-open region [Start, End) expressed in line/column
// coordinates. Analyzers report diagnostic locations as Spans.
type Span struct {
	Start Point
	End   Point
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// OffsetSpan is a half-open region [Pos, End) expressed in byte offsets.
type OffsetSpan struct {
	Pos ByteOffset
	End ByteOffset
}

// String returns a human-readable representation of the offset span.
func (s OffsetSpan) String() string {
	return fmt.Sprintf("[%d, %d)", s.Pos, s.End)
}

// Len returns the length of the span in bytes.
func (s OffsetSpan) Len() ByteOffset {
	return s.End - s.Pos
}
