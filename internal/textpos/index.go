package textpos

import (
	"errors"
	"fmt"
	"sort"
)

// ErrLineOutOfRange is returned when a point names a line past the end of
// the indexed content.
var ErrLineOutOfRange = errors.New("line exceeds file line count")

// Index maps between byte offsets and line/column positions for one
// snapshot of a file's content. An Index becomes stale the moment the
// content changes and must be rebuilt.
type Index struct {
	lineStarts []ByteOffset
	size       ByteOffset
}

// New builds an Index by scanning content for line terminators.
// A terminator ends its line; the next line starts after it. All three
// terminator styles (LF, CRLF, lone CR) are recognized.
func New(content string) *Index {
	starts := []ByteOffset{0}
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				continue // counted at the '\n'
			}
			starts = append(starts, i+1)
		}
	}
	return &Index{lineStarts: starts, size: len(content)}
}

// FromLineStarts builds an Index from a precomputed line-start table, such
// as the one an external analyzer derives during parsing. The table must be
// sorted ascending and start with 0; size is the total content length.
func FromLineStarts(starts []ByteOffset, size ByteOffset) *Index {
	if len(starts) == 0 {
		starts = []ByteOffset{0}
	}
	owned := make([]ByteOffset, len(starts))
	copy(owned, starts)
	return &Index{lineStarts: owned, size: size}
}

// LineCount returns the number of lines in the indexed content.
// Empty content has one line.
func (ix *Index) LineCount() uint32 {
	return uint32(len(ix.lineStarts))
}

// Size returns the total content length in bytes.
func (ix *Index) Size() ByteOffset {
	return ix.size
}

// LineStart returns the byte offset of the start of line.
// It returns ErrLineOutOfRange when line is past the last line.
func (ix *Index) LineStart(line uint32) (ByteOffset, error) {
	n := int(line)
	if n >= len(ix.lineStarts) {
		return 0, fmt.Errorf("line %d: %w (%d lines)", line, ErrLineOutOfRange, len(ix.lineStarts))
	}
	return ix.lineStarts[n], nil
}

// PointFor converts a byte offset to a line/column position.
// Offsets past the end of content map onto the final line.
func (ix *Index) PointFor(offset ByteOffset) Point {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.size {
		offset = ix.size
	}
	// First line start greater than offset; the offset's line precedes it.
	line := sort.Search(len(ix.lineStarts), func(i int) bool {
		return ix.lineStarts[i] > offset
	}) - 1
	return Point{
		Line:   uint32(line),
		Column: uint32(offset - ix.lineStarts[line]),
	}
}

// OffsetFor converts a line/column position back to a byte offset.
// It returns ErrLineOutOfRange when the point's line is past the last line.
func (ix *Index) OffsetFor(p Point) (ByteOffset, error) {
	start, err := ix.LineStart(p.Line)
	if err != nil {
		return 0, err
	}
	return start + int(p.Column), nil
}

// SpanFor converts a line/column span to a byte offset span.
func (ix *Index) SpanFor(s Span) (OffsetSpan, error) {
	pos, err := ix.OffsetFor(s.Start)
	if err != nil {
		return OffsetSpan{}, err
	}
	end, err := ix.OffsetFor(s.End)
	if err != nil {
		return OffsetSpan{}, err
	}
	return OffsetSpan{Pos: pos, End: end}, nil
}

// LineSpan returns the byte offsets covering line, including its
// terminator. For the final line the span ends at the content size.
func (ix *Index) LineSpan(line uint32) (OffsetSpan, error) {
	start, err := ix.LineStart(line)
	if err != nil {
		return OffsetSpan{}, err
	}
	next := int(line) + 1
	if next < len(ix.lineStarts) {
		return OffsetSpan{Pos: start, End: ix.lineStarts[next]}, nil
	}
	return OffsetSpan{Pos: start, End: ix.size}, nil
}
