package harness

import (
	"fmt"

	"github.com/dshills/fixtest/internal/fixture"
	"github.com/dshills/fixtest/internal/textpos"
)

// OpenFile makes the referenced file active. Opening a file does not move
// the caret or selection; callers reposition explicitly when they intend a
// jump tied to a position in the new file.
func (s *Session) OpenFile(ref fixture.FileRef) error {
	if i, ok := ref.Index(); ok {
		f, found := s.store.At(i)
		if !found {
			return fmt.Errorf("%w: index %d (have %d files)", ErrFileNotFound, i, s.store.Len())
		}
		s.active = f
		return nil
	}

	name, _ := ref.Name()
	f, found := s.store.Lookup(name)
	if !found {
		return fmt.Errorf("%w: %q (%s)", ErrFileNotFound, name, s.store.DescribeAvailable())
	}
	s.active = f
	return nil
}

// GoToPosition moves the caret to an absolute offset in the active file,
// clamped to content length. Any selection is cleared.
func (s *Session) GoToPosition(offset textpos.ByteOffset) {
	if offset < 0 {
		offset = 0
	}
	if max := len(s.active.Content()); offset > max {
		offset = max
	}
	s.caret = offset
	s.clearSelection()
}

// GoToPoint moves the caret to a line/column position in the active file.
func (s *Session) GoToPoint(p textpos.Point) error {
	off, err := textpos.New(s.active.Content()).OffsetFor(p)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Location(), err)
	}
	s.GoToPosition(off)
	return nil
}

// GoToMarker moves the caret to a named marker, switching the active file
// first when the marker lives elsewhere. The marker becomes the location
// context for subsequent error messages.
func (s *Session) GoToMarker(name string) error {
	m, err := s.MarkerByName(name)
	if err != nil {
		return err
	}
	return s.goToMarker(m)
}

func (s *Session) goToMarker(m *fixture.Marker) error {
	if !s.store.SamePath(m.FilePath, s.active.Path()) {
		if err := s.OpenFile(fixture.ByName(m.FilePath)); err != nil {
			return err
		}
	}

	off, ok := m.Offset.Get()
	if !ok || off > len(s.active.Content()) {
		return fmt.Errorf("marker %q: %w", m.Name, ErrMarkerInvalidated)
	}

	s.caret = off
	s.clearSelection()
	s.lastMarker = m
	return nil
}

// Select places the caret at the start marker and the selection end at the
// end marker. Both markers must live in the same file; anything else is a
// contract violation.
func (s *Session) Select(startName, endName string) error {
	start, err := s.MarkerByName(startName)
	if err != nil {
		return err
	}
	end, err := s.MarkerByName(endName)
	if err != nil {
		return err
	}
	if !s.store.SamePath(start.FilePath, end.FilePath) {
		return fmt.Errorf("%w: %q is in %q, %q is in %q",
			ErrCrossFileSelection, startName, start.FilePath, endName, end.FilePath)
	}

	if err := s.goToMarker(start); err != nil {
		return err
	}
	endOff, ok := end.Offset.Get()
	if !ok || endOff > len(s.active.Content()) {
		return fmt.Errorf("marker %q: %w", endName, ErrMarkerInvalidated)
	}
	s.selEnd = fixture.TrackOffset(endOff)
	return nil
}

// SelectRange selects the span a range currently covers, switching to the
// range's file first.
func (s *Session) SelectRange(r *fixture.Range) error {
	span, ok := r.Span()
	if !ok {
		return fmt.Errorf("%s: %w", s.Location(), ErrRangeInvalidated)
	}
	if err := s.OpenFile(fixture.ByName(r.FilePath)); err != nil {
		return err
	}
	if r.Marker != nil {
		s.lastMarker = r.Marker
	}
	s.caret = span.Pos
	s.selEnd = fixture.TrackOffset(span.End)
	return nil
}

// SelectAllInFile opens the referenced file and selects its entire
// content.
func (s *Session) SelectAllInFile(ref fixture.FileRef) error {
	if err := s.OpenFile(ref); err != nil {
		return err
	}
	s.caret = 0
	s.selEnd = fixture.TrackOffset(len(s.active.Content()))
	return nil
}

// SelectLine selects the given line of the active file, including its
// terminator.
func (s *Session) SelectLine(line uint32) error {
	span, err := textpos.New(s.active.Content()).LineSpan(line)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Location(), err)
	}
	s.caret = span.Pos
	s.selEnd = fixture.TrackOffset(span.End)
	return nil
}

// MoveCaretRight advances the caret by count bytes, clamped to content
// length, clearing any selection.
func (s *Session) MoveCaretRight(count textpos.ByteOffset) {
	s.GoToPosition(s.caret + count)
}
