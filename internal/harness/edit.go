package harness

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/fixtest/internal/fixture"
	"github.com/dshills/fixtest/internal/textpos"
	"github.com/dshills/fixtest/internal/vfs"
)

// applyEdit is the one atomic mutation: replace [start, end) of f with
// newText, then remap every marker and range endpoint recorded against f.
// Edits never fail; invalid offsets produced here surface later, when a
// destroyed marker or range is dereferenced.
func (s *Session) applyEdit(f *vfs.File, start, end textpos.ByteOffset, newText string) {
	content := f.Content()
	f.SetContent(content[:start] + newText + content[end:])

	delta := len(newText) - (end - start)
	for _, m := range s.markers {
		if s.store.SamePath(m.FilePath, f.Path()) {
			remapOffset(&m.Offset, start, end, delta)
		}
	}
	for _, r := range s.ranges {
		if s.store.SamePath(r.FilePath, f.Path()) {
			remapOffset(&r.Pos, start, end, delta)
			remapOffset(&r.End, start, end, delta)
		}
	}

	s.dropDerived()
}

// remapOffset applies the edit's effect to one tracked offset. An offset
// at or before the edit start keeps its place, so an insertion exactly at
// a recorded offset leaves the offset before the inserted text.
func remapOffset(t *fixture.TrackedOffset, start, end, delta textpos.ByteOffset) {
	off, ok := t.Get()
	if !ok {
		return
	}
	switch {
	case off <= start:
		// unchanged
	case off < end:
		t.Invalidate()
	default:
		t.Shift(delta)
	}
}

// Replace performs one atomic edit over [start, start+length) of the
// active file. The caret does not move.
func (s *Session) Replace(start, length textpos.ByteOffset, text string) {
	s.applyEdit(s.active, start, start+length, text)
}

// Type simulates keystroke-by-keystroke entry at the caret: the current
// selection, if any, is deleted first, then each character of text is
// inserted one at a time with the caret advancing after each. Typing and
// pasting the same string with no selection leave identical content and
// caret.
func (s *Session) Type(text string) {
	if span, ok := s.Selection(); ok {
		if span.Len() > 0 {
			s.applyEdit(s.active, span.Pos, span.End, "")
		}
		s.caret = span.Pos
		s.clearSelection()
	}
	for _, r := range text {
		ch := string(r)
		s.applyEdit(s.active, s.caret, s.caret, ch)
		s.caret += len(ch)
	}
}

// Paste inserts the whole string at the caret in a single edit. Unlike
// Type it does not delete the selection first.
func (s *Session) Paste(text string) {
	s.applyEdit(s.active, s.caret, s.caret, text)
	s.caret += len(text)
}

// DeleteChars removes count characters at the caret, one edit per
// character. The caret keeps its offset; following text slides left.
func (s *Session) DeleteChars(count int) {
	content := s.active.Content()
	for i := 0; i < count; i++ {
		if s.caret >= len(content) {
			break
		}
		_, size := utf8.DecodeRuneInString(content[s.caret:])
		s.applyEdit(s.active, s.caret, s.caret+size, "")
		content = s.active.Content()
	}
}

// DeleteCharsBefore removes count characters before the caret, one edit
// per character, retreating the caret with each.
func (s *Session) DeleteCharsBefore(count int) {
	for i := 0; i < count; i++ {
		if s.caret <= 0 {
			break
		}
		content := s.active.Content()
		_, size := utf8.DecodeLastRuneInString(content[:s.caret])
		s.applyEdit(s.active, s.caret-size, s.caret, "")
		s.caret -= size
	}
}

// DeleteLineRange removes the lines from first through lastInclusive as
// one edit spanning from the start of first to the start of the line
// after lastInclusive (or end of content for the final line).
func (s *Session) DeleteLineRange(first, lastInclusive uint32) error {
	ix := textpos.New(s.active.Content())
	start, err := ix.LineStart(first)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Location(), err)
	}
	var end textpos.ByteOffset
	if lastInclusive+1 < ix.LineCount() {
		end, err = ix.LineStart(lastInclusive + 1)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Location(), err)
		}
	} else {
		end = ix.Size()
	}

	s.applyEdit(s.active, start, end, "")
	if max := len(s.active.Content()); s.caret > max {
		s.caret = max
	}
	return nil
}
