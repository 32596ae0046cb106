package harness

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/fixtest/internal/fixture"
	"github.com/dshills/fixtest/internal/textpos"
)

func newNavSession(t *testing.T, opts ...Option) *Session {
	t.Helper()

	fx := &fixture.Fixture{
		Files: []fixture.FileSpec{
			{Path: "a.py", Content: "x = 1\ny = 2\n"},
			{Path: "lib/B.py", Content: "import a\n"},
		},
		Markers: []*fixture.Marker{
			{Name: "start", FilePath: "a.py", Offset: fixture.TrackOffset(0)},
			{Name: "value", FilePath: "a.py", Offset: fixture.TrackOffset(4)},
			{Name: "other", FilePath: "lib/B.py", Offset: fixture.TrackOffset(7)},
		},
	}

	s, err := NewSession(fx, nil, opts...)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestFirstFileActiveByDefault(t *testing.T) {
	s := newNavSession(t)

	if s.ActiveFile().Path() != "a.py" {
		t.Errorf("expected a.py active, got %q", s.ActiveFile().Path())
	}
}

func TestOpenFileByIndex(t *testing.T) {
	s := newNavSession(t)

	if err := s.OpenFile(fixture.ByIndex(1)); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if s.ActiveFile().Path() != "lib/B.py" {
		t.Errorf("expected lib/B.py, got %q", s.ActiveFile().Path())
	}
}

func TestOpenFileByIndexOutOfRange(t *testing.T) {
	s := newNavSession(t)

	err := s.OpenFile(fixture.ByIndex(5))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestOpenFileByNameUnknownListsAvailable(t *testing.T) {
	s := newNavSession(t)

	err := s.OpenFile(fixture.ByName("missing.py"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "a.py") || !strings.Contains(err.Error(), "lib/B.py") {
		t.Errorf("error should list available files: %v", err)
	}
}

func TestOpenFileDoesNotMoveCaret(t *testing.T) {
	s := newNavSession(t)

	s.GoToPosition(4)
	if err := s.OpenFile(fixture.ByIndex(1)); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if s.Caret() != 4 {
		t.Errorf("caret moved to %d on file switch", s.Caret())
	}
}

func TestOpenFileIgnoreCase(t *testing.T) {
	s := newNavSession(t, WithIgnoreCase(true))

	if err := s.OpenFile(fixture.ByName("LIB/b.py")); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if s.ActiveFile().Path() != "lib/B.py" {
		t.Errorf("expected lib/B.py, got %q", s.ActiveFile().Path())
	}
}

func TestGoToPositionClearsSelection(t *testing.T) {
	s := newNavSession(t)

	if err := s.Select("start", "value"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, ok := s.Selection(); !ok {
		t.Fatal("expected a selection")
	}

	s.GoToPosition(2)

	if _, ok := s.Selection(); ok {
		t.Error("selection survived GoToPosition")
	}
}

func TestGoToPoint(t *testing.T) {
	s := newNavSession(t)

	if err := s.GoToPoint(textpos.Point{Line: 1, Column: 4}); err != nil {
		t.Fatalf("GoToPoint failed: %v", err)
	}
	if s.Caret() != 10 {
		t.Errorf("expected caret 10, got %d", s.Caret())
	}
}

func TestGoToMarkerSwitchesFile(t *testing.T) {
	s := newNavSession(t)

	if err := s.GoToMarker("other"); err != nil {
		t.Fatalf("GoToMarker failed: %v", err)
	}
	if s.ActiveFile().Path() != "lib/B.py" {
		t.Errorf("expected lib/B.py active, got %q", s.ActiveFile().Path())
	}
	if s.Caret() != 7 {
		t.Errorf("expected caret 7, got %d", s.Caret())
	}
}

func TestGoToMarkerUnknownListsNames(t *testing.T) {
	s := newNavSession(t)

	err := s.GoToMarker("nope")
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound, got %v", err)
	}
	for _, name := range []string{"start", "value", "other"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should list marker %q: %v", name, err)
		}
	}
}

func TestGoToInvalidatedMarker(t *testing.T) {
	s := newNavSession(t)

	// Destroy "value" by removing the span around it.
	s.Replace(2, 5, "")

	err := s.GoToMarker("value")
	if !errors.Is(err, ErrMarkerInvalidated) {
		t.Errorf("expected ErrMarkerInvalidated, got %v", err)
	}
	if !strings.Contains(err.Error(), "value") {
		t.Errorf("error should name the marker: %v", err)
	}
}

func TestNewSessionRejectsOutOfBoundsRange(t *testing.T) {
	// A range past its file's length must be refused at construction;
	// otherwise the first text lookup over it would slice out of bounds.
	fx := &fixture.Fixture{
		Files: []fixture.FileSpec{{Path: "a.py", Content: "abc"}},
		Ranges: []*fixture.Range{
			{FilePath: "a.py", Pos: fixture.TrackOffset(0), End: fixture.TrackOffset(100)},
		},
	}

	_, err := NewSession(fx, nil)
	if !errors.Is(err, fixture.ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestSelectEndMarkerBeyondContent(t *testing.T) {
	s := newNavSession(t)

	// Force the end marker past the content to model a tracking bug; Select
	// must refuse it rather than record an unusable selection end.
	m, err := s.MarkerByName("value")
	if err != nil {
		t.Fatalf("marker lookup failed: %v", err)
	}
	m.Offset = fixture.TrackOffset(1000)

	if err := s.Select("start", "value"); !errors.Is(err, ErrMarkerInvalidated) {
		t.Errorf("expected ErrMarkerInvalidated, got %v", err)
	}
}

func TestSelectCrossFileIsContractViolation(t *testing.T) {
	s := newNavSession(t)

	err := s.Select("start", "other")
	if !errors.Is(err, ErrCrossFileSelection) {
		t.Errorf("expected ErrCrossFileSelection, got %v", err)
	}
}

func TestSelectionNormalized(t *testing.T) {
	s := newNavSession(t)

	// Select backwards: end marker before start marker.
	if err := s.Select("value", "start"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	span, ok := s.Selection()
	if !ok {
		t.Fatal("expected a selection")
	}
	if span.Pos != 0 || span.End != 4 {
		t.Errorf("expected [0, 4), got %v", span)
	}
	if s.Caret() != 4 {
		t.Errorf("expected caret at start marker 4, got %d", s.Caret())
	}
}

func TestSelectAllInFile(t *testing.T) {
	s := newNavSession(t)

	if err := s.SelectAllInFile(fixture.ByName("lib/B.py")); err != nil {
		t.Fatalf("SelectAllInFile failed: %v", err)
	}

	span, ok := s.Selection()
	if !ok {
		t.Fatal("expected a selection")
	}
	if span.Pos != 0 || span.End != len("import a\n") {
		t.Errorf("unexpected span %v", span)
	}
}

func TestSelectLine(t *testing.T) {
	s := newNavSession(t)

	if err := s.SelectLine(1); err != nil {
		t.Fatalf("SelectLine failed: %v", err)
	}

	span, ok := s.Selection()
	if !ok {
		t.Fatal("expected a selection")
	}
	if span.Pos != 6 || span.End != 12 {
		t.Errorf("expected [6, 12), got %v", span)
	}
}

func TestSelectRange(t *testing.T) {
	fx := &fixture.Fixture{
		Files: []fixture.FileSpec{
			{Path: "a.py", Content: "x = 1\n"},
		},
		Ranges: []*fixture.Range{
			{FilePath: "a.py", Pos: fixture.TrackOffset(4), End: fixture.TrackOffset(5)},
		},
	}
	s, err := NewSession(fx, nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	if err := s.SelectRange(s.Ranges()[0]); err != nil {
		t.Fatalf("SelectRange failed: %v", err)
	}
	span, _ := s.Selection()
	if span.Pos != 4 || span.End != 5 {
		t.Errorf("expected [4, 5), got %v", span)
	}
}

func TestMoveCaretRightClampsAndClears(t *testing.T) {
	s := newNavSession(t)

	if err := s.Select("start", "value"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	s.MoveCaretRight(1000)

	if s.Caret() != len(s.ActiveFile().Content()) {
		t.Errorf("expected caret clamped to %d, got %d", len(s.ActiveFile().Content()), s.Caret())
	}
	if _, ok := s.Selection(); ok {
		t.Error("selection survived MoveCaretRight")
	}
}

func TestLocationContext(t *testing.T) {
	s := newNavSession(t)

	// Before any marker navigation the context is the caret position.
	s.GoToPosition(7)
	if got := s.Location(); got != "a.py:1:1" {
		t.Errorf("expected a.py:1:1, got %q", got)
	}

	if err := s.GoToMarker("value"); err != nil {
		t.Fatalf("GoToMarker failed: %v", err)
	}
	if got := s.Location(); !strings.Contains(got, "value") {
		t.Errorf("expected marker context, got %q", got)
	}
}
