package fixture

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTrackOffset(t *testing.T) {
	to := TrackOffset(5)

	off, ok := to.Get()
	if !ok {
		t.Fatal("expected valid offset")
	}
	if off != 5 {
		t.Errorf("expected 5, got %d", off)
	}
}

func TestTrackedOffsetShift(t *testing.T) {
	to := TrackOffset(10)
	to.Shift(-3)

	off, ok := to.Get()
	if !ok || off != 7 {
		t.Errorf("expected 7, got %v (valid=%v)", off, ok)
	}
}

func TestTrackedOffsetInvalidate(t *testing.T) {
	to := TrackOffset(10)
	to.Invalidate()

	if to.Valid() {
		t.Error("expected invalid offset")
	}

	// A shift must not resurrect it.
	to.Shift(5)
	if _, ok := to.Get(); ok {
		t.Error("invalidated offset became valid after shift")
	}

	if to.String() != "<invalid>" {
		t.Errorf("expected <invalid>, got %q", to.String())
	}
}

func TestTrackedOffsetZeroValueInvalid(t *testing.T) {
	var to TrackedOffset
	if to.Valid() {
		t.Error("zero value should be invalid")
	}
}

func TestFileRef(t *testing.T) {
	byIdx := ByIndex(2)
	if i, ok := byIdx.Index(); !ok || i != 2 {
		t.Errorf("expected index 2, got %d (ok=%v)", i, ok)
	}
	if _, ok := byIdx.Name(); ok {
		t.Error("index ref should not resolve by name")
	}

	byName := ByName("a.py")
	if n, ok := byName.Name(); !ok || n != "a.py" {
		t.Errorf("expected name a.py, got %q (ok=%v)", n, ok)
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"files": [
			{"path": "a.py", "content": "x = 1\n", "meta": {"lang": "python"}},
			{"path": "b.py", "content": "y = 2\n"}
		],
		"markers": [
			{"name": "m1", "file": "a.py", "offset": 0, "data": {"category": "error"}},
			{"name": "m2", "file": "b.py", "offset": 4}
		],
		"ranges": [
			{"file": "a.py", "pos": 0, "end": 1, "marker": "m1"}
		]
	}`)

	fx, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	wantFiles := []FileSpec{
		{Path: "a.py", Content: "x = 1\n", Meta: map[string]string{"lang": "python"}},
		{Path: "b.py", Content: "y = 2\n"},
	}
	if diff := cmp.Diff(wantFiles, fx.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	m := fx.MarkerByName("m1")
	if m == nil {
		t.Fatal("marker m1 not found")
	}
	if m.Data["category"] != "error" {
		t.Errorf("expected category error, got %v", m.Data["category"])
	}

	if len(fx.Ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(fx.Ranges))
	}
	if fx.Ranges[0].Marker != m {
		t.Error("range not linked to its marker")
	}

	span, ok := fx.Ranges[0].Span()
	if !ok {
		t.Fatal("expected valid span")
	}
	if span.Pos != 0 || span.End != 1 {
		t.Errorf("expected [0, 1), got %v", span)
	}
}

func TestParseJSONRejectsDuplicateMarkers(t *testing.T) {
	data := []byte(`{
		"files": [{"path": "a.py", "content": ""}],
		"markers": [
			{"name": "m", "file": "a.py", "offset": 0},
			{"name": "m", "file": "a.py", "offset": 0}
		]
	}`)

	_, err := ParseJSON(data)
	if !errors.Is(err, ErrDuplicateMarker) {
		t.Errorf("expected ErrDuplicateMarker, got %v", err)
	}
}

func TestParseJSONRejectsUnknownFile(t *testing.T) {
	data := []byte(`{
		"files": [{"path": "a.py", "content": ""}],
		"markers": [{"name": "m", "file": "missing.py", "offset": 0}]
	}`)

	_, err := ParseJSON(data)
	if !errors.Is(err, ErrUnknownFile) {
		t.Errorf("expected ErrUnknownFile, got %v", err)
	}
}

func TestParseJSONRejectsNegativeOffset(t *testing.T) {
	data := []byte(`{
		"files": [{"path": "a.py", "content": ""}],
		"markers": [{"name": "m", "file": "a.py", "offset": -1}]
	}`)

	_, err := ParseJSON(data)
	if !errors.Is(err, ErrBadDescriptor) {
		t.Errorf("expected ErrBadDescriptor, got %v", err)
	}
}

func TestParseJSONRejectsInvertedRange(t *testing.T) {
	data := []byte(`{
		"files": [{"path": "a.py", "content": "abc"}],
		"ranges": [{"file": "a.py", "pos": 2, "end": 1}]
	}`)

	_, err := ParseJSON(data)
	if !errors.Is(err, ErrBadDescriptor) {
		t.Errorf("expected ErrBadDescriptor, got %v", err)
	}
}

func TestParseJSONRejectsRangeBeyondContent(t *testing.T) {
	// A range end past the file's length must fail at load, not panic when
	// the covered text is first sliced.
	data := []byte(`{
		"files": [{"path": "a.py", "content": "abc"}],
		"ranges": [{"file": "a.py", "pos": 0, "end": 100}]
	}`)

	_, err := ParseJSON(data)
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestParseJSONRejectsMarkerBeyondContent(t *testing.T) {
	data := []byte(`{
		"files": [{"path": "a.py", "content": "abc"}],
		"markers": [{"name": "m", "file": "a.py", "offset": 4}]
	}`)

	_, err := ParseJSON(data)
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestValidateAcceptsOffsetAtContentEnd(t *testing.T) {
	// len(content) is a valid caret position; one past it is not.
	fx := &Fixture{
		Files:   []FileSpec{{Path: "a.py", Content: "abc"}},
		Markers: []*Marker{{Name: "eof", FilePath: "a.py", Offset: TrackOffset(3)}},
		Ranges:  []*Range{{FilePath: "a.py", Pos: TrackOffset(0), End: TrackOffset(3)}},
	}
	if err := fx.Validate(); err != nil {
		t.Errorf("expected success, got %v", err)
	}
}

func TestValidateRejectsOutOfRangeOffsets(t *testing.T) {
	marker := &Fixture{
		Files:   []FileSpec{{Path: "a.py", Content: "abc"}},
		Markers: []*Marker{{Name: "m", FilePath: "a.py", Offset: TrackOffset(4)}},
	}
	if err := marker.Validate(); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("marker: expected ErrOffsetOutOfRange, got %v", err)
	}

	rng := &Fixture{
		Files:  []FileSpec{{Path: "a.py", Content: "abc"}},
		Ranges: []*Range{{FilePath: "a.py", Pos: TrackOffset(0), End: TrackOffset(100)}},
	}
	if err := rng.Validate(); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("range: expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestValidateRejectsInvertedRange(t *testing.T) {
	fx := &Fixture{
		Files:  []FileSpec{{Path: "a.py", Content: "abc"}},
		Ranges: []*Range{{FilePath: "a.py", Pos: TrackOffset(2), End: TrackOffset(1)}},
	}
	if err := fx.Validate(); !errors.Is(err, ErrBadDescriptor) {
		t.Errorf("expected ErrBadDescriptor, got %v", err)
	}
}

func TestParseJSONRejectsNoFiles(t *testing.T) {
	_, err := ParseJSON([]byte(`{"files": []}`))
	if !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}
}
