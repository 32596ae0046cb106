// Package fixture holds the data model for an annotated multi-file test
// fixture: the initial files plus the markers (named offsets) and ranges
// (named spans) extracted from their annotations.
//
// Annotation syntax parsing happens upstream; this package consumes the
// already-extracted positions, either constructed directly or decoded from
// a JSON descriptor. Markers and ranges are created once per fixture and
// then only repositioned or invalidated by edits for the life of the test
// session.
package fixture

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/tidwall/gjson"

	"github.com/dshills/fixtest/internal/textpos"
)

// Errors returned when decoding a fixture descriptor.
var (
	ErrNoFiles          = errors.New("fixture has no files")
	ErrDuplicateMarker  = errors.New("duplicate marker name")
	ErrUnknownFile      = errors.New("annotation names an unknown file")
	ErrOffsetOutOfRange = errors.New("annotation offset exceeds file content length")
	ErrBadDescriptor    = errors.New("malformed fixture descriptor")
)

// FileSpec is one fixture file as loaded: a path, its initial content, and
// optional metadata (e.g. "python_version") passed through to the analyzer.
type FileSpec struct {
	Path    string
	Content string
	Meta    map[string]string
}

// Marker is a named offset annotation in a fixture file. Data carries the
// opaque annotation payload, typically an expected diagnostic category and
// message.
type Marker struct {
	Name     string
	FilePath string
	Offset   TrackedOffset
	Data     map[string]any
}

// Range is a span annotation in a fixture file, optionally linked to the
// marker that denoted its start. Pos and End form a half-open span.
type Range struct {
	FilePath string
	Pos      TrackedOffset
	End      TrackedOffset
	Marker   *Marker
}

// Span returns the range's current offsets. ok is false when either
// endpoint has been invalidated by an edit.
func (r *Range) Span() (textpos.OffsetSpan, bool) {
	pos, okPos := r.Pos.Get()
	end, okEnd := r.End.Get()
	if !okPos || !okEnd {
		return textpos.OffsetSpan{}, false
	}
	return textpos.OffsetSpan{Pos: pos, End: end}, true
}

// Fixture is the fully-loaded annotated source tree a test session starts
// from. File order is preserved so scripts can address files by index.
type Fixture struct {
	Files   []FileSpec
	Markers []*Marker
	Ranges  []*Range
}

// MarkerByName returns the named marker, or nil.
func (f *Fixture) MarkerByName(name string) *Marker {
	for _, m := range f.Markers {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Validate checks the construction invariants: at least one file, unique
// marker names, every marker and range pointing at a loaded file, and
// every offset within its file's content length.
func (f *Fixture) Validate() error {
	if len(f.Files) == 0 {
		return ErrNoFiles
	}

	sizes := make(map[string]textpos.ByteOffset, len(f.Files))
	for _, fs := range f.Files {
		sizes[fs.Path] = len(fs.Content)
	}

	seen := make(map[string]bool, len(f.Markers))
	for _, m := range f.Markers {
		if seen[m.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateMarker, m.Name)
		}
		seen[m.Name] = true
		size, ok := sizes[m.FilePath]
		if !ok {
			return fmt.Errorf("%w: marker %q in %q", ErrUnknownFile, m.Name, m.FilePath)
		}
		if off, valid := m.Offset.Get(); valid && off > size {
			return fmt.Errorf("%w: marker %q at %d in %q (%d bytes)",
				ErrOffsetOutOfRange, m.Name, off, m.FilePath, size)
		}
	}

	for _, r := range f.Ranges {
		size, ok := sizes[r.FilePath]
		if !ok {
			return fmt.Errorf("%w: range in %q", ErrUnknownFile, r.FilePath)
		}
		if span, valid := r.Span(); valid {
			if span.Pos > span.End {
				return fmt.Errorf("%w: range %s in %q is inverted", ErrBadDescriptor, span, r.FilePath)
			}
			if span.End > size {
				return fmt.Errorf("%w: range %s in %q (%d bytes)",
					ErrOffsetOutOfRange, span, r.FilePath, size)
			}
		}
	}

	return nil
}

// ParseJSON decodes a fixture descriptor of the form:
//
//	{
//	  "files": [{"path": "a.py", "content": "x = 1\n", "meta": {...}}],
//	  "markers": [{"name": "m", "file": "a.py", "offset": 0, "data": {...}}],
//	  "ranges": [{"file": "a.py", "pos": 0, "end": 1, "marker": "m"}]
//	}
//
// The "marker" field of a range is optional and links the range to the
// marker that starts it.
func ParseJSON(data []byte) (*Fixture, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrBadDescriptor)
	}
	root := gjson.ParseBytes(data)

	fx := &Fixture{}

	for _, fv := range root.Get("files").Array() {
		spec := FileSpec{
			Path:    fv.Get("path").String(),
			Content: fv.Get("content").String(),
		}
		if spec.Path == "" {
			return nil, fmt.Errorf("%w: file entry without path", ErrBadDescriptor)
		}
		meta := fv.Get("meta")
		if meta.Exists() {
			spec.Meta = make(map[string]string)
			meta.ForEach(func(k, v gjson.Result) bool {
				spec.Meta[k.String()] = v.String()
				return true
			})
		}
		fx.Files = append(fx.Files, spec)
	}

	for _, mv := range root.Get("markers").Array() {
		off, err := decodeOffset(mv.Get("offset"))
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", mv.Get("name").String(), err)
		}
		m := &Marker{
			Name:     mv.Get("name").String(),
			FilePath: mv.Get("file").String(),
			Offset:   TrackOffset(off),
		}
		data := mv.Get("data")
		if data.Exists() {
			m.Data = make(map[string]any)
			data.ForEach(func(k, v gjson.Result) bool {
				m.Data[k.String()] = v.Value()
				return true
			})
		}
		fx.Markers = append(fx.Markers, m)
	}

	for _, rv := range root.Get("ranges").Array() {
		pos, err := decodeOffset(rv.Get("pos"))
		if err != nil {
			return nil, fmt.Errorf("range pos: %w", err)
		}
		end, err := decodeOffset(rv.Get("end"))
		if err != nil {
			return nil, fmt.Errorf("range end: %w", err)
		}
		if end < pos {
			return nil, fmt.Errorf("%w: range end %d before pos %d", ErrBadDescriptor, end, pos)
		}
		r := &Range{
			FilePath: rv.Get("file").String(),
			Pos:      TrackOffset(pos),
			End:      TrackOffset(end),
		}
		if name := rv.Get("marker"); name.Exists() {
			r.Marker = fx.MarkerByName(name.String())
			if r.Marker == nil {
				return nil, fmt.Errorf("%w: range names marker %q", ErrBadDescriptor, name.String())
			}
		}
		fx.Ranges = append(fx.Ranges, r)
	}

	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return fx, nil
}

// decodeOffset guards descriptor offsets against negative or oversized
// values before they enter the tracked-offset model.
func decodeOffset(v gjson.Result) (textpos.ByteOffset, error) {
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: offset is not a number", ErrBadDescriptor)
	}
	off, err := safecast.Conv[int](v.Int())
	if err != nil || off < 0 {
		return 0, fmt.Errorf("%w: offset %s out of range", ErrBadDescriptor, v.Raw)
	}
	return off, nil
}
