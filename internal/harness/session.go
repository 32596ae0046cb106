package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/fixtest/internal/analyzer"
	"github.com/dshills/fixtest/internal/fixture"
	"github.com/dshills/fixtest/internal/textpos"
	"github.com/dshills/fixtest/internal/vfs"
)

// Session owns all mutable harness state for one test run: the file store,
// the marker and range tables, and the caret/selection pair. Operations
// are methods on the session; there is no module-level state.
type Session struct {
	store   *vfs.Store
	an      analyzer.Analyzer
	markers []*fixture.Marker
	ranges  []*fixture.Range

	// Derived lookups, rebuilt lazily and dropped after every edit.
	markersByName map[string]*fixture.Marker
	rangesByText  map[string][]*fixture.Range

	active     *vfs.File
	caret      textpos.ByteOffset
	selEnd     fixture.TrackedOffset // invalid means no selection
	lastMarker *fixture.Marker
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	ignoreCase bool
}

// WithIgnoreCase makes file path resolution case-insensitive, matching an
// analyzer that runs on a case-folding file system.
func WithIgnoreCase(ignore bool) Option {
	return func(c *sessionConfig) {
		c.ignoreCase = ignore
	}
}

// NewSession builds a session from a validated fixture. The analyzer may
// be nil for pure editing tests; assertion operations require it. All
// fixture files are registered with the analyzer up front.
func NewSession(fx *fixture.Fixture, an analyzer.Analyzer, opts ...Option) (*Session, error) {
	if err := fx.Validate(); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}

	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	entries := make(map[string]vfs.Entry, len(fx.Files))
	order := make([]string, 0, len(fx.Files))
	for _, fs := range fx.Files {
		entries[fs.Path] = vfs.Entry{Content: fs.Content, Meta: fs.Meta}
		order = append(order, fs.Path)
	}

	s := &Session{
		store:   vfs.NewStore(entries, order, cfg.ignoreCase),
		an:      an,
		markers: fx.Markers,
		ranges:  fx.Ranges,
	}
	s.active, _ = s.store.At(0)

	if an != nil {
		an.TrackFiles(s.store.Paths())
	}
	return s, nil
}

// Store returns the session's file store.
func (s *Session) Store() *vfs.Store {
	return s.store
}

// Analyzer returns the analyzer collaborator, which may be nil.
func (s *Session) Analyzer() analyzer.Analyzer {
	return s.an
}

// ActiveFile returns the file current operations apply to.
func (s *Session) ActiveFile() *vfs.File {
	return s.active
}

// Caret returns the current caret offset in the active file.
func (s *Session) Caret() textpos.ByteOffset {
	return s.caret
}

// Selection returns the current selection as a normalized span, or false
// when nothing is selected.
func (s *Session) Selection() (textpos.OffsetSpan, bool) {
	end, ok := s.selEnd.Get()
	if !ok {
		return textpos.OffsetSpan{}, false
	}
	if end < s.caret {
		return textpos.OffsetSpan{Pos: end, End: s.caret}, true
	}
	return textpos.OffsetSpan{Pos: s.caret, End: end}, true
}

// Markers returns the authoritative marker sequence.
func (s *Session) Markers() []*fixture.Marker {
	return s.markers
}

// Ranges returns the authoritative range sequence.
func (s *Session) Ranges() []*fixture.Range {
	return s.ranges
}

// MarkerByName resolves a marker, listing the valid names on failure.
func (s *Session) MarkerByName(name string) (*fixture.Marker, error) {
	if s.markersByName == nil {
		s.markersByName = make(map[string]*fixture.Marker, len(s.markers))
		for _, m := range s.markers {
			s.markersByName[m.Name] = m
		}
	}
	m, ok := s.markersByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known markers: %s)", ErrMarkerNotFound, name, s.markerNames())
	}
	return m, nil
}

// RangesInFile returns the ranges recorded against path, in fixture order.
func (s *Session) RangesInFile(path string) []*fixture.Range {
	var out []*fixture.Range
	for _, r := range s.ranges {
		if s.store.SamePath(r.FilePath, path) {
			out = append(out, r)
		}
	}
	return out
}

// RangesByText groups ranges by the text they currently cover. The
// grouping is cached until the next edit; ranges with invalidated
// endpoints are omitted.
func (s *Session) RangesByText() map[string][]*fixture.Range {
	if s.rangesByText != nil {
		return s.rangesByText
	}
	byText := make(map[string][]*fixture.Range)
	for _, r := range s.ranges {
		span, ok := r.Span()
		if !ok {
			continue
		}
		f, ok := s.store.Lookup(r.FilePath)
		if !ok {
			continue
		}
		text := f.Content()[span.Pos:span.End]
		byText[text] = append(byText[text], r)
	}
	s.rangesByText = byText
	return byText
}

// RangeText returns the text a range currently covers.
func (s *Session) RangeText(r *fixture.Range) (string, error) {
	span, ok := r.Span()
	if !ok {
		return "", fmt.Errorf("%s: %w", s.Location(), ErrRangeInvalidated)
	}
	f, found := s.store.Lookup(r.FilePath)
	if !found {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, r.FilePath)
	}
	return f.Content()[span.Pos:span.End], nil
}

// Location describes the current position for error messages: the last
// marker navigated to, or else the caret's file and line/column.
func (s *Session) Location() string {
	if s.lastMarker != nil {
		return fmt.Sprintf("marker %q", s.lastMarker.Name)
	}
	p := textpos.New(s.active.Content()).PointFor(s.caret)
	return fmt.Sprintf("%s:%s", s.active.Path(), p)
}

func (s *Session) markerNames() string {
	names := make([]string, 0, len(s.markers))
	for _, m := range s.markers {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (s *Session) clearSelection() {
	s.selEnd.Invalidate()
}

// dropDerived discards the lazily-built lookups. Called after every edit;
// the underlying text a grouping was keyed on may have changed.
func (s *Session) dropDerived() {
	s.markersByName = nil
	s.rangesByText = nil
}
