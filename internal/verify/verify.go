// Package verify checks analyzer output and session state against the
// fixture's annotated expectations. Every failure is rendered with both
// sides of the comparison and prefixed with the session's current location
// so it can be traced back to a fixture position.
package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/fixtest/internal/harness"
	"github.com/dshills/fixtest/internal/textpos"
)

// Errors returned by assertions.
var (
	// ErrMismatch indicates an expected/actual divergence.
	ErrMismatch = errors.New("assertion failed")

	// ErrNoAnalyzer indicates a diagnostics assertion on a session built
	// without an analyzer.
	ErrNoAnalyzer = errors.New("session has no analyzer")

	// ErrAnalysisStalled indicates the analyzer kept reporting pending
	// work past the configured pass budget.
	ErrAnalysisStalled = errors.New("analysis did not settle within pass budget")

	// ErrExactlyOneRange indicates a single-range assertion on a fixture
	// with zero or multiple ranges. This is a contract violation.
	ErrExactlyOneRange = errors.New("exactly one range required")
)

// DefaultMaxPasses bounds the analyzer polling loop.
const DefaultMaxPasses = 100

// Verifier runs assertions against one session.
type Verifier struct {
	s         *harness.Session
	maxPasses int
	colorize  bool
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithMaxPasses sets the analyzer polling budget.
func WithMaxPasses(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.maxPasses = n
		}
	}
}

// WithColor enables ANSI-colored failure rendering.
func WithColor(enabled bool) Option {
	return func(v *Verifier) {
		v.colorize = enabled
	}
}

// New creates a Verifier for the session.
func New(s *harness.Session, opts ...Option) *Verifier {
	v := &Verifier{s: s, maxPasses: DefaultMaxPasses}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// fail builds a located assertion error with both sides rendered.
func (v *Verifier) fail(what, expected, actual string) error {
	return fmt.Errorf("at %s: %w: %s\n%s",
		v.s.Location(), ErrMismatch, what,
		renderMismatch(expected, actual, v.colorize))
}

// CaretAtMarker asserts that the caret sits exactly on the named marker in
// the marker's file.
func (v *Verifier) CaretAtMarker(name string) error {
	m, err := v.s.MarkerByName(name)
	if err != nil {
		return err
	}
	off, ok := m.Offset.Get()
	if !ok {
		return fmt.Errorf("marker %q: %w", name, harness.ErrMarkerInvalidated)
	}
	if !v.s.Store().SamePath(m.FilePath, v.s.ActiveFile().Path()) {
		return v.fail(fmt.Sprintf("caret file for marker %q", name),
			m.FilePath, v.s.ActiveFile().Path())
	}
	if v.s.Caret() != off {
		return v.fail(fmt.Sprintf("caret offset for marker %q", name),
			fmt.Sprintf("%d", off), fmt.Sprintf("%d", v.s.Caret()))
	}
	return nil
}

// CurrentLineContent asserts the text of the caret's line, terminator
// excluded.
func (v *Verifier) CurrentLineContent(want string) error {
	content := v.s.ActiveFile().Content()
	ix := textpos.New(content)
	line := ix.PointFor(v.s.Caret()).Line
	span, err := ix.LineSpan(line)
	if err != nil {
		return fmt.Errorf("at %s: %w", v.s.Location(), err)
	}
	got := strings.TrimRight(content[span.Pos:span.End], "\r\n")
	if got != want {
		return v.fail("current line content", want, got)
	}
	return nil
}

// CurrentFileContent asserts the active file's entire content.
func (v *Verifier) CurrentFileContent(want string) error {
	got := v.s.ActiveFile().Content()
	if got != want {
		return v.fail("file content of "+v.s.ActiveFile().Path(), want, got)
	}
	return nil
}

// TextAtCaretIs asserts that the text immediately after the caret is want.
func (v *Verifier) TextAtCaretIs(want string) error {
	content := v.s.ActiveFile().Content()
	end := v.s.Caret() + len(want)
	if end > len(content) {
		end = len(content)
	}
	got := content[v.s.Caret():end]
	if got != want {
		return v.fail("text at caret", want, got)
	}
	return nil
}

// RangeIs asserts the text covered by the fixture's single range. A
// fixture with zero or multiple ranges cannot use this assertion.
func (v *Verifier) RangeIs(want string) error {
	ranges := v.s.Ranges()
	if len(ranges) != 1 {
		return fmt.Errorf("at %s: %w (have %d)", v.s.Location(), ErrExactlyOneRange, len(ranges))
	}
	got, err := v.s.RangeText(ranges[0])
	if err != nil {
		return err
	}
	if got != want {
		return v.fail("range text", want, got)
	}
	return nil
}

// SelectionIs asserts the text covered by the current selection.
func (v *Verifier) SelectionIs(want string) error {
	span, ok := v.s.Selection()
	if !ok {
		return v.fail("selection", want, "<no selection>")
	}
	got := v.s.ActiveFile().Content()[span.Pos:span.End]
	if got != want {
		return v.fail("selection text", want, got)
	}
	return nil
}
