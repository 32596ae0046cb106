// Package analyzertest provides a scripted analyzer for harness tests and
// for driving the CLI without a real analysis engine. Diagnostics are
// programmed per file; Advance counts down a configurable number of
// pending passes.
package analyzertest

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/tidwall/gjson"

	"github.com/dshills/fixtest/internal/analyzer"
	"github.com/dshills/fixtest/internal/textpos"
)

// Fake is a programmable analyzer.Analyzer.
type Fake struct {
	pending  int
	advances int
	tracked  []string
	diags    map[string][]analyzer.Diagnostic
	parses   map[string]analyzer.ParseResult
	cancel   *analyzer.CancelToken
}

// New creates a fake with no pending work and no diagnostics.
func New() *Fake {
	return &Fake{
		diags:  make(map[string][]analyzer.Diagnostic),
		parses: make(map[string]analyzer.ParseResult),
	}
}

var _ analyzer.Analyzer = (*Fake)(nil)

// RequirePasses makes Advance report pending work n times before settling.
func (f *Fake) RequirePasses(n int) {
	f.pending = n
}

// SetCancelToken installs a token consulted on every Advance call.
func (f *Fake) SetCancelToken(t *analyzer.CancelToken) {
	f.cancel = t
}

// SetContent records a parse result for path derived from content, the way
// a real analyzer would build its line table while parsing.
func (f *Fake) SetContent(path, content string) {
	ix := textpos.New(content)
	starts := make([]textpos.ByteOffset, ix.LineCount())
	for i := range starts {
		starts[i], _ = ix.LineStart(uint32(i))
	}
	f.parses[path] = analyzer.ParseResult{LineStarts: starts, Length: len(content)}
}

// AddDiagnostic appends a finding for path.
func (f *Fake) AddDiagnostic(path string, d analyzer.Diagnostic) {
	f.diags[path] = append(f.diags[path], d)
}

// ClearDiagnostics drops all findings for path.
func (f *Fake) ClearDiagnostics(path string) {
	delete(f.diags, path)
}

// Advances returns how many times Advance has been called.
func (f *Fake) Advances() int {
	return f.advances
}

// Tracked returns the paths handed to TrackFiles.
func (f *Fake) Tracked() []string {
	return f.tracked
}

// TrackFiles implements analyzer.Analyzer.
func (f *Fake) TrackFiles(paths []string) {
	f.tracked = append([]string(nil), paths...)
}

// Advance implements analyzer.Analyzer. A fired cancel token stops the
// countdown early, leaving pending work unreported.
func (f *Fake) Advance() bool {
	f.advances++
	if f.cancel.CancellationRequested() {
		return false
	}
	if f.pending > 0 {
		f.pending--
		return f.pending > 0
	}
	return false
}

// Diagnostics implements analyzer.Analyzer.
func (f *Fake) Diagnostics(path string) []analyzer.Diagnostic {
	return f.diags[path]
}

// ParseResult implements analyzer.Analyzer.
func (f *Fake) ParseResult(path string) (analyzer.ParseResult, bool) {
	pr, ok := f.parses[path]
	return pr, ok
}

// LoadDiagnostics programs the fake from a JSON document of the form:
//
//	{"a.py": [{"category": "error", "message": "...",
//	           "start": {"line": 0, "col": 4}, "end": {"line": 0, "col": 9}}]}
func (f *Fake) LoadDiagnostics(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("diagnostics document is not valid JSON")
	}

	var loadErr error
	gjson.ParseBytes(data).ForEach(func(path, list gjson.Result) bool {
		for _, dv := range list.Array() {
			cat, err := analyzer.ParseCategory(dv.Get("category").String())
			if err != nil {
				loadErr = fmt.Errorf("%s: %w", path.String(), err)
				return false
			}
			start, err := decodePoint(dv.Get("start"))
			if err != nil {
				loadErr = fmt.Errorf("%s: start: %w", path.String(), err)
				return false
			}
			end, err := decodePoint(dv.Get("end"))
			if err != nil {
				loadErr = fmt.Errorf("%s: end: %w", path.String(), err)
				return false
			}
			f.AddDiagnostic(path.String(), analyzer.Diagnostic{
				Category: cat,
				Message:  dv.Get("message").String(),
				Span:     textpos.Span{Start: start, End: end},
			})
		}
		return true
	})
	return loadErr
}

func decodePoint(v gjson.Result) (textpos.Point, error) {
	line, err := safecast.Conv[uint32](v.Get("line").Int())
	if err != nil {
		return textpos.Point{}, fmt.Errorf("line out of range: %w", err)
	}
	col, err := safecast.Conv[uint32](v.Get("col").Int())
	if err != nil {
		return textpos.Point{}, fmt.Errorf("col out of range: %w", err)
	}
	return textpos.Point{Line: line, Column: col}, nil
}
