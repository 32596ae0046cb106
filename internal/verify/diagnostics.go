package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/fixtest/internal/analyzer"
	"github.com/dshills/fixtest/internal/fixture"
	"github.com/dshills/fixtest/internal/harness"
	"github.com/dshills/fixtest/internal/textpos"
)

// Expectation overrides the category and message for the range tied to a
// marker. An empty Message skips the message check for that range.
type Expectation struct {
	Category string
	Message  string
}

// Diagnostics drives the analyzer to completion and verifies that its
// findings line up with the fixture's expected ranges file by file and
// category by category: matching counts, exact span equality, and, where
// an expectation supplies one, a verbatim message on exactly one of the
// span-matching diagnostics.
//
// expect maps marker names to expectations; pass nil to take categories
// from each range's own marker data instead.
func (v *Verifier) Diagnostics(expect map[string]Expectation) error {
	an := v.s.Analyzer()
	if an == nil {
		return ErrNoAnalyzer
	}

	passes := 0
	for an.Advance() {
		passes++
		if passes > v.maxPasses {
			return fmt.Errorf("%w (%d passes)", ErrAnalysisStalled, v.maxPasses)
		}
	}

	// Partition expectations and results per file up front: the file sets
	// must agree before any per-range comparison happens.
	type fileResult struct {
		path     string
		expected []*fixture.Range
		actual   []analyzer.Diagnostic
	}
	var results []fileResult
	var expectedFiles, actualFiles []string

	for _, f := range v.s.Store().Files() {
		fr := fileResult{
			path:     f.Path(),
			expected: v.s.RangesInFile(f.Path()),
			actual:   an.Diagnostics(f.Path()),
		}
		if len(fr.expected) > 0 {
			expectedFiles = append(expectedFiles, fr.path)
		}
		if len(fr.actual) > 0 {
			actualFiles = append(actualFiles, fr.path)
		}
		if len(fr.expected) > 0 || len(fr.actual) > 0 {
			results = append(results, fr)
		}
	}

	if !sameStrings(expectedFiles, actualFiles) {
		return fmt.Errorf("at %s: %w: files with expected ranges do not match files with diagnostics\n%s",
			v.s.Location(), ErrMismatch,
			renderMismatch(strings.Join(expectedFiles, ", "), strings.Join(actualFiles, ", "), v.colorize))
	}

	for _, fr := range results {
		if err := v.verifyFileDiagnostics(an, fr.path, fr.expected, fr.actual, expect); err != nil {
			return err
		}
	}
	return nil
}

// verifyFileDiagnostics checks one file's expected ranges against its
// actual diagnostics.
func (v *Verifier) verifyFileDiagnostics(an analyzer.Analyzer, path string, expected []*fixture.Range, actual []analyzer.Diagnostic, expect map[string]Expectation) error {
	pr, ok := an.ParseResult(path)
	if !ok {
		return fmt.Errorf("at %s: no parse result for %q", v.s.Location(), path)
	}
	ix := pr.Index()

	// Group both sides by category.
	expByCat := make(map[analyzer.Category][]*fixture.Range)
	for _, r := range expected {
		cat, err := v.rangeCategory(r, expect)
		if err != nil {
			return err
		}
		expByCat[cat] = append(expByCat[cat], r)
	}
	actByCat := make(map[analyzer.Category][]analyzer.Diagnostic)
	for _, d := range actual {
		actByCat[d.Category] = append(actByCat[d.Category], d)
	}

	cats := make(map[analyzer.Category]bool)
	for c := range expByCat {
		cats[c] = true
	}
	for c := range actByCat {
		cats[c] = true
	}
	ordered := make([]analyzer.Category, 0, len(cats))
	for c := range cats {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, cat := range ordered {
		exp, act := expByCat[cat], actByCat[cat]
		if len(exp) != len(act) {
			return fmt.Errorf("at %s: %w: %s count in %s\n%s",
				v.s.Location(), ErrMismatch, cat, path,
				renderBlock(v.renderRanges(exp), renderDiagnostics(act, ix), v.colorize))
		}

		for _, r := range exp {
			if err := v.matchRange(path, cat, r, act, ix, expect); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchRange requires at least one diagnostic whose span equals the
// range's span exactly, and, when the range carries a message
// expectation, exactly one span match with that verbatim message.
func (v *Verifier) matchRange(path string, cat analyzer.Category, r *fixture.Range, actual []analyzer.Diagnostic, ix *textpos.Index, expect map[string]Expectation) error {
	want, ok := r.Span()
	if !ok {
		return fmt.Errorf("at %s: expected range in %s: %w", v.s.Location(), path, harness.ErrRangeInvalidated)
	}

	var spanMatches []analyzer.Diagnostic
	for _, d := range actual {
		got, err := ix.SpanFor(d.Span)
		if err != nil {
			return fmt.Errorf("at %s: diagnostic span %s in %s: %w", v.s.Location(), d.Span, path, err)
		}
		if got == want {
			spanMatches = append(spanMatches, d)
		}
	}

	if len(spanMatches) == 0 {
		return fmt.Errorf("at %s: %w: %s diagnostics in %s don't contain expected range %s\n%s",
			v.s.Location(), ErrMismatch, cat, path, want,
			renderBlock(v.renderRanges([]*fixture.Range{r}), renderDiagnostics(actual, ix), v.colorize))
	}

	msg := v.expectedMessage(r, expect)
	if msg == "" {
		return nil
	}
	withMsg := 0
	for _, d := range spanMatches {
		if d.Message == msg {
			withMsg++
		}
	}
	if withMsg != 1 {
		return fmt.Errorf("at %s: %w: expected exactly one %s at %s in %s with message %q, found %d\n%s",
			v.s.Location(), ErrMismatch, cat, want, path, msg, withMsg,
			renderBlock("\n    "+fmt.Sprintf("%q", msg), renderDiagnostics(spanMatches, ix), v.colorize))
	}
	return nil
}

// rangeCategory resolves the category for an expected range: the explicit
// expectation map wins, then the range's own marker data.
func (v *Verifier) rangeCategory(r *fixture.Range, expect map[string]Expectation) (analyzer.Category, error) {
	if r.Marker != nil {
		if e, ok := expect[r.Marker.Name]; ok {
			return analyzer.ParseCategory(e.Category)
		}
		if cat, ok := r.Marker.Data["category"].(string); ok {
			return analyzer.ParseCategory(cat)
		}
	}
	return 0, fmt.Errorf("at %s: range in %s has no category (no expectation entry, no marker data)",
		v.s.Location(), r.FilePath)
}

// expectedMessage returns the message the range must match, or "".
func (v *Verifier) expectedMessage(r *fixture.Range, expect map[string]Expectation) string {
	if r.Marker == nil {
		return ""
	}
	if e, ok := expect[r.Marker.Name]; ok {
		return e.Message
	}
	return ""
}

// renderRanges renders expected ranges with their current text.
func (v *Verifier) renderRanges(ranges []*fixture.Range) string {
	if len(ranges) == 0 {
		return "<none>"
	}
	items := make([][2]string, 0, len(ranges))
	for _, r := range ranges {
		span, ok := r.Span()
		if !ok {
			items = append(items, [2]string{"<invalid>", r.FilePath})
			continue
		}
		text, err := v.s.RangeText(r)
		if err != nil {
			text = "<unreadable>"
		}
		items = append(items, [2]string{span.String(), fmt.Sprintf("%q", text)})
	}
	return "\n" + renderList(items)
}

// renderDiagnostics renders diagnostics with both coordinate forms.
func renderDiagnostics(ds []analyzer.Diagnostic, ix *textpos.Index) string {
	if len(ds) == 0 {
		return "<none>"
	}
	items := make([][2]string, 0, len(ds))
	for _, d := range ds {
		loc := d.Span.String()
		if span, err := ix.SpanFor(d.Span); err == nil {
			loc = fmt.Sprintf("%s %s", span, d.Span)
		}
		items = append(items, [2]string{d.Category.String(), fmt.Sprintf("%s: %s", loc, d.Message)})
	}
	return "\n" + renderList(items)
}

// sameStrings reports whether two path lists hold the same members,
// order-independent.
func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
